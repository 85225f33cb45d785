package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/lixenwraith/flipdot/engine"
	"github.com/lixenwraith/flipdot/store"
)

// fakeController records what the API pushes to the display
type fakeController struct {
	mu       sync.Mutex
	playing  bool
	settings []store.Settings
	queues   [][]store.ContentItem
	frame    engine.Frame
	failWith error
}

func (c *fakeController) Play() error  { c.mu.Lock(); c.playing = true; c.mu.Unlock(); return c.failWith }
func (c *fakeController) Pause() error { c.mu.Lock(); c.playing = false; c.mu.Unlock(); return c.failWith }
func (c *fakeController) Toggle() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playing = !c.playing
	return c.playing, c.failWith
}
func (c *fakeController) IsPlaying() bool { c.mu.Lock(); defer c.mu.Unlock(); return c.playing }
func (c *fakeController) ApplySettings(s store.Settings) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings = append(c.settings, s)
	return nil
}
func (c *fakeController) SetQueue(q []store.ContentItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queues = append(c.queues, q)
	return nil
}
func (c *fakeController) Frame() engine.Frame { return c.frame.Clone() }

func (c *fakeController) lastQueue() []store.ContentItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queues) == 0 {
		return nil
	}
	return c.queues[len(c.queues)-1]
}

func testFrame() engine.Frame {
	return engine.Frame{
		Rows: 2, Cols: 3, Playing: true, IsFlipping: true,
		Dots: []engine.DotState{
			{ShowFront: true, ScaleY: 1, Progress: 1}, {ScaleY: 1, Progress: 1}, {ShowFront: true, ScaleY: 0.4, Progress: 0.3},
			{ScaleY: 1, Progress: 1}, {ShowFront: true, ScaleY: 1, Progress: 1}, {ScaleY: 1, Progress: 1},
		},
	}
}

func newTestServer(t *testing.T) (*Server, *store.MemoryStore, *fakeController) {
	t.Helper()
	st := store.NewMemoryStore()
	ctl := &fakeController{playing: true, frame: testFrame()}
	return NewServer(st, ctl, nil, t.TempDir()), st, ctl
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

// TestSettingsEndpoints verifies read, merge and rejection of settings updates
func TestSettingsEndpoints(t *testing.T) {
	srv, st, ctl := newTestServer(t)

	rec := do(t, srv, "GET", "/api/settings", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET settings = %d", rec.Code)
	}
	if got := decode[store.Settings](t, rec); got != store.DefaultSettings() {
		t.Errorf("Expected defaults, got %+v", got)
	}

	rec = do(t, srv, "POST", "/api/settings", `{"colors":{"front":"#00FF00"},"timing":{"columnDelay":40}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST settings = %d %s", rec.Code, rec.Body)
	}
	got := decode[store.Settings](t, rec)
	if got.Colors.Front != "#00FF00" || got.Timing.ColumnDelay != 40 || got.Timing.FlipDuration != 300 {
		t.Errorf("Unexpected merged settings %+v", got)
	}
	if len(ctl.settings) != 1 || ctl.settings[0] != got {
		t.Errorf("Expected controller reconfigured, got %v", ctl.settings)
	}

	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"timing":`},
		{"rows", `{"resolution":{"rows":0}}`},
		{"variance", `{"timing":{"flipDurationVariance":101}}`},
		{"direction", `{"animationDirection":"spiral"}`},
		{"sound", `{"soundType":"gong"}`},
		{"color", `{"colors":{"back":"blue"}}`},
		{"shape", `{"dotShape":"hex"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, "POST", "/api/settings", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d %s", rec.Code, rec.Body)
			}
		})
	}
	if st.Settings() != got || len(ctl.settings) != 1 {
		t.Error("Expected rejected updates to leave store and display untouched")
	}
}

// TestContentEndpoints verifies queue editing and that every edit reaches the display
func TestContentEndpoints(t *testing.T) {
	srv, st, ctl := newTestServer(t)

	rec := do(t, srv, "GET", "/api/content", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("Expected empty array, got %d %s", rec.Code, rec.Body)
	}

	if rec := do(t, srv, "POST", "/api/content/text", `{"text":"  "}`); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for blank text, got %d", rec.Code)
	}
	long := `{"text":"` + strings.Repeat("x", 5000) + `"}`
	if rec := do(t, srv, "POST", "/api/content/text", long); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for oversized text, got %d", rec.Code)
	}

	rec = do(t, srv, "POST", "/api/content/text", `{"text":"HELLO","priority":3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("add text = %d %s", rec.Code, rec.Body)
	}
	a := decode[store.ContentItem](t, rec)
	if a.ID == "" || a.Type != "text" || a.Content != "HELLO" || a.Priority != 3 || a.AddedAt == 0 {
		t.Errorf("Unexpected item %+v", a)
	}
	b := decode[store.ContentItem](t, do(t, srv, "POST", "/api/content/text", `{"text":"WORLD"}`))

	if q := ctl.lastQueue(); len(q) != 2 {
		t.Fatalf("Expected controller queue of 2, got %v", q)
	}

	reorder, _ := json.Marshal(map[string]any{"queue": []store.ContentItem{b, a}})
	if rec := do(t, srv, "PUT", "/api/content/reorder", string(reorder)); rec.Code != http.StatusOK {
		t.Fatalf("reorder = %d %s", rec.Code, rec.Body)
	}
	if q := ctl.lastQueue(); q[0].ID != b.ID {
		t.Errorf("Expected reordered controller queue, got %v", q)
	}
	for _, body := range []string{`{"queue":"nope"}`, `{}`, `[`} {
		if rec := do(t, srv, "PUT", "/api/content/reorder", body); rec.Code != http.StatusBadRequest {
			t.Errorf("reorder %s: expected 400, got %d", body, rec.Code)
		}
	}

	if rec := do(t, srv, "DELETE", "/api/content/"+a.ID, ""); rec.Code != http.StatusOK {
		t.Errorf("delete = %d", rec.Code)
	}
	if rec := do(t, srv, "DELETE", "/api/content/"+a.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for missing id, got %d", rec.Code)
	}
	if q := st.Queue(); len(q) != 1 || q[0].ID != b.ID {
		t.Errorf("Unexpected store queue %v", q)
	}

	if rec := do(t, srv, "DELETE", "/api/content", ""); rec.Code != http.StatusOK {
		t.Errorf("clear = %d", rec.Code)
	}
	if len(st.Queue()) != 0 || len(ctl.lastQueue()) != 0 {
		t.Error("Expected store and controller cleared")
	}
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(data)
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// TestUploadEndpoint verifies image uploads are stored, queued and served back
func TestUploadEndpoint(t *testing.T) {
	srv, st, _ := newTestServer(t)

	body, ctype := multipartBody(t, "image", "logo.PNG", pngBytes(t))
	req := httptest.NewRequest("POST", "/api/upload", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload = %d %s", rec.Code, rec.Body)
	}

	item := decode[store.ContentItem](t, rec)
	if item.Type != "image" || item.OriginalName != "logo.PNG" || !strings.HasPrefix(item.Content, "/uploads/") || !strings.HasSuffix(item.Content, ".png") {
		t.Errorf("Unexpected item %+v", item)
	}
	if _, err := os.Stat(filepath.Join(srv.uploadDir, filepath.Base(item.Content))); err != nil {
		t.Errorf("Expected stored file: %v", err)
	}
	if len(st.Queue()) != 1 {
		t.Error("Expected item queued")
	}

	if rec := do(t, srv, "GET", item.Content, ""); rec.Code != http.StatusOK || rec.Body.Len() == 0 {
		t.Errorf("Expected uploaded file served, got %d", rec.Code)
	}

	tests := []struct {
		name, field string
		data        []byte
	}{
		{"not an image", "image", []byte("nope")},
		{"wrong field", "file", pngBytes(t)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ctype := multipartBody(t, tt.field, "x.png", tt.data)
			req := httptest.NewRequest("POST", "/api/upload", body)
			req.Header.Set("Content-Type", ctype)
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d %s", rec.Code, rec.Body)
			}
		})
	}
	if len(st.Queue()) != 1 {
		t.Error("Expected rejected uploads not queued")
	}
}

func TestUploadExt(t *testing.T) {
	tests := map[string]string{
		"a.PNG":        ".png",
		"b.jpeg":       ".jpeg",
		"noext":        "",
		"weird.p/g":    "",
		"trail.":       "",
		"long.abcdefg": "",
		"../../x.gif":  ".gif",
	}
	for in, want := range tests {
		if got := uploadExt(in); got != want {
			t.Errorf("uploadExt(%q) = %q, want %q", in, got, want)
		}
	}
}

// TestPlaybackEndpoints verifies play, pause, toggle and controller errors
func TestPlaybackEndpoints(t *testing.T) {
	srv, _, ctl := newTestServer(t)

	steps := []struct {
		action string
		want   bool
	}{
		{"pause", false},
		{"toggle", true},
		{"toggle", false},
		{"play", true},
	}
	for _, s := range steps {
		rec := do(t, srv, "POST", "/api/playback/"+s.action, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s = %d", s.action, rec.Code)
		}
		if got := decode[map[string]bool](t, rec)["playing"]; got != s.want {
			t.Errorf("%s: playing = %v, want %v", s.action, got, s.want)
		}
	}

	if rec := do(t, srv, "POST", "/api/playback/rewind", ""); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown action, got %d", rec.Code)
	}

	ctl.failWith = errors.New("loop gone")
	if rec := do(t, srv, "POST", "/api/playback/play", ""); rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500 on controller failure, got %d", rec.Code)
	}
}

// TestFrameEndpoints verifies the JSON frame view and the WebP snapshot
func TestFrameEndpoints(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := do(t, srv, "GET", "/api/frame", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("frame = %d", rec.Code)
	}
	v := decode[frameView](t, rec)
	if v.Rows != 2 || v.Cols != 3 || !v.Playing || !v.Flipping || v.Moving != 1 {
		t.Errorf("Unexpected frame view %+v", v)
	}
	if len(v.Faces) != 2 || v.Faces[0] != "#.#" || v.Faces[1] != ".#." {
		t.Errorf("Unexpected faces %v", v.Faces)
	}

	rec = do(t, srv, "GET", "/api/snapshot.webp?cell=4", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("snapshot = %d %s", rec.Code, rec.Body)
	}
	data := rec.Body.Bytes()
	if rec.Header().Get("Content-Type") != "image/webp" || len(data) < 12 || string(data[:4]) != "RIFF" || string(data[8:12]) != "WEBP" {
		t.Errorf("Expected WebP payload, got %q", rec.Header().Get("Content-Type"))
	}

	for _, q := range []string{"cell=0", "cell=abc", "cell=1000"} {
		if rec := do(t, srv, "GET", "/api/snapshot.webp?"+q, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", q, rec.Code)
		}
	}
}

// TestStatusAndCORS verifies the metrics snapshot and preflight handling
func TestStatusAndCORS(t *testing.T) {
	srv, _, _ := newTestServer(t)
	do(t, srv, "GET", "/api/content", "")

	rec := do(t, srv, "GET", "/api/status", "")
	snap := decode[map[string]any](t, rec)
	if n, ok := snap["api.requests"].(float64); !ok || n < 2 {
		t.Errorf("Expected request counter, got %v", snap["api.requests"])
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS header")
	}

	rec = do(t, srv, "OPTIONS", "/api/settings", "")
	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Errorf("Unexpected preflight response %d", rec.Code)
	}
}

// TestAPIService verifies the listener lifecycle
func TestAPIService(t *testing.T) {
	srv, _, _ := newTestServer(t)

	svc := NewService()
	if err := svc.Init("127.0.0.1:0", t.TempDir()); err != nil {
		t.Fatal(err)
	}
	if err := svc.Start(); err == nil {
		t.Error("Expected error without a mounted handler")
	}

	svc.Mount(srv)
	if err := svc.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	resp, err := http.Get("http://" + svc.Addr() + "/api/settings")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}

	if err := svc.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
	if err := svc.Stop(); err != nil {
		t.Errorf("Expected idempotent Stop, got %v", err)
	}

	if err := NewService().Init(8080); err == nil {
		t.Error("Expected error for non-string address")
	}
}
