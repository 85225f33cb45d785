package engine

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/lixenwraith/flipdot/bitmap"
)

type cueCall struct {
	target   bitmap.Bitmap
	duration time.Duration
}

// recordingCue captures cue calls for assertions
type recordingCue struct {
	triggers []cueCall
	stops    int
}

func (r *recordingCue) Trigger(target bitmap.Bitmap, duration time.Duration) bool {
	r.triggers = append(r.triggers, cueCall{target, duration})
	return true
}

func (r *recordingCue) Stop() { r.stops++ }

var testTiming = TimingConfig{FlipDuration: 300 * time.Millisecond, ColumnDelay: 100 * time.Millisecond}

func newTestPanel(t *testing.T) (*Panel, *MockTimeProvider, *recordingCue) {
	t.Helper()
	mock := NewMockTimeProvider(time.Unix(1000, 0))
	cue := &recordingCue{}
	p := NewPanel(mock, rand.New(rand.NewSource(42)), cue)
	if err := p.SetMetrics(neutralMetrics(2, 2, []float64{0, 2}, []float64{0, 2}), testTiming, LeftRight); err != nil {
		t.Fatalf("SetMetrics failed: %v", err)
	}
	return p, mock, cue
}

func TestPanelTransition(t *testing.T) {
	p, mock, cue := newTestPanel(t)
	target := bitmap.MustParse("##", "##")

	changed, err := p.OnBitmapChanged(target)
	if err != nil || !changed {
		t.Fatalf("OnBitmapChanged = %v, %v", changed, err)
	}
	if len(cue.triggers) != 1 || cue.triggers[0].duration != 600*time.Millisecond {
		t.Fatalf("Expected one cue of 600ms, got %+v", cue.triggers)
	}

	mock.Advance(150 * time.Millisecond)
	f := p.Sample()
	if !f.IsFlipping || !f.Playing {
		t.Errorf("Frame flags = flipping %v playing %v", f.IsFlipping, f.Playing)
	}
	if got := f.At(0, 0).Progress; !approx(got, 0.5) {
		t.Errorf("(0,0) progress = %v, want 0.5", got)
	}
	if f.At(1, 1).ShowFront {
		t.Error("(1,1) should still show the previous face")
	}

	mock.Advance(time.Second)
	f = p.Sample()
	if f.IsFlipping {
		t.Error("Expected settled frame")
	}
	for i, d := range f.Dots {
		if !d.ShowFront {
			t.Errorf("dot %d not showing target", i)
		}
	}
	if !p.Previous().Equal(target) {
		t.Error("Previous should commit to target once settled")
	}
}

func TestPanelIdempotentChange(t *testing.T) {
	p, mock, cue := newTestPanel(t)
	target := bitmap.MustParse("#.", ".#")

	p.OnBitmapChanged(target)
	mock.Advance(2 * time.Second)
	p.Sample()

	changed, err := p.OnBitmapChanged(target)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if changed {
		t.Error("Re-sending the settled bitmap should be a no-op")
	}
	if len(cue.triggers) != 1 {
		t.Errorf("No-op change triggered cue: %d triggers", len(cue.triggers))
	}
	if p.Sample().IsFlipping {
		t.Error("No-op change restarted the animation")
	}
}

func TestPanelSameBitmapMidTransitionRestarts(t *testing.T) {
	p, mock, _ := newTestPanel(t)
	target := bitmap.MustParse("##", "..")

	p.OnBitmapChanged(target)
	mock.Advance(150 * time.Millisecond)

	changed, _ := p.OnBitmapChanged(target)
	if !changed {
		t.Error("Same bitmap before settle should restart the transition")
	}
	if got := p.Elapsed(); got != 0 {
		t.Errorf("Elapsed after restart = %v, want 0", got)
	}
}

func TestPanelPauseResume(t *testing.T) {
	p, mock, cue := newTestPanel(t)
	p.OnBitmapChanged(bitmap.MustParse("##", "##"))

	mock.Advance(200 * time.Millisecond)
	if !p.Pause() {
		t.Fatal("Pause should succeed")
	}
	if cue.stops != 1 {
		t.Errorf("Pause should stop the cue once, got %d", cue.stops)
	}
	frozen := p.Sample().Clone()

	mock.Advance(10 * time.Second)
	f := p.Sample()
	if f.Playing {
		t.Error("Frame should report paused")
	}
	for i := range f.Dots {
		if f.Dots[i] != frozen.Dots[i] {
			t.Fatalf("dot %d moved while paused", i)
		}
	}

	if !p.Play() {
		t.Fatal("Play should succeed")
	}
	if len(cue.triggers) != 2 || cue.triggers[1].duration != 400*time.Millisecond {
		t.Errorf("Resume should re-trigger with remaining 400ms, got %+v", cue.triggers)
	}
	if got := p.Elapsed(); got != 200*time.Millisecond {
		t.Errorf("Elapsed after resume = %v, want 200ms", got)
	}
}

func TestPanelRapidToggle(t *testing.T) {
	p, mock, _ := newTestPanel(t)
	p.OnBitmapChanged(bitmap.MustParse("##", "##"))
	mock.Advance(100 * time.Millisecond)

	p.Pause()
	p.Play()
	if !p.IsPlaying() {
		t.Error("Double toggle should end playing")
	}
	if got := p.Elapsed(); got != 100*time.Millisecond {
		t.Errorf("Elapsed = %v, want 100ms", got)
	}
}

func TestPanelChangeWhilePaused(t *testing.T) {
	p, mock, cue := newTestPanel(t)
	p.Pause()

	p.OnBitmapChanged(bitmap.MustParse("##", "##"))
	if len(cue.triggers) != 0 {
		t.Error("Cue must not trigger while paused")
	}

	mock.Advance(time.Second)
	if got := p.Elapsed(); got != 0 {
		t.Errorf("Elapsed while paused = %v, want 0", got)
	}

	p.Play()
	if len(cue.triggers) != 1 || cue.triggers[0].duration != 600*time.Millisecond {
		t.Errorf("Resume should trigger the full transition, got %+v", cue.triggers)
	}
}

// TestPanelIdempotentChangeWhilePaused verifies repeated identical changes while paused
func TestPanelIdempotentChangeWhilePaused(t *testing.T) {
	target := bitmap.MustParse("#.", ".#")

	t.Run("unsettled restarts silently", func(t *testing.T) {
		p, mock, cue := newTestPanel(t)
		p.Pause()
		p.OnBitmapChanged(target)
		mock.Advance(200 * time.Millisecond)

		changed, err := p.OnBitmapChanged(target)
		if err != nil || !changed {
			t.Fatalf("Expected restart before settle, got %v, %v", changed, err)
		}
		if got := p.Elapsed(); got != 0 {
			t.Errorf("Expected clock reset to 0, got %v", got)
		}
		if p.IsPlaying() {
			t.Error("Expected panel to stay paused")
		}
		if len(cue.triggers) != 0 {
			t.Errorf("Expected no cue while paused, got %d", len(cue.triggers))
		}
	})

	t.Run("settled is a no-op", func(t *testing.T) {
		p, mock, cue := newTestPanel(t)
		p.OnBitmapChanged(target)
		mock.Advance(2 * time.Second)
		p.Sample()
		if !p.Previous().Equal(target) {
			t.Fatal("Expected previous committed to target")
		}

		p.Pause()
		frozen := p.Elapsed()
		mock.Advance(time.Second)

		changed, err := p.OnBitmapChanged(target)
		if err != nil || changed {
			t.Fatalf("Expected no-op, got %v, %v", changed, err)
		}
		if got := p.Elapsed(); got != frozen {
			t.Errorf("Expected clock untouched at %v, got %v", frozen, got)
		}
		if len(cue.triggers) != 1 {
			t.Errorf("Expected only the original cue, got %d", len(cue.triggers))
		}
		if p.Sample().IsFlipping {
			t.Error("Expected no animation after no-op")
		}
	})
}

func TestPanelResumeAfterSettleIsSilent(t *testing.T) {
	p, mock, cue := newTestPanel(t)
	p.OnBitmapChanged(bitmap.MustParse("##", "##"))
	mock.Advance(time.Second)
	p.Pause()
	p.Play()

	if len(cue.triggers) != 1 {
		t.Errorf("Resume after completion should not re-trigger, got %d", len(cue.triggers))
	}
}

func TestPanelErrors(t *testing.T) {
	p, _, _ := newTestPanel(t)

	if _, err := p.OnBitmapChanged(bitmap.New(3, 3)); !errors.Is(err, ErrBitmapSize) {
		t.Errorf("Expected ErrBitmapSize, got %v", err)
	}

	tests := []struct {
		name       string
		rows, cols int
		timing     TimingConfig
		dir        Direction
	}{
		{"zero rows", 0, 2, testTiming, LeftRight},
		{"zero flip", 2, 2, TimingConfig{ColumnDelay: 1}, LeftRight},
		{"negative stagger", 2, 2, TimingConfig{FlipDuration: 1, ColumnDelay: -1}, LeftRight},
		{"bad direction", 2, 2, testTiming, Direction(9)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := p.Configure(tt.rows, tt.cols, tt.timing, tt.dir); !errors.Is(err, ErrOutOfRange) {
				t.Errorf("Expected ErrOutOfRange, got %v", err)
			}
		})
	}

	if p.Metrics().Rows != 2 || p.Timing() != testTiming {
		t.Error("Failed Configure must leave the panel untouched")
	}

	unconfigured := NewPanel(NewMockTimeProvider(time.Unix(0, 0)), nil, nil)
	if _, err := unconfigured.OnBitmapChanged(bitmap.New(1, 1)); !errors.Is(err, ErrBitmapSize) {
		t.Errorf("Expected ErrBitmapSize for unconfigured panel, got %v", err)
	}
	if f := unconfigured.Sample(); f.Rows != 0 {
		t.Error("Unconfigured panel should sample an empty frame")
	}
}

func TestPanelConfigureKeepsMetrics(t *testing.T) {
	mock := NewMockTimeProvider(time.Unix(0, 0))
	p := NewPanel(mock, rand.New(rand.NewSource(3)), nil)
	if err := p.Configure(4, 6, testTiming, LeftRight); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	m := p.Metrics()
	target := bitmap.MustParse("######", "......", "######", "......")
	p.OnBitmapChanged(target)

	faster := TimingConfig{FlipDuration: 100 * time.Millisecond, ColumnDelay: 10 * time.Millisecond}
	if err := p.Configure(4, 6, faster, TopBottom); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if p.Metrics() != m {
		t.Error("Timing change should not regenerate metrics")
	}
	if _, ok := p.Target(); !ok {
		t.Error("Timing change should keep the target")
	}

	if err := p.Configure(5, 6, faster, TopBottom); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if p.Metrics() == m {
		t.Error("Size change should regenerate metrics")
	}
	if _, ok := p.Target(); ok {
		t.Error("Size change should drop the target")
	}
	if p.Previous().Any() {
		t.Error("Size change should blank the previous bitmap")
	}
}

func TestPanelIdleFrame(t *testing.T) {
	p, _, _ := newTestPanel(t)
	f := p.Sample()
	if f.IsFlipping {
		t.Error("Idle panel should not flip")
	}
	for i, d := range f.Dots {
		if d.ShowFront || d.ScaleY != 1 {
			t.Errorf("idle dot %d = %+v", i, d)
		}
	}
}
