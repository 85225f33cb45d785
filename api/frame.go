package api

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/lixenwraith/flipdot/render"
)

// frameView is the JSON form of a published frame
// Faces holds one string per row: '#' front face, '.' back face
type frameView struct {
	Rows      int      `json:"rows"`
	Cols      int      `json:"cols"`
	Playing   bool     `json:"playing"`
	Flipping  bool     `json:"isFlipping"`
	Moving    int      `json:"moving"`
	ElapsedMs int64    `json:"elapsedMs"`
	Faces     []string `json:"faces"`
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	f := s.ctl.Frame()
	v := frameView{
		Rows:      f.Rows,
		Cols:      f.Cols,
		Playing:   f.Playing,
		Flipping:  f.IsFlipping,
		ElapsedMs: f.Elapsed.Milliseconds(),
		Faces:     make([]string, 0, f.Rows),
	}

	var sb strings.Builder
	for row := 0; row < f.Rows; row++ {
		sb.Reset()
		for col := 0; col < f.Cols; col++ {
			d := f.At(row, col)
			if d.ScaleY < 1 {
				v.Moving++
			}
			if d.ShowFront {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		v.Faces = append(v.Faces, sb.String())
	}
	writeJSON(w, http.StatusOK, v)
}

// handleSnapshot paints the current frame with the stored palette as WebP
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	cell, err := parseCellPx(r)
	if err != nil {
		writeError(w, err)
		return
	}

	f := s.ctl.Frame()
	if f.Rows == 0 || f.Cols == 0 {
		http.Error(w, "no frame", http.StatusServiceUnavailable)
		return
	}

	var buf bytes.Buffer
	painter := render.NewPainter(cell, s.store.Settings().Palette())
	if err := painter.Snapshot(&buf, f); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/webp")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}
