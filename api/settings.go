package api

import (
	"io"
	"net/http"
)

// maxSettingsBytes caps a settings document
const maxSettingsBytes = 64 << 10

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Settings())
}

// handleUpdateSettings merges a partial document and reconfigures the display
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxSettingsBytes+1))
	if err != nil {
		writeError(w, badRequest("read body: %v", err))
		return
	}
	if len(body) > maxSettingsBytes {
		writeError(w, badRequest("settings document too large"))
		return
	}

	updated, err := s.store.UpdateSettings(body)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.ctl.ApplySettings(updated); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
