package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lixenwraith/flipdot/bitmap"
	"github.com/lixenwraith/flipdot/constant"
	"github.com/lixenwraith/flipdot/store"
)

type successResponse struct {
	Success bool `json:"success"`
}

func (s *Server) handleListContent(w http.ResponseWriter, r *http.Request) {
	q := s.store.Queue()
	if q == nil {
		q = []store.ContentItem{}
	}
	writeJSON(w, http.StatusOK, q)
}

type addTextRequest struct {
	Text     string `json:"text"`
	Priority int    `json:"priority"`
}

func (s *Server) handleAddText(w http.ResponseWriter, r *http.Request) {
	var req addTextRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, constant.MaxTextBytes*2)).Decode(&req); err != nil {
		writeError(w, badRequest("decode: %v", err))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, badRequest("text is required"))
		return
	}
	if len(req.Text) > constant.MaxTextBytes {
		writeError(w, badRequest("text longer than %d bytes", constant.MaxTextBytes))
		return
	}

	item, err := s.store.Add(store.ContentItem{
		Type:     bitmap.KindText,
		Content:  req.Text,
		Priority: req.Priority,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.syncQueue(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// handleUpload stores a multipart "image" file and queues it
// The payload must decode as a registered image format
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, constant.MaxUploadBytes)
	if err := r.ParseMultipartForm(constant.MaxUploadBytes); err != nil {
		writeError(w, badRequest("parse upload: %v", err))
		return
	}
	file, hdr, err := r.FormFile("image")
	if err != nil {
		writeError(w, badRequest("no file uploaded"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, badRequest("read upload: %v", err))
		return
	}
	if _, format, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		writeError(w, badRequest("not a supported image: %v", err))
		return
	} else if ext := uploadExt(hdr.Filename); ext == "" {
		hdr.Filename += "." + format
	}

	name := fmt.Sprintf("%d-%d%s", time.Now().UnixMilli(), rand.Int63n(1e9), uploadExt(hdr.Filename))
	if err := os.MkdirAll(s.uploadDir, 0755); err != nil {
		writeError(w, err)
		return
	}
	if err := os.WriteFile(filepath.Join(s.uploadDir, name), data, 0644); err != nil {
		writeError(w, err)
		return
	}

	item, err := s.store.Add(store.ContentItem{
		Type:         bitmap.KindImage,
		Content:      "/uploads/" + name,
		OriginalName: hdr.Filename,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.syncQueue(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// uploadExt returns the lowercased extension of name if it is a plain alphanumeric suffix
func uploadExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) < 2 || len(ext) > 6 {
		return ""
	}
	for _, c := range ext[1:] {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return ""
		}
	}
	return ext
}

func (s *Server) handleDeleteContent(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Remove(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	if err := s.syncQueue(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{true})
}

func (s *Server) handleClearContent(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Clear(); err != nil {
		writeError(w, err)
		return
	}
	if err := s.syncQueue(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{true})
}

type reorderRequest struct {
	Queue *[]store.ContentItem `json:"queue"`
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Queue == nil {
		writeError(w, badRequest("queue must be an array"))
		return
	}
	if err := s.store.Replace(*req.Queue); err != nil {
		writeError(w, err)
		return
	}
	if err := s.syncQueue(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{true})
}
