package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// document is the on-disk layout of the data file
type document struct {
	Settings     Settings      `json:"settings"`
	ContentQueue []ContentItem `json:"contentQueue"`
}

// FileStore is a MemoryStore mirrored to a JSON file after every mutation
// Writes are best-effort: a failed save is logged and reported by SaveErr,
// the in-memory state stays authoritative
type FileStore struct {
	*MemoryStore
	path string

	saveMu  sync.Mutex
	saveErr error
}

// OpenFileStore loads path if it exists
// A missing file starts from defaults; an unreadable one is logged and ignored
// Loaded settings are merged over the defaults and invalid fields reset
func OpenFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("file store: empty path")
	}
	fsr := &FileStore{MemoryStore: NewMemoryStore(), path: path}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fsr, nil
	case err != nil:
		log.Printf("[store] read %s: %v", path, err)
		return fsr, nil
	}

	doc := document{Settings: DefaultSettings()}
	if err := json.Unmarshal(raw, &doc); err != nil {
		log.Printf("[store] parse %s: %v", path, err)
		return fsr, nil
	}

	fsr.settings = doc.Settings.sanitize()
	queue := make([]ContentItem, 0, len(doc.ContentQueue))
	for _, it := range doc.ContentQueue {
		if it.Validate() != nil {
			log.Printf("[store] dropping invalid queue item %q", it.ID)
			continue
		}
		queue = append(queue, it)
	}
	if err := fsr.MemoryStore.Replace(queue); err != nil {
		return nil, err
	}
	return fsr, nil
}

// Path returns the data file location
func (f *FileStore) Path() string { return f.path }

// SaveErr returns the error of the most recent save, nil if it succeeded
func (f *FileStore) SaveErr() error {
	f.saveMu.Lock()
	defer f.saveMu.Unlock()
	return f.saveErr
}

// UpdateSettings implements Store
func (f *FileStore) UpdateSettings(patch []byte) (Settings, error) {
	s, err := f.MemoryStore.UpdateSettings(patch)
	if err != nil {
		return s, err
	}
	f.save()
	return s, nil
}

// Add implements Store
func (f *FileStore) Add(item ContentItem) (ContentItem, error) {
	it, err := f.MemoryStore.Add(item)
	if err != nil {
		return it, err
	}
	f.save()
	return it, nil
}

// Remove implements Store
func (f *FileStore) Remove(id string) error {
	if err := f.MemoryStore.Remove(id); err != nil {
		return err
	}
	f.save()
	return nil
}

// Replace implements Store
func (f *FileStore) Replace(queue []ContentItem) error {
	if err := f.MemoryStore.Replace(queue); err != nil {
		return err
	}
	f.save()
	return nil
}

// Clear implements Store
func (f *FileStore) Clear() error {
	f.MemoryStore.Clear()
	f.save()
	return nil
}

// save writes the current state; saves are serialized so the file never
// regresses to an older snapshot
func (f *FileStore) save() {
	f.saveMu.Lock()
	defer f.saveMu.Unlock()

	doc := document{Settings: f.Settings(), ContentQueue: f.Queue()}
	if doc.ContentQueue == nil {
		doc.ContentQueue = []ContentItem{}
	}

	f.saveErr = f.write(doc)
	if f.saveErr != nil {
		log.Printf("[store] save %s: %v", f.path, f.saveErr)
	}
}

func (f *FileStore) write(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(f.path, data, 0644)
}
