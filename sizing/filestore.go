// Copyright © 2025 Tabulon contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: sizing/filestore.go
// Summary: JSON file persistence substrate.

package sizing

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists the payload as indented JSON at a fixed path.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a file-backed persister. The file and its directory
// are created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the payload from disk. A missing file yields (nil, nil); a
// corrupted file starts fresh rather than wedging the engine.
func (f *FileStore) Load() (*PluginData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}

	var payload PluginData
	if err := json.Unmarshal(data, &payload); err != nil {
		log.Printf("FileStore: %s is corrupted, starting fresh: %v", f.path, err)
		return nil, nil
	}
	return &payload, nil
}

// Save writes the payload to disk, creating the parent directory if needed.
func (f *FileStore) Save(payload *PluginData) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sizing payload: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	return nil
}
