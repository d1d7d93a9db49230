// Package viewstate remembers small pieces of UI state between sessions.
package viewstate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Keys used by the dashboard.
const (
	KeyTab  = "tab"
	KeyDate = "date"
)

type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// File keeps values in a JSON object on disk. Every Set rewrites the file
// through a temporary file and a rename.
type File struct {
	path string
	mu   sync.RWMutex
	mem  map[string]string
}

// OpenFile loads path if it exists. A missing file starts empty.
func OpenFile(path string) (*File, error) {
	f := &File{path: path, mem: make(map[string]string)}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return f, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read view state: %w", err)
	}
	if len(data) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(data, &f.mem); err != nil {
		return nil, fmt.Errorf("failed to parse view state %s: %w", path, err)
	}
	return f, nil
}

func (f *File) Get(key string) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.mem[key]
	return v, ok
}

func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, had := f.mem[key]
	f.mem[key] = value
	if err := f.persist(); err != nil {
		if had {
			f.mem[key] = prev
		} else {
			delete(f.mem, key)
		}
		return err
	}
	return nil
}

func (f *File) persist() error {
	data, err := json.MarshalIndent(f.mem, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode view state: %w", err)
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create view state directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".viewstate-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write view state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync view state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close view state: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("failed to replace view state: %w", err)
	}
	return nil
}
