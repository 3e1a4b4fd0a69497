// ABOUTME: JSON-file backed list store used by the task and note tools
// ABOUTME: Tolerates corruption by resetting the file to an empty array

package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// ListStore persists a flat ordered list of strings as a pretty-printed
// JSON array in a single file. A mutex serializes all access, and saves
// go through a temp file plus rename so a crash mid-write cannot leave
// a half-written array behind.
//
// A file that fails to parse is reset to an empty array and its prior
// content discarded; missing files read as empty without being created.
type ListStore struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewListStore creates a list store at the given path.
// Parent directories are created if needed.
func NewListStore(path string) (*ListStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	return &ListStore{
		path:   path,
		logger: slog.Default().With("component", "store", "file", filepath.Base(path)),
	}, nil
}

// Path returns the backing file location.
func (s *ListStore) Path() string {
	return s.path
}

// Items returns the current list contents.
func (s *ListStore) Items() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Append adds one item to the end of the list and persists it.
func (s *ListStore) Append(item string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := append(s.load(), item)
	return s.save(items)
}

// Replace overwrites the list with the given items.
func (s *ListStore) Replace(items []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(items)
}

// Update applies fn to the current items and persists the result.
// The load, transform, and save happen under one lock acquisition.
func (s *ListStore) Update(fn func(items []string) []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(fn(s.load()))
}

// load reads the backing file. Callers must hold the mutex.
func (s *ListStore) load() []string {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}
	}
	if err != nil {
		s.logger.Error("reading list file", "error", err)
		return []string{}
	}

	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		// Corrupt content is unrecoverable: reset to an empty array
		s.logger.Warn("list file corrupt, resetting", "error", err)
		if werr := s.save([]string{}); werr != nil {
			s.logger.Error("resetting corrupt list file", "error", werr)
		}
		return []string{}
	}

	return items
}

// save writes items through a temp file and atomic rename.
// Callers must hold the mutex.
func (s *ListStore) save(items []string) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding list: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", filepath.Base(s.path), err)
	}

	return nil
}
