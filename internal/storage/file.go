package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"foodreel/pkg/platform/sentinel"
)

// FileStore persists values as a JSON object on disk. Every write replaces the
// file through a temp file and rename so a crash never leaves a torn document.
type FileStore struct {
	mu          sync.Mutex
	path        string
	values      map[string]string
	quarantined string
}

// OpenFile loads path if it exists. A missing file is an empty store. An
// unparsable document is moved aside to <path>.corrupt and the store starts
// empty; the next write recreates path.
func OpenFile(path string) (*FileStore, error) {
	s := &FileStore{path: path, values: make(map[string]string)}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read storage file: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.values); err != nil {
		s.values = make(map[string]string)
		aside := path + ".corrupt"
		if rerr := os.Rename(path, aside); rerr != nil {
			return nil, fmt.Errorf("quarantine unparsable storage file %s: %w", path, errors.Join(err, rerr))
		}
		s.quarantined = aside
	}
	return s, nil
}

// Quarantined returns where an unparsable document was moved on open, or "".
func (s *FileStore) Quarantined() string {
	return s.quarantined
}

func (s *FileStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.values[key]; ok {
		return v, nil
	}
	return "", sentinel.ErrNotFound
}

func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.values[key]
	s.values[key] = value
	if err := s.flush(); err != nil {
		if had {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.values[key]
	if !had {
		return nil
	}
	delete(s.values, key)
	if err := s.flush(); err != nil {
		s.values[key] = prev
		return err
	}
	return nil
}

// Path returns the backing file location.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) flush() error {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode storage file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp storage file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write storage file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close storage file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod storage file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace storage file: %w", err)
	}
	return nil
}
