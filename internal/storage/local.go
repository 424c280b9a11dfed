// Package storage persists attachment bytes on the local filesystem.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes files under a single base directory. Keys are flat
// filenames; writing the same key twice overwrites the previous content.
type LocalStore struct {
	baseDir string
}

// NewLocalStore creates the base directory if needed and returns a store
// rooted there.
func NewLocalStore(baseDir string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", baseDir, err)
	}
	return &LocalStore{baseDir: baseDir}, nil
}

// Save writes data under the given key.
func (s *LocalStore) Save(key string, data []byte) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Read returns the content stored under the given key.
func (s *LocalStore) Read(key string) ([]byte, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// Remove deletes the content stored under the given key. Missing keys are
// not an error: the metadata row may outlive the file.
func (s *LocalStore) Remove(key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// resolve joins the key onto the base directory, rejecting keys that would
// escape it.
func (s *LocalStore) resolve(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key != filepath.Base(key) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.baseDir, key), nil
}
