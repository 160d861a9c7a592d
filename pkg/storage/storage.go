// Package storage persists uploaded post images and hands back an opaque
// reference the post record can carry.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrDisallowedExtension is returned when an upload's file extension is
// outside the image allow-list.
var ErrDisallowedExtension = errors.New("file extension not allowed")

// allowedExtensions is the image upload allow-list.
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// FileStore accepts an upload and returns a stored reference.
type FileStore interface {
	Save(filename string, data []byte) (string, error)
}

// AllowedFile reports whether filename carries an allow-listed extension.
func AllowedFile(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// sanitize strips any path components so uploads cannot escape the store.
func sanitize(filename string) string {
	return filepath.Base(filepath.Clean(filename))
}

// LocalStore writes uploads into a directory on the local filesystem.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the upload directory if needed and returns a store
// writing into it.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &LocalStore{dir: dir}, nil
}

// Save stores data under the sanitized filename and returns the filename
// as the stored reference.
func (s *LocalStore) Save(filename string, data []byte) (string, error) {
	if !AllowedFile(filename) {
		return "", ErrDisallowedExtension
	}
	name := sanitize(filename)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write upload %s: %w", name, err)
	}
	return name, nil
}
