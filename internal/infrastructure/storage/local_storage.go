package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	docapp "github.com/atelier/backend/internal/application/document"
)

var _ docapp.ObjectStorage = (*LocalObjectStorage)(nil)

// LocalObjectStorage writes documents below a root directory. Keys start
// with "uploads/" and are served by the HTTP layer under the same path.
type LocalObjectStorage struct {
	root          string
	publicBaseURL string
}

// NewLocalObjectStorage creates the root directory if needed
func NewLocalObjectStorage(root, publicBaseURL string) (*LocalObjectStorage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &LocalObjectStorage{root: abs, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

// Root returns the absolute root directory
func (s *LocalObjectStorage) Root() string {
	return s.root
}

// path resolves key below root, rejecting traversal
func (s *LocalObjectStorage) path(key string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	p := filepath.Join(s.root, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.root, p)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("storage key %q escapes the storage root", key)
	}
	return p, nil
}

// Put writes body to a temporary file and renames it into place
func (s *LocalObjectStorage) Put(_ context.Context, key string, body io.ReadSeeker, _ int64, _ string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(tmp, body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to store file: %w", err)
	}
	return nil
}

// Delete removes the file; a missing file is not an error
func (s *LocalObjectStorage) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// URL returns a root-relative URL unless a public base is configured
func (s *LocalObjectStorage) URL(key string) string {
	return s.publicBaseURL + "/" + strings.TrimLeft(key, "/")
}
