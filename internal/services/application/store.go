// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package application

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrFileTooLarge is returned when an upload exceeds the configured limit.
var ErrFileTooLarge = errors.New("file too large")

// FileStore keeps resumes on the local disk under uuid file names.
type FileStore struct {
	dir     string
	maxSize int64
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string, maxSize int64) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &FileStore{dir: dir, maxSize: maxSize}, nil
}

// Save writes r to a new file with extension ext and returns its name and size.
// Partial files are removed on error.
func (s *FileStore) Save(r io.Reader, ext string) (string, int64, error) {
	name := uuid.NewString() + strings.ToLower(ext)
	f, err := os.OpenFile(s.path(name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create file: %w", err)
	}

	n, err := io.Copy(f, io.LimitReader(r, s.maxSize+1))
	closeErr := f.Close()
	switch {
	case err != nil:
		err = fmt.Errorf("failed to write file: %w", err)
	case n > s.maxSize:
		err = ErrFileTooLarge
	case closeErr != nil:
		err = fmt.Errorf("failed to write file: %w", closeErr)
	}
	if err != nil {
		_ = os.Remove(s.path(name))
		return "", 0, err
	}
	return name, n, nil
}

// Path returns the location of a stored file.
func (s *FileStore) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	return s.path(name), nil
}

// Remove deletes a stored file.
func (s *FileStore) Remove(name string) error {
	p, err := s.Path(name)
	if err != nil {
		return err
	}
	return os.Remove(p)
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name)
}
