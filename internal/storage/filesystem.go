package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileSystem stores assets below a root directory served at baseURL
type FileSystem struct {
	root    string
	baseURL string
}

// NewFileSystem creates the root directory if needed
func NewFileSystem(root, baseURL string) (*FileSystem, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media root %s: %w", root, err)
	}
	return &FileSystem{root: root, baseURL: baseURL}, nil
}

// Root returns the directory assets are written to
func (fs *FileSystem) Root() string {
	return fs.root
}

func (fs *FileSystem) Save(ctx context.Context, key string, data []byte, contentType string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	fullPath := filepath.Join(fs.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	return nil
}

func (fs *FileSystem) Delete(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(fs.root, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (fs *FileSystem) URL(key string) string {
	return joinURL(fs.baseURL, key)
}
