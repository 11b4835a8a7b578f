package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes uploads to a directory on disk. It is the default
// image store; the HTTP server exposes the directory under /uploads/.
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocal(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir is the directory the store writes into.
func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	name := filepath.Base(key)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", err
	}
	if s.baseURL == "" {
		return "/uploads/" + name, nil
	}
	return s.baseURL + "/" + name, nil
}
