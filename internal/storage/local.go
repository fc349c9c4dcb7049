package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps files under Root and serves them from BaseURL.
type LocalStore struct {
	Root    string
	BaseURL string
}

func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media root: %w", err)
	}
	return &LocalStore{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStore) Save(_ context.Context, dir string, img *Image) (string, error) {
	key := objectKey(dir, img)
	target := filepath.Join(s.Root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media dir: %w", err)
	}
	if err := os.WriteFile(target, img.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return s.BaseURL + "/" + key, nil
}

// Delete ignores URLs this store did not produce and files already gone.
func (s *LocalStore) Delete(_ context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.BaseURL+"/")
	if !ok || key == "" || strings.Contains(key, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.Root, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove image: %w", err)
	}
	return nil
}
