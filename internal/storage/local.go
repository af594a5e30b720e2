package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps blobs on the local filesystem as dir/bucket/key.
// It is used when no S3 bucket is configured; the API serves the files itself.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore creates dir if needed and returns a store rooted there
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStore) filePath(bucket, key string) (string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if _, err := cleanKey(bucket); err != nil || strings.Contains(bucket, "/") {
		return "", fmt.Errorf("invalid bucket %q", bucket)
	}
	return filepath.Join(s.dir, bucket, filepath.FromSlash(k)), nil
}

// Upload writes data under bucket/key, replacing any existing file
func (s *LocalStore) Upload(_ context.Context, bucket, key string, data []byte, _ string) error {
	p, err := s.filePath(bucket, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create bucket dir: %w", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	return nil
}

// PublicURL returns the URL the file is served from
func (s *LocalStore) PublicURL(bucket, key string) string {
	k, err := cleanKey(key)
	if err != nil {
		return ""
	}
	return s.baseURL + "/" + bucket + "/" + k
}

// Remove deletes the given keys. Missing files are not an error.
func (s *LocalStore) Remove(_ context.Context, bucket string, keys ...string) error {
	var errs []error
	for _, key := range keys {
		p, err := s.filePath(bucket, key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Handler serves the stored files read-only
func (s *LocalStore) Handler() http.Handler {
	return http.FileServer(http.Dir(s.dir))
}
