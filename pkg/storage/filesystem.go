package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Bucket names used by the application.
const (
	BucketHomework  = "homework"
	BucketSchedules = "schedules"
)

// LocalStorage persists uploaded attachments on disk under a base directory,
// one subdirectory per bucket.
type LocalStorage struct {
	baseDir       string
	publicBaseURL string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir, publicBaseURL string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

// Upload writes the given bytes under bucket/name, overwriting any existing
// file at that path.
func (s *LocalStorage) Upload(bucket, name string, data []byte) (string, error) {
	rel, err := s.relPath(bucket, name)
	if err != nil {
		return "", err
	}
	abs := filepath.Join(s.baseDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("prepare bucket directory: %w", err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return "", fmt.Errorf("write attachment: %w", err)
	}
	return rel, nil
}

// UploadStream copies from reader into the target path.
func (s *LocalStorage) UploadStream(bucket, name string, r io.Reader) (string, error) {
	rel, err := s.relPath(bucket, name)
	if err != nil {
		return "", err
	}
	abs := filepath.Join(s.baseDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("prepare bucket directory: %w", err)
	}
	file, err := os.Create(abs)
	if err != nil {
		return "", fmt.Errorf("create attachment: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return "", fmt.Errorf("write attachment stream: %w", err)
	}
	return rel, nil
}

// PublicURL returns the URL path clients use to fetch a stored object.
func (s *LocalStorage) PublicURL(rel string) string {
	return s.publicBaseURL + "/" + strings.TrimLeft(rel, "/")
}

// Open returns a read-only handle for the stored file.
func (s *LocalStorage) Open(rel string) (*os.File, error) {
	file, err := os.Open(filepath.Join(s.baseDir, filepath.FromSlash(rel)))
	if err != nil {
		return nil, fmt.Errorf("open attachment: %w", err)
	}
	return file, nil
}

// Remove deletes stored objects, ignoring objects that are already gone.
func (s *LocalStorage) Remove(rels ...string) error {
	for _, rel := range rels {
		abs := filepath.Join(s.baseDir, filepath.FromSlash(rel))
		if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove attachment: %w", err)
		}
	}
	return nil
}

func (s *LocalStorage) relPath(bucket, name string) (string, error) {
	if bucket == "" || name == "" {
		return "", fmt.Errorf("bucket and name required")
	}
	cleaned := path.Clean("/" + name)
	if strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid object name")
	}
	return bucket + cleaned, nil
}
