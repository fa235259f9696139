package file

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Storage writes produced files under a base directory on the local
// filesystem. Variant paths returned to callers are real paths on disk.
type Storage struct {
	baseDir string
}

// NewStorage creates a Storage rooted at baseDir.
func NewStorage(baseDir string) *Storage {
	return &Storage{baseDir: baseDir}
}

// Save writes src into subdir (which may be nested, e.g. "cat/1024")
// under the base directory and returns the full destination path.
func (s *Storage) Save(subdir, filename string, src io.Reader) (string, error) {
	dir := filepath.Join(s.baseDir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	dstPath := filepath.Join(dir, filename)
	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", dstPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", dstPath, err)
	}

	return dstPath, nil
}

// Delete removes a previously saved file.
func (s *Storage) Delete(subdir, filename string) error {
	return os.Remove(filepath.Join(s.baseDir, subdir, filename))
}
