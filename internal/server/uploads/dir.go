package uploads

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/jbtolen/wastesort/internal/filex"
)

// DirStorage stores uploads on the local filesystem. Used when no S3
// endpoint is configured.
type DirStorage struct {
	dir string
}

func NewDirStorage(dir string) *DirStorage {
	return &DirStorage{dir: dir}
}

// Save writes the object under the configured directory and returns its
// relative path.
func (s *DirStorage) Save(ctx context.Context, r io.Reader, contentType string) (string, error) {
	key := GetRandomStorageKey()

	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if _, err := filex.EnsureParentDir(path); err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", err
	}

	return key, nil
}
