package fetcher

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Cache stores downloaded pages as <dir>/<slug>.html.
type Cache struct {
	dir string
}

// NewCache creates a Cache rooted at dir. The directory is created on the
// first Save.
func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Path returns the file path of airline's page.
func (c *Cache) Path(airline string) string {
	return filepath.Join(c.dir, Slug(airline)+".html")
}

// Open opens airline's saved page. It returns an error wrapping
// ErrDocumentNotFound when there is none.
func (c *Cache) Open(airline string) (io.ReadCloser, error) {
	path := c.Path(airline)
	f, err := os.Open(path) //nolint:gosec // path is derived from the configured data dir
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrDocumentNotFound)
		}
		return nil, err
	}
	return f, nil
}

// Save writes body as airline's page, replacing any previous file, and
// returns the file path.
func (c *Cache) Save(airline string, body []byte) (string, error) {
	if err := os.MkdirAll(c.dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	path := c.Path(airline)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
