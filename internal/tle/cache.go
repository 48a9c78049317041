package tle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Cache stores one element-set file per satellite name on disk.
type Cache struct {
	dir string
}

// NewCache creates a Cache rooted at dir.
func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

// Path returns the cache file for a satellite name.
func (c *Cache) Path(name string) string {
	return filepath.Join(c.dir, sanitize(name)+".txt")
}

// Write replaces the cached data for name.
func (c *Cache) Write(name string, data []byte) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}

	path := c.Path(name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing cache file: %w", err)
	}
	return nil
}

// Load returns the cached data for name and the file's modification time.
// A missing file is reported with an error satisfying os.IsNotExist.
func (c *Cache) Load(name string) ([]byte, time.Time, error) {
	path := c.Path(name)
	info, err := os.Stat(path)
	if err != nil {
		return nil, time.Time{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("reading cache file: %w", err)
	}
	return data, info.ModTime(), nil
}

// sanitize maps a satellite name to a safe file name.
func sanitize(name string) string {
	name = strings.TrimSpace(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
