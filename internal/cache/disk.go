package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DiskCache keeps entries as JSON files so judgments survive between runs
type DiskCache struct {
	dir string
	ttl time.Duration
}

// NewDiskCache creates a new disk cache
func NewDiskCache(dir string, ttl time.Duration) *DiskCache {
	return &DiskCache{
		dir: dir,
		ttl: ttl,
	}
}

// Dir is the directory entries are stored in
func (c *DiskCache) Dir() string {
	return c.dir
}

type cacheEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

func readEntry(path string) (cacheEntry, error) {
	var entry cacheEntry
	data, err := os.ReadFile(path)
	if err != nil {
		return entry, err
	}
	err = json.Unmarshal(data, &entry)
	return entry, err
}

// Get returns a live entry. Expired entries are removed on read.
func (c *DiskCache) Get(key string) ([]byte, bool) {
	path := c.path(key)

	entry, err := readEntry(path)
	if err != nil {
		return nil, false
	}
	if time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false
	}
	return entry.Data, true
}

// Set stores a value in the disk cache
func (c *DiskCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}

	entry := cacheEntry{
		Data:      value,
		ExpiresAt: time.Now().Add(ttl),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	if err := os.MkdirAll(c.dir, 0o700); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	// Write then rename so concurrent readers never see a partial entry
	tmp, err := os.CreateTemp(c.dir, "entry-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path(key)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("commit cache file: %w", err)
	}

	return nil
}

// Delete removes a value from the disk cache
func (c *DiskCache) Delete(key string) error {
	err := os.Remove(c.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Clear removes all cached files
func (c *DiskCache) Clear() error {
	return os.RemoveAll(c.dir)
}

// DiskStats describes the entries in a cache directory
type DiskStats struct {
	Dir     string `json:"dir" yaml:"dir"`
	Entries int    `json:"entries" yaml:"entries"`
	Expired int    `json:"expired" yaml:"expired"`
	Bytes   int64  `json:"bytes" yaml:"bytes"`
}

// Stats counts live and expired entries. A missing directory is empty.
func (c *DiskCache) Stats() (DiskStats, error) {
	stats := DiskStats{Dir: c.dir}
	now := time.Now()

	err := c.walk(func(path string, info fs.FileInfo) {
		stats.Entries++
		stats.Bytes += info.Size()
		if entry, err := readEntry(path); err != nil || now.After(entry.ExpiresAt) {
			stats.Expired++
		}
	})
	return stats, err
}

// Prune deletes expired and unreadable entries and returns how many it removed
func (c *DiskCache) Prune() (int, error) {
	now := time.Now()
	removed := 0

	err := c.walk(func(path string, _ fs.FileInfo) {
		entry, err := readEntry(path)
		if err == nil && !now.After(entry.ExpiresAt) {
			return
		}
		if os.Remove(path) == nil {
			removed++
		}
	})
	return removed, err
}

func (c *DiskCache) walk(fn func(path string, info fs.FileInfo)) error {
	entries, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read cache dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		fn(filepath.Join(c.dir, e.Name()), info)
	}
	return nil
}

// path generates the file path for a cache key. Keys contain ':' which is
// not portable in file names.
func (c *DiskCache) path(key string) string {
	return filepath.Join(c.dir, strings.ReplaceAll(key, ":", "_")+".json")
}
