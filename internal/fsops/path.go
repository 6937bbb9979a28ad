// Package fsops resolves client-supplied filenames against the server's
// published directory, lists its regular files, and caches file sizes.
package fsops

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsafePath is returned when a client-supplied filename contains a
// path-traversal sequence or a directory separator.
var ErrUnsafePath = errors.New("fsops: filename contains '..' or '/'")

// Resolve joins directory and filename, rejecting any filename that could
// escape the directory. No symlink resolution or canonicalization is
// performed or required.
func Resolve(directory, filename string) (string, error) {
	if strings.Contains(filename, "..") || strings.ContainsRune(filename, '/') {
		return "", ErrUnsafePath
	}
	return filepath.Join(directory, filename), nil
}

// Root is a published directory, bound once at server startup.
type Root struct {
	dir   string
	cache *sizeCache
}

// NewRoot constructs a Root serving files out of dir, with a bounded LRU
// cache of recent size lookups.
func NewRoot(dir string, cacheSize int) *Root {
	return &Root{dir: dir, cache: newSizeCache(cacheSize)}
}

// Dir returns the directory this root serves.
func (r *Root) Dir() string {
	return r.dir
}

// Resolve validates and joins filename against this root's directory.
func (r *Root) Resolve(filename string) (string, error) {
	return Resolve(r.dir, filename)
}

// List returns the names of regular files directly in the root directory,
// in directory-enumeration order (no sort).
func (r *Root) List() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Size returns filename's size in bytes, served from the cache when the
// entry was stat'ed less than statTTL ago.
func (r *Root) Size(filename string) (int64, error) {
	path, err := r.Resolve(filename)
	if err != nil {
		return 0, err
	}
	return r.cache.size(path)
}
