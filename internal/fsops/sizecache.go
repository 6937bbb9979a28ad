package fsops

import (
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// statTTL bounds how long a cached stat result is trusted before size falls
// back to the filesystem. Consulting the LRU first (instead of stat-then-
// check) means a cache hit really does skip the syscall, trading the old
// immediate mtime-based invalidation for eventual, TTL-bounded staleness.
const statTTL = 2 * time.Second

type statEntry struct {
	size     int64
	mtime    time.Time
	cachedAt time.Time
}

// sizeCache memoizes stat(2) results keyed by resolved path. A hit within
// statTTL of being cached returns straight from the LRU with no syscall; a
// miss or an expired entry falls through to a fresh stat, which also catches
// any rewrite that happened while the entry was live.
type sizeCache struct {
	lru  *lru.Cache[string, statEntry]
	stat func(string) (os.FileInfo, error)
}

func newSizeCache(size int) *sizeCache {
	if size <= 0 {
		size = 1024
	}
	c, err := lru.New[string, statEntry](size)
	if err != nil {
		// Only returned by golang-lru when size <= 0, which newSizeCache
		// already guards against.
		panic(err)
	}
	return &sizeCache{lru: c, stat: os.Stat}
}

func (c *sizeCache) size(path string) (int64, error) {
	if entry, ok := c.lru.Get(path); ok && time.Since(entry.cachedAt) < statTTL {
		return entry.size, nil
	}

	info, err := c.stat(path)
	if err != nil {
		return 0, err
	}

	entry := statEntry{size: info.Size(), mtime: info.ModTime(), cachedAt: time.Now()}
	c.lru.Add(path, entry)
	return entry.size, nil
}
