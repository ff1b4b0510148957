package extract

import (
	"os"

	"github.com/maypok86/otter"
)

// DefaultFileCacheCapacity bounds the number of cached source files.
const DefaultFileCacheCapacity = 4096

// fileCache caches source file contents across the recursive scans. The
// decorator scanner and parameter extractor revisit the same files once per
// plugin, so one extraction over a package with many plugins reads each
// file once instead of per plugin.
type fileCache struct {
	cache otter.Cache[string, []byte]
}

func newFileCache(capacity int) (*fileCache, error) {
	if capacity <= 0 {
		capacity = DefaultFileCacheCapacity
	}
	cache, err := otter.MustBuilder[string, []byte](capacity).Build()
	if err != nil {
		return nil, err
	}
	return &fileCache{cache: cache}, nil
}

// read returns the file's contents, from cache when possible.
func (c *fileCache) read(path string) ([]byte, error) {
	if data, ok := c.cache.Get(path); ok {
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c.cache.Set(path, data)
	return data, nil
}

func (c *fileCache) close() {
	c.cache.Close()
}
