package storage

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path"
	"regexp"
	"strconv"
	"sync/atomic"
	"time"
)

// Uploader supplies the naming policy and local layout of the upload
// pipeline. Engines only read from it.
type Uploader interface {
	// StorePath returns the remote object path for identifier, relative to
	// the engine's remote folder.
	StorePath(identifier string) string

	// CachePath returns the cache location for identifier, relative to Root.
	CachePath(identifier string) string

	// CacheDir is the cache root, relative to Root.
	CacheDir() string

	// Root is the local base path.
	Root() string

	Permissions() os.FileMode
	DirectoryPermissions() os.FileMode
}

// BasicUploader stores objects under Dir and caches them under
// Cache/<CacheID>/.
type BasicUploader struct {
	Dir      string
	Cache    string
	BasePath string
	FileMode os.FileMode
	DirMode  os.FileMode
	CacheID  string
}

// NewBasicUploader returns an uploader rooted at root with a fresh cache id.
func NewBasicUploader(root string) *BasicUploader {
	return &BasicUploader{
		Dir:      "uploads",
		Cache:    "uploads/tmp",
		BasePath: root,
		FileMode: 0o644,
		DirMode:  0o755,
		CacheID:  NewCacheID(),
	}
}

func (u *BasicUploader) StorePath(identifier string) string {
	return path.Join(u.Dir, identifier)
}

func (u *BasicUploader) CachePath(identifier string) string {
	return path.Join(u.Cache, u.CacheID, identifier)
}

func (u *BasicUploader) CacheDir() string                  { return u.Cache }
func (u *BasicUploader) Root() string                      { return u.BasePath }
func (u *BasicUploader) Permissions() os.FileMode          { return u.FileMode }
func (u *BasicUploader) DirectoryPermissions() os.FileMode { return u.DirMode }

var cacheCounter atomic.Uint32

// NewCacheID returns "<unix>-<pid>-<counter>-<random>". The leading
// timestamp is what CleanupOlderThan reads back.
func NewCacheID() string {
	n := cacheCounter.Add(1) % 10000
	return fmt.Sprintf("%d-%d-%04d-%04d", time.Now().Unix(), os.Getpid(), n, rand.IntN(10000))
}

var leadingDigits = regexp.MustCompile(`^\d+`)

// CacheTimestamp extracts the creation time encoded at the start of a
// cache entry name.
func CacheTimestamp(name string) (time.Time, bool) {
	digits := leadingDigits.FindString(name)
	if digits == "" {
		return time.Time{}, false
	}
	secs, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(secs, 0), true
}
