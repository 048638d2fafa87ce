package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/zinc-sig/ferry/internal/logging"
)

// Cache manages the local cache directory of one engine instance.
type Cache struct {
	uploader Uploader
	fs       billy.Filesystem
	log      logging.Logger
	now      func() time.Time

	mu     sync.Mutex
	purged bool
}

// NewCache returns a cache over fs. A nil fs means the host filesystem and
// a nil log discards output.
func NewCache(up Uploader, fs billy.Filesystem, log logging.Logger) *Cache {
	if fs == nil {
		fs = DefaultFS()
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Cache{uploader: up, fs: fs, log: log, now: time.Now}
}

// DefaultFS is the host filesystem addressed by absolute paths.
func DefaultFS() billy.Filesystem {
	return hostFS{osfs.New("/")}
}

type hostFS struct {
	billy.Filesystem
}

func (h hostFS) Chmod(name string, mode os.FileMode) error {
	return os.Chmod(name, mode)
}

// FS exposes the filesystem local files are read from.
func (c *Cache) FS() billy.Filesystem { return c.fs }

// Uploader returns the collaborator the cache was built with.
func (c *Cache) Uploader() Uploader { return c.uploader }

// CacheToLocal moves localPath to the cache location of identifier. When
// the filesystem runs out of links or space the first time, entries older
// than DefaultCacheTTL are purged and the move is retried once.
func (c *Cache) CacheToLocal(localPath, identifier string) (string, error) {
	dest := c.resolve(c.uploader.CachePath(identifier))
	src := absolute(localPath)

	err := c.move(src, dest)
	if err == nil {
		return dest, nil
	}
	if !exhausted(err) || !c.claimPurge() {
		return "", fmt.Errorf("cache %s: %w", identifier, err)
	}

	c.log.Warn(context.Background(), "cache exhausted, purging old entries",
		"cache_dir", c.resolve(c.uploader.CacheDir()), "error", err)
	if cerr := c.CleanupOlderThan(DefaultCacheTTL); cerr != nil {
		c.log.Warn(context.Background(), "cache purge failed", "error", cerr)
	}
	if err := c.move(src, dest); err != nil {
		return "", fmt.Errorf("cache %s after purge: %w", identifier, err)
	}
	return dest, nil
}

// claimPurge reports whether this call is the first to purge.
func (c *Cache) claimPurge() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.purged {
		return false
	}
	c.purged = true
	return true
}

func (c *Cache) move(src, dest string) error {
	if err := c.fs.MkdirAll(filepath.Dir(dest), c.uploader.DirectoryPermissions()); err != nil {
		return err
	}
	if err := c.fs.Rename(src, dest); err != nil {
		if !errors.Is(err, syscall.EXDEV) {
			return err
		}
		if err := c.copyFile(src, dest); err != nil {
			return err
		}
		_ = c.fs.Remove(src)
	}
	if ch, ok := c.fs.(billy.Change); ok {
		return ch.Chmod(dest, c.uploader.Permissions())
	}
	return nil
}

func (c *Cache) copyFile(src, dest string) error {
	in, err := c.fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := c.fs.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, c.uploader.Permissions())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// CleanupOlderThan removes entries directly under the cache dir whose name
// starts with a Unix timestamp older than maxAge. Removal failures are
// ignored since other processes may be cleaning the same directory.
func (c *Cache) CleanupOlderThan(maxAge time.Duration) error {
	dir := c.resolve(c.uploader.CacheDir())
	entries, err := c.fs.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache dir %s: %w", dir, err)
	}

	cutoff := c.now().Add(-maxAge)
	for _, entry := range entries {
		created, ok := CacheTimestamp(entry.Name())
		if !ok || !created.Before(cutoff) {
			continue
		}
		target := filepath.Join(dir, entry.Name())
		if err := util.RemoveAll(c.fs, target); err != nil {
			c.log.Debug(context.Background(), "cache entry not removed", "path", target, "error", err)
		}
	}
	return nil
}

// DeleteDir removes dir when it is an empty directory.
func (c *Cache) DeleteDir(dir string) error {
	dir = absolute(dir)
	info, err := c.fs.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return nil
	}

	err = c.fs.Remove(dir)
	if err == nil || ignorableRemove(err) {
		return nil
	}
	// Some filesystems report a non-empty directory without a specific errno.
	if entries, rerr := c.fs.ReadDir(dir); rerr == nil && len(entries) > 0 {
		return nil
	}
	return err
}

func ignorableRemove(err error) bool {
	return errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, syscall.ENOTEMPTY) ||
		errors.Is(err, syscall.EEXIST) ||
		errors.Is(err, syscall.ENOTDIR)
}

func exhausted(err error) bool {
	return errors.Is(err, syscall.EMLINK) || errors.Is(err, syscall.ENOSPC)
}

func (c *Cache) resolve(rel string) string {
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	return absolute(filepath.Join(c.uploader.Root(), rel))
}

func absolute(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// OpenLocal opens a local source file through fs and returns its info.
func OpenLocal(fs billy.Filesystem, localPath string) (billy.File, os.FileInfo, error) {
	name := absolute(localPath)
	info, err := fs.Stat(name)
	if err != nil {
		return nil, nil, err
	}
	f, err := fs.Open(name)
	if err != nil {
		return nil, nil, err
	}
	return f, info, nil
}
