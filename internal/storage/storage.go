// Package storage defines the engine contract shared by the remote storage
// backends (FTP, SFTP, MinIO) and the pieces they have in common: the
// uploader collaborator, remote path and URL construction, the local cache
// and the engine registry.
//
// An Engine is the facade the upload pipeline talks to. A File is an
// ephemeral handle on one remote object; every network operation on a File
// opens its own connection and closes it before returning.
package storage

import (
	"context"
	"os"
	"time"
)

// DefaultCacheTTL is the age past which cache entries are purged when a
// cache write runs out of links or disk space.
const DefaultCacheTTL = 600 * time.Second

// Engine is a storage facade for one backend.
type Engine interface {
	// Name returns the short registry name, e.g. "ftp".
	Name() string

	// Store uploads the local file at the uploader's store path for
	// identifier and returns the handle.
	Store(ctx context.Context, identifier, localPath string) (File, error)

	// Retrieve returns a handle at the uploader's store path for identifier
	// without touching the network.
	Retrieve(identifier string) (File, error)

	// CacheToLocal moves localPath into the cache and returns the new path.
	CacheToLocal(localPath, identifier string) (string, error)

	// CleanupOlderThan removes cache entries whose embedded timestamp is
	// older than maxAge.
	CleanupOlderThan(maxAge time.Duration) error

	// DeleteDir removes an empty local directory. Missing, non-directory
	// and non-empty targets are ignored.
	DeleteDir(dir string) error
}

// File is a handle on a single remote object.
type File interface {
	// Path is the object path relative to the remote folder.
	Path() string

	// URL is the public base URL joined with Path.
	URL() string

	// Filename is the last segment of Path.
	Filename() string

	// ContentType returns the assigned content type, or one inferred from
	// the extension.
	ContentType() string
	SetContentType(contentType string)

	// Store uploads localPath to this object, overwriting it.
	Store(ctx context.Context, localPath string) error

	// Size reports the object length. ok is false when the object cannot
	// be statted; err is only set for connection failures.
	Size(ctx context.Context) (size int64, ok bool, err error)

	// Exists reports whether Size finds the object.
	Exists(ctx context.Context) (bool, error)

	// Read returns the whole object.
	Read(ctx context.Context) ([]byte, error)

	// LocalCopy downloads the object into a new temporary file positioned
	// at offset 0. The caller owns the file.
	LocalCopy(ctx context.Context) (*os.File, error)

	// Delete removes the object. Failures are logged, never returned.
	Delete(ctx context.Context)
}
