// Package engines wires the built-in storage backends into a registry.
package engines

import (
	"github.com/zinc-sig/ferry/internal/storage"
	"github.com/zinc-sig/ferry/internal/storage/ftp"
	"github.com/zinc-sig/ferry/internal/storage/minio"
	"github.com/zinc-sig/ferry/internal/storage/sftp"
)

// Default returns a registry with ftp, sftp and minio.
func Default() *storage.Registry {
	r := storage.NewRegistry()
	r.Register(ftp.Name, ftp.Factory)
	r.Register(sftp.Name, sftp.Factory)
	r.Register(minio.Name, minio.Factory)
	return r
}
