package sftp

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/pkg/sftp"

	"github.com/zinc-sig/ferry/internal/storage"
)

// File is a handle on one object on the SFTP server.
type File struct {
	storage.Object
	engine *Engine
}

var _ storage.File = (*File)(nil)

func (f *File) Store(ctx context.Context, localPath string) error {
	src, _, err := storage.OpenLocal(f.engine.FS(), localPath)
	if err != nil {
		return storage.NewOpError("sftp", "store", f.RemotePath(), err)
	}
	defer src.Close()

	err = f.engine.withConnection(ctx, func(c *sftp.Client) error {
		f.engine.log.Debug(ctx, "sftp mkdir", "dir", f.RemoteDir())
		if err := c.MkdirAll(f.RemoteDir()); err != nil {
			return err
		}
		dst, err := c.Create(f.RemotePath())
		if err != nil {
			return err
		}
		f.engine.log.Debug(ctx, "sftp put", "path", f.RemotePath())
		if _, err := io.Copy(dst, src); err != nil {
			_ = dst.Close()
			return err
		}
		return dst.Close()
	})
	return storage.NewOpError("sftp", "store", f.RemotePath(), err)
}

// Size treats not-found, permission and other status replies as absent.
func (f *File) Size(ctx context.Context) (int64, bool, error) {
	var (
		size int64
		ok   bool
	)
	err := f.engine.withConnection(ctx, func(c *sftp.Client) error {
		info, err := c.Stat(f.RemotePath())
		if err != nil {
			if absent(err) {
				return nil
			}
			return err
		}
		size, ok = info.Size(), true
		return nil
	})
	if err != nil {
		return 0, false, storage.NewOpError("sftp", "size", f.RemotePath(), err)
	}
	return size, ok, nil
}

func absent(err error) bool {
	var status *sftp.StatusError
	return errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) || errors.As(err, &status)
}

func (f *File) Exists(ctx context.Context) (bool, error) {
	_, ok, err := f.Size(ctx)
	return ok, err
}

func (f *File) Read(ctx context.Context) ([]byte, error) {
	return storage.ReadAll(ctx, f)
}

func (f *File) LocalCopy(ctx context.Context) (*os.File, error) {
	tmp, err := storage.DownloadTo(func(w io.Writer) error {
		return f.engine.withConnection(ctx, func(c *sftp.Client) error {
			f.engine.log.Debug(ctx, "sftp get", "path", f.RemotePath())
			src, err := c.Open(f.RemotePath())
			if err != nil {
				return err
			}
			defer src.Close()
			_, err = io.Copy(w, src)
			return err
		})
	})
	if err != nil {
		return nil, storage.NewOpError("sftp", "retrieve", f.RemotePath(), err)
	}
	return tmp, nil
}

func (f *File) Delete(ctx context.Context) {
	err := f.engine.withConnection(ctx, func(c *sftp.Client) error {
		return c.Remove(f.RemotePath())
	})
	if err != nil {
		f.engine.log.Warn(ctx, "sftp delete failed", "path", f.RemotePath(), "error", err)
	}
}
