package ftp

import (
	"context"
	"errors"
	"io"
	"os"
	"path"

	"github.com/zinc-sig/ferry/internal/storage"
)

// File is a handle on one object on the FTP server.
type File struct {
	storage.Object
	engine *Engine
}

var _ storage.File = (*File)(nil)

// Store uploads localPath, creating the remote directory chain first.
func (f *File) Store(ctx context.Context, localPath string) error {
	src, info, err := storage.OpenLocal(f.engine.FS(), localPath)
	if err != nil {
		return storage.NewOpError("ftp", "store", f.RemotePath(), err)
	}
	defer src.Close()

	name := path.Base(f.RemotePath())
	err = f.engine.withConnection(ctx, func(s *session) error {
		f.engine.log.Debug(ctx, "ftp mkdir", "dir", f.RemoteDir())
		if err := s.mkdirAll(f.RemoteDir()); err != nil {
			return err
		}
		f.engine.log.Debug(ctx, "ftp put", "path", f.RemotePath())
		if err := s.put(name, src); err != nil {
			return err
		}
		if !f.engine.cfg.Chmod {
			return nil
		}
		return s.chmod(uint32(info.Mode().Perm()), name)
	})
	return storage.NewOpError("ftp", "store", f.RemotePath(), err)
}

func (f *File) Size(ctx context.Context) (int64, bool, error) {
	var (
		size int64
		ok   bool
	)
	err := f.engine.withConnection(ctx, func(s *session) error {
		if err := s.chdir(f.RemoteDir()); err != nil {
			// a refused CWD means the directory, and so the object, is absent
			var reply *ReplyError
			if errors.As(err, &reply) {
				return nil
			}
			return err
		}
		var err error
		size, ok, err = s.size(path.Base(f.RemotePath()))
		return err
	})
	if err != nil {
		return 0, false, storage.NewOpError("ftp", "size", f.RemotePath(), err)
	}
	return size, ok, nil
}

func (f *File) Exists(ctx context.Context) (bool, error) {
	_, ok, err := f.Size(ctx)
	return ok, err
}

func (f *File) Read(ctx context.Context) ([]byte, error) {
	return storage.ReadAll(ctx, f)
}

// LocalCopy downloads the object with RETR.
func (f *File) LocalCopy(ctx context.Context) (*os.File, error) {
	tmp, err := storage.DownloadTo(func(w io.Writer) error {
		return f.engine.withConnection(ctx, func(s *session) error {
			f.engine.log.Debug(ctx, "ftp get", "path", f.RemotePath())
			if err := s.chdir(f.RemoteDir()); err != nil {
				return err
			}
			return s.get(path.Base(f.RemotePath()), w)
		})
	})
	if err != nil {
		return nil, storage.NewOpError("ftp", "retrieve", f.RemotePath(), err)
	}
	return tmp, nil
}

// Delete removes the object. A missing object or a refused DELE is only
// logged.
func (f *File) Delete(ctx context.Context) {
	err := f.engine.withConnection(ctx, func(s *session) error {
		return s.delete(f.RemotePath())
	})
	if err != nil {
		f.engine.log.Warn(ctx, "ftp delete failed", "path", f.RemotePath(), "error", err)
	}
}
