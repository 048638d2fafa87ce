package minio

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/minio/minio-go/v7"

	"github.com/zinc-sig/ferry/internal/storage"
)

type File struct {
	storage.Object
	engine *Engine
}

var _ storage.File = (*File)(nil)

// Key is the object name inside the bucket.
func (f *File) Key() string {
	return strings.TrimPrefix(f.RemotePath(), "/")
}

// Store uploads localPath. Unless a content type was assigned, it is
// detected from the file's leading bytes.
func (f *File) Store(ctx context.Context, localPath string) error {
	if err := f.engine.ensureBucket(ctx); err != nil {
		return storage.NewOpError("minio", "store", f.Key(), err)
	}
	src, info, err := storage.OpenLocal(f.engine.FS(), localPath)
	if err != nil {
		return storage.NewOpError("minio", "store", f.Key(), err)
	}
	defer src.Close()

	contentType := f.ContentType()
	if contentType == "" || contentType == "application/octet-stream" {
		mt, err := mimetype.DetectReader(src)
		if err != nil {
			return storage.NewOpError("minio", "store", f.Key(), err)
		}
		contentType = mt.String()
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			return storage.NewOpError("minio", "store", f.Key(), err)
		}
	}
	f.SetContentType(contentType)

	f.engine.log.Debug(ctx, "minio put", "bucket", f.engine.cfg.Bucket, "key", f.Key(), "content_type", contentType)
	_, err = f.engine.client.PutObject(ctx, f.engine.cfg.Bucket, f.Key(), src, info.Size(),
		minio.PutObjectOptions{ContentType: contentType})
	return storage.NewOpError("minio", "store", f.Key(), err)
}

// Size reports missing or forbidden objects as absent.
func (f *File) Size(ctx context.Context) (int64, bool, error) {
	if err := f.engine.ensureBucket(ctx); err != nil {
		return 0, false, storage.NewOpError("minio", "size", f.Key(), err)
	}
	info, err := f.engine.client.StatObject(ctx, f.engine.cfg.Bucket, f.Key(), minio.StatObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden ||
			resp.Code == "NoSuchKey" {
			return 0, false, nil
		}
		return 0, false, storage.NewOpError("minio", "size", f.Key(), err)
	}
	return info.Size, true, nil
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
		if err := f.engine.ensureBucket(ctx); err != nil {
			return err
		}
		obj, err := f.engine.client.GetObject(ctx, f.engine.cfg.Bucket, f.Key(), minio.GetObjectOptions{})
		if err != nil {
			return err
		}
		defer obj.Close()
		_, err = io.Copy(w, obj)
		return err
	})
	if err != nil {
		return nil, storage.NewOpError("minio", "retrieve", f.Key(), err)
	}
	return tmp, nil
}

func (f *File) Delete(ctx context.Context) {
	err := f.engine.ensureBucket(ctx)
	if err == nil {
		err = f.engine.client.RemoveObject(ctx, f.engine.cfg.Bucket, f.Key(), minio.RemoveObjectOptions{})
	}
	if err != nil {
		f.engine.log.Warn(ctx, "minio delete failed", "key", f.Key(), "error", err)
	}
}
