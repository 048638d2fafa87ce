package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path"
	"strings"
)

// RemotePath joins the configured remote folder with a relative object
// path. The result uses forward slashes and cannot climb above folder.
// An empty folder yields an absolute path.
func RemotePath(folder, rel string) (string, error) {
	clean, err := cleanRelative(rel)
	if err != nil {
		return "", err
	}
	folder = strings.TrimRight(strings.ReplaceAll(folder, `\`, "/"), "/")
	return path.Clean(folder + "/" + clean), nil
}

func cleanRelative(rel string) (string, error) {
	clean := strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(rel, `\`, "/")), "/")
	if clean == "" {
		return "", ErrEmptyPath
	}
	return clean, nil
}

// JoinURL appends the escaped segments of rel to base.
func JoinURL(base, rel string) string {
	segments := strings.Split(strings.TrimLeft(rel, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}

// FilenameFromURL returns the unescaped last path segment of rawURL.
func FilenameFromURL(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	return path.Base(p)
}

// ContentTypeFor infers a content type from the extension of name. It
// returns "" for unknown extensions.
func ContentTypeFor(name string) string {
	return mime.TypeByExtension(path.Ext(name))
}

// Object holds the path state shared by every backend's file handle.
type Object struct {
	rel         string
	remote      string
	baseURL     string
	contentType string
}

// NewObject builds the remote location of rel under folder.
func NewObject(folder, rel, baseURL string) (Object, error) {
	clean, err := cleanRelative(rel)
	if err != nil {
		return Object{}, err
	}
	remote, err := RemotePath(folder, clean)
	if err != nil {
		return Object{}, err
	}
	return Object{rel: clean, remote: remote, baseURL: baseURL}, nil
}

func (o *Object) Path() string { return o.rel }

// RemotePath is the full path on the server.
func (o *Object) RemotePath() string { return o.remote }

// RemoteDir is the directory that must exist before a transfer.
func (o *Object) RemoteDir() string { return path.Dir(o.remote) }

func (o *Object) Filename() string { return path.Base(o.rel) }

func (o *Object) URL() string { return JoinURL(o.baseURL, o.rel) }

func (o *Object) ContentType() string {
	if o.contentType != "" {
		return o.contentType
	}
	return ContentTypeFor(o.rel)
}

func (o *Object) SetContentType(contentType string) { o.contentType = contentType }

// LocalCopier is the part of File that ReadAll needs.
type LocalCopier interface {
	LocalCopy(ctx context.Context) (*os.File, error)
}

// ReadAll reads a local copy of the object and removes the temp file.
func ReadAll(ctx context.Context, c LocalCopier) ([]byte, error) {
	f, err := c.LocalCopy(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
		_ = os.Remove(f.Name())
	}()
	return io.ReadAll(f)
}

// DownloadTo runs fetch against a new temp file and rewinds it. The temp
// file is removed if fetch fails.
func DownloadTo(fetch func(w io.Writer) error) (*os.File, error) {
	tmp, err := os.CreateTemp("", "ferry-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	discard := func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}
	if err := fetch(tmp); err != nil {
		discard()
		return nil, err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		discard()
		return nil, fmt.Errorf("rewind temp file: %w", err)
	}
	return tmp, nil
}
