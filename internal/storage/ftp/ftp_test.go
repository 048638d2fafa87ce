package ftp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zinc-sig/ferry/internal/logging"
	"github.com/zinc-sig/ferry/internal/storage"
)

type fixture struct {
	srv    *fakeServer
	fs     billy.Filesystem
	engine *Engine
	logs   *bytes.Buffer
}

func newFixture(t *testing.T, mutate func(*Config)) *fixture {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Folder = "/uploads"
	cfg.URL = "http://cdn.example.com"
	if mutate != nil {
		mutate(&cfg)
	}

	up := storage.NewBasicUploader("/srv/app")
	up.Dir = ""
	fs := memfs.New()
	logs := &bytes.Buffer{}
	srv := newFakeServer()
	engine := New(cfg, storage.Deps{
		Uploader: up,
		FS:       fs,
		Logger:   logging.NewTextLogger(logs, slog.LevelDebug),
	}, WithDialer(srv.dial))
	return &fixture{srv: srv, fs: fs, engine: engine, logs: logs}
}

func (f *fixture) local(t *testing.T, name, data string, perm uint32) string {
	t.Helper()
	require.NoError(t, util.WriteFile(f.fs, name, []byte(data), osMode(perm)))
	return name
}

func (f *fixture) assertBalanced(t *testing.T) {
	t.Helper()
	f.srv.mu.Lock()
	defer f.srv.mu.Unlock()
	assert.Equal(t, f.srv.dials, f.srv.closes, "every connection is closed")
	assert.Equal(t, f.srv.dials, f.srv.quits, "every connection sends QUIT")
}

func TestStore_CreatesDirectoriesAndUploads(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()
	src := fx.local(t, "/tmp/upload.png", "png-bytes", 0o640)

	file, err := fx.engine.Store(ctx, "photos/123/avatar.png", src)
	require.NoError(t, err)

	data, ok := fx.srv.file("/uploads/photos/123/avatar.png")
	require.True(t, ok)
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, uint32(0o640), fx.srv.modes["/uploads/photos/123/avatar.png"])
	assert.Equal(t, []string{"SITE CHMOD 640 avatar.png"}, fx.srv.issued("SITE"))
	assert.Equal(t, []string{"STOR avatar.png"}, fx.srv.issued("STOR"))

	assert.Equal(t, "http://cdn.example.com/photos/123/avatar.png", file.URL())
	assert.Equal(t, "avatar.png", file.Filename())
	assert.Equal(t, "photos/123/avatar.png", file.Path())
	assert.Equal(t, "image/png", file.ContentType())
	fx.assertBalanced(t)
}

func TestStore_DirectoryCreationIsIdempotent(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()

	_, err := fx.engine.Store(ctx, "photos/123/a.png", fx.local(t, "/tmp/a.png", "a", 0o644))
	require.NoError(t, err)
	mkdirs := len(fx.srv.issued("MKD"))
	assert.Equal(t, 3, mkdirs)

	_, err = fx.engine.Store(ctx, "photos/123/b.png", fx.local(t, "/tmp/b.png", "b", 0o644))
	require.NoError(t, err)
	assert.Len(t, fx.srv.issued("MKD"), mkdirs, "existing directories are not recreated")
	fx.assertBalanced(t)
}

func TestStore_OverwritesExistingObject(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()

	_, err := fx.engine.Store(ctx, "doc.txt", fx.local(t, "/tmp/v1", "first", 0o644))
	require.NoError(t, err)
	_, err = fx.engine.Store(ctx, "doc.txt", fx.local(t, "/tmp/v2", "second!", 0o644))
	require.NoError(t, err)

	data, _ := fx.srv.file("/uploads/doc.txt")
	assert.Equal(t, "second!", string(data))

	file, err := fx.engine.Retrieve("doc.txt")
	require.NoError(t, err)
	size, ok, err := file.Size(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(7), size)
}

func TestStore_ChmodDisabled(t *testing.T) {
	fx := newFixture(t, func(c *Config) { c.Chmod = false })
	_, err := fx.engine.Store(context.Background(), "a.txt", fx.local(t, "/tmp/a", "a", 0o600))
	require.NoError(t, err)
	assert.Empty(t, fx.srv.issued("SITE"))
}

func TestStore_MissingLocalFile(t *testing.T) {
	fx := newFixture(t, nil)
	_, err := fx.engine.Store(context.Background(), "a.txt", "/tmp/nope")
	require.Error(t, err)

	var op *storage.OpError
	require.ErrorAs(t, err, &op)
	assert.Equal(t, "store", op.Op)
	assert.Zero(t, fx.srv.dials)
}

func TestStore_EmptyIdentifier(t *testing.T) {
	fx := newFixture(t, nil)
	_, err := fx.engine.Store(context.Background(), "", "/tmp/a")
	assert.ErrorIs(t, err, storage.ErrEmptyPath)
}

func TestStore_RootFolder(t *testing.T) {
	fx := newFixture(t, func(c *Config) { c.Folder = "/" })
	_, err := fx.engine.Store(context.Background(), "top.txt", fx.local(t, "/tmp/t", "t", 0o644))
	require.NoError(t, err)
	_, ok := fx.srv.file("/top.txt")
	assert.True(t, ok)
	assert.Empty(t, fx.srv.issued("MKD"))
}

func TestRetrieve_DoesNotConnect(t *testing.T) {
	fx := newFixture(t, nil)
	file, err := fx.engine.Retrieve("x/y.txt")
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.example.com/x/y.txt", file.URL())
	assert.Zero(t, fx.srv.dials)
}

func TestSizeAndExists(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()

	missing, err := fx.engine.Retrieve("nowhere/file.bin")
	require.NoError(t, err)
	_, ok, err := missing.Size(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "missing directory means absent")

	_, err = fx.engine.Store(ctx, "dir/file.bin", fx.local(t, "/tmp/f", "12345", 0o644))
	require.NoError(t, err)
	absent, err := fx.engine.Retrieve("dir/other.bin")
	require.NoError(t, err)
	exists, err := absent.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)

	present, err := fx.engine.Retrieve("dir/file.bin")
	require.NoError(t, err)
	exists, err = present.Exists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)
	fx.assertBalanced(t)
}

func TestSize_TransportFailurePropagates(t *testing.T) {
	for _, verb := range []string{"SIZE", "CWD"} {
		t.Run(verb, func(t *testing.T) {
			fx := newFixture(t, nil)
			fx.srv.broken = verb
			fx.srv.dirs["/uploads"] = true
			fx.srv.files["/uploads/a.bin"] = []byte("data")

			file, err := fx.engine.Retrieve("a.bin")
			require.NoError(t, err)
			size, ok, err := file.Size(context.Background())
			require.Error(t, err)
			assert.False(t, ok)
			assert.Zero(t, size)

			exists, err := file.Exists(context.Background())
			assert.Error(t, err)
			assert.False(t, exists)
			fx.assertBalanced(t)
		})
	}
}

func TestSize_MissingDirectoryIsAbsent(t *testing.T) {
	fx := newFixture(t, nil)

	file, err := fx.engine.Retrieve("nowhere/a.bin")
	require.NoError(t, err)
	_, ok, err := file.Size(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	fx.assertBalanced(t)
}

func TestReadAndLocalCopy(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()
	_, err := fx.engine.Store(ctx, "docs/readme.txt", fx.local(t, "/tmp/r", "hello ftp", 0o644))
	require.NoError(t, err)

	file, err := fx.engine.Retrieve("docs/readme.txt")
	require.NoError(t, err)

	data, err := file.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello ftp", string(data))

	tmp, err := file.LocalCopy(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tmp.Close() })
	got, err := io.ReadAll(tmp)
	require.NoError(t, err)
	assert.Equal(t, "hello ftp", string(got))
	fx.assertBalanced(t)
}

func TestLocalCopy_MissingObject(t *testing.T) {
	fx := newFixture(t, nil)
	fx.srv.dirs["/uploads"] = true
	file, err := fx.engine.Retrieve("gone.txt")
	require.NoError(t, err)

	_, err = file.LocalCopy(context.Background())
	var reply *ReplyError
	require.ErrorAs(t, err, &reply)
	assert.Equal(t, 550, reply.Code)
	assert.Equal(t, "RETR", reply.Command)
}

func TestDelete(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()
	_, err := fx.engine.Store(ctx, "tmp/x.txt", fx.local(t, "/tmp/x", "x", 0o644))
	require.NoError(t, err)

	file, err := fx.engine.Retrieve("tmp/x.txt")
	require.NoError(t, err)
	file.Delete(ctx)
	_, ok := fx.srv.file("/uploads/tmp/x.txt")
	assert.False(t, ok)

	file.Delete(ctx)
	assert.Contains(t, fx.logs.String(), "ftp delete failed")
	fx.assertBalanced(t)
}

func TestConnectErrorsPropagate(t *testing.T) {
	fx := newFixture(t, nil)
	fx.srv.dialErr = errors.New("530 Login incorrect")

	_, err := fx.engine.Store(context.Background(), "a.txt", fx.local(t, "/tmp/a", "a", 0o644))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "530 Login incorrect")
}

func TestCanceledContextDoesNotDial(t *testing.T) {
	fx := newFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	file, err := fx.engine.Retrieve("a.txt")
	require.NoError(t, err)
	_, _, err = file.Size(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, fx.srv.dials)
}

func TestFactoryAndCacheDelegation(t *testing.T) {
	up := storage.NewBasicUploader("/srv/app")
	eng, err := Factory(map[string]any{"host": "ftp.example.com", "timeout": "5s"}, storage.Deps{Uploader: up, FS: memfs.New()})
	require.NoError(t, err)
	assert.Equal(t, "ftp", eng.Name())
	assert.Equal(t, 5*time.Second, eng.(*Engine).Config().Timeout)
	assert.NoError(t, eng.CleanupOlderThan(time.Minute))
	assert.NoError(t, eng.DeleteDir("/nothing/here"))

	_, err = Factory(map[string]any{"port": 0}, storage.Deps{Uploader: up})
	assert.ErrorIs(t, err, storage.ErrInvalidConfig)
}
