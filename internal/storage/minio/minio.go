// Package minio stores uploads in an S3 compatible bucket.
package minio

import (
	"context"
	"fmt"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/zinc-sig/ferry/internal/logging"
	"github.com/zinc-sig/ferry/internal/storage"
)

const Name = "minio"

type Engine struct {
	*storage.Cache

	cfg    Config
	client *minio.Client
	up     storage.Uploader
	log    logging.Logger

	bucketMu sync.Mutex
	bucketOK bool
}

var _ storage.Engine = (*Engine)(nil)

// NewClient creates the MinIO client for cfg.
func NewClient(cfg Config) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: failed to create client: %w", err)
	}
	return client, nil
}

func New(cfg Config, client *minio.Client, deps storage.Deps) *Engine {
	log := deps.Logger
	if log == nil {
		log = logging.Nop()
	}
	log = log.With("engine", Name)
	return &Engine{
		Cache:  storage.NewCache(deps.Uploader, deps.FS, log),
		cfg:    cfg,
		client: client,
		up:     deps.Uploader,
		log:    log,
	}
}

// Factory builds the engine without touching the network. The bucket is
// checked by the first remote operation.
func Factory(config map[string]any, deps storage.Deps) (storage.Engine, error) {
	cfg, err := ConfigFromMap(config)
	if err != nil {
		return nil, err
	}
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return New(cfg, client, deps), nil
}

func (e *Engine) CheckBucket(ctx context.Context) error {
	exists, err := e.client.BucketExists(ctx, e.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("minio: failed to check bucket existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("minio: bucket %s does not exist", e.cfg.Bucket)
	}
	return nil
}

// ensureBucket runs CheckBucket until it succeeds once.
func (e *Engine) ensureBucket(ctx context.Context) error {
	e.bucketMu.Lock()
	defer e.bucketMu.Unlock()
	if e.bucketOK {
		return nil
	}
	if err := e.CheckBucket(ctx); err != nil {
		return err
	}
	e.bucketOK = true
	return nil
}

func (e *Engine) Name() string   { return Name }
func (e *Engine) Config() Config { return e.cfg }

func (e *Engine) Store(ctx context.Context, identifier, localPath string) (storage.File, error) {
	f, err := e.file(e.up.StorePath(identifier))
	if err != nil {
		return nil, err
	}
	if err := f.Store(ctx, localPath); err != nil {
		return nil, err
	}
	return f, nil
}

func (e *Engine) Retrieve(identifier string) (storage.File, error) {
	return e.file(e.up.StorePath(identifier))
}

func (e *Engine) file(rel string) (*File, error) {
	obj, err := storage.NewObject(e.cfg.Prefix, rel, e.cfg.BaseURL())
	if err != nil {
		return nil, err
	}
	return &File{Object: obj, engine: e}, nil
}
