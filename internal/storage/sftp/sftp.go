// Package sftp stores uploads over SFTP. Each operation dials SSH, opens
// the sftp subsystem and closes both before returning.
package sftp

import (
	"context"

	"github.com/zinc-sig/ferry/internal/logging"
	"github.com/zinc-sig/ferry/internal/storage"
)

const Name = "sftp"

type Engine struct {
	*storage.Cache

	cfg  Config
	up   storage.Uploader
	log  logging.Logger
	dial Dialer
}

var _ storage.Engine = (*Engine)(nil)

type Option func(*Engine)

func WithDialer(d Dialer) Option {
	return func(e *Engine) { e.dial = d }
}

func New(cfg Config, deps storage.Deps, opts ...Option) *Engine {
	log := deps.Logger
	if log == nil {
		log = logging.Nop()
	}
	log = log.With("engine", Name)
	e := &Engine{
		Cache: storage.NewCache(deps.Uploader, deps.FS, log),
		cfg:   cfg,
		up:    deps.Uploader,
		log:   log,
		dial:  Dial,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func Factory(config map[string]any, deps storage.Deps) (storage.Engine, error) {
	cfg, err := ConfigFromMap(config)
	if err != nil {
		return nil, err
	}
	return New(cfg, deps), nil
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
	obj, err := storage.NewObject(e.cfg.Folder, rel, e.cfg.URL)
	if err != nil {
		return nil, err
	}
	return &File{Object: obj, engine: e}, nil
}
