package helpers

import (
	"fmt"
	"path/filepath"

	"github.com/zinc-sig/ferry/cmd/config"
	"github.com/zinc-sig/ferry/internal/engines"
	"github.com/zinc-sig/ferry/internal/logging"
	"github.com/zinc-sig/ferry/internal/settings"
	"github.com/zinc-sig/ferry/internal/storage"
)

// BuildEngineConfig builds engine configuration from all sources.
// Precedence: env < file < json < kv
func BuildEngineConfig(cfg *config.EngineConfig) (map[string]any, error) {
	result, err := settings.BuildWithPrefix(settings.EnvPrefix, cfg.Config, cfg.ConfigKV, cfg.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to build engine config: %w", err)
	}
	if result == nil {
		result = make(map[string]any)
	}
	return result, nil
}

// NewUploader builds the uploader from the local layout flags.
func NewUploader(cfg *config.LocalConfig) (*storage.BasicUploader, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("invalid root %q: %w", cfg.Root, err)
	}
	fileMode, err := ParseMode(cfg.Permissions)
	if err != nil {
		return nil, err
	}
	dirMode, err := ParseMode(cfg.DirPermissions)
	if err != nil {
		return nil, err
	}

	up := storage.NewBasicUploader(root)
	up.Dir = cfg.StoreDir
	up.Cache = cfg.CacheDir
	up.FileMode = fileMode
	up.DirMode = dirMode
	return up, nil
}

// SetupEngine creates the engine named in cfg from reg. A nil reg means
// engines.Default().
func SetupEngine(reg *storage.Registry, engineCfg *config.EngineConfig, localCfg *config.LocalConfig, log logging.Logger) (storage.Engine, map[string]any, error) {
	if reg == nil {
		reg = engines.Default()
	}
	if engineCfg.Engine == "" {
		return nil, nil, fmt.Errorf("required flag 'engine' not set (one of %v)", reg.Names())
	}

	engineConf, err := BuildEngineConfig(engineCfg)
	if err != nil {
		return nil, nil, err
	}
	up, err := NewUploader(localCfg)
	if err != nil {
		return nil, nil, err
	}

	engine, err := reg.New(engineCfg.Engine, engineConf, storage.Deps{Uploader: up, Logger: log})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create storage engine: %w", err)
	}
	return engine, engineConf, nil
}
