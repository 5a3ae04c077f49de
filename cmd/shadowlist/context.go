package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"shadowlist/internal/config"
	"shadowlist/internal/library"
	"shadowlist/internal/logging"
	"shadowlist/internal/remote"
	"shadowlist/internal/remote/youtube"
	"shadowlist/internal/store"
	"shadowlist/internal/videoindex"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error

	sourceOnce sync.Once
	source     remote.Source
	sourceErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = err
			return
		}
		// Short run id so interleaved runs can be told apart in captured
		// logs.
		c.logger = logger.With(slog.String("run", uuid.NewString()[:8]))
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) ensureSource(ctx context.Context) (remote.Source, error) {
	c.sourceOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.sourceErr = err
			return
		}
		logger, err := c.ensureLogger()
		if err != nil {
			c.sourceErr = err
			return
		}
		client, err := youtube.New(ctx, cfg, logger)
		if err != nil {
			c.sourceErr = err
			return
		}
		c.source = client
	})
	return c.source, c.sourceErr
}

// openLibrary builds the playlist library plus its closer. The video index is
// attached when enabled; the closer releases it.
func (c *commandContext) openLibrary(ctx context.Context) (*library.Library, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}
	source, err := c.ensureSource(ctx)
	if err != nil {
		return nil, nil, err
	}

	var index *videoindex.Index
	if cfg.Index.Enabled {
		index, err = videoindex.Open(cfg.IndexPath())
		if err != nil {
			return nil, nil, fmt.Errorf("open video index: %w", err)
		}
	}

	lib := library.New(library.Options{
		Config: cfg,
		Source: source,
		Store:  store.FS{},
		Index:  index,
		Logger: logger,
	})
	closer := func() {
		if index != nil {
			if err := index.Close(); err != nil {
				logger.Warn("close video index", slog.String("error", err.Error()))
			}
		}
	}
	return lib, closer, nil
}

// withLock serializes runs that touch the library on disk. Concurrent runs
// would race on the shadow files and the remote position updates.
func (c *commandContext) withLock(fn func() error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire library lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another shadowlist run is active (lock %s)", cfg.LockPath())
	}
	defer lock.Unlock()
	return fn()
}
