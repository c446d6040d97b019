package main

import (
	"context"
	"strings"
	"sync"

	"github.com/Laisky/errors/v2"
	"go.uber.org/zap"

	"connections/internal/config"
	"connections/internal/logging"
	"connections/internal/service"
)

type globalFlags struct {
	config   string
	input    string
	logLevel string
	embedder string
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.AppConfig
	configPath string
	logger     *zap.Logger
	configErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

// ensureConfig loads the config once, applying flag overrides after the file
// and the environment.
func (c *commandContext) ensureConfig() (*config.AppConfig, error) {
	c.configOnce.Do(func() {
		var (
			cfg  *config.AppConfig
			path = strings.TrimSpace(c.flags.config)
			err  error
		)
		if path == "" {
			cfg, path, err = config.LoadDefault()
		} else {
			cfg, err = config.Load(path)
		}
		if err != nil {
			c.configErr = errors.Wrap(err, "load config")
			return
		}
		if v := strings.TrimSpace(c.flags.input); v != "" {
			cfg.Input.Path = v
		}
		if v := strings.TrimSpace(c.flags.logLevel); v != "" {
			cfg.Log.Level = v
		}
		if v := strings.TrimSpace(c.flags.embedder); v != "" {
			cfg.Embedder.Type = v
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
		c.logger = logger
	})
	return c.config, c.configErr
}

// ingest builds the service and runs the pipeline over the configured export.
func (c *commandContext) ingest(ctx context.Context) (*service.Service, *service.Result, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	svc, err := service.FromConfig(ctx, cfg, c.logger)
	if err != nil {
		return nil, nil, err
	}
	res, err := svc.Ingest(ctx, cfg.Input.Path)
	if err != nil {
		return nil, nil, err
	}
	return svc, res, nil
}

func (c *commandContext) close() {
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}
