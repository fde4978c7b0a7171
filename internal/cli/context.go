package cli

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/forPelevin/highcut/internal/config"
	"github.com/forPelevin/highcut/internal/logging"
)

const skipConfigLoad = "skipConfigLoad"

type commandContext struct {
	configPath string
	logLevel   string
	logFormat  string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.configPath))
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevel != "" {
			cfg.Logging.Level = c.logLevel
		}
		if c.logFormat != "" {
			cfg.Logging.Format = c.logFormat
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
		c.logger, c.loggerErr = logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			File:   cfg.Logging.File,
		})
	})
	return c.logger, c.loggerErr
}
