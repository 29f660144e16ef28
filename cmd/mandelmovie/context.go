package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"mandelmovie/internal/config"
	"mandelmovie/internal/logging"
)

type rootFlags struct {
	configPath string
	logLevel   string
	logFormat  string
	logFile    string
}

type commandContext struct {
	flags *rootFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(flags *rootFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.flags.configPath))
		if err != nil {
			c.configErr = err
			return
		}
		c.applyLoggingFlags(cfg)
		if err := cfg.Normalize(); err != nil {
			c.configErr = err
			return
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// configCopy returns a copy of the loaded config that a command may modify.
func (c *commandContext) configCopy() (*config.Config, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	clone := *cfg
	return &clone, nil
}

func (c *commandContext) applyLoggingFlags(cfg *config.Config) {
	if c.flags == nil || cfg == nil {
		return
	}
	if v := strings.TrimSpace(c.flags.logLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := strings.TrimSpace(c.flags.logFormat); v != "" {
		cfg.Logging.Format = v
	}
	if v := strings.TrimSpace(c.flags.logFile); v != "" {
		cfg.Logging.File = v
	}
}

// loggingArgs forwards the effective logging settings to worker processes.
func loggingArgs(cfg *config.Config) []string {
	args := []string{
		"--log-level=" + cfg.Logging.Level,
		"--log-format=" + cfg.Logging.Format,
	}
	if cfg.Logging.File != "" {
		args = append(args, "--log-file="+cfg.Logging.File)
	}
	return args
}

// newLogger builds the command logger. Callers must close the returned
// closer before exiting so the log file is flushed and released.
func newLogger(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	logger, closer, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("configure logging: %w", err)
	}
	return logger, closer, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
