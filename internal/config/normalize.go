package config

import (
	"fmt"
	"strings"
)

// Normalize trims and expands string settings and fills empty ones with
// defaults. Load calls it; the CLI calls it again after applying flags.
func (c *Config) Normalize() error {
	if err := c.normalizeRender(); err != nil {
		return err
	}
	c.normalizeParallel()
	if err := c.normalizeJournal(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeRender() error {
	prefix := strings.TrimSpace(c.Render.OutputPrefix)
	if prefix == "" {
		prefix = defaultOutputPrefix
	}
	expanded, err := expandPrefix(prefix)
	if err != nil {
		return fmt.Errorf("render.output_prefix: %w", err)
	}
	c.Render.OutputPrefix = expanded
	if c.Render.JPEGQuality == 0 {
		c.Render.JPEGQuality = defaultJPEGQuality
	}
	return nil
}

func (c *Config) normalizeParallel() {
	c.Parallel.Isolation = strings.ToLower(strings.TrimSpace(c.Parallel.Isolation))
	if c.Parallel.Isolation == "" {
		c.Parallel.Isolation = defaultIsolation
	}
}

func (c *Config) normalizeJournal() error {
	if strings.TrimSpace(c.Journal.Path) == "" {
		c.Journal.Path = defaultJournalPath
	}
	var err error
	if c.Journal.Path, err = expandPath(strings.TrimSpace(c.Journal.Path)); err != nil {
		return fmt.Errorf("journal.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if file := strings.TrimSpace(c.Logging.File); file != "" {
		expanded, err := expandPath(file)
		if err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
		c.Logging.File = expanded
	}
	return nil
}
