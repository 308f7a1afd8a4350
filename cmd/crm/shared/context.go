// Package shared holds the context passed to all CLI commands.
package shared

import (
	"io"
	"os"
	"path/filepath"

	"github.com/go-ports/stratocrm/internal/config"
	"github.com/go-ports/stratocrm/internal/logger"
	"github.com/go-ports/stratocrm/internal/service"
)

// Context carries global CLI state (flags set on the root command).
type Context struct {
	// Home overrides the CRM home directory.
	// When empty, resolution falls through to CRM_HOME env var → persisted config → ~/.stratocrm.
	Home string
	// LogLevel overrides log.level from the home config.
	LogLevel string
	// LogOutput receives diagnostics; nil means stderr.
	LogOutput io.Writer
}

// ResolvedHome returns the --home flag value or the resolved default.
func (c *Context) ResolvedHome() string {
	if c.Home != "" {
		return c.Home
	}
	return config.GetHome()
}

// OpenService opens the service for the resolved home with a logger built
// from the flags and the home config.
func (c *Context) OpenService(opts ...service.Option) (*service.Service, error) {
	home := c.ResolvedHome()
	cfg, err := config.Load(filepath.Join(home, "config.yaml"))
	if err != nil {
		return nil, err
	}

	level := c.LogLevel
	if level == "" {
		level = cfg.Log.Level
	}
	out := c.LogOutput
	if out == nil {
		out = os.Stderr
	}
	l := logger.New(level, cfg.Log.Format, out)

	base := []service.Option{service.WithConfig(cfg), service.WithLogger(l)}
	return service.New(home, append(base, opts...)...)
}
