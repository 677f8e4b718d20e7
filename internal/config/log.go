package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// OpenLogger returns a text logger appending to the configured log file,
// ~/.folio/folio.log by default. The terminal belongs to the TUI, so
// nothing is written to stdout or stderr. Close the returned closer on exit.
func (c Config) OpenLogger() (*slog.Logger, io.Closer, error) {
	lvl, err := ParseLevel(c.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	path := c.LogFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return nil, nil, err
		}
		path = filepath.Join(dir, logFileName)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("config.OpenLogger: create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("config.OpenLogger: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: lvl})), f, nil
}
