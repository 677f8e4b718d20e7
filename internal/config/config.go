// Package config resolves folio's settings from defaults, an optional
// YAML file and the environment, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIURL  = "http://localhost:5000/api"
	DefaultSiteURL = "http://localhost:5173"
	dirName        = ".folio"
	fileName       = "config.yaml"
	logFileName    = "folio.log"
)

// Config holds resolved settings.
type Config struct {
	APIURL      string  `yaml:"api_url"`
	SiteURL     string  `yaml:"site_url"`
	Token       string  `yaml:"-"`
	MovePolicy  string  `yaml:"move_policy"`
	WebPQuality float32 `yaml:"webp_quality"`
	LogLevel    string  `yaml:"log_level"`
	LogFile     string  `yaml:"log_file"`
	ConfigPath  string  `yaml:"-"`
	FromFile    bool    `yaml:"-"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		APIURL:      DefaultAPIURL,
		SiteURL:     DefaultSiteURL,
		MovePolicy:  "reupload",
		WebPQuality: 90,
		LogLevel:    "info",
	}
}

// Dir returns ~/.folio.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config.Dir: get home dir: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// Load reads .env from the working directory (if present), then the YAML
// file named by FOLIO_CONFIG or ~/.folio/config.yaml, then FOLIO_*
// environment variables.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config.Load: .env: %w", err)
	}

	path := os.Getenv("FOLIO_CONFIG")
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return Config{}, err
		}
		path = filepath.Join(dir, fileName)
	}
	return LoadFile(path, os.Getenv)
}

// LoadFile resolves settings from the YAML file at path and the getenv
// lookup. A missing file is not an error.
func LoadFile(path string, getenv func(string) string) (Config, error) {
	cfg := Default()
	cfg.ConfigPath = path

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config.LoadFile: parse %s: %w", path, err)
		}
		cfg.FromFile = true
	case !errors.Is(err, fs.ErrNotExist):
		return Config{}, fmt.Errorf("config.LoadFile: read %s: %w", path, err)
	}

	if v := getenv("FOLIO_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := getenv("FOLIO_SITE_URL"); v != "" {
		cfg.SiteURL = v
	}
	if v := getenv("FOLIO_TOKEN"); v != "" {
		cfg.Token = strings.TrimSpace(v)
	}
	if v := getenv("FOLIO_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := getenv("FOLIO_MOVE_POLICY"); v != "" {
		cfg.MovePolicy = v
	}
	if v := getenv("FOLIO_WEBP_QUALITY"); v != "" {
		q, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return Config{}, fmt.Errorf("config.LoadFile: FOLIO_WEBP_QUALITY: %w", err)
		}
		cfg.WebPQuality = float32(q)
	}

	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")
	if cfg.WebPQuality <= 0 || cfg.WebPQuality > 100 {
		return Config{}, fmt.Errorf("config.LoadFile: webp_quality %v out of range (0,100]", cfg.WebPQuality)
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseLevel maps debug/info/warn/error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("config.ParseLevel: %w", err)
	}
	return lvl, nil
}

// PortfolioURL returns the public page for a portfolio slug.
func (c Config) PortfolioURL(slug string) string {
	return c.SiteURL + "/portfolio-details/" + slug
}
