// Package config loads program settings from an optional YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root configuration.
type Config struct {
	Converter ConverterConfig `yaml:"converter"`
	HTTP      HTTPConfig      `yaml:"http"`
	Sites     SitesConfig     `yaml:"sites"`
	Cache     CacheConfig     `yaml:"cache"`
	Log       LogConfig       `yaml:"log"`
}

// ConverterConfig holds the external converter command line.
type ConverterConfig struct {
	Command string `yaml:"command" env:"GLOSS_PANDOC" env-default:"pandoc"`
}

// HTTPConfig holds fetch settings.
type HTTPConfig struct {
	UserAgent string        `yaml:"user_agent" env:"GLOSS_USER_AGENT"`
	Timeout   time.Duration `yaml:"timeout"    env:"GLOSS_HTTP_TIMEOUT" env-default:"30s"`
}

// SitesConfig holds the base URL of each reference site. The word is
// appended to it.
type SitesConfig struct {
	DefinitionURL string `yaml:"definition_url" env:"GLOSS_DEFINITION_URL" env-default:"https://www.thefreedictionary.com/"`
	EtymologyURL  string `yaml:"etymology_url"  env:"GLOSS_ETYMOLOGY_URL"  env-default:"https://www.etymonline.com/word/"`
}

// CacheConfig holds cache settings. An empty Dir means the platform cache
// directory.
type CacheConfig struct {
	Dir      string `yaml:"dir"      env:"GLOSS_CACHE_DIR"`
	Disabled bool   `yaml:"disabled" env:"GLOSS_CACHE_DISABLED" env-default:"false"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"GLOSS_LOG_LEVEL"  env-default:"warn"`
	Format string `yaml:"format" env:"GLOSS_LOG_FORMAT" env-default:"console"`
}

var logLevels = []string{"trace", "debug", "info", "warn", "error", "disabled"}

// Validate checks values that defaults cannot guarantee.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Converter.Command) == "" {
		errs = append(errs, errors.New("converter.command must not be empty"))
	}
	if c.HTTP.Timeout < 0 {
		errs = append(errs, errors.New("http.timeout must not be negative"))
	}
	for name, raw := range map[string]string{
		"sites.definition_url": c.Sites.DefinitionURL,
		"sites.etymology_url":  c.Sites.EtymologyURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || !u.IsAbs() || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s must be an absolute URL, got %q", name, raw))
		}
	}
	if !slices.Contains(logLevels, strings.ToLower(c.Log.Level)) {
		errs = append(errs, fmt.Errorf("log.level %q is not one of %v", c.Log.Level, logLevels))
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format must be console or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// DefaultPath returns the config file looked for when none is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "gloss-word", "config.yaml")
}

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags).
// The file is path if set, else GLOSS_CONFIG, else DefaultPath(). A missing
// file is only an error when it was named explicitly.
func Load(path string) (*Config, error) {
	var cfg Config

	explicitPath := path != ""
	if !explicitPath {
		path = os.Getenv("GLOSS_CONFIG")
		explicitPath = path != ""
	}
	if !explicitPath {
		path = DefaultPath()
	}

	if _, err := os.Stat(path); path != "" && err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		// No file, load from ENV + defaults only.
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}
