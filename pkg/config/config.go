// Package config loads the GoPoster settings: a YAML file, with environment
// variables applied on top as read-only overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xob0t/GoPoster/pkg/fonts"
	"github.com/xob0t/GoPoster/pkg/layout"
	"github.com/xob0t/GoPoster/pkg/logging"
	"github.com/xob0t/GoPoster/pkg/template"
)

// CurrentVersion is written by Save; bump it when the file layout changes
// incompatibly.
const CurrentVersion = 1

// DefaultFile is the file name looked up in the working directory when no
// path is given.
const DefaultFile = "goposter.yaml"

// Env var names used as overrides.
const (
	EnvConfig       = "GOPOSTER_CONFIG"
	EnvAddr         = "GOPOSTER_ADDR"
	EnvPreviewSize  = "GOPOSTER_PREVIEW_SIZE"
	EnvFinalSize    = "GOPOSTER_FINAL_SIZE"
	EnvFetchTimeout = "GOPOSTER_FETCH_TIMEOUT"
	EnvTemplatesDir = "GOPOSTER_TEMPLATES_DIR"
	EnvPhotoHosts   = "GOPOSTER_PHOTO_HOSTS"
	EnvCache        = "GOPOSTER_CACHE"
	EnvLogLevel     = "GOPOSTER_LOG_LEVEL"
	EnvLogFormat    = "GOPOSTER_LOG_FORMAT"
	EnvLogFile      = "GOPOSTER_LOG_FILE"
)

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	PublicURL      string        `yaml:"public_url"` // prefix for returned asset URLs
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	// PhotoHosts lists the hosts a client may point photoUrl at. Empty means
	// clients can only use uploaded photos.
	PhotoHosts []string `yaml:"photo_hosts,omitempty"`
}

// RenderConfig sizes and bounds renders.
type RenderConfig struct {
	PreviewSize      int           `yaml:"preview_size"`
	FinalSize        int           `yaml:"final_size"`
	FetchTimeout     time.Duration `yaml:"fetch_timeout"`
	MaxAssetBytes    int64         `yaml:"max_asset_bytes"`
	CacheBackgrounds bool          `yaml:"cache_backgrounds"`
	CacheLimit       int           `yaml:"cache_limit"`
	Hinting          bool          `yaml:"hinting"`
}

// TemplatesConfig locates the template records.
type TemplatesConfig struct {
	Dir string `yaml:"dir"`
	// DefaultLayoutStyle is given to legacy records that never declared one.
	DefaultLayoutStyle template.LayoutStyle `yaml:"default_layout_style"`
}

// FontConfig registers one font file under a family and weight.
type FontConfig struct {
	Family string `yaml:"family"`
	Weight string `yaml:"weight"`
	Path   string `yaml:"path"`
}

// Config is the whole settings file.
type Config struct {
	ConfigVersion int             `yaml:"config_version"`
	Server        ServerConfig    `yaml:"server"`
	Render        RenderConfig    `yaml:"render"`
	Templates     TemplatesConfig `yaml:"templates"`
	Fonts         []FontConfig    `yaml:"fonts,omitempty"`
	Logging       logging.Options `yaml:"logging"`
	Tuning        layout.Tuning   `yaml:"tuning"`
}

// Defaults returns the built-in settings.
func Defaults() Config {
	return Config{
		ConfigVersion: CurrentVersion,
		Server: ServerConfig{
			Addr:           ":8080",
			RequestTimeout: 60 * time.Second,
			MaxUploadBytes: 10 << 20,
		},
		Render: RenderConfig{
			PreviewSize:      540,
			FinalSize:        1080,
			FetchTimeout:     30 * time.Second,
			MaxAssetBytes:    32 << 20,
			CacheBackgrounds: true,
			CacheLimit:       64,
		},
		Templates: TemplatesConfig{
			Dir:                "templates",
			DefaultLayoutStyle: template.StylePhotoCenter,
		},
		Logging: logging.Options{Level: "info", Format: "console"},
		Tuning:  layout.DefaultTuning(),
	}
}

// Load reads the file at path over the defaults, applies environment
// overrides and validates the result. An empty path tries $GOPOSTER_CONFIG
// and then DefaultFile, and a missing default file is not an error.
func Load(path string) (Config, error) {
	cfg := Defaults()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfig)
		explicit = path != ""
	}
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
		resolvePaths(&cfg, filepath.Dir(path))
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes cfg as YAML, creating parent directories.
func Save(path string, cfg Config) error {
	cfg.ConfigVersion = CurrentVersion
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects settings no render could use.
func (c Config) Validate() error {
	if c.Render.PreviewSize <= 0 || c.Render.FinalSize <= 0 {
		return fmt.Errorf("render sizes must be positive, got preview=%d final=%d",
			c.Render.PreviewSize, c.Render.FinalSize)
	}
	if c.Render.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	if s := c.Templates.DefaultLayoutStyle; s != "" && !s.Valid() {
		return fmt.Errorf("unknown default layout style %q", s)
	}
	for i, f := range c.Fonts {
		if strings.TrimSpace(f.Family) == "" || strings.TrimSpace(f.Path) == "" {
			return fmt.Errorf("fonts[%d]: family and path are required", i)
		}
	}
	if err := c.Tuning.Validate(); err != nil {
		return fmt.Errorf("tuning: %w", err)
	}
	return nil
}

// NormalizeOptions returns the template migration options.
func (c Config) NormalizeOptions() template.NormalizeOptions {
	return template.NormalizeOptions{LayoutStyle: c.Templates.DefaultLayoutStyle}
}

// FontManager builds a font manager with the configured fonts registered.
func (c Config) FontManager() (*fonts.Manager, error) {
	m, err := fonts.NewManager()
	if err != nil {
		return nil, err
	}
	m.SetHinting(c.Render.Hinting)
	for _, f := range c.Fonts {
		weight := f.Weight
		if weight == "" {
			weight = fonts.WeightNormal
		}
		if err := m.RegisterFile(f.Family, weight, f.Path); err != nil {
			return nil, fmt.Errorf("register font %s/%s: %w", f.Family, weight, err)
		}
	}
	return m, nil
}

// resolvePaths makes relative file references relative to the config file.
func resolvePaths(c *Config, base string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	c.Templates.Dir = abs(c.Templates.Dir)
	for i := range c.Fonts {
		c.Fonts[i].Path = abs(c.Fonts[i].Path)
	}
}

func applyEnvOverrides(c *Config) error {
	if v := env(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := env(EnvTemplatesDir); v != "" {
		c.Templates.Dir = v
	}
	if v := env(EnvPhotoHosts); v != "" {
		c.Server.PhotoHosts = nil
		for _, h := range strings.Split(v, ",") {
			if h = strings.TrimSpace(h); h != "" {
				c.Server.PhotoHosts = append(c.Server.PhotoHosts, h)
			}
		}
	}
	if v := env(EnvPreviewSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPreviewSize, err)
		}
		c.Render.PreviewSize = n
	}
	if v := env(EnvFinalSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvFinalSize, err)
		}
		c.Render.FinalSize = n
	}
	if v := env(EnvFetchTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvFetchTimeout, err)
		}
		c.Render.FetchTimeout = d
	}
	if v := env(EnvCache); v != "" {
		lv := strings.ToLower(v)
		c.Render.CacheBackgrounds = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := env(EnvLogLevel); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := env(EnvLogFormat); v != "" {
		c.Logging.Format = strings.ToLower(v)
	}
	if v := env(EnvLogFile); v != "" {
		c.Logging.File = v
	}
	return nil
}

func env(key string) string { return strings.TrimSpace(os.Getenv(key)) }
