// Package config loads scanview settings from YAML or TOML files with
// environment overrides.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/lehigh-university-libraries/scanview/internal/logging"
	"github.com/lehigh-university-libraries/scanview/internal/transport"
	"github.com/lehigh-university-libraries/scanview/internal/view"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Environment variables overriding file values.
const (
	EnvPort          = "SCANVIEW_PORT"
	EnvServiceURL    = "SCANVIEW_SERVICE_URL"
	EnvStoragePath   = "SCANVIEW_STORAGE_PATH"
	EnvMaxUploadSize = "SCANVIEW_MAX_UPLOAD_SIZE"
	EnvLogLevel      = "SCANVIEW_LOG_LEVEL"
	EnvLogFormat     = "SCANVIEW_LOG_FORMAT"
	EnvLocale        = "SCANVIEW_LOCALE"
)

// DefaultFiles are tried in order when no config path is given.
var DefaultFiles = []string{"scanview.yaml", "scanview.yml", "scanview.toml"}

// Config is the root configuration.
type Config struct {
	Server  ServerConfig   `yaml:"server" toml:"server"`
	Service ServiceConfig  `yaml:"service" toml:"service"`
	Storage StorageConfig  `yaml:"storage" toml:"storage"`
	Logging logging.Config `yaml:"logging" toml:"logging"`
	Viewer  ViewerConfig   `yaml:"viewer" toml:"viewer"`
	Locale  string         `yaml:"locale" toml:"locale"`
}

// ServerConfig configures the web server.
type ServerConfig struct {
	Port            string `yaml:"port" toml:"port"`
	ShutdownTimeout string `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
}

// ServiceConfig locates the image processing service.
type ServiceConfig struct {
	BaseURL string `yaml:"base_url" toml:"base_url"`
}

// StorageConfig configures where local copies of selected files live.
type StorageConfig struct {
	BasePath         string `yaml:"base_path" toml:"base_path"`
	MaxUploadSize    string `yaml:"max_upload_size" toml:"max_upload_size"`
	maxUploadSizeVal int64
}

// ViewerConfig holds feature flags. Unset flags default to enabled.
type ViewerConfig struct {
	ShowZoomControls *bool `yaml:"show_zoom_controls" toml:"show_zoom_controls"`
	EnableCompare    *bool `yaml:"enable_compare" toml:"enable_compare"`
}

// Default returns a finalized default configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.loadDefaults()
	_ = cfg.Validate()
	return cfg
}

// Load reads path, or the first existing DefaultFiles entry when path is
// empty. A missing default file yields the defaults; a missing explicit
// path is an error. The result is finalized.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		for _, candidate := range DefaultFiles {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("unsupported config format: %s", path)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	if err := c.Logging.Finalize(&logging.Env{Level: EnvLogLevel, Format: EnvLogFormat}); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return c.Validate()
}

// ShutdownTimeoutDuration parses the server shutdown timeout.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Server.ShutdownTimeout)
	return d
}

// MaxUploadSizeBytes returns the parsed upload size limit.
func (c *Config) MaxUploadSizeBytes() int64 {
	return c.Storage.maxUploadSizeVal
}

// Flags returns the viewer feature flags.
func (c *Config) Flags() view.Flags {
	return view.Flags{
		ShowZoomControls: c.Viewer.ShowZoomControls == nil || *c.Viewer.ShowZoomControls,
		EnableCompare:    c.Viewer.EnableCompare == nil || *c.Viewer.EnableCompare,
	}
}

func (c *Config) loadDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8888"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "5s"
	}
	if c.Service.BaseURL == "" {
		c.Service.BaseURL = transport.DefaultBaseURL
	}
	if c.Storage.BasePath == "" {
		c.Storage.BasePath = filepath.Join(os.TempDir(), "scanview")
	}
	if c.Storage.MaxUploadSize == "" {
		c.Storage.MaxUploadSize = "25MB"
	}
	if c.Locale == "" {
		c.Locale = "en"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvPort); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv(EnvServiceURL); v != "" {
		c.Service.BaseURL = v
	}
	if v := os.Getenv(EnvStoragePath); v != "" {
		c.Storage.BasePath = v
	}
	if v := os.Getenv(EnvMaxUploadSize); v != "" {
		c.Storage.MaxUploadSize = v
	}
	if v := os.Getenv(EnvLocale); v != "" {
		c.Locale = v
	}
}

// Validate checks the settings and derives parsed values. Call it again
// after overriding fields.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	u, err := url.Parse(c.Service.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid service base_url: %q", c.Service.BaseURL)
	}
	size, err := units.FromHumanSize(c.Storage.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_upload_size must be positive")
	}
	c.Storage.maxUploadSizeVal = size
	return nil
}
