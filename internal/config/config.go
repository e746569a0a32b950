package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/bggsearch/internal/cache"
	"github.com/lehigh-university-libraries/bggsearch/internal/catalog"
	"github.com/lehigh-university-libraries/bggsearch/internal/gallery"
	"gopkg.in/yaml.v3"
)

//go:embed sample_config.yaml
var sampleConfig string

// Catalog configures the catalog search origin
type Catalog struct {
	BaseURL string `yaml:"base_url"`
}

// Images configures the gallery API and where icons are written
type Images struct {
	APIBaseURL string `yaml:"api_base_url"`
	Dir        string `yaml:"dir"`
}

// Cache configures the durable icon cache store
type Cache struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	Lock    bool   `yaml:"lock"`
}

// HTTP configures outbound requests
type HTTP struct {
	Timeout time.Duration `yaml:"timeout"`
}

// Search configures result assembly
type Search struct {
	IsolateIconErrors bool `yaml:"isolate_icon_errors"`
}

// Logging configures log output
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the complete runtime configuration
type Config struct {
	Catalog Catalog `yaml:"catalog"`
	Images  Images  `yaml:"images"`
	Cache   Cache   `yaml:"cache"`
	HTTP    HTTP    `yaml:"http"`
	Search  Search  `yaml:"search"`
	Logging Logging `yaml:"logging"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Catalog: Catalog{BaseURL: catalog.DefaultBaseURL},
		Images:  Images{APIBaseURL: gallery.DefaultBaseURL},
		Cache:   Cache{Backend: cache.BackendFile},
		Logging: Logging{Level: "warn", Format: "text"},
	}
}

// DefaultPath returns ~/.config/bggsearch/config.yaml (honoring XDG_CONFIG_HOME)
func DefaultPath() string {
	if base, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "bggsearch", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "bggsearch.yaml")
	}
	return filepath.Join(home, ".config", "bggsearch", "config.yaml")
}

// Load builds the configuration from defaults, the YAML file at path and the
// environment. An empty path reads DefaultPath when it exists; an explicit
// path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	setString("BGG_CATALOG_URL", &c.Catalog.BaseURL)
	setString("BGG_IMAGE_API_URL", &c.Images.APIBaseURL)
	setString("BGG_ICON_DIR", &c.Images.Dir)
	setString("BGG_CACHE_BACKEND", &c.Cache.Backend)
	setString("BGG_CACHE_PATH", &c.Cache.Path)
	setString("BGG_LOG_LEVEL", &c.Logging.Level)

	if v := strings.TrimSpace(os.Getenv("BGG_HTTP_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid BGG_HTTP_TIMEOUT %q: %w", v, err)
		}
		c.HTTP.Timeout = d
	}
	return nil
}

func (c *Config) normalize() error {
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	if c.Cache.Backend == "" {
		c.Cache.Backend = cache.BackendFile
	}

	var err error
	if c.Cache.Path == "" && c.Cache.Backend != cache.BackendMemory {
		c.Cache.Path = filepath.Join(defaultCacheDir(), defaultCacheFile(c.Cache.Backend))
	}
	if c.Cache.Path, err = ExpandPath(c.Cache.Path); err != nil {
		return err
	}
	if c.Images.Dir, err = ExpandPath(c.Images.Dir); err != nil {
		return err
	}
	return nil
}

// Validate reports configuration values that cannot work
func (c *Config) Validate() error {
	var errs []error
	for name, raw := range map[string]string{"catalog.base_url": c.Catalog.BaseURL, "images.api_base_url": c.Images.APIBaseURL} {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s must be an absolute http(s) URL, got %q", name, raw))
		}
	}
	switch c.Cache.Backend {
	case cache.BackendFile, cache.BackendSQLite, cache.BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("cache.backend must be file, sqlite or memory, got %q", c.Cache.Backend))
	}
	if c.HTTP.Timeout < 0 {
		errs = append(errs, errors.New("http.timeout cannot be negative"))
	}
	return errors.Join(errs...)
}

// ExpandPath resolves a leading ~ and makes the path absolute
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// defaultCacheDir prefers the launcher-provided workflow cache directory
func defaultCacheDir() string {
	if dir, ok := os.LookupEnv("alfred_workflow_cache"); ok && strings.TrimSpace(dir) != "" {
		return dir
	}
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "bggsearch")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "bggsearch")
	}
	return filepath.Join(home, ".cache", "bggsearch")
}

func defaultCacheFile(backend string) string {
	if backend == cache.BackendSQLite {
		return "icons.db"
	}
	return "icons.json"
}

// CreateSample writes a sample configuration file to the specified location
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
