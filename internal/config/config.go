package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the calendar
// endpoints.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level service configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" json:"listen"`

	// RegistryURL is the base URL of the hosted registry files tree. Used
	// when RegistryDir is empty.
	RegistryURL string `yaml:"registry_url" json:"registry_url"`

	// RegistryDir, when set, serves documents from a local checkout of the
	// registry files tree instead of the hosted registry. Index files are
	// regenerated for this tree on the IndexRefresh schedule.
	RegistryDir string `yaml:"registry_dir" json:"registry_dir"`

	// CacheDir is where fetched document bodies and their HTTP cache
	// metadata are stored.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// DefaultWeeks is the recurrence horizon applied when a request does
	// not pass ?weeks=.
	DefaultWeeks int `yaml:"default_weeks" json:"default_weeks"`

	// MaxWeeks caps the ?weeks= override.
	MaxWeeks int `yaml:"max_weeks" json:"max_weeks"`

	// IndexRefresh is a cron-style schedule (e.g. "@hourly") for rebuilding
	// index files when RegistryDir is set.
	IndexRefresh string `yaml:"index_refresh" json:"index_refresh"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:       "127.0.0.1:8080",
		RegistryURL:  "https://timetable-registry.amrita.town/v2/files",
		RegistryDir:  "",
		CacheDir:     "./var/doc-cache",
		DefaultWeeks: 12,
		MaxWeeks:     52,
		IndexRefresh: "@hourly",
		BasicAuth:    nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.RegistryURL == "" && c.RegistryDir == "" {
		c.RegistryURL = "https://timetable-registry.amrita.town/v2/files"
	}
	if c.CacheDir == "" {
		c.CacheDir = "./var/doc-cache"
	}
	if c.DefaultWeeks <= 0 {
		c.DefaultWeeks = 12
	}
	if c.MaxWeeks <= 0 {
		c.MaxWeeks = 52
	}
	if c.MaxWeeks < c.DefaultWeeks {
		c.MaxWeeks = c.DefaultWeeks
	}
	if c.IndexRefresh == "" {
		c.IndexRefresh = "@hourly"
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path atomically
// (temp file + rename) with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".ttcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up the temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
