package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"tripcal/internal/model"
)

// ICSSource describes a single ICS feed the importer pulls from.
type ICSSource struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for de-dup and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" json:"name"`
	// Kind selects what the feed's VEVENTs become: "trips" or
	// "constraints".
	Kind string `yaml:"kind" json:"kind"`
	// DefaultType is the type id assigned to records from this feed
	// when no category maps to a configured type.
	DefaultType string `yaml:"default_type" json:"default_type"`
}

// TypeConfig classifies one trip/constraint type id.
type TypeConfig struct {
	// HardStop marks constraint types that fully disqualify a week.
	HardStop bool `yaml:"hard_stop" json:"hard_stop"`
	// Label is a display name for the type.
	Label string `yaml:"label,omitempty" json:"label,omitempty"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API server.
	Listen string `yaml:"listen" json:"listen"`

	// PlanPath is the YAML plan file holding trips and constraints.
	PlanPath string `yaml:"plan_path" json:"plan_path"`

	// RefreshCron is a cron-style schedule (e.g. "*/30 * * * *") for
	// re-fetching ICS sources while serving.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// LogLevel is the minimum log level: debug, info, warn or error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// ICS is the list of subscribed feeds.
	ICS []ICSSource `yaml:"ics" json:"ics"`

	// Types maps trip/constraint type ids to their classification.
	// Ids absent from the map are soft.
	Types map[string]TypeConfig `yaml:"types" json:"types"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      "127.0.0.1:8080",
		PlanPath:    "./var/plan.yaml",
		RefreshCron: "*/30 * * * *",
		LogLevel:    "info",
		ICS:         []ICSSource{},
		Types: map[string]TypeConfig{
			"vacation":   {HardStop: true, Label: "Vacation"},
			"blackout":   {HardStop: true, Label: "Blackout"},
			"preference": {HardStop: false, Label: "Preference"},
			"work":       {HardStop: false, Label: "Work trip"},
		},
		BasicAuth: nil,
	}
}

// Normalize fills in missing/zero values with defaults so that
// partially-filled configs from older versions still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.PlanPath == "" {
		c.PlanPath = "./var/plan.yaml"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/30 * * * *"
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
		// ok
	default:
		c.LogLevel = "info"
	}
	if c.ICS == nil {
		c.ICS = []ICSSource{}
	}
	for i := range c.ICS {
		switch c.ICS[i].Kind {
		case "trips", "constraints":
			// ok
		default:
			// Unknown kinds are treated as constraint feeds; blocking
			// too much is safer than double-booking.
			c.ICS[i].Kind = "constraints"
		}
	}
	if c.Types == nil {
		c.Types = DefaultConfig().Types
	}
}

// HardStop builds the engine predicate from the type registry. Ids
// without an entry resolve to soft, keeping the predicate total.
func (c *Config) HardStop() model.HardStopFunc {
	types := c.Types
	return func(typeID string) bool {
		return types[typeID].HardStop
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist: create the parent directory, write a
//     default config with 0600 perms and return the default.
//   - If the file exists: read YAML, unmarshal and normalize defaults.
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

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
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

	// Atomic write: temp file in the same directory, then rename.
	tmp, err := os.CreateTemp(dir, ".tripcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
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
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save delegates to the package-level Save function so callers holding
// a *Config can write it back directly.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
