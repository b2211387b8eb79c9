// Package config loads the optional gitodb YAML configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration with YAML unmarshalling for human-readable strings.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// CloneConfig holds clone-subcommand settings. PasswordEnv names the
// environment variable holding the password so secrets stay out of the file.
type CloneConfig struct {
	Bare             *bool    `yaml:"bare"`
	CheckoutStrategy string   `yaml:"checkout_strategy"`
	Timeout          Duration `yaml:"timeout"`
	Username         string   `yaml:"username"`
	PasswordEnv      string   `yaml:"password_env"`
	SSHKey           string   `yaml:"ssh_key"`
}

// Password resolves PasswordEnv.
func (c CloneConfig) Password() string {
	if c.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(c.PasswordEnv)
}

// WatchConfig holds watch-subcommand settings.
type WatchConfig struct {
	Delay Duration `yaml:"delay"`
}

// Config is the top-level configuration file structure.
type Config struct {
	Backend   string      `yaml:"backend"`
	CacheSize int         `yaml:"cache_size"`
	LogLevel  string      `yaml:"log_level"`
	LogFormat string      `yaml:"log_format"`
	Clone     CloneConfig `yaml:"clone"`
	Watch     WatchConfig `yaml:"watch"`
}

// DefaultPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "gitodb", "config.yaml")
}

// Load reads and parses a YAML config file. If the file does not exist,
// it returns an empty Config and a nil error.
func Load(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.CacheSize < 0 {
		return nil, fmt.Errorf("parsing config %s: cache_size must not be negative", path)
	}
	if cfg.Watch.Delay < 0 {
		return nil, fmt.Errorf("parsing config %s: watch.delay must not be negative", path)
	}
	return &cfg, nil
}
