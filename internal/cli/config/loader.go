package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/yndnr/trainly-go/internal/infra/confloader"
)

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	return filepath.Join(HomeDir(), "cli.yaml")
}

// Load reads configuration from path (missing is fine), the environment
// and the given flag overrides keyed by dotted config key.
func Load(path string, flags map[string]any) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	cfg := Default()
	l := confloader.NewLoader(confloader.WithConfigFile(path))
	if err := l.Load(cfg); err != nil {
		return nil, err
	}

	if len(flags) > 0 {
		if err := l.LoadMap(flags); err != nil {
			return nil, err
		}
		if err := l.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("apply flags: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML with 0600 permissions.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// Set updates a single key in the config file at path, leaving other
// keys as written. The result must still validate.
func Set(path, key, value string) error {
	if path == "" {
		path = DefaultConfigPath()
	}
	if !slices.Contains(Keys(), key) {
		return fmt.Errorf("unknown config key %q", key)
	}

	l := confloader.NewLoader()
	if _, err := os.Stat(path); err == nil {
		if err := l.LoadFile(path); err != nil {
			return err
		}
	}
	if err := l.Set(key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	cfg := Default()
	if err := l.Unmarshal(cfg); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	return l.Save(path)
}

// Keys lists the settable configuration keys.
func Keys() []string {
	return []string{
		"server",
		"output",
		"log.level",
		"log.format",
		"storage.backend",
		"storage.path",
		"storage.passphrase",
		"identity.timeout",
		"identity.rate_limit",
		"identity.rate_burst",
		"identity.login_path",
		"identity.register_path",
		"identity.me_path",
		"identity.plans_path",
		"identity.ca_file",
		"session.keep_token_on_unavailable",
		"routes.login",
		"shell.history_file",
		"shell.history_size",
	}
}
