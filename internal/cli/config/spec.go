package config

import (
	"os"
	"path/filepath"
	"time"
)

// Storage backend names.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendMemory = "memory"
	BackendNone   = "none"
)

// CLIConfig is the configuration for trainly-cli.
type CLIConfig struct {
	// Base URL of the identity service.
	Server string `koanf:"server" yaml:"server"`
	// Output format: table, json, yaml.
	Output string `koanf:"output" yaml:"output"`

	Log      LogConfig      `koanf:"log" yaml:"log"`
	Storage  StorageConfig  `koanf:"storage" yaml:"storage"`
	Identity IdentityConfig `koanf:"identity" yaml:"identity"`
	Session  SessionConfig  `koanf:"session" yaml:"session"`
	Routes   RoutesConfig   `koanf:"routes" yaml:"routes"`
	Shell    ShellConfig    `koanf:"shell" yaml:"shell"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"` // text, json
}

// StorageConfig selects where the session token is persisted.
type StorageConfig struct {
	Backend string `koanf:"backend" yaml:"backend"`
	// Path is the credentials file (file) or database directory (badger).
	// Empty means the default under ~/.trainly.
	Path string `koanf:"path" yaml:"path,omitempty"`
	// Passphrase derives the file backend key instead of a key file.
	Passphrase string `koanf:"passphrase" yaml:"passphrase,omitempty"`
}

// IdentityConfig configures the identity service client.
type IdentityConfig struct {
	Timeout      time.Duration `koanf:"timeout" yaml:"timeout"`
	RateLimit    float64       `koanf:"rate_limit" yaml:"rate_limit"`
	RateBurst    int           `koanf:"rate_burst" yaml:"rate_burst"`
	LoginPath    string        `koanf:"login_path" yaml:"login_path"`
	RegisterPath string        `koanf:"register_path" yaml:"register_path"`
	MePath       string        `koanf:"me_path" yaml:"me_path"`
	PlansPath    string        `koanf:"plans_path" yaml:"plans_path"`
	// CAFile is a PEM bundle trusted in addition to the system roots.
	CAFile string `koanf:"ca_file" yaml:"ca_file,omitempty"`
}

// SessionConfig tunes the session manager.
type SessionConfig struct {
	// KeepTokenOnUnavailable keeps the stored token when the startup
	// identity check fails because the service could not be reached.
	KeepTokenOnUnavailable bool `koanf:"keep_token_on_unavailable" yaml:"keep_token_on_unavailable"`
}

// RoutesConfig names navigation targets shown to the user.
type RoutesConfig struct {
	Login string `koanf:"login" yaml:"login"`
}

// ShellConfig configures the interactive shell.
type ShellConfig struct {
	HistoryFile string `koanf:"history_file" yaml:"history_file,omitempty"`
	HistorySize int    `koanf:"history_size" yaml:"history_size"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server: "http://localhost:8000",
		Output: "table",
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Storage: StorageConfig{
			Backend: BackendFile,
		},
		Identity: IdentityConfig{
			Timeout:      10 * time.Second,
			RateLimit:    10,
			RateBurst:    5,
			LoginPath:    "/auth/login",
			RegisterPath: "/auth/register",
			MePath:       "/auth/me",
			PlansPath:    "/plans",
		},
		Routes: RoutesConfig{
			Login: "/login",
		},
		Shell: ShellConfig{
			HistorySize: 1000,
		},
	}
}

// HomeDir returns the trainly state directory (~/.trainly).
func HomeDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".trainly"
	}
	return filepath.Join(homeDir, ".trainly")
}

// StoragePath returns the configured storage path or the backend default.
func (c *CLIConfig) StoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	switch c.Storage.Backend {
	case BackendBadger:
		return filepath.Join(HomeDir(), "token.db")
	default:
		return filepath.Join(HomeDir(), "credentials")
	}
}

// HistoryPath returns the shell history file.
func (c *CLIConfig) HistoryPath() string {
	if c.Shell.HistoryFile != "" {
		return c.Shell.HistoryFile
	}
	return filepath.Join(HomeDir(), "history")
}
