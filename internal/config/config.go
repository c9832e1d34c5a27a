package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Iron-Ham/cargodeck/internal/watch"
)

// Config represents the complete cargodeck configuration
type Config struct {
	Cargo   CargoConfig   `mapstructure:"cargo"`
	Console ConsoleConfig `mapstructure:"console"`
	Watch   WatchConfig   `mapstructure:"watch"`
	History HistoryConfig `mapstructure:"history"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CargoConfig controls how the toolchain is invoked
type CargoConfig struct {
	// Path is the cargo executable, looked up on PATH if not absolute (default: "cargo")
	Path string `mapstructure:"path"`
	// StopGracePeriod is how long a stopped command may take to exit before it is killed
	StopGracePeriod time.Duration `mapstructure:"stop_grace_period"`
	// Env holds extra KEY=VALUE entries for every cargo command
	// (e.g., ["RUST_BACKTRACE=1", "CARGO_TERM_COLOR=always"])
	Env []string `mapstructure:"env"`
}

// ConsoleConfig controls how command output is displayed
type ConsoleConfig struct {
	// Encoding of cargo's output. Empty derives it from the locale (LC_ALL, LC_CTYPE, LANG).
	Encoding string `mapstructure:"encoding"`
	// Color controls colored output: "auto", "always" or "never"
	Color string `mapstructure:"color"`
	// MaxLines limits the TUI scrollback (default: 5000)
	MaxLines int `mapstructure:"max_lines"`
}

// WatchConfig controls `cargodeck watch`
type WatchConfig struct {
	// Debounce is the quiet period after a change before a build starts
	Debounce time.Duration `mapstructure:"debounce"`
	// Patterns are glob patterns, relative to the project root, that trigger a build
	Patterns []string `mapstructure:"patterns"`
	// Ignore are glob patterns that are never watched
	Ignore []string `mapstructure:"ignore"`
}

// HistoryConfig controls the command history database
type HistoryConfig struct {
	// Enabled records every finished command (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Path is the database file. Empty uses history.db in the config directory.
	Path string `mapstructure:"path"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn" or "error" (default: "info")
	Level string `mapstructure:"level"`
	// Dir is the directory for cargodeck.log. Empty disables file logging.
	Dir string `mapstructure:"dir"`
}

// ResolvePath returns the database path, expanding ~ and applying the default.
func (h *HistoryConfig) ResolvePath() string {
	if h.Path == "" {
		return filepath.Join(ConfigDir(), "history.db")
	}
	return expandHome(h.Path)
}

// ResolveDir returns the log directory with ~ expanded, or "" when disabled.
func (l *LoggingConfig) ResolveDir() string {
	if l.Dir == "" {
		return ""
	}
	return expandHome(l.Dir)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Cargo: CargoConfig{
			Path:            "cargo",
			StopGracePeriod: 3 * time.Second,
			Env:             []string{},
		},
		Console: ConsoleConfig{
			Encoding: "",
			Color:    "auto",
			MaxLines: 5000,
		},
		Watch: WatchConfig{
			Debounce: 300 * time.Millisecond,
			Patterns: slices.Clone(watch.DefaultPatterns),
			Ignore:   slices.Clone(watch.DefaultIgnore),
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    "",
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   "",
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Cargo defaults
	viper.SetDefault("cargo.path", defaults.Cargo.Path)
	viper.SetDefault("cargo.stop_grace_period", defaults.Cargo.StopGracePeriod)
	viper.SetDefault("cargo.env", defaults.Cargo.Env)

	// Console defaults
	viper.SetDefault("console.encoding", defaults.Console.Encoding)
	viper.SetDefault("console.color", defaults.Console.Color)
	viper.SetDefault("console.max_lines", defaults.Console.MaxLines)

	// Watch defaults
	viper.SetDefault("watch.debounce", defaults.Watch.Debounce)
	viper.SetDefault("watch.patterns", defaults.Watch.Patterns)
	viper.SetDefault("watch.ignore", defaults.Watch.Ignore)

	// History defaults
	viper.SetDefault("history.enabled", defaults.History.Enabled)
	viper.SetDefault("history.path", defaults.History.Path)

	// Logging defaults
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate the configuration
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cargodeck")
	}
	// Fall back to ~/.config/cargodeck
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cargodeck"
	}
	return filepath.Join(home, ".config", "cargodeck")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
