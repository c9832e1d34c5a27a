package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/cargodeck/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify cargodeck configuration",
	Long: `View or modify cargodeck configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  cargodeck config set cargo.path /opt/rust/bin/cargo
  cargodeck config set cargo.stop_grace_period 5s
  cargodeck config set console.color never

Valid keys:
  cargo.path                - cargo executable
  cargo.stop_grace_period   - time a stopped command gets before it is killed
  console.encoding          - encoding of cargo output (empty: from locale)
  console.color             - auto, always or never
  console.max_lines         - dashboard scrollback
  watch.debounce            - quiet period before watch rebuilds
  history.enabled           - record finished commands (true/false)
  history.path              - history database file
  logging.level             - debug, info, warn or error
  logging.dir               - directory for cargodeck.log (empty: no log)`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/cargodeck/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

// settableKeys maps each key accepted by `config set` to its value type.
var settableKeys = map[string]string{
	"cargo.path":              "string",
	"cargo.stop_grace_period": "duration",
	"console.encoding":        "string",
	"console.color":           "string",
	"console.max_lines":       "int",
	"watch.debounce":          "duration",
	"history.enabled":         "bool",
	"history.path":            "string",
	"logging.level":           "string",
	"logging.dir":             "string",
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	// Show where config is being read from
	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "# Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintln(out, "# Config file: (none - using defaults)")
	}

	data, err := yaml.Marshal(settingsView(config.Get()))
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

// settingsView renders durations as strings so the output can be pasted
// back into a config file.
func settingsView(cfg *config.Config) map[string]any {
	return map[string]any{
		"cargo": map[string]any{
			"path":              cfg.Cargo.Path,
			"stop_grace_period": cfg.Cargo.StopGracePeriod.String(),
			"env":               cfg.Cargo.Env,
		},
		"console": map[string]any{
			"encoding":  cfg.Console.Encoding,
			"color":     cfg.Console.Color,
			"max_lines": cfg.Console.MaxLines,
		},
		"watch": map[string]any{
			"debounce": cfg.Watch.Debounce.String(),
			"patterns": cfg.Watch.Patterns,
			"ignore":   cfg.Watch.Ignore,
		},
		"history": map[string]any{
			"enabled": cfg.History.Enabled,
			"path":    cfg.History.Path,
		},
		"logging": map[string]any{
			"level": cfg.Logging.Level,
			"dir":   cfg.Logging.Dir,
		},
	}
}

// parseSetting converts value to the type registered for key.
func parseSetting(key, value string) (any, error) {
	keyType, ok := settableKeys[key]
	if !ok {
		return nil, fmt.Errorf("unknown configuration key: %s\nRun 'cargodeck config set --help' to see valid keys", key)
	}

	switch keyType {
	case "bool":
		if value != "true" && value != "false" {
			return nil, fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		return value == "true", nil
	case "int":
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected integer", key)
		}
		return n, nil
	case "duration":
		d, err := time.ParseDuration(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected a duration such as 500ms or 3s", key)
		}
		return d.String(), nil
	default:
		return value, nil
	}
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	typedValue, err := parseSetting(key, args[1])
	if err != nil {
		return err
	}

	// Validate the whole configuration with the new value applied
	previous := viper.Get(key)
	viper.Set(key, typedValue)
	if _, err := config.Load(); err != nil {
		viper.Set(key, previous)
		return err
	}

	// Ensure config directory exists
	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Write to config file
	configFile := config.ConfigFile()
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\n", key, typedValue)
	fmt.Fprintf(cmd.OutOrStdout(), "Config saved to %s\n", configFile)
	return nil
}

const configTemplate = `# cargodeck configuration

cargo:
  # cargo executable, looked up on PATH unless absolute
  path: cargo
  # Time a stopped command gets to exit before it is killed
  stop_grace_period: 3s
  # Extra environment for every cargo command
  env: []
  #  - RUST_BACKTRACE=1

console:
  # Encoding of cargo output; empty derives it from LC_ALL / LC_CTYPE / LANG
  encoding: ""
  # auto, always or never
  color: auto
  # Dashboard scrollback in lines
  max_lines: 5000

watch:
  # Quiet period after a change before rebuilding
  debounce: 300ms
  patterns:
%s
  ignore:
%s

history:
  # Record every finished command
  enabled: true
  # Database file; empty uses history.db next to this file
  path: ""

logging:
  # debug, info, warn or error
  level: info
  # Directory for cargodeck.log; empty disables logging
  dir: ""
`

func yamlList(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("    - %q", item)
	}
	return strings.Join(lines, "\n")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'cargodeck config set' to modify values", configFile)
	}

	// Create config directory
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	defaults := config.Default()
	content := fmt.Sprintf(configTemplate, yamlList(defaults.Watch.Patterns), yamlList(defaults.Watch.Ignore))
	if err := os.WriteFile(configFile, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", configFile)
	fmt.Fprintln(cmd.OutOrStdout(), "Edit this file to customize cargodeck's behavior.")
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	configFile := config.ConfigFile()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", configFile)
	}

	// Also show config search paths
	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	fmt.Fprintf(out, "  2. $HOME/.config/cargodeck/config.yaml\n")
	fmt.Fprintln(out, "\nEnvironment variables: CARGODECK_* (e.g., CARGODECK_CARGO_PATH)")
	return nil
}
