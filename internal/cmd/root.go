package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/cargodeck/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "cargodeck",
	Short: "Run and watch cargo builds from one console",
	Long: `Cargodeck drives the cargo toolchain for a Rust project: it creates
projects, builds, runs and cleans them one command at a time, and streams
the decoded output to the terminal or an interactive dashboard.

Run without a subcommand in a terminal to open the dashboard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.RunE = runDashboard

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/cargodeck/config.yaml)")
	rootCmd.PersistentFlags().StringP("project", "p", "", "project directory (default: nearest directory with a Cargo.toml)")
	rootCmd.PersistentFlags().String("color", "", "color output: auto, always or never")
	bindGlobalFlags()
}

// bindGlobalFlags lets the global flags override configuration values.
func bindGlobalFlags() {
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("console.color", rootCmd.PersistentFlags().Lookup("color"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/cargodeck")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("CARGODECK")
	// Replace dots with underscores for nested keys in env vars
	// e.g., CARGODECK_CARGO_PATH for cargo.path
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
