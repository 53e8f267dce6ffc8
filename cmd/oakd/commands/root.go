// Package commands implements oakd's CLI: starting the server and
// inspecting its configuration.
package commands

import (
	"github.com/spf13/cobra"
)

// Version information injected at build time via ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// cfgFile is the --config persistent flag shared by every subcommand.
var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "oakd",
	Short: "oakd - a policy-shaped Wasm request server",
	Long: `oakd loads a guest WebAssembly module and serves it behind a
constant-time, constant-size response policy: every response it emits has
the same wire size, and is never returned before a fixed processing time
has elapsed, regardless of how quickly the guest actually finished.

Use "oakd [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called once by main.main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/oakd/config.yaml)")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
}

// GetConfigFile returns the config file path from the global --config flag.
func GetConfigFile() string {
	return cfgFile
}
