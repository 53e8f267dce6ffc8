package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/marmos91/oakd/internal/cliout"
	"github.com/marmos91/oakd/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long: `Inspect and validate oakd's configuration.

Subcommands:
  show      Display the effective configuration (file + env + defaults)
  validate  Validate a configuration file`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Long: `Display the effective configuration: the merge of the config file,
OAKD_* environment variables, and built-in defaults.

Examples:
  oakd config show
  oakd config show --config /etc/oakd/config.yaml`,
	RunE: runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load and validate the configuration, reporting any struct-tag
validation failures (missing required fields, out-of-range values).

Examples:
  oakd config validate
  oakd config validate --config /etc/oakd/config.yaml`,
	RunE: runConfigValidate,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = os.Stdout.Write(data)
	return err
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	displayPath := GetConfigFile()
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	fmt.Printf("Configuration file: %s\n", displayPath)
	fmt.Println("Validation: OK")
	fmt.Println()
	cliout.KeyValueTable(os.Stdout, [][2]string{
		{"Wasm path", cfg.WasmPath},
		{"HTTP port", fmt.Sprintf("%d", cfg.HTTPListenPort)},
		{"Lookup data", cfg.LookupData},
		{"Log level", cfg.Logging.Level},
		{"Policy response size", fmt.Sprintf("%d bytes", cfg.Policy.ConstantResponseSizeBytes)},
		{"Policy processing time", cfg.Policy.ConstantProcessingTime.String()},
	})
	return nil
}
