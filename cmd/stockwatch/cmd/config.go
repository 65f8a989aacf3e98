package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"stockwatch/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage watchlist configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  stockwatch config init -o my-config.yaml
  stockwatch config validate -f my-config.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	RunE:  runConfigValidate,
}

var configInitOutput string

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "stockwatch.yaml", "output config file path")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	cfg.Watchlist = []config.WatchEntry{
		{Symbol: "RELIANCE", Region: "IN", Strategy: "position"},
		{Symbol: "AAPL", Region: "US", Strategy: "swing"},
	}
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("Created default configuration: %s\n", configInitOutput)
	fmt.Println("\nEdit the watchlist and run with:")
	fmt.Printf("  stockwatch watch -f %s\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	if cfgPath == "" {
		return fmt.Errorf("pass the config file with -f")
	}
	cfg, err := config.LoadFromFile(cfgPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Printf("Configuration valid: %s\n", cfgPath)
	fmt.Printf("  Watchlist: %d symbols\n", len(cfg.Watchlist))
	fmt.Printf("  Risk: ATR(%d) x %.1f\n", cfg.Risk.ATRPeriod, cfg.Risk.ATRMultiplier)
	fmt.Printf("  Journal: %s\n", cfg.Journal.Type)
	return nil
}
