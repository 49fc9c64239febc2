package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/asad/mailreg/internal/config"
	"github.com/asad/mailreg/internal/logging"
	"github.com/asad/mailreg/internal/services/accounts"
)

var (
	// Version is set at build time via ldflags.
	// Example: go build -ldflags "-X github.com/asad/mailreg/internal/cli.Version=1.0.0"
	Version = "dev"

	// dataFile overrides DATA_FILE when --file is given.
	dataFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "mailreg",
	Short: "Registry of email accounts and the services they use",
	Long: `mailreg keeps a registry of email accounts, their passwords and the
services each account is enrolled in. The registry is stored as a single
JSON file (DATA_FILE, or --file).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// versionCmd represents the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "mailreg version %s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dataFile, "file", "f", "", "registry file (overrides DATA_FILE)")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(serviceCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute is the entry point for the CLI. It should be called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads and validates the configuration, then builds the logger.
func setup() (*config.Config, logging.Logger, error) {
	cfg := config.Load()
	if dataFile != "" {
		cfg.DataFile = dataFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger, nil
}

// openStore loads the account registry named by the configuration.
func openStore() (*accounts.FileAccountStore, logging.Logger, error) {
	cfg, logger, err := setup()
	if err != nil {
		return nil, nil, err
	}

	store, err := accounts.NewFileAccountStore(cfg.DataFile, logger)
	if err != nil {
		return nil, nil, err
	}
	return store, logger, nil
}
