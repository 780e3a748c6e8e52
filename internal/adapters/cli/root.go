package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/fascia-warehouse/internal/infrastructure/config"
)

var (
	// Global flags
	configPath string
	socketPath string
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "warehouse",
		Short: "Warehouse fascia pick/sequence/load simulator",
		Long: `Simulates a warehouse that batches car fascia orders into picking
requests and moves them through picking, sequencing and loading.

Examples:
  warehouse simulate events.txt --fresh
  warehouse simulate - < events.txt
  warehouse daemon
  warehouse send Order SE White
  warehouse status
  warehouse inventory --format yaml
  warehouse completions`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: ./config.yaml, ./configs, /etc/warehouse)")
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", "",
		"Path to daemon Unix socket (default from config)")

	rootCmd.AddCommand(NewSimulateCommand())
	rootCmd.AddCommand(NewDaemonCommand())
	rootCmd.AddCommand(NewSendCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewInventoryCommand())
	rootCmd.AddCommand(NewCompletionsCommand())
	rootCmd.AddCommand(NewRunsCommand())
	rootCmd.AddCommand(NewConfigCommand())

	return rootCmd
}

// loadConfig loads configuration from --config or the search paths
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// daemonSocket resolves --socket, then config
func daemonSocket() string {
	if socketPath != "" {
		return socketPath
	}
	return config.LoadConfigOrDefault(configPath).Daemon.SocketPath
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
