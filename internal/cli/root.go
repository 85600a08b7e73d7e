package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	addr       string
	configPath string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("CONFIG_PATH")

	cmd := &cobra.Command{
		Use:   "classtallyd",
		Short: "Classroom question-and-answer collection service",
	}

	cmd.PersistentFlags().StringVar(&addr, "addr", "", "address to listen on (overrides config)")
	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.AddCommand(NewServeCmd(&configPath, &addr))
	cmd.AddCommand(NewMigrateCmd(&configPath))
	return cmd
}
