// Package cmd holds the concierge command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	configx "github.com/tanpawarit/Chative-Travel-Concierge/pkg/config"
	"github.com/tanpawarit/Chative-Travel-Concierge/pkg/logger/autoload"
)

var rootCmd = &cobra.Command{
	Use:   "concierge",
	Short: "Travel and deals concierge with conversational memory",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if path, _ := cmd.Flags().GetString("env"); path != "" {
			applyEnvFile(path)
		}
	},
	SilenceUsage: true,
}

// applyEnvFile points configuration at path and reloads the logger so LOG_*
// settings from the file take effect.
func applyEnvFile(path string) {
	configx.SetEnvFile(path)
	autoload.Load()
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("env", "", "Path to a .env file loaded before configuration")
}
