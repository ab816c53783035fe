package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/modlens/modlens/internal/config"
	"github.com/modlens/modlens/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "modlens",
	Short: "Policy-grounded hate speech analysis",
	Long: `modlens classifies text for hate speech with an LLM, retrieves the
moderation policies that apply from a local vector index, explains the
decision and recommends a moderation action. It serves an HTTP API and
an MCP server for AI agents.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Configure(os.Stderr, verbose)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultConfigFile, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
