package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/modlens/modlens/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with an interactive wizard",
	Long: `Asks for the LLM provider, quality tier, policy directory, HTTP port and
exclude patterns, then writes the config file. An existing file is kept
unless --force is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkConfigWritable(cfgFile, initForce); err != nil {
			return err
		}
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func checkConfigWritable(path string, force bool) error {
	if force {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists; rerun with --force to overwrite", path)
	}
	return nil
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}
