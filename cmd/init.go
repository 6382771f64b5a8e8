package cmd

import (
	"github.com/spf13/cobra"

	"github.com/guidepro/guidepro/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize guidepro configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to choose the completion and embedding providers, the data directory and the confirmation email sender, and writes .guidepro.yml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
