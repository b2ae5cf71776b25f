/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jacobarthurs/pgwalk/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config file with example template",
	Long: `Create config.yaml in the pgwalk user config directory with the default
thresholds and index suggestion policy. If a config file already exists,
it will not be overwritten unless --force is given.`,
	Example: `  # Create default config
  pgwalk init

  # Overwrite existing config
  pgwalk init --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		path, err := config.Init(force)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", path)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolP("force", "f", false, "Overwrite existing config file")
}
