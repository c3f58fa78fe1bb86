package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/slipway-sh/slipway/internal/updater"
)

var checkOnly bool

var updateCmd = &cobra.Command{
	Use:     "update",
	Aliases: []string{"u"},
	Short:   "Update slipway to the latest version",
	Long:    "Check for and install the latest version of slipway from GitHub Releases.",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if checkOnly {
			return updater.CheckOnly(versionStr, os.Stdout)
		}
		return updater.Update(versionStr, pretend, os.Stdout)
	},
}

func init() {
	updateCmd.Flags().BoolVar(&checkOnly, "check", false, "Only check if an update is available")
	rootCmd.AddCommand(updateCmd)
}
