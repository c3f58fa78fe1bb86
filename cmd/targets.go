package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/slipway-sh/slipway/internal/config"
	"github.com/slipway-sh/slipway/internal/ui"
)

var targetsCmd = &cobra.Command{
	Use:     "targets",
	Aliases: []string{"ls"},
	Short:   "List the configured deployment targets",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		names := cfg.Names()
		if len(names) == 0 {
			fmt.Println("No targets configured.")
			return nil
		}

		rows := make([][]string, 0, len(names))
		for _, name := range names {
			target := cfg.Targets[name]
			dest := target.User + "@" + target.Addr + ":" + strconv.Itoa(target.Port)
			row := []string{ui.Bold(name), dest, target.Path}
			if target.BlueGreen != nil {
				row = append(row, ui.Blue("bluegreen:")+target.BlueGreen.Root)
			}
			rows = append(rows, row)
		}
		ui.PrintTable(os.Stdout, rows, 2)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(targetsCmd)
}
