package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/slipway-sh/slipway/internal/bluegreen"
	"github.com/slipway-sh/slipway/internal/config"
	"github.com/slipway-sh/slipway/internal/ui"
)

var bluegreenYes bool

var bluegreenCmd = &cobra.Command{
	Use:     "bluegreen",
	Aliases: []string{"bg"},
	Short:   "Manage the blue/green slots on a target host",
	Long:    "Initialise, inspect and swap the blue/green slot pair on a target host. The live symlink names the running release; next names the slot the upcoming release stages into.",
}

var bluegreenInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the slot directories and the live/next symlinks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, target, err := pickTarget()
		if err != nil {
			return err
		}
		bg, err := requireBlueGreen(name, target)
		if err != nil {
			return err
		}

		layout, err := newSwitcher(target).Init(bg.Root, bg.Ports)
		if err != nil {
			return err
		}
		printLayout(layout)
		return nil
	},
}

var bluegreenSwapCmd = &cobra.Command{
	Use:   "swap",
	Short: "Swap the next slot into live",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, target, err := pickTarget()
		if err != nil {
			return err
		}
		bg, err := requireBlueGreen(name, target)
		if err != nil {
			return err
		}

		switcher := newSwitcher(target)
		layout, err := switcher.Init(bg.Root, bg.Ports)
		if err != nil {
			return err
		}

		if !bluegreenYes && !pretend {
			ok, err := confirmFn(fmt.Sprintf("Make %s live on %s?", layout.NextPath, name))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Aborted.")
				return nil
			}
		}

		if err := switcher.Swap(); err != nil {
			return err
		}
		printLayout(switcher.Layout())
		return nil
	},
}

var bluegreenStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which slot is live without changing anything",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, target, err := pickTarget()
		if err != nil {
			return err
		}
		bg, err := requireBlueGreen(name, target)
		if err != nil {
			return err
		}

		live, next, err := newSwitcher(target).Status(bg.Root)
		if err != nil {
			return err
		}
		ui.PrintTable(os.Stdout, [][]string{
			{ui.Bold("live"), ui.Green(live)},
			{ui.Bold("next"), next},
		}, 2)
		return nil
	},
}

func requireBlueGreen(name string, target *config.Target) (*config.BlueGreen, error) {
	if target.BlueGreen == nil {
		return nil, fmt.Errorf("target %q has no bluegreen section. Add one with a root and blue/green ports", name)
	}
	return target.BlueGreen, nil
}

func printLayout(l *bluegreen.Layout) {
	ui.PrintTable(os.Stdout, [][]string{
		{ui.Bold("live"), ui.Green(l.LivePath)},
		{ui.Bold("next"), l.NextPath},
		{ui.Bold("staging color"), l.Color},
		{ui.Bold("staging port"), strconv.Itoa(l.Port)},
	}, 2)
}

func init() {
	bluegreenSwapCmd.Flags().BoolVarP(&bluegreenYes, "yes", "y", false, "Skip the confirmation prompt")
	bluegreenCmd.AddCommand(bluegreenInitCmd)
	bluegreenCmd.AddCommand(bluegreenSwapCmd)
	bluegreenCmd.AddCommand(bluegreenStatusCmd)
	rootCmd.AddCommand(bluegreenCmd)
}
