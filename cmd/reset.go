package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	resetCommit string
	resetYes    bool
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Hard-reset the working directory on a target host",
	Long:  "Hard-reset the seeded repository's working directory on a target host to a commit, discarding whatever it currently holds. Defaults to the local HEAD.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, target, err := pickTarget()
		if err != nil {
			return err
		}

		if !resetYes && !pretend {
			ok, err := confirmFn(fmt.Sprintf("Hard-reset the working directory on %s? This discards its current contents.", name))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Aborted.")
				return nil
			}
		}

		return newSeeder(target).Reset(seedTarget(target), resetCommit)
	},
}

func init() {
	resetCmd.Flags().StringVar(&resetCommit, "commit", "", "Commit to reset to (defaults to HEAD)")
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}
