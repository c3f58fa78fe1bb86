package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/slipway-sh/slipway/internal/git"
	"github.com/slipway-sh/slipway/internal/hook"
	"github.com/slipway-sh/slipway/internal/ui"
)

var (
	seedCommit          string
	seedBranch          string
	seedRemoteUser      string
	seedIgnoreUntracked bool
	seedAllowDirty      bool
	seedForce           bool
)

var seedCmd = &cobra.Command{
	Use:     "seed",
	Aliases: []string{"s"},
	Short:   "Push a commit into the repository on a target host",
	Long:    "Push a commit from the local working copy into the repository on a target host, creating the repository first if it does not exist. Defaults to pushing HEAD to a branch matching the one checked out locally.",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, target, err := pickTarget()
		if err != nil {
			return err
		}

		seeder := newSeeder(target)
		if seedAllowDirty {
			seeder.AllowDirty()
		}
		if seedForce {
			seeder.ForcePush()
		}

		if pretend {
			if _, err := os.Stat(hook.PreSeedPath); err == nil {
				fmt.Fprintln(os.Stdout, ui.Yellow("(pretend) would run "+hook.PreSeedPath))
			}
		} else if err := runPreSeedHook(name, seeder); err != nil {
			return err
		}

		return seeder.Seed(seedTarget(target), git.SeedRequest{
			Commit:          seedCommit,
			RemoteBranch:    seedBranch,
			RemoteUser:      seedRemoteUser,
			IgnoreUntracked: seedIgnoreUntracked,
		})
	},
}

// runPreSeedHook resolves the commit and branch the same way the seeder will,
// so the hook sees what is about to be pushed.
func runPreSeedHook(targetName string, seeder *git.Seeder) error {
	cwd, err := getCwd()
	if err != nil {
		return err
	}

	commit := seedCommit
	if commit == "" {
		if commit, err = seeder.HeadRevision(); err != nil {
			return err
		}
	}
	branch := seedBranch
	if branch == "" {
		if branch, err = seeder.CurrentBranch(); err != nil {
			return err
		}
	}

	out, err := hook.RunPreSeed(cwd, hook.Env{Target: targetName, Commit: commit, Branch: branch})
	if out != "" {
		fmt.Fprint(os.Stdout, out)
	}
	return err
}

func init() {
	seedCmd.Flags().StringVar(&seedCommit, "commit", "", "Commit to push (defaults to HEAD)")
	seedCmd.Flags().StringVar(&seedBranch, "branch", "", "Remote branch to push to (defaults to the branch checked out locally)")
	seedCmd.Flags().StringVar(&seedRemoteUser, "remote-user", "", "User to push as (defaults to the sudo user, then the connection user)")
	seedCmd.Flags().BoolVar(&seedIgnoreUntracked, "ignore-untracked", false, "Do not count untracked files as dirty")
	seedCmd.Flags().BoolVar(&seedAllowDirty, "allow-dirty", false, "Seed even when the working copy has uncommitted changes")
	seedCmd.Flags().BoolVarP(&seedForce, "force", "f", false, "Allow the push to rewrite remote history")
	rootCmd.AddCommand(seedCmd)
}
