package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/slipway-sh/slipway/internal/bluegreen"
	"github.com/slipway-sh/slipway/internal/config"
	"github.com/slipway-sh/slipway/internal/git"
	"github.com/slipway-sh/slipway/internal/remote"
	"github.com/slipway-sh/slipway/internal/ui"
)

var (
	configPath string
	targetName string
	verbose    bool
	pretend    bool
	versionStr = "dev"

	confirmFn = ui.Confirm
	selectFn  = ui.Select
)

func SetVersion(v string) {
	versionStr = v
}

var rootCmd = &cobra.Command{
	Use:          "slipway",
	Short:        "Seed git repositories and swap blue/green slots on deployment hosts",
	Long:         "Push commits from your working copy straight into repositories on your servers, and stage releases into blue/green slots that swap live atomically.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultFileName, "Path to the configuration file")
	rootCmd.PersistentFlags().StringVarP(&targetName, "target", "t", "", "Name of the deployment target to operate on")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print every command sent to the target host")
	rootCmd.PersistentFlags().BoolVarP(&pretend, "pretend", "p", false, "Run through the command without making changes (dry run)")

	cobra.OnInitialize(setupLogging)
}

func setupLogging() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
}

func Execute() error {
	return rootCmd.Execute()
}

// pickTarget resolves which configured target a command operates on: the
// --target flag if given, the only target when just one is configured, or an
// interactive choice otherwise.
func pickTarget() (string, *config.Target, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return "", nil, err
	}

	name := targetName
	if name == "" {
		names := cfg.Names()
		if len(names) == 1 {
			name = names[0]
		} else if len(names) > 1 {
			if name, err = selectFn("Which target?", names); err != nil {
				return "", nil, err
			}
		}
	}

	target, err := cfg.Target(name)
	if err != nil {
		return "", nil, err
	}
	return name, target, nil
}

func newSeeder(target *config.Target) *git.Seeder {
	return &git.Seeder{
		Exec:    remote.NewSSH(target.Host()),
		Host:    target.Host(),
		Out:     os.Stdout,
		Pretend: pretend,
	}
}

func newSwitcher(target *config.Target) *bluegreen.Switcher {
	return &bluegreen.Switcher{
		Exec:    remote.NewSSH(target.Host()),
		Elev:    target.Elevation(),
		Out:     os.Stdout,
		Pretend: pretend,
	}
}

func seedTarget(target *config.Target) git.Target {
	return git.Target{Path: target.Path, Sudo: target.Sudo, SudoUser: target.SudoUser}
}

func getCwd() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return cwd, nil
}
