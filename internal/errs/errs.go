package errs

import "errors"

var (
	ErrDirtyWorkingCopy  = errors.New("working copy is dirty. Commit or stash your changes, or re-run with --allow-dirty to seed anyway")
	ErrCommitNotInBranch = errors.New("commit is not contained in the branch being pushed. Pass --branch to push to an explicit remote branch")
	ErrNonFastForward    = errors.New("the remote rejected the push as a non-fast-forward. Seeding aborted so no history is lost; re-run with --force if you mean to overwrite it")
	ErrMissingLayout     = errors.New("blue/green layout has not been initialised")
	ErrUnknownTarget     = errors.New("target is not defined in the configuration file")
	ErrNoTargets         = errors.New("no deployment targets are configured. Add a targets section to slipway.yaml")
	ErrHook              = errors.New("pre-seed hook failed")
)
