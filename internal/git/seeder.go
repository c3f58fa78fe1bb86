package git

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/slipway-sh/slipway/internal/errs"
	"github.com/slipway-sh/slipway/internal/remote"
	"github.com/slipway-sh/slipway/internal/ui"
)

// Target identifies where a seeded repository lives on the target host and
// how commands there are elevated.
type Target struct {
	Path     string
	Sudo     bool
	SudoUser string
}

func (t Target) elevation() remote.Elevation {
	return remote.Elevation{Sudo: t.Sudo, SudoUser: t.SudoUser}
}

// SeedRequest carries the per-seed parameters. Empty fields resolve against
// the local working copy at seed time.
type SeedRequest struct {
	Commit          string
	RemoteBranch    string
	RemoteUser      string
	IgnoreUntracked bool
}

// Seeder publishes commits from the local working copy into a repository on a
// target host. The two override flags are one-way: once set they hold for the
// rest of the process.
type Seeder struct {
	Exec    remote.Executor
	Host    remote.Host
	Out     io.Writer
	Pretend bool

	allowDirty bool
	forcePush  bool
}

// AllowDirty permits seeding even when the working copy has uncommitted
// changes.
func (s *Seeder) AllowDirty() { s.allowDirty = true }

// ForcePush permits pushes that rewrite remote history.
func (s *Seeder) ForcePush() { s.forcePush = true }

func (s *Seeder) output() io.Writer {
	if s.Out != nil {
		return s.Out
	}
	return os.Stdout
}

func (s *Seeder) say(msg string) {
	fmt.Fprintln(s.output(), msg)
}

// CurrentBranch returns the working copy's checked-out branch name.
func (s *Seeder) CurrentBranch() (string, error) {
	return s.Exec.Local("", "git", "rev-parse", "--abbrev-ref", "HEAD")
}

// HeadRevision returns the commit id the working copy is checked out at.
func (s *Seeder) HeadRevision() (string, error) {
	return s.Exec.Local("", "git", "rev-parse", "HEAD")
}

// IsDirty reports whether the working copy has modifications. It is always
// false once AllowDirty has been invoked.
func (s *Seeder) IsDirty(ignoreUntracked bool) (bool, error) {
	if s.allowDirty {
		return false, nil
	}
	args := []string{"status", "--porcelain"}
	if ignoreUntracked {
		args = []string{"status", "--untracked-files=no", "--porcelain"}
	}
	out, err := s.Exec.Local("", "git", args...)
	if err != nil {
		return false, err
	}
	return out != "", nil
}

// CommitInBranch reports whether commit is reachable from the tip of branch.
func (s *Seeder) CommitInBranch(commit, branch string) (bool, error) {
	_, err := s.Exec.Local("", "git", "merge-base", "--is-ancestor", commit, branch)
	if err == nil {
		return true, nil
	}
	if remote.ExitCode(err) == 1 {
		return false, nil
	}
	return false, err
}

// EnsureRepository makes sure the target hosts a git repository that accepts
// pushes to its checked-out branch. Creating it is idempotent; an existing
// repository only has its receive configuration re-applied.
func (s *Seeder) EnsureRepository(t Target) error {
	if s.Pretend {
		s.say(ui.Yellow(fmt.Sprintf("(pretend) would ensure a git repository at %s", t.Path)))
		return nil
	}

	exists, err := s.Exec.Exists(t.Path+"/.git", t.elevation())
	if err != nil {
		return err
	}
	if exists {
		return s.configureReceive(t)
	}

	s.say(ui.Green("Creating new git repository ") + t.Path)

	if _, err := s.Exec.Remote("mkdir -p "+t.Path, t.elevation()); err != nil {
		return err
	}
	if _, err := s.Exec.Remote("git -C "+t.Path+" init", t.elevation()); err != nil {
		return err
	}
	return s.configureReceive(t)
}

// configureReceive silences git complaints about pushes coming in on the
// current branch. The pushes only seed the object store and do not modify the
// working copy.
func (s *Seeder) configureReceive(t Target) error {
	_, err := s.Exec.Remote("git -C "+t.Path+" config receive.denyCurrentBranch ignore", t.elevation())
	return err
}

// Seed pushes a commit from the local working copy into the target
// repository, creating it first if necessary. The working copy must be clean
// unless AllowDirty was invoked, and an implicitly resolved branch must
// contain the commit being pushed.
func (s *Seeder) Seed(t Target, req SeedRequest) error {
	dirty, err := s.IsDirty(req.IgnoreUntracked)
	if err != nil {
		return err
	}
	if dirty {
		return errs.ErrDirtyWorkingCopy
	}

	if err := s.EnsureRepository(t); err != nil {
		return err
	}

	commit := req.Commit
	if commit == "" {
		if commit, err = s.HeadRevision(); err != nil {
			return err
		}
	}

	branch := req.RemoteBranch
	if branch == "" {
		if branch, err = s.CurrentBranch(); err != nil {
			return err
		}
		contained, err := s.CommitInBranch(commit, branch)
		if err != nil {
			return err
		}
		if !contained {
			return fmt.Errorf("%w: commit %s, branch %s", errs.ErrCommitNotInBranch, commit, branch)
		}
	}

	user := req.RemoteUser
	if user == "" {
		user = t.SudoUser
	}
	if user == "" {
		user = s.Host.User
	}

	s.say(ui.Green("Pushing commit ") + commit)
	s.say(ui.Green("Pushing to remote branch ") + branch)

	args := []string{"push", s.pushURL(user, t.Path), commit + ":refs/heads/" + branch}
	if s.forcePush {
		args = append(args, "-f")
	}

	if s.Pretend {
		s.say(ui.Yellow("(pretend) would run git " + strings.Join(args, " ")))
		return nil
	}

	out, err := s.Exec.Local("", "git", args...)
	if err != nil {
		if out != "" {
			s.say(out)
		}
		if !s.forcePush {
			return fmt.Errorf("%w: commit %s", errs.ErrNonFastForward, commit)
		}
		return err
	}
	return nil
}

// Reset overwrites the target's working directory to match a commit,
// defaulting to the local HEAD. There is no undo.
func (s *Seeder) Reset(t Target, commit string) error {
	var err error
	if commit == "" {
		if commit, err = s.HeadRevision(); err != nil {
			return err
		}
	}

	s.say(ui.Green("Resetting to commit ") + commit)

	if s.Pretend {
		s.say(ui.Yellow(fmt.Sprintf("(pretend) would run git -C %s reset --hard %s", t.Path, commit)))
		return nil
	}

	_, err = s.Exec.Remote("git -C "+t.Path+" reset --hard "+commit, t.elevation())
	return err
}

// pushURL renders the git+ssh URL for the target repository. The repository
// path is expected to be absolute.
func (s *Seeder) pushURL(user, repoPath string) string {
	port := s.Host.Port
	if port == 0 {
		port = 22
	}
	return fmt.Sprintf("git+ssh://%s@%s:%d%s", user, s.Host.Addr, port, repoPath)
}
