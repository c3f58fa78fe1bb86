package hook

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/slipway-sh/slipway/internal/errs"
)

// PreSeedPath is where a project keeps its pre-seed hook, relative to the
// working copy root.
const PreSeedPath = ".slipway/preseed"

// Env carries the values exposed to a hook through its environment.
type Env struct {
	Target string
	Commit string
	Branch string
}

// RunPreSeed executes the project's pre-seed hook from the working copy root,
// with the resolved target, commit and branch in its environment. A missing
// hook is not an error. Returns the combined stdout+stderr output and any
// error.
func RunPreSeed(dir string, env Env) (string, error) {
	scriptPath := filepath.Join(dir, PreSeedPath)
	if _, err := os.Stat(scriptPath); os.IsNotExist(err) {
		return "", nil
	}

	cmd := exec.Command(scriptPath)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"SLIPWAY_TARGET="+env.Target,
		"SLIPWAY_COMMIT="+env.Commit,
		"SLIPWAY_BRANCH="+env.Branch,
	)

	out, err := cmd.CombinedOutput()
	output := string(out)

	if err != nil {
		return output, fmt.Errorf("%w: %s returned a non-zero exit code.\n%s", errs.ErrHook, scriptPath, output)
	}

	return output, nil
}
