package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/slipway-sh/slipway/internal/errs"
	"github.com/slipway-sh/slipway/internal/remote"
)

const DefaultFileName = "slipway.yaml"

// BlueGreen configures the two-slot layout on a target host.
type BlueGreen struct {
	Root  string         `yaml:"root"`
	Ports map[string]int `yaml:"ports"`
}

// Target is one deployment destination: where to reach the host and where the
// seeded repository lives on it.
type Target struct {
	Addr      string     `yaml:"addr"`
	Port      int        `yaml:"port"`
	User      string     `yaml:"user"`
	Path      string     `yaml:"path"`
	Sudo      bool       `yaml:"sudo"`
	SudoUser  string     `yaml:"sudo_user"`
	BlueGreen *BlueGreen `yaml:"bluegreen"`
}

// Host returns the SSH coordinates for the target.
func (t *Target) Host() remote.Host {
	return remote.Host{Addr: t.Addr, Port: t.Port, User: t.User}
}

// Elevation returns the privilege escalation settings for the target.
func (t *Target) Elevation() remote.Elevation {
	return remote.Elevation{Sudo: t.Sudo, SudoUser: t.SudoUser}
}

// File is the parsed slipway.yaml.
type File struct {
	Targets map[string]*Target `yaml:"targets"`
}

// Load reads and validates a configuration file.
func Load(path string) (*File, error) {
	path = ExpandPath(path)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no configuration file at %s. Create one or point --config at it", path)
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	for name, t := range f.Targets {
		if err := validateTarget(name, t); err != nil {
			return nil, err
		}
	}
	return &f, nil
}

func validateTarget(name string, t *Target) error {
	if t == nil {
		return fmt.Errorf("target %q is empty", name)
	}
	if t.Addr == "" {
		return fmt.Errorf("target %q: addr is required", name)
	}
	if t.Path == "" {
		return fmt.Errorf("target %q: path is required", name)
	}
	if t.Port == 0 {
		t.Port = 22
	}
	if t.User == "" {
		t.User = currentUser()
	}
	if bg := t.BlueGreen; bg != nil {
		if bg.Root == "" {
			return fmt.Errorf("target %q: bluegreen.root is required", name)
		}
		for _, color := range []string{"blue", "green"} {
			if _, ok := bg.Ports[color]; !ok {
				return fmt.Errorf("target %q: bluegreen.ports is missing %q", name, color)
			}
		}
	}
	return nil
}

// Target returns the named target, or the only one when name is empty and a
// single target is configured.
func (f *File) Target(name string) (*Target, error) {
	if len(f.Targets) == 0 {
		return nil, errs.ErrNoTargets
	}
	if name == "" {
		if len(f.Targets) == 1 {
			for _, t := range f.Targets {
				return t, nil
			}
		}
		return nil, fmt.Errorf("multiple targets configured (%s). Pass --target to pick one", strings.Join(f.Names(), ", "))
	}
	t, ok := f.Targets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownTarget, name)
	}
	return t, nil
}

// Names returns the configured target names, sorted.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Targets))
	for name := range f.Targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[1:])
	}
	return path
}

// currentUser is the ambient connection user when a target does not name one.
func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}
