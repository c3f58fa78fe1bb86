package bluegreen

import (
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/slipway-sh/slipway/internal/errs"
	"github.com/slipway-sh/slipway/internal/remote"
	"github.com/slipway-sh/slipway/internal/ui"
)

// Layout holds every path derived from a two-slot deployment root, plus the
// color and port of the slot the next release stages into. Link fields name
// the symlinks themselves; path fields name the slot directories they resolve
// to.
type Layout struct {
	Root      string
	BluePath  string
	GreenPath string
	LiveLink  string
	NextLink  string
	LivePath  string
	NextPath  string
	EnvPath   string
	PidFile   string
	NginxConf string
	Color     string
	Port      int
}

// Switcher manages the live/next symlink pair over the blue and green slots
// of a deployment root on the target host.
type Switcher struct {
	Exec    remote.Executor
	Elev    remote.Elevation
	Out     io.Writer
	Pretend bool

	layout *Layout
	ports  map[string]int
}

func (s *Switcher) output() io.Writer {
	if s.Out != nil {
		return s.Out
	}
	return os.Stdout
}

func (s *Switcher) say(msg string) {
	fmt.Fprintln(s.output(), msg)
}

// Layout returns the layout cached by the last Init, or nil before Init has
// run.
func (s *Switcher) Layout() *Layout {
	return s.layout
}

// Init creates the two-slot directory structure under root if it is missing,
// points live at blue and next at green on first run, and returns the layout
// resolved from wherever the links currently point. It is idempotent: on an
// already initialised root nothing is repointed. ports maps slot colors to
// the ports their app instances listen on.
func (s *Switcher) Init(root string, ports map[string]int) (*Layout, error) {
	l := &Layout{
		Root:      root,
		BluePath:  path.Join(root, "blue"),
		GreenPath: path.Join(root, "green"),
		LiveLink:  path.Join(root, "live"),
		NextLink:  path.Join(root, "next"),
	}

	if s.Pretend {
		s.say(ui.Yellow(fmt.Sprintf("(pretend) would initialise blue/green slots under %s", root)))
		l.LivePath, l.NextPath = l.BluePath, l.GreenPath
	} else {
		dirs := strings.Join([]string{
			l.Root,
			l.BluePath,
			l.GreenPath,
			path.Join(l.BluePath, "etc"),
			path.Join(l.GreenPath, "etc"),
		}, " ")
		if _, err := s.Exec.Remote("mkdir -p "+dirs, s.Elev); err != nil {
			return nil, err
		}
		if err := s.ensureLink(l.LiveLink, l.BluePath); err != nil {
			return nil, err
		}
		if err := s.ensureLink(l.NextLink, l.GreenPath); err != nil {
			return nil, err
		}

		var err error
		if l.LivePath, err = s.resolve(l.LiveLink); err != nil {
			return nil, err
		}
		if l.NextPath, err = s.resolve(l.NextLink); err != nil {
			return nil, err
		}
	}

	if err := l.derive(ports); err != nil {
		return nil, err
	}

	s.layout = l
	s.ports = ports
	return l, nil
}

// derive fills in the fields that follow the staged slot.
func (l *Layout) derive(ports map[string]int) error {
	l.EnvPath = path.Join(l.NextPath, "env")
	l.PidFile = path.Join(l.NextPath, "etc", "app.pid")
	l.NginxConf = path.Join(l.NextPath, "etc", "nginx.conf")
	l.Color = path.Base(l.NextPath)
	port, ok := ports[l.Color]
	if !ok {
		return fmt.Errorf("no port configured for the %s slot", l.Color)
	}
	l.Port = port
	return nil
}

// ensureLink creates link pointing at target unless link already exists.
func (s *Switcher) ensureLink(link, target string) error {
	exists, err := s.Exec.Exists(link, s.Elev)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = s.Exec.Remote(fmt.Sprintf("ln -s %s %s", target, link), s.Elev)
	return err
}

// resolve follows link to the slot directory it names.
func (s *Switcher) resolve(link string) (string, error) {
	return s.Exec.Remote("readlink -f "+link, s.Elev)
}

// Swap points live at the staged slot and next at the previously live one,
// then updates the cached layout so a second Swap restores the original
// pairing. Each link is replaced atomically by renaming a fresh symlink over
// it, so a reader never sees the link missing. Live is repointed first; a
// failure between the two repoints leaves both links naming the same slot
// until Swap is re-run.
func (s *Switcher) Swap() error {
	if err := s.requireLayout(); err != nil {
		return err
	}
	l := s.layout

	s.say(ui.Green("Swapping ") + l.NextPath + ui.Green(" into live"))

	if s.Pretend {
		s.say(ui.Yellow(fmt.Sprintf("(pretend) would point %s at %s and %s at %s",
			l.LiveLink, l.NextPath, l.NextLink, l.LivePath)))
	} else {
		if err := s.repoint(l.LiveLink, l.NextPath); err != nil {
			return err
		}
		if err := s.repoint(l.NextLink, l.LivePath); err != nil {
			return err
		}
	}

	l.LivePath, l.NextPath = l.NextPath, l.LivePath
	return l.derive(s.ports)
}

// repoint atomically replaces link with a symlink to target. The fresh link
// is created under a temporary name and renamed over the old one.
func (s *Switcher) repoint(link, target string) error {
	tmp := link + ".tmp"
	_, err := s.Exec.Remote(fmt.Sprintf("ln -sfn %s %s && mv -T %s %s", target, tmp, tmp, link), s.Elev)
	return err
}

// requireLayout guards operations that need a resolved layout.
func (s *Switcher) requireLayout() error {
	if s.layout == nil {
		return fmt.Errorf("%w: missing live path, next path, live link, next link (run init first)", errs.ErrMissingLayout)
	}
	checks := []struct {
		name  string
		value string
	}{
		{"live path", s.layout.LivePath},
		{"next path", s.layout.NextPath},
		{"live link", s.layout.LiveLink},
		{"next link", s.layout.NextLink},
	}
	var missing []string
	for _, c := range checks {
		if c.value == "" {
			missing = append(missing, c.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", errs.ErrMissingLayout, strings.Join(missing, ", "))
	}
	return nil
}

// Status reports the slots the live and next links currently resolve to,
// without creating or repointing anything.
func (s *Switcher) Status(root string) (live, next string, err error) {
	if live, err = s.resolve(path.Join(root, "live")); err != nil {
		return "", "", err
	}
	if next, err = s.resolve(path.Join(root, "next")); err != nil {
		return "", "", err
	}
	return live, next, nil
}
