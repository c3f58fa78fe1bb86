package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/slipway-sh/slipway/internal/errs"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const twoTargets = `
targets:
  production:
    addr: app1.example.com
    port: 2222
    user: deploy
    path: /srv/app/repo
    sudo: true
    sudo_user: app
    bluegreen:
      root: /srv/app
      ports:
        blue: 8001
        green: 8002
  staging:
    addr: staging.example.com
    path: /srv/staging/repo
`

func TestLoad(t *testing.T) {
	f, err := Load(writeConfig(t, twoTargets))
	if err != nil {
		t.Fatal(err)
	}

	prod, err := f.Target("production")
	if err != nil {
		t.Fatal(err)
	}
	if prod.Addr != "app1.example.com" || prod.Port != 2222 || prod.User != "deploy" {
		t.Fatalf("unexpected host fields: %+v", prod)
	}
	if prod.Path != "/srv/app/repo" {
		t.Fatalf("unexpected path: %s", prod.Path)
	}
	if !prod.Sudo || prod.SudoUser != "app" {
		t.Fatalf("unexpected elevation fields: %+v", prod)
	}
	if prod.BlueGreen == nil || prod.BlueGreen.Root != "/srv/app" {
		t.Fatalf("unexpected bluegreen: %+v", prod.BlueGreen)
	}
	if prod.BlueGreen.Ports["green"] != 8002 {
		t.Fatalf("unexpected green port: %d", prod.BlueGreen.Ports["green"])
	}
}

func TestLoadDefaults(t *testing.T) {
	f, err := Load(writeConfig(t, twoTargets))
	if err != nil {
		t.Fatal(err)
	}

	staging, err := f.Target("staging")
	if err != nil {
		t.Fatal(err)
	}
	if staging.Port != 22 {
		t.Fatalf("expected port to default to 22, got %d", staging.Port)
	}
	if staging.User == "" {
		t.Fatal("expected user to default to the current user")
	}
	if staging.BlueGreen != nil {
		t.Fatalf("expected no bluegreen section, got %+v", staging.BlueGreen)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), DefaultFileName))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "no configuration file") {
		t.Fatalf("expected a remediation hint, got %v", err)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "targets: [not: a: map"))
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		want     string
	}{
		{
			"missing addr",
			"targets:\n  production:\n    path: /srv/app/repo\n",
			"addr is required",
		},
		{
			"missing path",
			"targets:\n  production:\n    addr: app1.example.com\n",
			"path is required",
		},
		{
			"missing bluegreen root",
			"targets:\n  production:\n    addr: app1.example.com\n    path: /srv/app/repo\n    bluegreen:\n      ports:\n        blue: 8001\n        green: 8002\n",
			"bluegreen.root is required",
		},
		{
			"missing slot port",
			"targets:\n  production:\n    addr: app1.example.com\n    path: /srv/app/repo\n    bluegreen:\n      root: /srv/app\n      ports:\n        blue: 8001\n",
			`bluegreen.ports is missing "green"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.contents))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in error, got %v", tt.want, err)
			}
			if !strings.Contains(err.Error(), "production") {
				t.Fatalf("expected the target to be named, got %v", err)
			}
		})
	}
}

func TestTargetUnknown(t *testing.T) {
	f, err := Load(writeConfig(t, twoTargets))
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.Target("qa")
	if !errors.Is(err, errs.ErrUnknownTarget) {
		t.Fatalf("expected ErrUnknownTarget, got %v", err)
	}
}

func TestTargetDefaultsToOnlyOne(t *testing.T) {
	contents := "targets:\n  production:\n    addr: app1.example.com\n    path: /srv/app/repo\n"
	f, err := Load(writeConfig(t, contents))
	if err != nil {
		t.Fatal(err)
	}

	target, err := f.Target("")
	if err != nil {
		t.Fatal(err)
	}
	if target.Addr != "app1.example.com" {
		t.Fatalf("unexpected target: %+v", target)
	}
}

func TestTargetEmptyNameWithMultiple(t *testing.T) {
	f, err := Load(writeConfig(t, twoTargets))
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.Target("")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "--target") {
		t.Fatalf("expected a remediation hint, got %v", err)
	}
}

func TestTargetNoneConfigured(t *testing.T) {
	f := &File{}
	_, err := f.Target("production")
	if !errors.Is(err, errs.ErrNoTargets) {
		t.Fatalf("expected ErrNoTargets, got %v", err)
	}
}

func TestNamesSorted(t *testing.T) {
	f, err := Load(writeConfig(t, twoTargets))
	if err != nil {
		t.Fatal(err)
	}

	names := f.Names()
	if len(names) != 2 || names[0] != "production" || names[1] != "staging" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestHostAndElevation(t *testing.T) {
	target := &Target{Addr: "app1.example.com", Port: 22, User: "deploy", Sudo: true, SudoUser: "app"}

	host := target.Host()
	if host.Addr != "app1.example.com" || host.Port != 22 || host.User != "deploy" {
		t.Fatalf("unexpected host: %+v", host)
	}

	elev := target.Elevation()
	if !elev.Sudo || elev.SudoUser != "app" {
		t.Fatalf("unexpected elevation: %+v", elev)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	if got := ExpandPath("~/slipway.yaml"); got != filepath.Join(home, "slipway.yaml") {
		t.Fatalf("expected home expansion, got %q", got)
	}
	if got := ExpandPath("/etc/slipway.yaml"); got != "/etc/slipway.yaml" {
		t.Fatalf("expected absolute path untouched, got %q", got)
	}
}
