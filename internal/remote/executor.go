package remote

import (
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Host identifies the machine deployment commands are sent to.
type Host struct {
	Addr string
	Port int
	User string
}

// Elevation describes optional privilege escalation for remote commands.
// SudoUser implies running as that user rather than root.
type Elevation struct {
	Sudo     bool
	SudoUser string
}

// Executor abstracts command execution for testability. Local runs a command
// on the operator's machine; Remote sends a shell command line to the target
// host; Exists probes a remote path.
type Executor interface {
	Local(dir string, name string, args ...string) (string, error)
	Remote(cmd string, elev Elevation) (string, error)
	Exists(path string, elev Elevation) (bool, error)
}

// SSH executes remote commands through the system ssh client, so the
// operator's keys, agent and ssh_config apply unchanged. Local commands run
// directly via os/exec.
type SSH struct {
	Host Host
}

func NewSSH(host Host) *SSH {
	return &SSH{Host: host}
}

func (s *SSH) Local(dir string, name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	log.Debug().Msgf("[local] %s", renderArgv(name, args))
	out, err := cmd.CombinedOutput()
	output := strings.TrimSpace(string(out))
	if err != nil {
		return output, fmt.Errorf("%s: %w", renderArgv(name, args), err)
	}
	return output, nil
}

func (s *SSH) Remote(cmdLine string, elev Elevation) (string, error) {
	line := elevate(cmdLine, elev)
	verb := "run"
	if elev.Sudo {
		verb = "sudo"
	}
	log.Debug().Msgf("[%s] %s: %s", s.Host.Addr, verb, line)

	cmd := exec.Command("ssh", s.sshArgs(line)...)
	out, err := cmd.CombinedOutput()
	output := strings.TrimSpace(string(out))
	if err != nil {
		return output, fmt.Errorf("ssh %s: %s: %w", s.Host.Addr, line, err)
	}
	return output, nil
}

// Exists probes path on the target. The ssh client propagates the remote exit
// status, so exit 1 means the path is absent while anything else is a
// transport or permission failure.
func (s *SSH) Exists(path string, elev Elevation) (bool, error) {
	_, err := s.Remote("test -e "+path, elev)
	if err == nil {
		return true, nil
	}
	if ExitCode(err) == 1 {
		return false, nil
	}
	return false, err
}

// sshArgs builds the argv passed to the ssh binary. A zero port or empty user
// defers to ssh_config.
func (s *SSH) sshArgs(line string) []string {
	var args []string
	if s.Host.Port != 0 {
		args = append(args, "-p", strconv.Itoa(s.Host.Port))
	}
	dest := s.Host.Addr
	if s.Host.User != "" {
		dest = s.Host.User + "@" + s.Host.Addr
	}
	return append(args, dest, line)
}

// elevate wraps a command line in sudo when the elevation asks for it.
func elevate(cmdLine string, elev Elevation) string {
	if !elev.Sudo {
		return cmdLine
	}
	if elev.SudoUser != "" {
		return "sudo -u " + elev.SudoUser + " " + cmdLine
	}
	return "sudo " + cmdLine
}

// ExitCode extracts the command exit status from an error returned by an
// Executor, or -1 if the error does not carry one.
func ExitCode(err error) int {
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return -1
}

func renderArgv(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}
