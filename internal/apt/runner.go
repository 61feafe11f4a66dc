package apt

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"regexp"
	"strings"
)

var (
	ErrAptCommand = errors.New("apt-get command failed")
)

// simulated install line of "apt-get -s": Inst name [installed] (candidate origin [arch])
var instLine = regexp.MustCompile(`^Inst (\S+) \[([^\]]+)\] \((\S+)`)

// Runner executes apt-get to refresh the index and simulate upgrades
type Runner struct {
	binary string
}

// RunnerOption is a functional option for configuring Runner
type RunnerOption func(*Runner)

// WithBinary sets the apt-get executable to run
func WithBinary(path string) RunnerOption {
	return func(r *Runner) {
		r.binary = path
	}
}

// NewRunner creates a new Runner using apt-get from PATH
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		binary: "apt-get",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// runCommand executes apt-get and returns stdout, stderr, and any error
func (r *Runner) runCommand(args ...string) (stdout, stderr string, err error) {
	cmd := exec.Command(r.binary, args...)
	// apt output is parsed, so force the untranslated messages
	cmd.Env = append(os.Environ(), "LANG=C", "LC_ALL=C", "DEBIAN_FRONTEND=noninteractive")

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if err != nil {
		if msg := strings.TrimSpace(stderr); msg != "" {
			err = errors.Join(ErrAptCommand, errors.New(msg))
		} else {
			err = errors.Join(ErrAptCommand, err)
		}
	}

	return stdout, stderr, err
}

// Refresh runs "apt-get update"
func (r *Runner) Refresh() error {
	_, _, err := r.runCommand("-q", "update")
	return err
}

// PendingUpgrades simulates a dist-upgrade and returns the packages it would
// upgrade or downgrade
func (r *Runner) PendingUpgrades() ([]Update, error) {
	stdout, _, err := r.runCommand("-q", "-s", "-o", "Debug::NoLocking=true", "dist-upgrade")
	if err != nil {
		return nil, err
	}
	return ParseSimulation(stdout), nil
}

// ParseSimulation extracts updates from "apt-get -s" output.
// Packages without an installed version (new dependencies) are skipped.
func ParseSimulation(output string) []Update {
	var updates []Update

	for _, line := range strings.Split(output, "\n") {
		m := instLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		updates = append(updates, Update{
			Name:       m[1],
			NewVersion: m[3],
			OldVersion: m[2],
		})
	}

	return updates
}
