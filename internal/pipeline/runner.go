// Package pipeline runs one aptcron invocation from the resolved policy up
// to the finished report. It never delivers anything itself; the Outcome
// it returns is handed to the mail dispatcher exactly once.
package pipeline

import (
	"github.com/obentoo/aptcron/internal/apt"
	"github.com/obentoo/aptcron/internal/common/logger"
	"github.com/obentoo/aptcron/internal/policy"
	"github.com/obentoo/aptcron/internal/report"
	"github.com/obentoo/aptcron/internal/seen"
	"golang.org/x/sys/unix"
)

// Exit codes of a run
const (
	ExitOK     = 0
	ExitFailed = 1
)

// PrivilegeError is returned when aptcron is not run as root
type PrivilegeError struct{}

func (e *PrivilegeError) Error() string {
	return "aptcron requires root-privileges to run."
}

// Kind names the error class in reports
func (e *PrivilegeError) Kind() string {
	return "PrivilegeError"
}

// IsRoot reports whether the effective user is root
func IsRoot() bool {
	return unix.Geteuid() == 0
}

// Outcome is the result of a run: the report to deliver and the exit code
// to use if delivery succeeds
type Outcome struct {
	ExitCode int
	Report   string
	// Context carries the update count once it is known
	Context report.Context
}

// Runner wires the pipeline stages together
type Runner struct {
	Lister *apt.Lister
	Store  *seen.Store
	// Privileged reports whether the run may touch APT; IsRoot if nil
	Privileged func() bool
}

// Run executes the pipeline. polErr is the error policy resolution
// failed with, if any; it is reported instead of running. Every failure
// ends up in the report with ExitFailed.
func (r *Runner) Run(pol *policy.Policy, polErr error, ctx report.Context) Outcome {
	out := report.NewBuffer()

	ctx, err := r.run(out, pol, polErr, ctx)
	if err != nil {
		logger.Debug("run failed: %v", err)
		out.AppendError(err)
		return Outcome{ExitCode: ExitFailed, Report: out.String(), Context: ctx}
	}

	return Outcome{ExitCode: ExitOK, Report: out.String(), Context: ctx}
}

func (r *Runner) run(out *report.Buffer, pol *policy.Policy, polErr error, ctx report.Context) (report.Context, error) {
	privileged := r.Privileged
	if privileged == nil {
		privileged = IsRoot
	}
	if !privileged() {
		return ctx, &PrivilegeError{}
	}

	if polErr != nil {
		return ctx, polErr
	}

	updates, err := r.Lister.ListUpdates(!pol.NoUpdate)
	if err != nil {
		return ctx, err
	}
	total := len(updates)
	ctx = ctx.WithNum(total)
	logger.Info("%d pending update(s)", total)

	reported := updates
	var baseline seen.Baseline
	if pol.OnlyNew {
		baseline, err = r.Store.Load()
		if err != nil {
			return ctx, err
		}
		reported = seen.FilterNew(updates, baseline)
		logger.Info("%d update(s) new since the last report", len(reported))
	}

	out.WriteString(report.Format(reported, report.Options{
		OnlyNew:     pol.OnlyNew,
		Force:       pol.Force,
		HadBaseline: len(baseline) > 0,
	}, total))

	if pol.OnlyNew {
		if err := r.Store.Commit(baseline, reported, total); err != nil {
			out.WriteString("\n\n")
			return ctx, err
		}
	}

	return ctx, nil
}
