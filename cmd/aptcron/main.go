package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/obentoo/aptcron/internal/apt"
	"github.com/obentoo/aptcron/internal/common/logger"
	"github.com/obentoo/aptcron/internal/common/output"
	"github.com/obentoo/aptcron/internal/common/version"
	"github.com/obentoo/aptcron/internal/mail"
	"github.com/obentoo/aptcron/internal/pipeline"
	"github.com/obentoo/aptcron/internal/policy"
	"github.com/obentoo/aptcron/internal/report"
	"github.com/obentoo/aptcron/internal/seen"
	"github.com/spf13/cobra"
)

// environment holds what a run talks to outside the process
type environment struct {
	Host       string
	Manager    apt.Manager
	Transport  mail.Transport
	Stdout     io.Writer
	Stderr     io.Writer
	Privileged func() bool
	Paths      *policy.Paths

	// Colorize and ColorizeErrors are decided per stream
	Colorize       bool
	ColorizeErrors bool
}

func defaultEnvironment() *environment {
	host := hostname()
	return &environment{
		Host:           host,
		Manager:        apt.NewRunner(),
		Transport:      &mail.SMTPTransport{LocalName: host},
		Stdout:         os.Stdout,
		Stderr:         os.Stderr,
		Colorize:       output.ColorEnabled(os.Stdout),
		ColorizeErrors: output.ColorEnabled(os.Stderr),
	}
}

func hostname() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "localhost"
	}
	return host
}

// options are the command line settings that are not policy options
type options struct {
	section    string
	configFile string
	cacheDir   string
	logFile    string
	verbose    bool
	quiet      bool
	noColor    bool
}

// exitCode is set by the root command and used by main
var exitCode int

func newRootCmd(env *environment) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "aptcron",
		Short: "Report pending APT updates by mail",
		Long: `aptcron refreshes the APT package index, lists the pending upgrades and
mails a report to the administrator. Meant to be run from cron as root.

Options are read from /etc/aptcron.conf, /etc/aptcron.d/*.conf,
aptcron.conf and aptcron.d/*.conf in that order. Command line options
override every config file.`,
		Args:          cobra.NoArgs,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.verbose {
				logger.SetVerbose(true)
			}
			if opts.quiet {
				logger.SetQuiet(true)
			}
			if opts.noColor {
				output.NoColor()
			}
			if opts.logFile != "" {
				if err := logger.Default().EnableFileLogging(opts.logFile); err != nil {
					logger.Warn("%v", err)
				}
			}
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			exitCode = run(cmd, env, opts)
		},
	}

	flags := cmd.Flags()
	policy.BindFlags(flags)
	flags.StringVar(&opts.section, "section", policy.DefaultSection, "Config section to use")
	flags.StringVar(&opts.configFile, "config", "", "Read only this config file")
	flags.StringVar(&opts.cacheDir, "cache-dir", seen.DefaultDir, "Directory of the seen-updates cache")

	cmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "Append diagnostics to this file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")
	cmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress non-error output")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	cmd.RegisterFlagCompletionFunc(policy.KeySMTPStartTLS, func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{
			string(policy.StartTLSNo) + "\tnever use STARTTLS",
			string(policy.StartTLSYes) + "\tuse STARTTLS if offered",
			string(policy.StartTLSForce) + "\trefuse to send without STARTTLS",
		}, cobra.ShellCompDirectiveNoFileComp
	})
	cmd.RegisterFlagCompletionFunc("section", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return completeSections(opts.configFile, env.Paths), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// run performs one invocation and returns its exit code. Every path goes
// through the dispatcher exactly once.
func run(cmd *cobra.Command, env *environment, opts *options) int {
	overrides := policy.Overrides(cmd.Flags())
	ctx := report.NewContext(env.Host)

	pol, err := policy.Load(policy.LoadOptions{
		ConfigFile: opts.configFile,
		Section:    opts.section,
		Overrides:  overrides,
		Host:       env.Host,
		Paths:      env.Paths,
	})
	if err != nil {
		logger.Debug("configuration failed, delivering with defaults: %v", err)
		pol = policy.Fallback(env.Host, overrides)
	}

	runner := &pipeline.Runner{
		Lister:     apt.NewLister(env.Manager),
		Store:      seen.NewStore(opts.cacheDir),
		Privileged: env.Privileged,
	}
	outcome := runner.Run(pol, err, ctx)

	return newDispatcher(env, opts.noColor).Dispatch(outcome.Report, pol, outcome.Context, outcome.ExitCode)
}

func newDispatcher(env *environment, noColor bool) *mail.Dispatcher {
	return &mail.Dispatcher{
		Transport:      env.Transport,
		Stdout:         env.Stdout,
		Stderr:         env.Stderr,
		Colorize:       env.Colorize && !noColor,
		ColorizeErrors: env.ColorizeErrors && !noColor,
	}
}

// usageError is a command line the root command rejected
type usageError struct {
	err error
}

func (e *usageError) Error() string {
	return e.err.Error()
}

func (e *usageError) Unwrap() error {
	return e.err
}

// Kind names the error class in reports
func (e *usageError) Kind() string {
	return "UsageError"
}

// deliverUsageError reports a rejected root command line like any other
// failed run. Options parsed before the failure apply where they are valid
// on their own; everything else falls back to the built-in defaults.
func deliverUsageError(cmd *cobra.Command, env *environment, err error) int {
	pol := policy.Fallback(env.Host, policy.Overrides(cmd.Flags()))
	if !pol.NoMail {
		logger.Warn("%v", err)
	}

	out := report.NewBuffer()
	out.AppendError(&usageError{err: err})

	noColor, _ := cmd.Flags().GetBool("no-color")
	return newDispatcher(env, noColor).Dispatch(out.String(), pol, report.NewContext(env.Host), pipeline.ExitFailed)
}

// completeSections lists the sections of the config files in use
func completeSections(configFile string, paths *policy.Paths) []string {
	p := policy.DefaultPaths()
	if paths != nil {
		p = *paths
	}

	files, err := policy.ReadFiles(policy.DiscoverFiles(configFile, p))
	if err != nil {
		return nil
	}

	known := map[string]bool{}
	var sections []string
	for _, f := range files {
		for name := range f.Sections {
			if !known[name] {
				known[name] = true
				sections = append(sections, name)
			}
		}
	}
	sort.Strings(sections)
	return sections
}

var (
	rootEnv = defaultEnvironment()
	rootCmd = newRootCmd(rootEnv)
)

func main() {
	cmd, err := rootCmd.ExecuteC()
	switch {
	case err == nil:
	case cmd.HasParent():
		fmt.Fprintln(os.Stderr, err)
		exitCode = pipeline.ExitFailed
	default:
		exitCode = deliverUsageError(cmd, rootEnv, err)
	}
	logger.Default().Close()
	os.Exit(exitCode)
}
