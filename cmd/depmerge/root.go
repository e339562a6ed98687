package main

import (
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// app holds the state shared by all commands.
type app struct {
	verbose bool
	noColor bool

	stdout io.Writer
	stderr io.Writer
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "depmerge",
		Short:         "Merge dependency version specifiers of workspace plugins",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if a.noColor {
				color.NoColor = true
			}
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log every merge decision")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		a.npmCommand(),
		a.pipCommand(),
		a.maxCommand(),
		a.intersectCommand(),
		a.requirementsCommand(),
		a.highestCommand(),
		a.repoCommand(),
		a.workspaceCommand(),
	)
	return root
}

// logger writes text records to stderr; debug records only with --verbose.
func (a *app) logger() *slog.Logger {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
}

// warnf prints a highlighted warning line to stderr.
func (a *app) warnf(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(a.stderr, format+"\n", args...) //nolint:errcheck
}
