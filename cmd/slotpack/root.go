// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/slotpack/slotpack/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the slotpack command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	return newRootCommand(app, &rootFlagValues{})
}

func newRootCommand(app *App, flags *rootFlagValues) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "slotpack",
		Short: "Assemble module-repository archives",
		Long: TitleStyle.Render("slotpack") + SubtitleStyle.Render(" - assemble module-repository archives") + `

slotpack lays out a project's own artifact and its resolved dependencies as
<module/path>/<slot>/<artifact> next to the hand-written module descriptors
in src/main/modules, zips the tree, and records the zip as an attached build
output.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Describe the project and its modules in slotpack.cue
  2. Put module descriptors under src/main/modules
  3. Run: slotpack assemble

` + SubtitleStyle.Render("Examples:") + `
  slotpack assemble                     Build <final>-modules.zip
  slotpack assemble --category common   Build <final>-common-modules.zip
  slotpack watch                        Re-assemble on every change
  slotpack inspect target/app-modules.zip
  slotpack explain module-not-matched`,
		SilenceUsage: true,
	}
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is $HOME/.config/slotpack/config.cue)")

	rootCmd.AddCommand(newAssembleCommand(app, flags))
	rootCmd.AddCommand(newWatchCommand(app, flags))
	rootCmd.AddCommand(newInspectCommand(app))
	rootCmd.AddCommand(newConfigCommand(app, flags))
	rootCmd.AddCommand(newExplainCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits the process on failure. It is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	flags := &rootFlagValues{}

	if err := fang.Execute(
		context.Background(),
		newRootCommand(app, flags),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			fmt.Fprintln(w, formatErrorForDisplay(err, flags.verbose))
		}),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(exitCodeFailure)
	}
}

// formatErrorForDisplay formats an error for user display. ActionableErrors
// use their Format method; verbose mode adds the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ErrorStyle.Render("Error: ") + ae.Format(verboseMode)
	}
	return ErrorStyle.Render("Error: ") + err.Error()
}
