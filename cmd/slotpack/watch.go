// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/slotpack/slotpack/internal/assemble"
	"github.com/slotpack/slotpack/internal/watch"

	"github.com/spf13/cobra"
)

func newWatchCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &assembleFlagValues{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-assemble whenever descriptors, the manifest or the resolution file change",
		Long: `Assemble once, then watch the project and assemble again after every
change to src/main/modules, the manifest or the resolution file.

Changes are debounced (watch.debounce) and the build directory is never
watched. Failed runs are reported and watching continues. Stop with Ctrl+C.

Examples:
  slotpack watch
  slotpack watch --manifest ./engine/slotpack.cue --category common`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, app, rootFlags, flags)
		},
	}

	addAssembleFlags(cmd, flags)

	return cmd
}

// runWatch runs one assembly and then blocks in the watcher until the
// command context is cancelled. The manifest is re-read on every run.
func runWatch(cmd *cobra.Command, app *App, rootFlags *rootFlagValues, flags *assembleFlagValues) error {
	cfg, err := app.loadConfig(cmd.Context(), rootFlags)
	if err != nil {
		return err
	}

	first, err := app.prepareAssemble(cmd, cfg, rootFlags, flags)
	if err != nil {
		return err
	}

	reassemble := func(ctx context.Context) {
		run, prepErr := app.prepareAssemble(cmd, cfg, rootFlags, flags)
		if prepErr != nil {
			fmt.Fprintf(app.stderr, "%s %s\n", warningIcon, formatErrorForDisplay(prepErr, rootFlags.verbose))
			return
		}
		res, runErr := run.execute(ctx)
		if runErr != nil {
			fmt.Fprintf(app.stderr, "%s %s\n", warningIcon, formatErrorForDisplay(runErr, rootFlags.verbose))
			return
		}
		printAssembleResult(app.stdout, app.Fs, run, res)
	}

	fmt.Fprintf(app.stdout, "%s Watch mode: initial assembly\n", arrowIcon)
	reassemble(cmd.Context())

	baseDir := first.manifest.BaseDir()
	buildRel, relErr := filepath.Rel(baseDir, first.request.Project.BuildDir)
	ignore := slices.Clone(cfg.Watch.Ignore)
	if relErr == nil && buildRel != "." {
		ignore = append(ignore, filepath.ToSlash(buildRel)+"/**")
	}

	w, err := watch.New(watch.Config{
		BaseDir: baseDir,
		Patterns: []string{
			assemble.DescriptorDir + "/**",
			filepath.Base(first.manifest.Path()),
		},
		Ignore:   ignore,
		Files:    []string{first.manifest.Path(), first.manifest.ResolutionPath()},
		Debounce: cfg.Watch.Debounce,
		Logger:   app.newLogger(cfg, rootFlags.verbose),
		OnChange: func(ctx context.Context, changed []string) error {
			fmt.Fprintf(app.stdout, "\n%s Detected %d change(s), re-assembling...\n", arrowIcon, len(changed))
			reassemble(ctx)
			fmt.Fprintf(app.stdout, "\n%s Watching for changes...\n", arrowIcon)
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	fmt.Fprintf(app.stdout, "\n%s Watching %s for changes (Ctrl+C to stop)...\n", arrowIcon, PathStyle.Render(w.BaseDir()))
	return w.Run(cmd.Context())
}
