// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/slotpack/slotpack/internal/archive"

	"github.com/spf13/cobra"
)

func newInspectCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <archive> [entry]",
		Short: "List the entries of a module-repository archive",
		Long: `List the entries of a module-repository archive with their sizes.
With an entry name, print that entry's content instead.

Examples:
  slotpack inspect target/app-1.0-modules.zip
  slotpack inspect target/app-1.0-modules.zip org/example/app/main/module.xml`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				return runInspectEntry(app, args[0], args[1])
			}
			return runInspect(app, args[0])
		},
	}
}

func runInspectEntry(app *App, path, name string) error {
	data, err := archive.ReadEntry(app.Fs, path, name)
	if err != nil {
		return fmt.Errorf("failed to read %s from %s: %w", name, path, err)
	}
	_, err = app.stdout.Write(data)
	return err
}

func runInspect(app *App, path string) error {
	entries, err := archive.ListEntries(app.Fs, path)
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", path, err)
	}

	fmt.Fprintln(app.stdout, TitleStyle.Render("Archive Contents"))
	fmt.Fprintf(app.stdout, "%s %s\n\n", infoIcon, PathStyle.Render(path))

	var files int
	var total uint64
	for _, e := range entries {
		if e.IsDir {
			fmt.Fprintf(app.stdout, "  %s\n", SubtitleStyle.Render(e.Name))
			continue
		}
		files++
		total += e.Size
		fmt.Fprintf(app.stdout, "  %s %s\n", e.Name, SubtitleStyle.Render("("+formatFileSize(int64(e.Size))+")"))
	}

	fmt.Fprintf(app.stdout, "\n%s %d file(s), %s uncompressed\n", successIcon, files, formatFileSize(int64(total)))
	return nil
}
