// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/slotpack/slotpack/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `slotpack config` command tree.
func newConfigCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage slotpack configuration",
		Long: `Manage slotpack configuration.

Configuration is stored in:
  - Linux: ~/.config/slotpack/config.cue
  - macOS: ~/Library/Application Support/slotpack/config.cue
  - Windows: %APPDATA%\slotpack\config.cue

Every key can be overridden with a SLOTPACK_ environment variable,
for example SLOTPACK_ARCHIVE_COMPRESSION=store.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := config.LoadWithPath(cmd.Context(), config.LoadOptions{ConfigFilePath: rootFlags.configPath})
			if err != nil {
				return err
			}

			source := "defaults"
			if path != "" {
				source = path
			}
			fmt.Fprintf(app.stdout, "// source: %s\n", source)
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, created, err := config.CreateDefaultConfig("")
			if err != nil {
				return err
			}
			if !created {
				fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", warningIcon, PathStyle.Render(path))
				return nil
			}
			fmt.Fprintf(app.stdout, "%s Created configuration at %s\n", successIcon, PathStyle.Render(path))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.FilePath("")
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	return cfgCmd
}
