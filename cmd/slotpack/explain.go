// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/slotpack/slotpack/internal/issue"

	"github.com/spf13/cobra"
)

func newExplainCommand(app *App) *cobra.Command {
	var style string

	cmd := &cobra.Command{
		Use:   "explain [issue]",
		Short: "Explain an error and how to fix it",
		Long: `Show the help page for an error reported by slotpack.

Without arguments, list the known issues.

Examples:
  slotpack explain
  slotpack explain module-not-matched`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return issueNames(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintln(app.stdout, TitleStyle.Render("Known issues"))
				fmt.Fprintln(app.stdout)
				for _, name := range issueNames() {
					fmt.Fprintf(app.stdout, "  %s %s\n", arrowIcon, name)
				}
				return nil
			}

			is := issue.Lookup(args[0])
			if is == nil {
				return fmt.Errorf("unknown issue %q (known: %s)", args[0], strings.Join(issueNames(), ", "))
			}
			out, err := is.Render(style)
			if err != nil {
				return fmt.Errorf("failed to render issue %q: %w", args[0], err)
			}
			fmt.Fprint(app.stdout, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&style, "style", "dark", "glamour style (auto, dark, light, notty)")

	return cmd
}

func issueNames() []string {
	values := issue.Values()
	names := make([]string, 0, len(values))
	for _, is := range values {
		names = append(names, is.Name())
	}
	return names
}
