// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"

	"github.com/slotpack/slotpack/internal/archive"
	"github.com/slotpack/slotpack/internal/assemble"
	"github.com/slotpack/slotpack/internal/config"
	"github.com/slotpack/slotpack/internal/issue"
	"github.com/slotpack/slotpack/internal/layout"
	"github.com/slotpack/slotpack/pkg/manifest"
	"github.com/slotpack/slotpack/pkg/modspec"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type assembleFlagValues struct {
	manifestPath string
	category     string
	ledgerPath   string
	keepStaging  bool
}

// assembleRun is one resolved invocation of the assembler, shared by
// `assemble` and `watch`.
type assembleRun struct {
	manifest  *manifest.Manifest
	assembler *assemble.Assembler
	request   assemble.Request
	ledger    string
}

func newAssembleCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &assembleFlagValues{}

	cmd := &cobra.Command{
		Use:   "assemble",
		Short: "Build and attach the module-repository archive",
		Long: `Build the module-repository archive for a project.

Descriptors under src/main/modules are copied into <build_dir>/modules, each
declared module's artifact is copied into <module/path>/<slot>/, and the tree
is zipped as <final_name>-[<category>-]modules.zip. The zip is recorded in
the attachment ledger with type "zip" and classifier [<category>-]modules.

Projects without src/main/modules are skipped.

Examples:
  slotpack assemble
  slotpack assemble --manifest ./engine/slotpack.cue --category common
  slotpack assemble --keep-staging=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context(), rootFlags)
			if err != nil {
				return err
			}
			run, err := app.prepareAssemble(cmd, cfg, rootFlags, flags)
			if err != nil {
				return err
			}
			res, err := run.execute(cmd.Context())
			if err != nil {
				return err
			}
			printAssembleResult(app.stdout, app.Fs, run, res)
			return nil
		},
	}

	addAssembleFlags(cmd, flags)

	return cmd
}

func addAssembleFlags(cmd *cobra.Command, flags *assembleFlagValues) {
	cmd.Flags().StringVarP(&flags.manifestPath, "manifest", "m", manifest.FileName, "project manifest")
	cmd.Flags().StringVar(&flags.category, "category", "", "archive category (overrides the manifest)")
	cmd.Flags().StringVar(&flags.ledgerPath, "ledger", "", "attachment ledger file (default <build_dir>/<ledger.file_name>)")
	cmd.Flags().BoolVar(&flags.keepStaging, "keep-staging", true, "keep the staging tree after packaging (default from staging.keep)")
}

// prepareAssemble loads the manifest and builds the assembler from cfg and
// the command's flags.
func (a *App) prepareAssemble(cmd *cobra.Command, cfg *config.Config, rootFlags *rootFlagValues, flags *assembleFlagValues) (*assembleRun, error) {
	m, err := manifest.Load(a.Fs, flags.manifestPath)
	if err != nil {
		return nil, &ExitError{Code: exitCodeConfiguration, Err: issue.NewErrorContext().
			WithOperation("load manifest").
			WithResource(flags.manifestPath).
			WithSuggestion("Check the manifest against the schema shown by 'slotpack explain manifest-invalid'").
			WithSuggestion("Use --manifest to point at a different file").
			WithIssue(issue.ManifestInvalidId).
			Wrap(err).
			BuildError()}
	}

	project := m.Project()

	category := m.Category()
	if cmd.Flags().Changed("category") {
		category = modspec.Category(flags.category)
	}
	keepStaging := cfg.Staging.Keep
	if cmd.Flags().Changed("keep-staging") {
		keepStaging = flags.keepStaging
	}
	ledgerPath := flags.ledgerPath
	if ledgerPath == "" {
		ledgerPath = filepath.Join(project.BuildDir, cfg.Ledger.FileName.String())
	}

	asm, err := assemble.New(assemble.Options{
		Fs:             a.Fs,
		Archiver:       &archive.ZipArchiver{Fs: a.Fs, Method: cfg.Archive.Compression.Method()},
		Registrar:      assemble.NewLedgerRegistrar(a.Fs, ledgerPath),
		Logger:         a.newLogger(cfg, rootFlags.verbose),
		StagingDirName: cfg.Staging.DirName.String(),
		KeepStaging:    keepStaging,
	})
	if err != nil {
		return nil, err
	}

	return &assembleRun{
		manifest:  m,
		assembler: asm,
		request: assemble.Request{
			Project:  project,
			Modules:  m.ModuleSpecs(),
			Category: category,
		},
		ledger: ledgerPath,
	}, nil
}

func (r *assembleRun) execute(ctx context.Context) (*assemble.Result, error) {
	res, err := r.assembler.Run(ctx, r.request)
	if err != nil {
		return nil, explainAssembleError(err, r.manifest.Path())
	}
	return res, nil
}

// explainAssembleError attaches suggestions and the matching catalog page
// to an assembler failure. Configuration failures exit with code 2.
func explainAssembleError(err error, manifestPath string) error {
	ec := issue.NewErrorContext().WithOperation("assemble modules").WithResource(manifestPath)
	code := exitCodeFailure

	var ioErr *modspec.IOError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, layout.ErrArtifactNotFound):
		code = exitCodeConfiguration
		ec.WithIssue(issue.ModuleNotMatchedId).
			WithSuggestion("Check group_id and artifact_id of the module entry").
			WithSuggestion("Make sure the dependency is listed in the resolution file")
	case errors.Is(err, layout.ErrArtifactFileMissing):
		code = exitCodeConfiguration
		ec.WithIssue(issue.ArtifactFileMissingId).
			WithSuggestion("Build the project so its artifact file exists").
			WithSuggestion("Add a file to the dependency entry")
	case errors.Is(err, modspec.ErrConfiguration):
		code = exitCodeConfiguration
		ec.WithIssue(issue.ManifestInvalidId).
			WithSuggestion("Check the module names, slots and category in the manifest")
	case errors.As(err, &ioErr) && ioErr.Op == "create archive":
		ec.WithIssue(issue.ArchiveFailedId)
	case errors.Is(err, modspec.ErrIO):
		ec.WithIssue(issue.StagingFailedId)
	}

	return &ExitError{Code: code, Err: ec.Wrap(err).BuildError()}
}

func printAssembleResult(w io.Writer, fsys afero.Fs, run *assembleRun, res *assemble.Result) {
	fmt.Fprintln(w, TitleStyle.Render("Assemble Modules"))
	fmt.Fprintln(w)

	if res.Skipped {
		fmt.Fprintf(w, "%s No module descriptors in %s, nothing to assemble\n", warningIcon,
			PathStyle.Render(filepath.Join(run.request.Project.BaseDir, filepath.FromSlash(assemble.DescriptorDir))))
		fmt.Fprintf(w, "%s Run 'slotpack explain descriptors-not-found' for details.\n", infoIcon)
		return
	}

	fmt.Fprintf(w, "%s Module archive assembled\n", successIcon)
	fmt.Fprintln(w)
	for _, p := range res.Placements {
		entry := path.Join(p.Spec.EntryPrefix(), filepath.Base(p.Target))
		fmt.Fprintf(w, "  %s %s %s\n", arrowIcon, PathStyle.Render(p.Spec.Name.String()+":"+p.Spec.Slot.String()),
			SubtitleStyle.Render(entry))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s Archive: %s\n", infoIcon, PathStyle.Render(res.Archive))
	if info, err := fsys.Stat(res.Archive); err == nil {
		fmt.Fprintf(w, "%s Size: %s\n", infoIcon, formatFileSize(info.Size()))
	}
	fmt.Fprintf(w, "%s Classifier: %s\n", infoIcon, res.Attachment.Classifier)
	fmt.Fprintf(w, "%s Ledger: %s\n", infoIcon, run.ledger)
}
