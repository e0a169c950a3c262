// SPDX-License-Identifier: MPL-2.0

package assemble

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/slotpack/slotpack/internal/archive"
	"github.com/slotpack/slotpack/internal/fsutil"
	"github.com/slotpack/slotpack/internal/layout"
	"github.com/slotpack/slotpack/pkg/modspec"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

const (
	// DescriptorDir is where module descriptors live, relative to the project base directory.
	DescriptorDir = "src/main/modules"

	// DefaultStagingDirName is the staging directory name under the build directory.
	DefaultStagingDirName = "modules"
)

type (
	// Options configures an Assembler.
	Options struct {
		// Fs is the filesystem all paths refer to. Defaults to the OS filesystem.
		Fs afero.Fs
		// Archiver writes the staging tree to the archive. Defaults to a
		// Deflate ZipArchiver on Fs.
		Archiver archive.TreeArchiver
		// Registrar receives the finished archive. Required.
		Registrar Registrar
		// Logger receives progress messages. Nil discards them.
		Logger *log.Logger
		// StagingDirName names the staging directory under the build directory.
		StagingDirName string
		// KeepStaging leaves the staging tree in place after registration.
		KeepStaging bool
	}

	// Request describes one assembly.
	Request struct {
		Project modspec.Project
		// Modules are the declared module specs; empty means one module for
		// the project's own artifact.
		Modules  []modspec.ModuleSpec
		Category modspec.Category
	}

	// Result reports what an assembly produced.
	Result struct {
		// Skipped is true when the project has no descriptor directory.
		Skipped    bool
		StagingDir string
		Archive    string
		Attachment Attachment
		Placements []layout.Placement
	}

	// Assembler runs the staging, archiving and registration stages.
	Assembler struct {
		fs          afero.Fs
		archiver    archive.TreeArchiver
		registrar   Registrar
		logger      *log.Logger
		stagingName string
		keepStaging bool
	}
)

// ErrNoRegistrar is returned by New when Options.Registrar is nil.
var ErrNoRegistrar = errors.New("assembler requires a registrar")

// New creates an Assembler from opts, filling in defaults.
func New(opts Options) (*Assembler, error) {
	if opts.Registrar == nil {
		return nil, ErrNoRegistrar
	}

	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	archiver := opts.Archiver
	if archiver == nil {
		archiver = archive.NewZipArchiver(fsys)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	stagingName := opts.StagingDirName
	if stagingName == "" {
		stagingName = DefaultStagingDirName
	}

	return &Assembler{
		fs:          fsys,
		archiver:    archiver,
		registrar:   opts.Registrar,
		logger:      logger,
		stagingName: stagingName,
		keepStaging: opts.KeepStaging,
	}, nil
}

// StagingDir returns the staging directory used for project.
func (a *Assembler) StagingDir(project modspec.Project) string {
	return filepath.Join(project.BuildDir, a.stagingName)
}

// Run assembles and registers the archive for req. It returns a skipped
// Result, not an error, when the project has no descriptor directory.
// The context is checked between stages.
func (a *Assembler) Run(ctx context.Context, req Request) (*Result, error) {
	project := req.Project

	descriptorDir := filepath.Join(project.BaseDir, filepath.FromSlash(DescriptorDir))
	info, err := a.fs.Stat(descriptorDir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		a.logger.Info("Skipping module archive: no module descriptors", "dir", descriptorDir)
		return &Result{Skipped: true}, nil
	case err != nil:
		return nil, modspec.NewIOError("read module descriptors", descriptorDir, err)
	case !info.IsDir():
		return nil, modspec.NewIOError("read module descriptors", descriptorDir, errors.New("not a directory"))
	}

	if valid, errs := req.Category.IsValid(); !valid {
		return nil, modspec.NewConfigurationError("", "invalid category", errors.Join(errs...))
	}
	specs, err := modspec.ResolveEffectiveSpecs(project, req.Modules)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stagingDir := a.StagingDir(project)
	a.logger.Info("Creating staging directory", "path", stagingDir)
	if err := a.fs.MkdirAll(stagingDir, fsutil.DirPerm); err != nil {
		return nil, modspec.NewIOError("create staging directory", stagingDir, err)
	}

	a.logger.Info("Copying module descriptors", "from", descriptorDir, "to", stagingDir)
	if err := fsutil.CopyTree(a.fs, descriptorDir, stagingDir); err != nil {
		return nil, modspec.NewIOError("copy module descriptors to", stagingDir, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	placements, err := layout.New(a.fs, a.logger).Build(stagingDir, project, specs)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	archivePath := filepath.Join(project.BuildDir, modspec.ArchiveName(project.FinalName, req.Category))
	a.logger.Info("Creating archive", "path", archivePath)
	if err := a.archiver.WriteTree(stagingDir, archivePath); err != nil {
		return nil, modspec.NewIOError("create archive", archivePath, err)
	}

	attachment := Attachment{
		Type:       modspec.ArchiveType,
		Classifier: modspec.Classifier(req.Category),
		File:       archivePath,
	}
	a.logger.Info("Attaching artifact", "file", attachment.File, "type", attachment.Type, "classifier", attachment.Classifier)
	if err := a.registrar.Attach(ctx, attachment); err != nil {
		return nil, fmt.Errorf("failed to attach %s: %w", archivePath, err)
	}

	result := &Result{
		StagingDir: stagingDir,
		Archive:    archivePath,
		Attachment: attachment,
		Placements: placements,
	}

	if !a.keepStaging {
		a.logger.Debug("Removing staging directory", "path", stagingDir)
		if err := a.fs.RemoveAll(stagingDir); err != nil {
			return nil, modspec.NewIOError("remove staging directory", stagingDir, err)
		}
	}

	return result, nil
}
