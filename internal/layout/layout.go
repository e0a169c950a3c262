// SPDX-License-Identifier: MPL-2.0

// Package layout places module artifacts into a staging tree following the
// module-repository convention "<module-path>/<slot>/<artifact-file>".
package layout

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/slotpack/slotpack/internal/fsutil"
	"github.com/slotpack/slotpack/pkg/modspec"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

var (
	// ErrArtifactNotFound is the cause of the ConfigurationError returned
	// when no artifact matches a module's coordinates.
	ErrArtifactNotFound = errors.New("no matching artifact")
	// ErrArtifactFileMissing is the cause of the ConfigurationError returned
	// when the matching artifact has no file.
	ErrArtifactFileMissing = errors.New("artifact has no file")
)

type (
	// Builder populates a staging tree with one slot directory per module.
	Builder struct {
		fs     afero.Fs
		logger *log.Logger
	}

	// Placement records where a module's artifact was copied.
	Placement struct {
		Spec modspec.ResolvedSpec
		// Source is the artifact file matched for the module.
		Source string
		// Target is the copied file inside the staging tree.
		Target string
	}
)

// New creates a Builder. A nil logger discards all output.
func New(fsys afero.Fs, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Builder{fs: fsys, logger: logger}
}

// Build places the artifact of every spec under stagingDir. Specs are
// processed in order and the first failure aborts the build.
func (b *Builder) Build(stagingDir string, project modspec.Project, specs []modspec.ResolvedSpec) ([]Placement, error) {
	index := modspec.NewArtifactIndex(project.OwnArtifact(), project.Dependencies)

	placements := make([]Placement, 0, len(specs))
	for _, spec := range specs {
		p, err := b.place(stagingDir, index, spec)
		if err != nil {
			return nil, err
		}
		placements = append(placements, p)
	}
	return placements, nil
}

func (b *Builder) place(stagingDir string, index *modspec.ArtifactIndex, spec modspec.ResolvedSpec) (Placement, error) {
	artifact, ok := index.Lookup(spec.Coordinates)
	if !ok {
		return Placement{}, modspec.NewConfigurationError(spec.Name.String(), fmt.Sprintf(
			"can't find dependency matching artifact id %q and group id %q", spec.ArtifactID, spec.GroupID), ErrArtifactNotFound)
	}
	if !artifact.HasFile() {
		return Placement{}, modspec.NewConfigurationError(spec.Name.String(), fmt.Sprintf(
			"can't find file for artifact id %q and group id %q", spec.ArtifactID, spec.GroupID), ErrArtifactFileMissing)
	}

	slotDir := filepath.Join(stagingDir, spec.SlotPath())
	b.logger.Info("Creating slot directory", "path", slotDir)
	if err := b.fs.MkdirAll(slotDir, fsutil.DirPerm); err != nil {
		return Placement{}, modspec.NewIOError("create module directory", slotDir, err)
	}

	target := filepath.Join(slotDir, filepath.Base(artifact.File))
	b.logger.Info("Copying artifact", "from", artifact.File, "to", target)
	if err := fsutil.CopyFile(b.fs, artifact.File, target); err != nil {
		return Placement{}, modspec.NewIOError("copy artifact file to slot directory", slotDir,
			fmt.Errorf("%s: %w", artifact.File, err))
	}

	return Placement{Spec: spec, Source: artifact.File, Target: target}, nil
}
