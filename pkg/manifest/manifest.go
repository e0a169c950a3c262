// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	_ "embed"
	"fmt"
	"path/filepath"

	"github.com/slotpack/slotpack/pkg/cueutil"
	"github.com/slotpack/slotpack/pkg/modspec"

	"github.com/spf13/afero"
)

const (
	// FileName is the conventional manifest file name.
	FileName = "slotpack.cue"

	// DefaultBuildDir is the build directory used when the manifest names none.
	DefaultBuildDir = "target"
)

//go:embed manifest_schema.cue
var manifestSchema []byte

type (
	// Manifest is a decoded slotpack.cue file.
	Manifest struct {
		ProjectSection ProjectSection    `json:"project"`
		CategoryName   string            `json:"category,omitempty"`
		Modules        []ModuleEntry     `json:"modules,omitempty"`
		Dependencies   []DependencyEntry `json:"dependencies,omitempty"`
		ResolutionFile string            `json:"resolution_file,omitempty"`

		// path is the manifest location; relative paths resolve against its directory.
		path string
		// resolved holds the entries loaded from ResolutionFile.
		resolved []DependencyEntry
	}

	// ProjectSection is the "project" block of a manifest.
	ProjectSection struct {
		GroupID    string `json:"group_id"`
		ArtifactID string `json:"artifact_id"`
		FinalName  string `json:"final_name,omitempty"`
		BuildDir   string `json:"build_dir,omitempty"`
		Artifact   string `json:"artifact,omitempty"`
	}

	// ModuleEntry is one element of the "modules" list.
	ModuleEntry struct {
		GroupID    string `json:"group_id,omitempty"`
		ArtifactID string `json:"artifact_id,omitempty"`
		Name       string `json:"name,omitempty"`
		Slot       string `json:"slot,omitempty"`
	}

	// DependencyEntry is a resolved dependency artifact.
	DependencyEntry struct {
		GroupID    string `json:"group_id" toml:"group_id" yaml:"group_id"`
		ArtifactID string `json:"artifact_id" toml:"artifact_id" yaml:"artifact_id"`
		File       string `json:"file,omitempty" toml:"file,omitempty" yaml:"file,omitempty"`
	}
)

// Load reads and validates the manifest at path, then loads its resolution
// file when one is declared.
func Load(fsys afero.Fs, path string) (*Manifest, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve manifest path: %w", err)
	}

	data, err := afero.ReadFile(fsys, absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	result, err := cueutil.ParseAndDecode[Manifest](manifestSchema, data, "#Manifest",
		cueutil.WithFilename(path))
	if err != nil {
		return nil, err
	}

	m := result.Value
	m.path = absPath

	if m.ResolutionFile != "" {
		resPath := m.resolve(m.ResolutionFile)
		entries, resErr := LoadResolution(fsys, resPath)
		if resErr != nil {
			return nil, resErr
		}
		m.resolved = entries
	}

	return m, nil
}

// Path returns the absolute path the manifest was loaded from.
func (m *Manifest) Path() string {
	return m.path
}

// BaseDir returns the project base directory (the manifest's directory).
func (m *Manifest) BaseDir() string {
	return filepath.Dir(m.path)
}

// ResolutionPath returns the absolute path of the resolution file, or "".
func (m *Manifest) ResolutionPath() string {
	if m.ResolutionFile == "" {
		return ""
	}
	return m.resolve(m.ResolutionFile)
}

// Category returns the manifest's category.
func (m *Manifest) Category() modspec.Category {
	return modspec.Category(m.CategoryName)
}

// ModuleSpecs returns the declared module specs in manifest order.
func (m *Manifest) ModuleSpecs() []modspec.ModuleSpec {
	specs := make([]modspec.ModuleSpec, 0, len(m.Modules))
	for _, e := range m.Modules {
		specs = append(specs, modspec.ModuleSpec{
			GroupID:    modspec.GroupID(e.GroupID),
			ArtifactID: modspec.ArtifactID(e.ArtifactID),
			Name:       modspec.ModuleName(e.Name),
			Slot:       modspec.Slot(e.Slot),
		})
	}
	return specs
}

// Project builds the project model: identity, build layout, own artifact,
// and dependencies (resolution file entries first, then inline entries).
func (m *Manifest) Project() modspec.Project {
	p := m.ProjectSection

	finalName := p.FinalName
	if finalName == "" {
		finalName = p.ArtifactID
	}
	buildDir := p.BuildDir
	if buildDir == "" {
		buildDir = DefaultBuildDir
	}
	artifactFile := ""
	if p.Artifact != "" {
		artifactFile = m.resolve(p.Artifact)
	}

	deps := make([]modspec.Artifact, 0, len(m.resolved)+len(m.Dependencies))
	for _, e := range m.resolved {
		deps = append(deps, e.artifact())
	}
	for _, e := range m.Dependencies {
		if e.File != "" {
			e.File = m.resolve(e.File)
		}
		deps = append(deps, e.artifact())
	}

	return modspec.Project{
		GroupID:      modspec.GroupID(p.GroupID),
		ArtifactID:   modspec.ArtifactID(p.ArtifactID),
		BaseDir:      m.BaseDir(),
		BuildDir:     m.resolve(buildDir),
		FinalName:    finalName,
		ArtifactFile: artifactFile,
		Dependencies: deps,
	}
}

func (m *Manifest) resolve(p string) string {
	return resolveAgainst(m.BaseDir(), p)
}

func (e DependencyEntry) artifact() modspec.Artifact {
	return modspec.Artifact{
		Coordinates: modspec.Coordinates{
			GroupID:    modspec.GroupID(e.GroupID),
			ArtifactID: modspec.ArtifactID(e.ArtifactID),
		},
		File: e.File,
	}
}

func resolveAgainst(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, filepath.FromSlash(p))
}
