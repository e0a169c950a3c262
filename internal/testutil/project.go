// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"testing"
)

// Project is an on-disk slotpack project created by NewProject.
type Project struct {
	// Dir is the project base directory holding slotpack.cue.
	Dir string
	// Manifest is the path of slotpack.cue.
	Manifest string
	// RepoDir holds the dependency jars referenced by the resolution file.
	RepoDir string
}

// NewProject creates a project for org.example:app with descriptors for the
// modules "org.example.app" and "org.postgresql", its own jar, a TOML
// resolution file and a postgresql jar in a separate repository directory.
func NewProject(t testing.TB) *Project {
	t.Helper()

	root := t.TempDir()
	p := &Project{
		Dir:     filepath.Join(root, "app"),
		RepoDir: filepath.Join(root, "repo"),
	}
	p.Manifest = filepath.Join(p.Dir, "slotpack.cue")

	MustWriteFile(t, p.Manifest, `project: {
	group_id:    "org.example"
	artifact_id: "app"
	final_name:  "app-1.0"
	artifact:    "target/app-1.0.jar"
}
modules: [
	{name: "org.example.app"},
	{group_id: "org.postgresql", artifact_id: "postgresql", name: "org.postgresql"},
]
resolution_file: "target/resolved.toml"
`)
	MustWriteFile(t, filepath.Join(p.Dir, "target", "resolved.toml"), `[[artifacts]]
group_id = "org.postgresql"
artifact_id = "postgresql"
file = "`+filepath.ToSlash(filepath.Join(p.RepoDir, "postgresql-42.7.jar"))+`"
`)
	MustWriteFile(t, filepath.Join(p.Dir, "target", "app-1.0.jar"), "app classes")
	MustWriteFile(t, filepath.Join(p.RepoDir, "postgresql-42.7.jar"), "driver classes")
	MustWriteFile(t, p.DescriptorPath("org/example/app/main/module.xml"), `<module name="org.example.app"/>`)
	MustWriteFile(t, p.DescriptorPath("org/postgresql/main/module.xml"), `<module name="org.postgresql"/>`)

	return p
}

// DescriptorPath returns the path of rel (slash-separated) inside the
// project's descriptor directory.
func (p *Project) DescriptorPath(rel string) string {
	return filepath.Join(p.Dir, "src", "main", "modules", filepath.FromSlash(rel))
}

// BuildDir returns the project's build directory.
func (p *Project) BuildDir() string {
	return filepath.Join(p.Dir, "target")
}
