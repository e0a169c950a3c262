// SPDX-License-Identifier: MPL-2.0

package modspec

import "fmt"

type (
	// Coordinates identify an artifact by group and artifact id.
	Coordinates struct {
		GroupID    GroupID
		ArtifactID ArtifactID
	}

	// Artifact is a resolved artifact as supplied by the dependency-resolution
	// graph. An empty File means the artifact was resolved without a binary.
	Artifact struct {
		Coordinates
		File string
	}

	// Project carries the identity and build layout of the project whose
	// modules are being assembled.
	Project struct {
		GroupID    GroupID
		ArtifactID ArtifactID
		// BaseDir is the project root; descriptors live under BaseDir/src/main/modules.
		BaseDir string
		// BuildDir is the build output directory; the archive is written there.
		BuildDir string
		// FinalName is the build's final name, the archive name prefix.
		FinalName string
		// ArtifactFile is the project's own build output (may be empty).
		ArtifactFile string
		// Dependencies are the resolved dependency artifacts in resolution order.
		Dependencies []Artifact
	}
)

// String returns "group:artifact".
func (c Coordinates) String() string {
	return fmt.Sprintf("%s:%s", c.GroupID, c.ArtifactID)
}

// HasFile reports whether the artifact has a backing file.
func (a Artifact) HasFile() bool {
	return a.File != ""
}

// Coordinates returns the project's own coordinates.
func (p Project) Coordinates() Coordinates {
	return Coordinates{GroupID: p.GroupID, ArtifactID: p.ArtifactID}
}

// OwnArtifact returns the project's own build output as an Artifact.
func (p Project) OwnArtifact() Artifact {
	return Artifact{Coordinates: p.Coordinates(), File: p.ArtifactFile}
}
