// SPDX-License-Identifier: MPL-2.0

package modspec

// ArtifactIndex finds the artifact that satisfies a module spec.
//
// The project's own artifact always takes precedence. Among dependencies the
// last one with matching coordinates wins: entries are inserted in resolution
// order and later entries overwrite earlier ones.
type ArtifactIndex struct {
	own  Artifact
	deps map[Coordinates]Artifact
}

// NewArtifactIndex builds an index over the project's own artifact and its
// resolved dependencies.
func NewArtifactIndex(own Artifact, deps []Artifact) *ArtifactIndex {
	idx := &ArtifactIndex{
		own:  own,
		deps: make(map[Coordinates]Artifact, len(deps)),
	}
	for _, dep := range deps {
		idx.deps[dep.Coordinates] = dep
	}
	return idx
}

// Lookup returns the artifact matching c and whether one was found.
func (idx *ArtifactIndex) Lookup(c Coordinates) (Artifact, bool) {
	if idx.own.Coordinates == c {
		return idx.own, true
	}
	a, ok := idx.deps[c]
	return a, ok
}
