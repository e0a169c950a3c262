// SPDX-License-Identifier: MPL-2.0

package modspec

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// DefaultSlot is the slot used when a module spec does not name one.
const DefaultSlot Slot = "main"

type (
	// ModuleSpec is a declared module to materialize. Every field is optional;
	// the zero value of a field means "absent" and is filled in by
	// ResolveEffectiveSpecs.
	ModuleSpec struct {
		GroupID    GroupID
		ArtifactID ArtifactID
		Name       ModuleName
		Slot       Slot
	}

	// ResolvedSpec is a ModuleSpec with every default applied.
	ResolvedSpec struct {
		Coordinates
		Name ModuleName
		Slot Slot
	}
)

// ResolveEffectiveSpecs computes the effective module specs for a project.
// An empty declared list yields one spec describing the project's own
// artifact. The declared slice is never modified.
func ResolveEffectiveSpecs(project Project, declared []ModuleSpec) ([]ResolvedSpec, error) {
	if len(declared) == 0 {
		declared = []ModuleSpec{{}}
	}

	resolved := make([]ResolvedSpec, 0, len(declared))
	for i, spec := range declared {
		rs := spec.resolve(project)
		if err := rs.validate(); err != nil {
			return nil, NewConfigurationError(fmt.Sprintf("#%d (%s)", i, rs.Coordinates), "invalid module specification", err)
		}
		resolved = append(resolved, rs)
	}
	return resolved, nil
}

func (s ModuleSpec) resolve(project Project) ResolvedSpec {
	rs := ResolvedSpec{
		Coordinates: Coordinates{GroupID: s.GroupID, ArtifactID: s.ArtifactID},
		Name:        s.Name,
		Slot:        s.Slot,
	}
	if rs.GroupID == "" {
		rs.GroupID = project.GroupID
	}
	if rs.ArtifactID == "" {
		rs.ArtifactID = project.ArtifactID
	}
	if rs.Name == "" {
		rs.Name = ModuleName(rs.ArtifactID)
	}
	if rs.Slot == "" {
		rs.Slot = DefaultSlot
	}
	return rs
}

func (rs ResolvedSpec) validate() error {
	var errs []error
	if ok, fieldErrs := rs.GroupID.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if ok, fieldErrs := rs.ArtifactID.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if ok, fieldErrs := rs.Name.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if ok, fieldErrs := rs.Slot.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	return errors.Join(errs...)
}

// ModulePath returns the module name as a relative OS path ("a.b.c" -> "a/b/c").
func (rs ResolvedSpec) ModulePath() string {
	return filepath.Join(rs.Name.Segments()...)
}

// SlotPath returns the relative OS path of the slot directory.
func (rs ResolvedSpec) SlotPath() string {
	return filepath.Join(rs.ModulePath(), string(rs.Slot))
}

// EntryPrefix returns the slot directory as a slash-separated archive path.
func (rs ResolvedSpec) EntryPrefix() string {
	return path.Join(strings.Join(rs.Name.Segments(), "/"), string(rs.Slot))
}

// String returns "name:slot (group:artifact)".
func (rs ResolvedSpec) String() string {
	return fmt.Sprintf("%s:%s (%s)", rs.Name, rs.Slot, rs.Coordinates)
}
