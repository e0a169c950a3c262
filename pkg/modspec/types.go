// SPDX-License-Identifier: MPL-2.0

package modspec

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	// ErrInvalidGroupID is the sentinel error wrapped by InvalidGroupIDError.
	ErrInvalidGroupID = errors.New("invalid group id")
	// ErrInvalidArtifactID is the sentinel error wrapped by InvalidArtifactIDError.
	ErrInvalidArtifactID = errors.New("invalid artifact id")
	// ErrInvalidModuleName is the sentinel error wrapped by InvalidModuleNameError.
	ErrInvalidModuleName = errors.New("invalid module name")
	// ErrInvalidSlot is the sentinel error wrapped by InvalidSlotError.
	ErrInvalidSlot = errors.New("invalid slot")
	// ErrInvalidCategory is the sentinel error wrapped by InvalidCategoryError.
	ErrInvalidCategory = errors.New("invalid category")
)

type (
	// GroupID identifies the group an artifact belongs to (e.g., "org.ovirt.engine").
	// A valid value is non-empty and contains no whitespace or path separators.
	GroupID string

	// InvalidGroupIDError is returned when a GroupID value is malformed.
	InvalidGroupIDError struct {
		Value GroupID
	}

	// ArtifactID identifies an artifact within its group (e.g., "common").
	// A valid value is non-empty and contains no whitespace or path separators.
	ArtifactID string

	// InvalidArtifactIDError is returned when an ArtifactID value is malformed.
	InvalidArtifactIDError struct {
		Value ArtifactID
	}

	// ModuleName is the dotted name of a module (e.g., "org.ovirt.engine.common").
	// Each dot-separated segment becomes one directory level.
	ModuleName string

	// InvalidModuleNameError is returned when a ModuleName value is malformed.
	InvalidModuleNameError struct {
		Value  ModuleName
		Reason string
	}

	// Slot is the version compartment inside a module directory (e.g., "main").
	Slot string

	// InvalidSlotError is returned when a Slot value is malformed.
	InvalidSlotError struct {
		Value Slot
	}

	// Category is an optional free-text prefix for the archive name and classifier.
	// The zero value ("") is valid and means "no category".
	Category string

	// InvalidCategoryError is returned when a Category value contains a path separator
	// or surrounding whitespace.
	InvalidCategoryError struct {
		Value Category
	}
)

// String returns the string representation of the GroupID.
func (g GroupID) String() string { return string(g) }

// IsValid returns whether the GroupID is valid.
func (g GroupID) IsValid() (bool, []error) {
	if !isIdentifier(string(g)) {
		return false, []error{&InvalidGroupIDError{Value: g}}
	}
	return true, nil
}

// Error implements the error interface for InvalidGroupIDError.
func (e *InvalidGroupIDError) Error() string {
	return fmt.Sprintf("invalid group id %q: must be non-empty without whitespace or path separators", e.Value)
}

// Unwrap returns ErrInvalidGroupID for errors.Is() compatibility.
func (e *InvalidGroupIDError) Unwrap() error { return ErrInvalidGroupID }

// String returns the string representation of the ArtifactID.
func (a ArtifactID) String() string { return string(a) }

// IsValid returns whether the ArtifactID is valid.
func (a ArtifactID) IsValid() (bool, []error) {
	if !isIdentifier(string(a)) {
		return false, []error{&InvalidArtifactIDError{Value: a}}
	}
	return true, nil
}

// Error implements the error interface for InvalidArtifactIDError.
func (e *InvalidArtifactIDError) Error() string {
	return fmt.Sprintf("invalid artifact id %q: must be non-empty without whitespace or path separators", e.Value)
}

// Unwrap returns ErrInvalidArtifactID for errors.Is() compatibility.
func (e *InvalidArtifactIDError) Unwrap() error { return ErrInvalidArtifactID }

// String returns the string representation of the ModuleName.
func (n ModuleName) String() string { return string(n) }

// Segments splits the module name on dots.
func (n ModuleName) Segments() []string {
	return strings.Split(string(n), ".")
}

// IsValid returns whether the ModuleName is valid. Every dot-separated
// segment must be non-empty, must not be "..", and must not contain
// whitespace or path separators.
func (n ModuleName) IsValid() (bool, []error) {
	if n == "" {
		return false, []error{&InvalidModuleNameError{Value: n, Reason: "must be non-empty"}}
	}
	for _, seg := range n.Segments() {
		switch {
		case seg == "":
			return false, []error{&InvalidModuleNameError{Value: n, Reason: "empty segment"}}
		case !isIdentifier(seg):
			return false, []error{&InvalidModuleNameError{Value: n, Reason: fmt.Sprintf("segment %q contains whitespace or a path separator", seg)}}
		}
	}
	return true, nil
}

// Error implements the error interface for InvalidModuleNameError.
func (e *InvalidModuleNameError) Error() string {
	return fmt.Sprintf("invalid module name %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidModuleName for errors.Is() compatibility.
func (e *InvalidModuleNameError) Unwrap() error { return ErrInvalidModuleName }

// String returns the string representation of the Slot.
func (s Slot) String() string { return string(s) }

// IsValid returns whether the Slot is valid. A slot is a single path segment.
func (s Slot) IsValid() (bool, []error) {
	if !isIdentifier(string(s)) || s == "." || s == ".." {
		return false, []error{&InvalidSlotError{Value: s}}
	}
	return true, nil
}

// Error implements the error interface for InvalidSlotError.
func (e *InvalidSlotError) Error() string {
	return fmt.Sprintf("invalid slot %q: must be a single non-empty path segment", e.Value)
}

// Unwrap returns ErrInvalidSlot for errors.Is() compatibility.
func (e *InvalidSlotError) Unwrap() error { return ErrInvalidSlot }

// String returns the string representation of the Category.
func (c Category) String() string { return string(c) }

// IsValid returns whether the Category is valid. The empty category is valid.
func (c Category) IsValid() (bool, []error) {
	if c == "" {
		return true, nil
	}
	s := string(c)
	if strings.TrimSpace(s) != s || strings.ContainsAny(s, `/\`) {
		return false, []error{&InvalidCategoryError{Value: c}}
	}
	return true, nil
}

// Error implements the error interface for InvalidCategoryError.
func (e *InvalidCategoryError) Error() string {
	return fmt.Sprintf("invalid category %q: must not contain path separators or surrounding whitespace", e.Value)
}

// Unwrap returns ErrInvalidCategory for errors.Is() compatibility.
func (e *InvalidCategoryError) Unwrap() error { return ErrInvalidCategory }

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if unicode.IsSpace(r) || r == '/' || r == '\\' {
			return false
		}
	}
	return true
}
