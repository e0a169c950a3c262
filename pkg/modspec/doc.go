// SPDX-License-Identifier: MPL-2.0

// Package modspec defines the data model for module-repository layouts.
//
// A module is addressed by a dotted name and a slot. On disk (and inside the
// produced archive) a module named "org.example.foo" in slot "main" lives at
// "org/example/foo/main/", next to its hand-authored module descriptor.
//
// # Resolution
//
// Declared [ModuleSpec] values are turned into [ResolvedSpec] values by
// [ResolveEffectiveSpecs], which fills every absent field from the owning
// [Project]. Each resolved spec is then matched against the project's own
// artifact and its resolved dependencies through an [ArtifactIndex].
//
// # Naming
//
// The produced archive is named by [ArchiveName] and registered under the
// classifier returned by [Classifier]; both honor an optional [Category].
//
// # Errors
//
// Failures are reported as [ConfigurationError] (declared inputs are
// inconsistent) or [IOError] (filesystem work failed). Both wrap a sentinel
// ([ErrConfiguration], [ErrIO]) for errors.Is() checks.
package modspec
