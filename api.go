// Package depmerge merges the version specifiers that the plugins of a
// workspace declare for the same dependency into one specifier.
//
// Each plugin of a workspace ships its own package.json or requirements.txt.
// When the workspace is assembled, every dependency may be requested by
// several plugins with different specifiers; this package picks a single one.
//
// # Overview
//
// Merging tries, in order:
//
//   - a shortcut when all plugins agree on the same specifier
//   - the intersection of all semver ranges (package intersect)
//   - the effective maximum when the ranges do not overlap, logged as a warning
//
// Source-control references (github:org/repo#branch) are only equal or in
// conflict, unless their fragment carries a "semver:" range, which is then
// merged numerically against the registry versions.
//
// # Quick Start
//
//	v, err := depmerge.MergeVersions("phovea_core", []string{"^7.0.1", "^7.0.2"})
//	// v == "^7.0.2"
//
//	p, err := depmerge.MergePipVersions("alembic", []string{"~=3.10.3", "^=4.10.2"})
//	// p == "==4.10.2", with a warning logged
//
// # Logging
//
// Fallbacks to the maximum version are logged with slog.Default unless
// another logger is set with WithLogger. WithFallbackHandler receives the
// same events as values.
//
// # Thread Safety
//
// A Merger is immutable after construction and safe for concurrent use.
package depmerge

import (
	"fmt"
)

// MergeVersions merges npm-style specifiers of one dependency.
//
// It is a convenience wrapper around NewMerger and Merger.MergeVersions.
func MergeVersions(name string, versions []string, opts ...Option) (string, error) {
	m, err := NewMerger(opts...)
	if err != nil {
		return "", fmt.Errorf("create merger: %w", err)
	}
	return m.MergeVersions(name, versions)
}

// MergePipVersions merges pip-style specifiers of one requirement.
//
// It is a convenience wrapper around NewMerger and Merger.MergePipVersions.
func MergePipVersions(name string, versions []string, opts ...Option) (string, error) {
	m, err := NewMerger(opts...)
	if err != nil {
		return "", fmt.Errorf("create merger: %w", err)
	}
	return m.MergePipVersions(name, versions), nil
}
