package depmerge

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/albertocavalcante/go-depmerge/intersect"
	"github.com/albertocavalcante/go-depmerge/specifier"
)

// latest is rejected because it cannot be merged or reproduced.
const latest = "latest"

// Merger merges version specifiers of a single dependency.
type Merger struct {
	cfg    *mergerConfig
	logger *slog.Logger
}

// NewMerger creates a Merger configured by opts.
func NewMerger(opts ...Option) (*Merger, error) {
	cfg, err := newMergerConfig(opts...)
	if err != nil {
		return nil, err
	}
	return &Merger{cfg: cfg, logger: cfg.log()}, nil
}

// MergeVersions merges the npm-style specifiers collected for dependency name
// into a single specifier.
//
// Duplicates are removed first and a single remaining value is returned as is.
// Registry specifiers are intersected; when they do not overlap the effective
// maximum is returned and a warning is logged. Source-control references are
// merged as described in the package documentation.
//
// Returns ErrLatestVersion if any version is "latest", a *BranchConflictError
// if source-control references point at different branches, and
// ErrNoVersions for an empty list.
func (m *Merger) MergeVersions(name string, versions []string) (string, error) {
	return m.mergeVersions(name, versions, true)
}

func (m *Merger) mergeVersions(name string, versions []string, warn bool) (string, error) {
	if len(versions) == 0 {
		return "", fmt.Errorf("%s: %w", name, ErrNoVersions)
	}
	if slices.Contains(versions, latest) {
		return "", fmt.Errorf("%s: %w", name, ErrLatestVersion)
	}

	unique := dedupe(versions)
	if len(unique) == 1 {
		return unique[0], nil
	}

	var refs []specifier.Specifier
	var plain []string
	for _, raw := range unique {
		if s := specifier.Parse(raw); s.IsVCS() {
			refs = append(refs, s)
		} else {
			plain = append(plain, raw)
		}
	}
	if len(refs) > 0 {
		return m.mergeRefs(name, refs, plain)
	}

	merged, err := intersect.Intersect(plain...)
	if err == nil {
		m.logger.Debug("merged versions", "dependency", name, "versions", unique, "result", merged)
		return merged, nil
	}

	selected := intersect.FindMaxVersion(plain)
	if selected == "" {
		// Nothing is a version; keep the greatest raw entry so the result
		// does not depend on input order.
		selected = slices.Max(plain)
	}
	if warn {
		m.reportFallback(NPM, name, unique, selected, err)
	}
	return selected, nil
}

// mergeRefs merges source-control references with the remaining registry
// versions of the same dependency.
//
// If every reference carries a "semver:" fragment, the ranges are merged among
// themselves and then against the registry versions. The reference wins when
// the registry versions do not reach beyond its range; otherwise the merged
// registry specifier is returned. Without a semver fragment all references must
// name the same branch.
func (m *Merger) mergeRefs(name string, refs []specifier.Specifier, plain []string) (string, error) {
	var fragments []string
	allSemver := true
	for _, r := range refs {
		if !slices.Contains(fragments, r.Ref) {
			fragments = append(fragments, r.Ref)
		}
		if r.Kind != specifier.VCSSemver {
			allSemver = false
		}
	}

	if !allSemver {
		if len(fragments) == 1 {
			return refs[0].Raw, nil
		}
		raws := make([]string, len(refs))
		for i, r := range refs {
			raws[i] = r.Raw
		}
		return "", &BranchConflictError{Name: name, Refs: raws}
	}

	var ranges []string
	for _, r := range refs {
		if !slices.Contains(ranges, r.Version) {
			ranges = append(ranges, r.Version)
		}
	}
	refVersion, err := m.mergeVersions(name, ranges, false)
	if err != nil {
		return "", err
	}
	overall, err := m.mergeVersions(name, append([]string{refVersion}, plain...), false)
	if err != nil {
		return "", err
	}
	combined, err := m.mergeVersions(name, []string{refVersion, overall}, false)
	if err != nil {
		return "", err
	}

	if combined == refVersion {
		merged := refs[0].Prefix + "#" + specifier.SemverMarker + refVersion
		m.logger.Debug("merged source references", "dependency", name, "result", merged)
		return merged, nil
	}
	m.logger.Debug("registry version exceeds source reference",
		"dependency", name, "reference", refVersion, "result", overall)
	return overall, nil
}

func (m *Merger) reportFallback(eco Ecosystem, name string, candidates []string, selected string, cause error) {
	f := Fallback{
		Ecosystem:  eco,
		Name:       name,
		Candidates: candidates,
		Selected:   selected,
	}
	var nerr *intersect.NoIntersectionError
	if errors.As(cause, &nerr) {
		f.Reason = nerr.Reason
	}

	m.logger.Warn("cannot find common intersecting version, taking max for now",
		"ecosystem", string(eco),
		"dependency", name,
		"versions", candidates,
		"max", selected,
		"reason", f.Reason)
	if m.cfg.onFallback != nil {
		m.cfg.onFallback(f)
	}
}

// dedupe removes duplicates, keeping the first occurrence of each value.
func dedupe(versions []string) []string {
	seen := make(map[string]bool, len(versions))
	out := make([]string, 0, len(versions))
	for _, v := range versions {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
