// Package specifier classifies raw dependency version strings.
//
// A specifier is parsed once at the entry point of a merge into one of a few
// kinds, so the merge algorithms switch on Kind instead of re-checking string
// prefixes:
//
//	4.2.0                              Exact
//	^4.2.0                             Caret
//	~4.2.0                             Tilde
//	github:org/repo#develop            VCSBranch
//	github:org/repo#semver:^7.0.1      VCSSemver
//	>=1.0.0 <2.0.0, 1.x                Other
package specifier

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/albertocavalcante/go-depmerge/requirements"
)

// Kind identifies the form of a specifier.
type Kind int

const (
	// Other is any registry range that is not a single caret, tilde or exact version.
	Other Kind = iota
	Exact
	Caret
	Tilde
	// VCSBranch pins a source-control reference; the ref is opaque.
	VCSBranch
	// VCSSemver is a source-control reference carrying a "semver:" range.
	VCSSemver
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Exact:
		return "exact"
	case Caret:
		return "caret"
	case Tilde:
		return "tilde"
	case VCSBranch:
		return "vcs-branch"
	case VCSSemver:
		return "vcs-semver"
	}
	return "other"
}

// SemverMarker tags a VCS fragment as a numeric range.
const SemverMarker = "semver:"

// Specifier is a parsed version specifier.
type Specifier struct {
	Kind Kind

	// Raw is the string the specifier was parsed from.
	Raw string

	// Version is the semver text: the specifier itself for registry kinds,
	// the range after the semver marker for VCSSemver, and the semver
	// translation for pip specifiers.
	Version string

	// Prefix is the location part of a VCS reference (before "#" or "@").
	Prefix string

	// Ref is the fragment of a VCS reference: a branch, tag or "semver:<range>".
	Ref string
}

// IsVCS reports whether the specifier points at source control rather than
// a registry release.
func (s Specifier) IsVCS() bool {
	return s.Kind == VCSBranch || s.Kind == VCSSemver
}

// String returns the raw specifier.
func (s Specifier) String() string {
	return s.Raw
}

// IsVCSReference reports whether an npm specifier points at a GitHub or
// GitLab repository. Other git URLs are treated as opaque registry values.
func IsVCSReference(raw string) bool {
	return strings.Contains(raw, "github") || strings.Contains(raw, "gitlab")
}

// Parse classifies an npm-style specifier.
func Parse(raw string) Specifier {
	if IsVCSReference(raw) {
		prefix, fragment, _ := strings.Cut(raw, "#")
		// Only the segment up to a second "#" is the ref.
		ref, _, _ := strings.Cut(fragment, "#")
		s := Specifier{Kind: VCSBranch, Raw: raw, Prefix: prefix, Ref: ref}
		if strings.Contains(ref, SemverMarker) {
			s.Kind = VCSSemver
			s.Version = strings.Replace(ref, SemverMarker, "", 1)
		}
		return s
	}
	return Specifier{Kind: classify(raw), Raw: raw, Version: raw}
}

// ParsePip classifies a pip-style specifier. Branch suffixes taken from
// editable requirements ("@develop#egg=name") and full editable lines
// ("-e git+https://host/org/repo.git@develop#egg=name") are VCS branches.
func ParsePip(raw string) Specifier {
	switch {
	case strings.HasPrefix(raw, "@"):
		return Specifier{Kind: VCSBranch, Raw: raw, Ref: raw[1:]}
	case strings.HasPrefix(raw, "-e") || strings.HasPrefix(raw, "git+"):
		s := Specifier{Kind: VCSBranch, Raw: raw, Prefix: raw}
		if i := strings.LastIndex(raw, "@"); i >= 0 {
			s.Prefix, s.Ref = raw[:i], raw[i+1:]
		}
		return s
	}
	v := requirements.ToSemVer(raw)
	return Specifier{Kind: classify(v), Raw: raw, Version: v}
}

func classify(v string) Kind {
	switch {
	case strings.HasPrefix(v, "^"):
		return Caret
	case strings.HasPrefix(v, "~"):
		return Tilde
	}
	if _, err := semver.StrictNewVersion(strings.TrimPrefix(v, "v")); err == nil {
		return Exact
	}
	return Other
}
