// Package version implements the semver helpers shared by the mergers:
// coercion of loose version strings, comparison, and npm-style range
// expansion into comparators.
//
// Parsing and ordering are delegated to github.com/Masterminds/semver/v3.
// Range expansion follows npm's node-semver grammar for the subset that
// appears in plugin manifests:
//
//	X.Y.Z        exact version
//	^X.Y.Z       >=X.Y.Z <(X+1).0.0  (leftmost non-zero component is fixed)
//	~X.Y.Z       >=X.Y.Z <X.(Y+1).0
//	X.Y, X, X.x  x-ranges
//	>=, >, <, <= primitive comparators, space separated
//
// A leading "v" is accepted everywhere and dropped from normalized output.
package version

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// coercePattern finds the first major[.minor[.patch]] run in a string,
// mirroring node-semver's coerce().
var coercePattern = regexp.MustCompile(`(\d+)(?:\.(\d+))?(?:\.(\d+))?`)

// Coerce extracts a strict major.minor.patch version from loosely formatted
// text such as "5.1", "v2" or "^7.0.1". Prerelease and build data are dropped.
func Coerce(s string) (*semver.Version, bool) {
	m := coercePattern.FindStringSubmatch(s)
	if m == nil {
		return nil, false
	}
	var parts [3]uint64
	for i := range parts {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.ParseUint(m[i+1], 10, 64)
		if err != nil {
			return nil, false
		}
		parts[i] = n
	}
	return semver.New(parts[0], parts[1], parts[2], "", ""), true
}

// Normalize turns a plain (non-range) version string into a concrete version.
// Prerelease versions are kept as written; anything else is coerced.
func Normalize(s string) (*semver.Version, bool) {
	if v, err := semver.NewVersion(strings.TrimSpace(s)); err == nil && v.Prerelease() != "" {
		return v, true
	}
	return Coerce(s)
}

// Compare compares two version strings after normalization.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
//
// Strings that cannot be normalized sort before every version and compare
// lexicographically among themselves.
func Compare(a, b string) int {
	va, okA := Normalize(a)
	vb, okB := Normalize(b)
	switch {
	case okA && okB:
		return va.Compare(vb)
	case okA:
		return 1
	case okB:
		return -1
	}
	return strings.Compare(a, b)
}

// Max returns the highest version of the list, or nil for an empty list.
func Max(vs []*semver.Version) *semver.Version {
	if len(vs) == 0 {
		return nil
	}
	return slices.MaxFunc(vs, func(a, b *semver.Version) int { return a.Compare(b) })
}

// SortDescending sorts versions from highest to lowest.
func SortDescending(vs []*semver.Version) {
	slices.SortStableFunc(vs, func(a, b *semver.Version) int { return b.Compare(a) })
}

// Satisfies reports whether v satisfies the npm-style constraint c.
// Unparseable input never satisfies.
func Satisfies(v, c string) bool {
	sv, err := semver.NewVersion(v)
	if err != nil {
		return false
	}
	constraint, err := semver.NewConstraint(c)
	if err != nil {
		return false
	}
	return constraint.Check(sv)
}

// HasRangeMarker reports whether s starts with a caret or tilde.
func HasRangeMarker(s string) bool {
	return strings.HasPrefix(s, "^") || strings.HasPrefix(s, "~")
}

// RangeBase strips a leading caret or tilde and returns the concrete lower
// version of the range, keeping a prerelease tag if one was written.
func RangeBase(s string) (*semver.Version, bool) {
	return Normalize(strings.TrimLeft(s, "^~"))
}

// CaretUpper returns the exclusive upper bound of ^v.
func CaretUpper(v *semver.Version) *semver.Version {
	switch {
	case v.Major() > 0:
		return semver.New(v.Major()+1, 0, 0, "", "")
	case v.Minor() > 0:
		return semver.New(0, v.Minor()+1, 0, "", "")
	}
	return semver.New(0, 0, v.Patch()+1, "", "")
}

// TildeUpper returns the exclusive upper bound of ~v.
func TildeUpper(v *semver.Version) *semver.Version {
	return semver.New(v.Major(), v.Minor()+1, 0, "", "")
}

// GreaterThanRange reports whether v is greater than every version the range
// r admits. A range without an upper bound is never exceeded.
//
// The comparison is made against the range's upper comparator only, so a
// version equal to an exclusive bound or a prerelease of it ("5.0.0" or
// "5.0.0-beta.0" against "^4.2.0") is greater than the range, while one equal
// to an inclusive bound is not.
func GreaterThanRange(v *semver.Version, r string) bool {
	rng, err := ParseRange(r)
	if err != nil {
		return false
	}
	upper := rng.Upper()
	if upper == nil {
		return false
	}
	bound := upper.Version
	if upper.Op == OpLess {
		// <X admits no prerelease of X, so X-0 is the first version above it.
		if bound.Prerelease() == "" {
			bound = semver.New(bound.Major(), bound.Minor(), bound.Patch(), "0", "")
		}
		return v.Compare(bound) >= 0
	}
	return v.Compare(bound) > 0
}
