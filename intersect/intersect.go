// Package intersect computes a single specifier for a set of semver
// specifiers: their intersection when all ranges overlap, or an "effective
// maximum" when they do not.
//
// Intersect never guesses. It returns a *NoIntersectionError for disjoint or
// unparseable input and leaves the fallback policy to the caller, which
// normally is FindMaxVersion.
package intersect

import (
	"errors"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/albertocavalcante/go-depmerge/version"
)

// ErrNoIntersection is matched by every *NoIntersectionError.
var ErrNoIntersection = errors.New("no intersection")

// NoIntersectionError reports why a set of specifiers has no common version.
type NoIntersectionError struct {
	Specifiers []string
	Reason     string
}

func (e *NoIntersectionError) Error() string {
	quoted := make([]string, len(e.Specifiers))
	for i, s := range e.Specifiers {
		quoted[i] = strconv.Quote(s)
	}
	return "no intersection of " + strings.Join(quoted, ", ") + ": " + e.Reason
}

// Is makes errors.Is(err, ErrNoIntersection) true.
func (e *NoIntersectionError) Is(target error) bool {
	return target == ErrNoIntersection
}

// bounds accumulates the tightest interval seen so far.
type bounds struct {
	lower *version.Comparator
	upper *version.Comparator
	exact *semver.Version
}

func (b *bounds) add(c version.Comparator) string {
	switch {
	case c.Op == version.OpEqual:
		if b.exact != nil && !b.exact.Equal(c.Version) {
			return "versions " + b.exact.String() + " and " + c.Version.String() + " differ"
		}
		b.exact = c.Version
	case c.IsLower():
		if b.lower == nil || version.TighterLower(c, *b.lower) {
			b.lower = &c
		}
	case c.IsUpper():
		if b.upper == nil || version.TighterUpper(c, *b.upper) {
			b.upper = &c
		}
	}
	return ""
}

// releasePrereleases narrows prerelease bounds that not every range opts
// into: a lower bound moves up to its release, an upper bound down to the
// first prerelease of its release.
func (b *bounds) releasePrereleases(ranges []version.Range) {
	allowed := func(v *semver.Version) bool {
		for _, r := range ranges {
			if !r.AllowsPrerelease(v) {
				return false
			}
		}
		return true
	}
	if b.lower != nil && b.lower.Version.Prerelease() != "" && !allowed(b.lower.Version) {
		b.lower = &version.Comparator{Op: version.OpGreaterEqual, Version: version.Release(b.lower.Version)}
	}
	if b.upper != nil && b.upper.Version.Prerelease() != "" && !allowed(b.upper.Version) {
		v := b.upper.Version
		b.upper = &version.Comparator{Op: version.OpLess, Version: semver.New(v.Major(), v.Minor(), v.Patch(), "0", "")}
	}
}

func (b *bounds) check(specs []string, ranges []version.Range) string {
	if b.lower != nil && b.upper != nil {
		c := b.lower.Version.Compare(b.upper.Version)
		inclusive := b.lower.Op == version.OpGreaterEqual && b.upper.Op == version.OpLessEqual
		if c > 0 || (c == 0 && !inclusive) {
			return "lower bound " + b.lower.String() + " is not below upper bound " + b.upper.String()
		}
	}
	if b.exact != nil {
		for i, r := range ranges {
			if !r.Admits(b.exact) {
				return "version " + b.exact.String() + " does not satisfy " + strconv.Quote(specs[i])
			}
		}
	}
	return ""
}

// Intersect returns the tightest specifier admitted by every input.
//
// The result is an exact version when one is pinned, "^L" or "~L" when the
// interval is exactly a caret or tilde range, otherwise the primitive
// comparators (">=L <U"), or "*" when nothing constrains the version.
// Input order does not affect the result.
//
// Prereleases follow node-semver: a prerelease is only part of the result
// when every input opts into prereleases of the same major.minor.patch.
func Intersect(specs ...string) (string, error) {
	if len(specs) == 0 {
		return "", &NoIntersectionError{Reason: "no specifiers"}
	}

	var b bounds
	ranges := make([]version.Range, 0, len(specs))
	for _, s := range specs {
		r, err := version.ParseRange(s)
		if err != nil {
			return "", &NoIntersectionError{Specifiers: specs, Reason: err.Error()}
		}
		for _, c := range r {
			if reason := b.add(c); reason != "" {
				return "", &NoIntersectionError{Specifiers: specs, Reason: reason}
			}
		}
		ranges = append(ranges, r)
	}
	b.releasePrereleases(ranges)
	if reason := b.check(specs, ranges); reason != "" {
		return "", &NoIntersectionError{Specifiers: specs, Reason: reason}
	}
	return b.render(), nil
}

func (b *bounds) render() string {
	if b.exact != nil {
		return b.exact.String()
	}
	lower, upper := b.lower, b.upper
	switch {
	case lower == nil && upper == nil:
		return "*"
	case upper == nil:
		return lower.String()
	case lower == nil:
		return upper.String()
	case lower.Version.Equal(upper.Version):
		// Only reachable for >=X <=X.
		return lower.Version.String()
	}

	if lower.Op == version.OpGreaterEqual && upper.Op == version.OpLess && upper.Version.Prerelease() == "" {
		switch {
		case upper.Version.Equal(version.CaretUpper(lower.Version)):
			return "^" + lower.Version.String()
		case upper.Version.Equal(version.TildeUpper(lower.Version)):
			return "~" + lower.Version.String()
		}
	}
	return lower.String() + " " + upper.String()
}
