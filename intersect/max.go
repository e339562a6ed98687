package intersect

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/albertocavalcante/go-depmerge/version"
)

// FindMaxVersion returns the specifier with the highest reach among specs,
// e.g. ['1.2.3-alpha.1', '4.0.1-beta.0', '^3.8.0', '~4.0.0', '^4.0.0'] gives
// '^4.0.0'. It understands caret and tilde ranges and prerelease tags and
// never fails; input without any usable version yields "".
//
// Plain versions are compared as concrete versions and returned normalized.
// Among ranges the highest caret and the highest tilde are picked by their
// lower version, and the tilde wins only with a strictly greater major. A
// plain version beats the winning range only if it lies above every version
// the range admits.
func FindMaxVersion(specs []string) string {
	var plain []*semver.Version
	var carets, tildes []string
	for _, s := range specs {
		switch {
		case strings.HasPrefix(s, "^"):
			carets = append(carets, s)
		case strings.HasPrefix(s, "~"):
			tildes = append(tildes, s)
		default:
			if v, ok := version.Normalize(s); ok {
				plain = append(plain, v)
			}
		}
	}

	maxPlain := version.Max(plain)
	maxRange := maxRangeOf(maxRanged(tildes), maxRanged(carets))

	switch {
	case maxRange == "" && maxPlain == nil:
		return ""
	case maxRange == "":
		return maxPlain.String()
	case maxPlain != nil && version.GreaterThanRange(maxPlain, maxRange):
		return maxPlain.String()
	}
	return maxRange
}

// maxRanged returns the entry whose lower version is highest. Ties between
// different spellings of the same version go to the lexicographically
// smallest raw string so the result does not depend on input order.
func maxRanged(ranges []string) string {
	var best string
	var bestV *semver.Version
	for _, r := range ranges {
		v, ok := version.RangeBase(r)
		if !ok {
			continue
		}
		if bestV == nil {
			best, bestV = r, v
			continue
		}
		if c := v.Compare(bestV); c > 0 || (c == 0 && r < best) {
			best, bestV = r, v
		}
	}
	return best
}

// maxRangeOf picks between the highest tilde and the highest caret range.
// A tilde range only reaches further than a caret range if its major is
// greater ('~3.5.6' beats '^2.9.0'); otherwise the caret's upper bound is
// at least as high.
func maxRangeOf(tilde, caret string) string {
	switch {
	case tilde == "":
		return caret
	case caret == "":
		return tilde
	}
	t, _ := version.RangeBase(tilde)
	c, _ := version.RangeBase(caret)
	if t.Major() > c.Major() {
		return tilde
	}
	return caret
}
