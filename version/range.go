package version

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Op is a primitive comparator operator.
type Op string

const (
	OpEqual        Op = "="
	OpGreater      Op = ">"
	OpGreaterEqual Op = ">="
	OpLess         Op = "<"
	OpLessEqual    Op = "<="
)

// partialPattern matches a possibly partial version: missing or wildcard
// components are allowed, as in "1", "1.2", "1.x" or "*".
var partialPattern = regexp.MustCompile(
	`^[vV=]*(\d+|[xX*])(?:\.(\d+|[xX*]))?(?:\.(\d+|[xX*]))?(?:-([0-9A-Za-z.-]+))?(?:\+[0-9A-Za-z.-]+)?$`,
)

// Comparator is a single primitive bound such as ">=1.2.3".
type Comparator struct {
	Op      Op
	Version *semver.Version
}

// String renders the comparator the way node-semver prints it; exact
// versions carry no operator.
func (c Comparator) String() string {
	if c.Op == OpEqual {
		return c.Version.String()
	}
	return string(c.Op) + c.Version.String()
}

// IsLower reports whether the comparator bounds versions from below.
func (c Comparator) IsLower() bool {
	return c.Op == OpGreater || c.Op == OpGreaterEqual
}

// IsUpper reports whether the comparator bounds versions from above.
func (c Comparator) IsUpper() bool {
	return c.Op == OpLess || c.Op == OpLessEqual
}

// Admits reports whether v lies on the accepted side of the bound, ignoring
// prerelease rules.
func (c Comparator) Admits(v *semver.Version) bool {
	cmp := v.Compare(c.Version)
	switch c.Op {
	case OpGreater:
		return cmp > 0
	case OpGreaterEqual:
		return cmp >= 0
	case OpLess:
		return cmp < 0
	case OpLessEqual:
		return cmp <= 0
	}
	return cmp == 0
}

// Range is a conjunction of comparators. An empty Range admits every release.
type Range []Comparator

// Admits reports whether v satisfies every comparator of r. As in
// node-semver, a prerelease is only admitted when some comparator carries a
// prerelease on the same major.minor.patch.
func (r Range) Admits(v *semver.Version) bool {
	for _, c := range r {
		if !c.Admits(v) {
			return false
		}
	}
	return v.Prerelease() == "" || r.AllowsPrerelease(v)
}

// AllowsPrerelease reports whether r opts into prereleases of v's
// major.minor.patch.
func (r Range) AllowsPrerelease(v *semver.Version) bool {
	for _, c := range r {
		if c.Version.Prerelease() != "" && SameRelease(c.Version, v) {
			return true
		}
	}
	return false
}

// SameRelease reports whether a and b share major, minor and patch.
func SameRelease(a, b *semver.Version) bool {
	return a.Major() == b.Major() && a.Minor() == b.Minor() && a.Patch() == b.Patch()
}

// Release returns v without prerelease and build metadata.
func Release(v *semver.Version) *semver.Version {
	return semver.New(v.Major(), v.Minor(), v.Patch(), "", "")
}

// Upper returns the tightest upper bound of the range, treating an exact
// comparator as an inclusive bound. Returns nil if the range is unbounded.
func (r Range) Upper() *Comparator {
	var best *Comparator
	for _, c := range r {
		if c.Op == OpEqual {
			c.Op = OpLessEqual
		}
		if !c.IsUpper() {
			continue
		}
		if best == nil || TighterUpper(c, *best) {
			cc := c
			best = &cc
		}
	}
	return best
}

// TighterLower reports whether a is a strictly tighter lower bound than b.
func TighterLower(a, b Comparator) bool {
	c := a.Version.Compare(b.Version)
	return c > 0 || (c == 0 && a.Op == OpGreater && b.Op == OpGreaterEqual)
}

// TighterUpper reports whether a is a strictly tighter upper bound than b.
func TighterUpper(a, b Comparator) bool {
	c := a.Version.Compare(b.Version)
	return c < 0 || (c == 0 && a.Op == OpLess && b.Op == OpLessEqual)
}

// ParseError represents a range that cannot be expanded.
type ParseError struct {
	Range   string
	Message string
}

func (e *ParseError) Error() string {
	return "bad range " + strconv.Quote(e.Range) + ": " + e.Message
}

// ParseRange expands an npm-style range into primitive comparators.
//
// Union ("||") and hyphen ranges are not supported and return a *ParseError.
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "||") {
		return nil, &ParseError{Range: s, Message: "union ranges are not supported"}
	}

	var out Range
	for _, tok := range tokenize(s) {
		cs, err := expandToken(tok)
		if err != nil {
			return nil, &ParseError{Range: s, Message: err.Error()}
		}
		out = append(out, cs...)
	}
	return out, nil
}

// tokenize splits on whitespace and glues bare operators to the version
// that follows them (">= 1.2.3" becomes ">=1.2.3").
func tokenize(s string) []string {
	var toks []string
	pending := ""
	for _, f := range strings.Fields(s) {
		if strings.Trim(f, "<>=^~") == "" {
			pending += f
			continue
		}
		toks = append(toks, pending+f)
		pending = ""
	}
	if pending != "" {
		toks = append(toks, pending)
	}
	return toks
}

type tokenError string

func (e tokenError) Error() string { return string(e) }

// partial is a parsed, possibly incomplete version.
type partial struct {
	parts [3]uint64
	n     int // number of numeric components before the first wildcard
	pre   string
}

func (p partial) version() *semver.Version {
	return semver.New(p.parts[0], p.parts[1], p.parts[2], p.pre, "")
}

func parsePartial(s string) (partial, error) {
	m := partialPattern.FindStringSubmatch(s)
	if m == nil {
		return partial{}, tokenError("invalid version " + strconv.Quote(s))
	}
	var p partial
	for i := range 3 {
		seg := m[i+1]
		if seg == "" || seg == "x" || seg == "X" || seg == "*" {
			break
		}
		n, err := strconv.ParseUint(seg, 10, 64)
		if err != nil {
			return partial{}, tokenError("invalid version " + strconv.Quote(s))
		}
		p.parts[i] = n
		p.n++
	}
	if p.n == 3 {
		p.pre = m[4]
	}
	return p, nil
}

func bound(op Op, major, minor, patch uint64) Comparator {
	return Comparator{Op: op, Version: semver.New(major, minor, patch, "", "")}
}

func expandToken(tok string) (Range, error) {
	op, rest := splitOp(tok)
	if rest == "" {
		if op == "" {
			return nil, nil
		}
		return nil, tokenError("operator " + strconv.Quote(op) + " without version")
	}
	if rest == "-" {
		return nil, tokenError("hyphen ranges are not supported")
	}
	p, err := parsePartial(rest)
	if err != nil {
		return nil, err
	}
	major, minor, patch := p.parts[0], p.parts[1], p.parts[2]

	switch op {
	case "^":
		if p.n == 0 {
			return nil, nil
		}
		lower := Comparator{Op: OpGreaterEqual, Version: p.version()}
		var upper Comparator
		switch {
		case major > 0 || p.n == 1:
			upper = bound(OpLess, major+1, 0, 0)
		case minor > 0 || p.n == 2:
			upper = bound(OpLess, 0, minor+1, 0)
		default:
			upper = bound(OpLess, 0, 0, patch+1)
		}
		return Range{lower, upper}, nil

	case "~", "~>":
		if p.n == 0 {
			return nil, nil
		}
		lower := Comparator{Op: OpGreaterEqual, Version: p.version()}
		if p.n == 1 {
			return Range{lower, bound(OpLess, major+1, 0, 0)}, nil
		}
		return Range{lower, bound(OpLess, major, minor+1, 0)}, nil

	case "", "=":
		switch p.n {
		case 0:
			return nil, nil
		case 1:
			return Range{bound(OpGreaterEqual, major, 0, 0), bound(OpLess, major+1, 0, 0)}, nil
		case 2:
			return Range{bound(OpGreaterEqual, major, minor, 0), bound(OpLess, major, minor+1, 0)}, nil
		}
		return Range{{Op: OpEqual, Version: p.version()}}, nil

	case ">":
		switch p.n {
		case 0:
			return nil, tokenError("range " + strconv.Quote(tok) + " admits no version")
		case 1:
			return Range{bound(OpGreaterEqual, major+1, 0, 0)}, nil
		case 2:
			return Range{bound(OpGreaterEqual, major, minor+1, 0)}, nil
		}
		return Range{{Op: OpGreater, Version: p.version()}}, nil

	case ">=":
		if p.n == 0 {
			return nil, nil
		}
		return Range{{Op: OpGreaterEqual, Version: p.version()}}, nil

	case "<":
		if p.n == 0 {
			return nil, tokenError("range " + strconv.Quote(tok) + " admits no version")
		}
		return Range{{Op: OpLess, Version: p.version()}}, nil

	case "<=":
		switch p.n {
		case 0:
			return nil, nil
		case 1:
			return Range{bound(OpLess, major+1, 0, 0)}, nil
		case 2:
			return Range{bound(OpLess, major, minor+1, 0)}, nil
		}
		return Range{{Op: OpLessEqual, Version: p.version()}}, nil
	}
	return nil, tokenError("unknown operator " + strconv.Quote(op))
}

func splitOp(tok string) (string, string) {
	for _, op := range []string{">=", "<=", "~>", ">", "<", "^", "~", "="} {
		if strings.HasPrefix(tok, op) {
			return op, strings.TrimSpace(tok[len(op):])
		}
	}
	return "", tok
}
