package depmerge

import (
	"fmt"
	"strings"
)

// Ecosystem names the package ecosystem a merge ran for.
type Ecosystem string

const (
	NPM Ecosystem = "npm"
	Pip Ecosystem = "pip"
)

// Fallback describes a merge whose candidates had no common intersection,
// so the effective maximum was selected instead.
type Fallback struct {
	Ecosystem Ecosystem `json:"ecosystem"`

	// Name is the dependency name.
	Name string `json:"name"`

	// Candidates are the unique specifiers that were merged.
	Candidates []string `json:"candidates"`

	// Selected is the specifier that was chosen.
	Selected string `json:"selected"`

	// Reason explains why no intersection exists.
	Reason string `json:"reason,omitempty"`
}

// String returns a one-line description of the fallback.
func (f Fallback) String() string {
	return fmt.Sprintf("cannot find common intersecting version for %s = %s, taking max %q for now",
		f.Name, strings.Join(f.Candidates, ", "), f.Selected)
}
