package workspace

import (
	"errors"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/albertocavalcante/go-depmerge/manifest"
	"github.com/albertocavalcante/go-depmerge/version"
)

// Change is an added or removed dependency.
type Change struct {
	Name      string `json:"name" yaml:"name"`
	Specifier string `json:"specifier" yaml:"specifier"`
}

// Update is a dependency whose specifier changed.
type Update struct {
	Name string `json:"name" yaml:"name"`
	Old  string `json:"old" yaml:"old"`
	New  string `json:"new" yaml:"new"`
}

// Diff describes how merged specifiers differ from the ones currently stored
// in a manifest.
//
//	old, _ := manifest.ReadFile("package.json")
//	d := workspace.DiffSpecifiers(old.Dependencies, result.Dependencies)
//	if !d.IsEmpty() {
//	    fmt.Printf("%d changes\n", d.TotalChanges())
//	}
type Diff struct {
	Added   []Change `json:"added,omitempty" yaml:"added,omitempty"`
	Removed []Change `json:"removed,omitempty" yaml:"removed,omitempty"`

	// Raised and Lowered hold updates whose lowest accepted version moved up
	// or down.
	Raised  []Update `json:"raised,omitempty" yaml:"raised,omitempty"`
	Lowered []Update `json:"lowered,omitempty" yaml:"lowered,omitempty"`

	// Changed holds updates with the same lowest version, such as a caret
	// narrowed to a tilde or a switch between branches.
	Changed []Update `json:"changed,omitempty" yaml:"changed,omitempty"`
}

// IsEmpty reports whether nothing changed.
func (d *Diff) IsEmpty() bool {
	return d.TotalChanges() == 0
}

// TotalChanges returns the number of added, removed and updated dependencies.
func (d *Diff) TotalChanges() int {
	return len(d.Added) + len(d.Removed) + len(d.Raised) + len(d.Lowered) + len(d.Changed)
}

// DiffSpecifiers compares two dependency maps. A nil map is empty. Entries are
// sorted by name.
//
// Specifiers are ordered by the version they start at: "^7.0.1" and "7.0.1"
// both start at 7.0.1, a VCS reference with a semver range at the range's
// version. References without a version sort below every version.
func DiffSpecifiers(old, new map[string]string) *Diff {
	d := &Diff{}

	for _, name := range slices.Sorted(maps.Keys(new)) {
		n := new[name]
		o, ok := old[name]
		switch {
		case !ok:
			d.Added = append(d.Added, Change{Name: name, Specifier: n})
		case o == n:
		default:
			u := Update{Name: name, Old: o, New: n}
			switch c := version.Compare(lowestOf(n), lowestOf(o)); {
			case c > 0:
				d.Raised = append(d.Raised, u)
			case c < 0:
				d.Lowered = append(d.Lowered, u)
			default:
				d.Changed = append(d.Changed, u)
			}
		}
	}

	for _, name := range slices.Sorted(maps.Keys(old)) {
		if _, ok := new[name]; !ok {
			d.Removed = append(d.Removed, Change{Name: name, Specifier: old[name]})
		}
	}
	return d
}

// lowestOf strips the VCS location of a reference, keeping its semver range.
func lowestOf(spec string) string {
	if _, r, ok := strings.Cut(spec, "#semver:"); ok {
		return r
	}
	if strings.Contains(spec, "#") {
		return ""
	}
	return spec
}

// DiffFile compares the dependencies and devDependencies stored in the
// manifest at path with the merged result. A missing manifest has no
// dependencies.
func (r *Result) DiffFile(path string) (deps, devDeps *Diff, err error) {
	m, err := manifest.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		m = &manifest.Manifest{}
	case err != nil:
		return nil, nil, err
	}
	return DiffSpecifiers(m.Dependencies, r.Dependencies), DiffSpecifiers(m.DevDependencies, r.DevDependencies), nil
}

// DiffDir is DiffFile for the package.json in dir.
func (r *Result) DiffDir(dir string) (deps, devDeps *Diff, err error) {
	return r.DiffFile(filepath.Join(dir, manifest.FileName))
}
