package depmerge

import (
	"errors"
	"strings"
)

// Sentinel errors for merge failures.
var (
	// ErrLatestVersion indicates a dependency declared as "latest", which
	// cannot be merged or reproduced.
	ErrLatestVersion = errors.New("invalid version: please avoid using version latest in package.json")

	// ErrBranchConflict indicates VCS references to different branches of
	// the same dependency. Branch names are opaque, so nothing can be chosen.
	ErrBranchConflict = errors.New("versions point to different branches")

	// ErrNoVersions indicates a merge call without any version.
	ErrNoVersions = errors.New("no versions to merge")
)

// BranchConflictError lists the conflicting VCS references of a dependency.
type BranchConflictError struct {
	Name string
	Refs []string
}

func (e *BranchConflictError) Error() string {
	return "versions " + strings.Join(e.Refs, ", ") + " of " + e.Name +
		" point to different branches, which can lead to workspace errors; " +
		"please use the same branch in all versions"
}

// Is makes errors.Is(err, ErrBranchConflict) true.
func (e *BranchConflictError) Is(target error) bool {
	return target == ErrBranchConflict
}
