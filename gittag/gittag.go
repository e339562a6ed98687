// Package gittag selects release tags of plugin repositories.
//
// Checkout tooling resolves a requested plugin version ("v2.0.0", "^v2.0.0",
// "develop", a commit hash) against the tags listed by
// `git ls-remote --tags <repository>`.
package gittag

import (
	"bufio"
	"regexp"
	"slices"
	"strings"

	"github.com/albertocavalcante/go-depmerge/version"
)

var (
	gitCommitPattern  = regexp.MustCompile(`^[0-9a-f]+$`)
	exactTagPattern   = regexp.MustCompile(`^v\d`)
	advancedTagPrefix = regexp.MustCompile(`^[\^~]v`)
)

// tagRefPrefix precedes every tag name in ls-remote output.
const tagRefPrefix = "refs/tags/"

// IsGitCommit reports whether name is a (possibly abbreviated) commit hash.
func IsGitCommit(name string) bool {
	return gitCommitPattern.MatchString(name)
}

// IsExactVersionTag reports whether name is a version tag such as "v2.0.0".
func IsExactVersionTag(name string) bool {
	return exactTagPattern.MatchString(name)
}

// IsAdvancedVersionTag reports whether name is a caret or tilde range over
// version tags such as "^v2.0.0" or "~v2.0.0".
func IsAdvancedVersionTag(name string) bool {
	return advancedTagPrefix.MatchString(name)
}

// ExtractVersionsFromGitLog returns the version tags (tags starting with "v")
// listed in the output of `git ls-remote --tags`:
//
//	<hash>	refs/tags/<tag>
//
// Dereferenced tag entries ("v1.0.0^{}") are excluded. Tags are returned in the
// order they appear.
func ExtractVersionsFromGitLog(gitLog string) []string {
	var tags []string
	sc := bufio.NewScanner(strings.NewReader(gitLog))
	for sc.Scan() {
		_, tag, ok := strings.Cut(sc.Text(), tagRefPrefix)
		if !ok {
			continue
		}
		tag = strings.TrimSpace(tag)
		if !strings.HasPrefix(tag, "v") || len(tag) < 2 || strings.HasSuffix(tag, "}") {
			continue
		}
		tags = append(tags, tag)
	}
	return tags
}

// FindHighestVersion returns the highest of the source versions that matches
// target.
//
// A target without a leading "^" or "~" must match a source version exactly.
// Otherwise the source versions satisfying the range are ordered by their raw
// text, descending, and the first is returned. The ordering is textual, so
// "v9.0.0" sorts above "v10.0.0".
func FindHighestVersion(sources []string, target string) (string, bool) {
	if !strings.HasPrefix(target, "^") && !strings.HasPrefix(target, "~") {
		if slices.Contains(sources, target) {
			return target, true
		}
		return "", false
	}

	var satisfied []string
	for _, v := range sources {
		if version.Satisfies(v, target) {
			satisfied = append(satisfied, v)
		}
	}
	if len(satisfied) == 0 {
		return "", false
	}
	slices.SortStableFunc(satisfied, func(a, b string) int { return strings.Compare(b, a) })
	return satisfied[0], true
}
