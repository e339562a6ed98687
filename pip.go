package depmerge

import (
	"github.com/Masterminds/semver/v3"

	"github.com/albertocavalcante/go-depmerge/intersect"
	"github.com/albertocavalcante/go-depmerge/requirements"
	"github.com/albertocavalcante/go-depmerge/specifier"
	"github.com/albertocavalcante/go-depmerge/version"
)

// MergePipVersions merges the pip-style specifiers collected for requirement
// name ("==1.2.3", "~=1.2.3", "^=1.2.3", or a branch pin "@develop#egg=x").
//
// Empty entries are dropped and duplicates removed. An empty list yields "".
// The first branch pin wins outright. Otherwise the specifiers are translated
// to semver and intersected; when they do not overlap the highest coerced
// version is returned as "==X" and a warning is logged.
func (m *Merger) MergePipVersions(name string, versions []string) string {
	var nonEmpty []string
	for _, v := range versions {
		if v != "" {
			nonEmpty = append(nonEmpty, v)
		}
	}
	unique := dedupe(nonEmpty)
	switch len(unique) {
	case 0:
		return ""
	case 1:
		return unique[0]
	}

	specs := make([]specifier.Specifier, len(unique))
	for i, raw := range unique {
		specs[i] = specifier.ParsePip(raw)
		if specs[i].Kind == specifier.VCSBranch {
			m.logger.Debug("branch pin wins", "requirement", name, "result", raw)
			return raw
		}
	}

	semvers := make([]string, len(specs))
	for i, s := range specs {
		semvers[i] = s.Version
	}
	merged, err := intersect.Intersect(semvers...)
	if err == nil {
		result := requirements.FromRange(merged)
		m.logger.Debug("merged requirements", "requirement", name, "versions", unique, "result", result)
		return result
	}

	var coerced []*semver.Version
	for _, s := range semvers {
		if v, ok := version.Coerce(s); ok {
			coerced = append(coerced, v)
		}
	}
	selected := unique[len(unique)-1]
	if highest := version.Max(coerced); highest != nil {
		selected = requirements.ToPipVersion(highest.String())
	}
	m.reportFallback(Pip, name, unique, selected, err)
	return selected
}
