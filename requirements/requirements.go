// Package requirements handles pip-style version syntax and requirements.txt
// text: translation between pip and semver specifiers, parsing a requirements
// blob into a name to specifier mapping, and rendering it back.
package requirements

import (
	"slices"
	"strings"
)

// versionSeparators are the characters that start a pip version specifier.
const versionSeparators = "^~=>!"

// ToSemVer translates a pip specifier into semver syntax:
// "~=X" becomes "~X", "^=X" becomes "^X", "==X" becomes "X".
// Anything else is returned unchanged.
func ToSemVer(v string) string {
	switch {
	case strings.HasPrefix(v, "~="):
		return "~" + v[2:]
	case strings.HasPrefix(v, "^="):
		return "^" + v[2:]
	case strings.HasPrefix(v, "=="):
		return v[2:]
	}
	return v
}

// ToPipVersion translates a semver specifier into pip syntax:
// "~X" becomes "~=X", "^X" becomes "^=X", anything else "==X".
// An empty input yields an empty result.
func ToPipVersion(v string) string {
	switch {
	case v == "":
		return ""
	case strings.HasPrefix(v, "~"):
		return "~=" + v[1:]
	case strings.HasPrefix(v, "^"):
		return "^=" + v[1:]
	}
	return "==" + v
}

// FromRange translates an intersected semver range into pip syntax. Compound
// ranges (">=1.0.0 <2.0.0") become comma separated pip clauses
// (">=1.0.0,<2.0.0"); the unconstrained range "*" becomes empty. Everything
// else goes through ToPipVersion.
func FromRange(r string) string {
	switch {
	case r == "*":
		return ""
	case strings.ContainsAny(r, "<>"):
		return strings.Join(strings.Fields(r), ",")
	}
	return ToPipVersion(r)
}

// ParseRequirements transforms the content of a requirements.txt file into a
// mapping from requirement name to version specifier.
//
// Editable lines ("-e git+https://...@branch#egg=name") are split at the first
// "@": the left part is the key and the "@..." suffix the value. Other lines
// starting with "#" or "-" are comments or pip flags and are skipped. A
// requirement without a version specifier maps to the empty string.
func ParseRequirements(text string) map[string]string {
	reqs := make(map[string]string)
	for line := range strings.SplitSeq(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "-e") {
			i := strings.Index(line, "@")
			if i < 0 {
				reqs[line] = ""
				continue
			}
			reqs[strings.TrimSpace(line[:i])] = strings.TrimSpace(line[i:])
			continue
		}

		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}

		i := strings.IndexAny(line, versionSeparators)
		if i < 0 {
			reqs[line] = ""
			continue
		}
		reqs[strings.TrimSpace(line[:i])] = strings.TrimSpace(line[i:])
	}
	return reqs
}

// Format renders a requirements mapping as requirements.txt content, one
// requirement per line in name order. Editable entries are joined without a
// separator so that Format and ParseRequirements round-trip.
func Format(reqs map[string]string) string {
	names := make([]string, 0, len(reqs))
	for name := range reqs {
		names = append(names, name)
	}
	slices.Sort(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteString(reqs[name])
		b.WriteByte('\n')
	}
	return b.String()
}
