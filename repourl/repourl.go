// Package repourl converts plugin repository references between bare names
// ("ordino"), organization paths ("phovea/phovea_core"), HTTPS URLs and SSH
// URLs.
package repourl

import (
	"regexp"
	"strings"
)

// DefaultOrganization is prepended to bare repository names.
const DefaultOrganization = "Caleydo"

// DefaultHost serves repositories given as names or organization paths.
const DefaultHost = "github.com"

// urlPattern matches http(s) and scp-style SSH URLs. Groups: 2 HTTP host,
// 3 SSH host, 4 organization/repository path.
var urlPattern = regexp.MustCompile(`(https?://([^/]+)/|git@(.+):)([\w/-]+)(\.git)?`)

// ToHTTP returns the HTTPS clone URL of repo.
//
//	ordino                                 https://github.com/Caleydo/ordino.git
//	phovea/phovea_core                     https://github.com/phovea/phovea_core.git
//	git@github.com:phovea/phovea_core.git  https://github.com/phovea/phovea_core.git
func ToHTTP(repo string) string {
	switch {
	case strings.HasPrefix(repo, "http"):
		return repo
	case strings.HasPrefix(repo, "git@"):
		m := urlPattern.FindStringSubmatch(repo)
		if m == nil {
			return repo
		}
		return "https://" + m[3] + "/" + m[4] + ".git"
	}
	return "https://" + DefaultHost + "/" + ToBaseName(repo) + ".git"
}

// ToSSH returns the SSH clone URL of repo.
func ToSSH(repo string) string {
	switch {
	case strings.HasPrefix(repo, "git@"):
		return repo
	case strings.HasPrefix(repo, "http"):
		return ToSSHFromHTTP(repo)
	}
	return "git@" + DefaultHost + ":" + ToBaseName(repo) + ".git"
}

// ToSSHFromHTTP converts an HTTP(S) URL to SSH. Anything else is returned
// unchanged.
func ToSSHFromHTTP(repo string) string {
	if strings.HasPrefix(repo, "git@") {
		return repo
	}
	m := urlPattern.FindStringSubmatch(repo)
	if m == nil || m[2] == "" {
		return repo
	}
	return "git@" + m[2] + ":" + m[4] + ".git"
}

// simplifyPattern is urlPattern without the host captures.
var simplifyPattern = regexp.MustCompile(`(https?://[^/]+/|git@.+:)([\w/-]+)(\.git)?`)

// Simplify extracts "organization/repository" from an HTTP(S) or SSH URL.
// Anything else is returned unchanged.
func Simplify(repo string) string {
	if m := simplifyPattern.FindStringSubmatch(repo); m != nil {
		return m[2]
	}
	return repo
}

// ToBaseName prefixes a bare repository name with DefaultOrganization.
func ToBaseName(name string) string {
	if strings.Contains(name, "/") {
		return name
	}
	return DefaultOrganization + "/" + name
}

// ToCWD returns the directory a repository is checked out into: the last path
// element without a "_product" suffix.
func ToCWD(basename string) string {
	i := strings.LastIndex(basename, "/")
	if i < 0 {
		return basename
	}
	return strings.TrimSuffix(basename[i+1:], "_product")
}
