// Command depmerge merges dependency version specifiers of workspace plugins.
//
// Usage:
//
//	depmerge npm phovea_core '^7.0.1' '^7.0.2'
//	depmerge pip alembic '~=3.10.3' '^=4.10.2'
//	depmerge max 4.2.0-beta.0 '^4.2.0' '~4.2.0'
//	depmerge intersect '^7.0.1' '~7.0.3'
//	depmerge requirements plugin/requirements.txt
//	git ls-remote --tags https://github.com/phovea/phovea_core.git | depmerge highest --target '^v2.0.0'
//	depmerge workspace . --registry known.yml --default-app ordino --write
package main

import (
	"os"

	"github.com/fatih/color"
)

func main() {
	cmd := newRootCommand(os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "error:", err) //nolint:errcheck
		os.Exit(1)
	}
}
