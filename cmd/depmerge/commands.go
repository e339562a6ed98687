package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	depmerge "github.com/albertocavalcante/go-depmerge"
	"github.com/albertocavalcante/go-depmerge/gittag"
	"github.com/albertocavalcante/go-depmerge/intersect"
	"github.com/albertocavalcante/go-depmerge/known"
	"github.com/albertocavalcante/go-depmerge/repourl"
	"github.com/albertocavalcante/go-depmerge/requirements"
	"github.com/albertocavalcante/go-depmerge/workspace"
)

func (a *app) npmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "npm NAME VERSION...",
		Short: "Merge npm version specifiers of one dependency",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := depmerge.MergeVersions(args[0], args[1:], depmerge.WithLogger(a.logger()))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.stdout, v)
			return err
		},
	}
}

func (a *app) pipCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pip NAME VERSION...",
		Short: "Merge pip version specifiers of one requirement",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := depmerge.MergePipVersions(args[0], args[1:], depmerge.WithLogger(a.logger()))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.stdout, v)
			return err
		},
	}
}

func (a *app) maxCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "max VERSION...",
		Short: "Print the specifier reaching the highest version",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := intersect.FindMaxVersion(args)
			if v == "" {
				return fmt.Errorf("no version in %q", args)
			}
			_, err := fmt.Fprintln(a.stdout, v)
			return err
		},
	}
}

func (a *app) intersectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "intersect VERSION...",
		Short: "Print the intersection of semver ranges",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := intersect.Intersect(args...)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.stdout, v)
			return err
		},
	}
}

func (a *app) requirementsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "requirements FILE",
		Short: "Print the requirements of a requirements.txt file as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(a.stdout)
			enc.SetIndent(2)
			if err := enc.Encode(requirements.ParseRequirements(string(data))); err != nil {
				return fmt.Errorf("encode requirements: %w", err)
			}
			return enc.Close()
		},
	}
}

func (a *app) highestCommand() *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "highest --target REF [FILE]",
		Short: "Resolve a branch, commit or version tag range against `git ls-remote --tags` output",
		Long: `Resolve the reference to check out for a plugin.

Commits, branches and exact version tags are printed unchanged. A version tag
range such as ^v2.0.0 is resolved to the highest matching tag listed in FILE
(or stdin), which holds the output of git ls-remote --tags.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := a.logger()
			if gittag.IsGitCommit(target) || !gittag.IsAdvancedVersionTag(target) {
				log.Debug("reference used as is", "ref", target, "exactTag", gittag.IsExactVersionTag(target))
				_, err := fmt.Fprintln(a.stdout, target)
				return err
			}

			name := "-"
			if len(args) == 1 {
				name = args[0]
			}
			data, err := readInput(cmd, name)
			if err != nil {
				return err
			}
			tags := gittag.ExtractVersionsFromGitLog(string(data))
			log.Debug("found version tags", "tags", tags)

			v, ok := gittag.FindHighestVersion(tags, target)
			if !ok {
				return fmt.Errorf("no version tag matches %s", target)
			}
			_, err = fmt.Fprintln(a.stdout, v)
			return err
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "branch, commit, version tag or version tag range")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func (a *app) repoCommand() *cobra.Command {
	var (
		ssh          bool
		registryPath string
	)
	cmd := &cobra.Command{
		Use:   "repo NAME",
		Short: "Print the clone URL of a plugin or repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if registryPath != "" {
				reg, err := known.LoadFile(registryPath)
				if err != nil {
					return err
				}
				if p, ok := reg.ByName(name); ok {
					_, err := fmt.Fprintln(a.stdout, p.CloneURL(ssh))
					return err
				}
			}
			url := repourl.ToHTTP(name)
			if ssh {
				url = repourl.ToSSH(name)
			}
			_, err := fmt.Fprintln(a.stdout, url)
			return err
		},
	}
	cmd.Flags().BoolVar(&ssh, "ssh", false, "print the SSH URL")
	cmd.Flags().StringVar(&registryPath, "registry", "", "known plugins registry (YAML or JSON)")
	return cmd
}

func (a *app) workspaceCommand() *cobra.Command {
	var (
		registryPath string
		defaultApp   string
		additional   []string
		write        bool
	)
	cmd := &cobra.Command{
		Use:   "workspace DIR",
		Short: "Merge the dependencies of all plugins in a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			opts := workspace.Options{
				DefaultApp:        defaultApp,
				AdditionalPlugins: additional,
				Logger:            a.logger(),
			}
			if registryPath != "" {
				reg, err := known.LoadFile(registryPath)
				if err != nil {
					return err
				}
				opts.Registry = reg
			}

			r, err := workspace.Merge(dir, opts)
			if err != nil {
				return err
			}
			for _, f := range r.Fallbacks {
				a.warnf("%s: %s", f.Ecosystem, f)
			}

			if write {
				deps, devDeps, err := r.DiffDir(dir)
				if err != nil {
					return err
				}
				if err := r.Write(dir); err != nil {
					return err
				}
				printDiff(a.stdout, "dependencies", deps)
				printDiff(a.stdout, "devDependencies", devDeps)
				_, err = fmt.Fprintf(a.stdout, "merged %d web and %d server plugins into %s\n",
					len(r.WebPlugins), len(r.ServerPlugins), dir)
				return err
			}
			return printResult(a.stdout, r)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&registryPath, "registry", "", "known plugins registry (YAML or JSON)")
	flags.StringVar(&defaultApp, "default-app", "", "plugin launched by the workspace")
	flags.StringSliceVar(&additional, "add", nil, "known plugins to install without a local checkout")
	flags.BoolVar(&write, "write", false, "write package.json, requirements.txt and requirements_dev.txt into DIR")
	return cmd
}

// workspaceOutput is the YAML shape printed by the workspace command.
type workspaceOutput struct {
	Dependencies    map[string]string `yaml:"dependencies,omitempty"`
	DevDependencies map[string]string `yaml:"devDependencies,omitempty"`
	Requirements    map[string]string `yaml:"requirements,omitempty"`
	DevRequirements map[string]string `yaml:"devRequirements,omitempty"`
}

func printResult(w io.Writer, r *workspace.Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(workspaceOutput{
		Dependencies:    r.Dependencies,
		DevDependencies: r.DevDependencies,
		Requirements:    r.Requirements,
		DevRequirements: r.DevRequirements,
	}); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return enc.Close()
}

// printDiff lists the changes of one dependency section, one per line.
func printDiff(w io.Writer, section string, d *workspace.Diff) {
	if d.IsEmpty() {
		return
	}
	fmt.Fprintf(w, "%s: %d changes\n", section, d.TotalChanges())
	for _, c := range d.Added {
		color.New(color.FgGreen).Fprintf(w, "  + %s %s\n", c.Name, c.Specifier) //nolint:errcheck
	}
	for _, c := range d.Removed {
		color.New(color.FgRed).Fprintf(w, "  - %s %s\n", c.Name, c.Specifier) //nolint:errcheck
	}
	for _, u := range d.Raised {
		fmt.Fprintf(w, "  ^ %s %s -> %s\n", u.Name, u.Old, u.New)
	}
	for _, u := range d.Lowered {
		color.New(color.FgYellow).Fprintf(w, "  v %s %s -> %s\n", u.Name, u.Old, u.New) //nolint:errcheck
	}
	for _, u := range d.Changed {
		fmt.Fprintf(w, "  ~ %s %s -> %s\n", u.Name, u.Old, u.New)
	}
}

// readInput reads a file, or stdin for "-".
func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(name)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: no such file", name)
	}
	return data, err
}
