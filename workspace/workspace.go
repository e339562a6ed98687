// Package workspace merges the dependencies of all plugins checked out in a
// workspace directory.
//
// A workspace is a directory whose subdirectories are plugins:
//
//	workspace/
//	  ordino/package.json          web plugin
//	  phovea_core/package.json     web plugin
//	  phovea_server/requirements.txt
//	  phovea_server/requirements_dev.txt
//
// Every dependency requested by several plugins is merged into one specifier
// with depmerge. Dependencies on plugins that are checked out locally are
// dropped, since the workspace builds them from source.
package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	depmerge "github.com/albertocavalcante/go-depmerge"
	"github.com/albertocavalcante/go-depmerge/known"
	"github.com/albertocavalcante/go-depmerge/manifest"
	"github.com/albertocavalcante/go-depmerge/requirements"
)

// File names read from server plugins and written to the workspace root.
const (
	RequirementsFile    = "requirements.txt"
	DevRequirementsFile = "requirements_dev.txt"
)

// Options configures collection and merging.
type Options struct {
	// Registry resolves known plugins. Optional.
	Registry known.Lookup

	// DefaultApp is the plugin launched by the workspace. Its specifiers are
	// collected first, so its source references serve as the template when
	// references are merged.
	DefaultApp string

	// AdditionalPlugins are known plugins consumed as packages instead of
	// local checkouts. Their registry dependencies are added.
	AdditionalPlugins []string

	// Logger receives progress and fallback warnings. Nil means slog.Default.
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// Collection holds every specifier requested for each dependency, in
// collection order.
type Collection struct {
	WebPlugins    []string
	ServerPlugins []string

	Dependencies    map[string][]string
	DevDependencies map[string][]string
	Requirements    map[string][]string
	DevRequirements map[string][]string
}

func newCollection() *Collection {
	return &Collection{
		Dependencies:    make(map[string][]string),
		DevDependencies: make(map[string][]string),
		Requirements:    make(map[string][]string),
		DevRequirements: make(map[string][]string),
	}
}

// Collect reads the manifests of all plugins in dir.
//
// Web plugins are subdirectories containing a package.json, server plugins
// subdirectories containing a requirements.txt. Plugins are visited in sorted
// order with the default app first, followed by the dependencies of
// additional known plugins.
func Collect(dir string, opts Options) (*Collection, error) {
	log := opts.logger()
	c := newCollection()

	var err error
	if c.WebPlugins, err = pluginsWith(dir, manifest.FileName); err != nil {
		return nil, err
	}
	if c.ServerPlugins, err = pluginsWith(dir, RequirementsFile); err != nil {
		return nil, err
	}

	for _, p := range defaultFirst(c.WebPlugins, opts.DefaultApp) {
		m, err := manifest.ReadFile(filepath.Join(dir, p, manifest.FileName))
		if err != nil {
			return nil, fmt.Errorf("web plugin %s: %w", p, err)
		}
		addAll(c.Dependencies, m.Dependencies)
		addAll(c.DevDependencies, m.DevDependencies)
		log.Debug("collected web plugin", "plugin", p,
			"dependencies", len(m.Dependencies), "devDependencies", len(m.DevDependencies))
	}

	for _, p := range defaultFirst(c.ServerPlugins, opts.DefaultApp) {
		reqs, err := readRequirements(filepath.Join(dir, p, RequirementsFile))
		if err != nil {
			return nil, fmt.Errorf("server plugin %s: %w", p, err)
		}
		devReqs, err := readRequirements(filepath.Join(dir, p, DevRequirementsFile))
		if err != nil {
			return nil, fmt.Errorf("server plugin %s: %w", p, err)
		}
		addAll(c.Requirements, reqs)
		addAll(c.DevRequirements, devReqs)
		log.Debug("collected server plugin", "plugin", p,
			"requirements", len(reqs), "devRequirements", len(devReqs))
	}

	for _, name := range opts.AdditionalPlugins {
		if opts.Registry == nil {
			return nil, fmt.Errorf("additional plugin %s: no plugin registry configured", name)
		}
		k, ok := opts.Registry.ByName(name)
		if !ok {
			log.Warn("unknown additional plugin", "plugin", name)
			continue
		}
		addAll(c.Dependencies, k.Dependencies)
		addAll(c.Requirements, k.Requirements)
	}

	c.removeLocal(opts.Registry)
	return c, nil
}

// removeLocal drops dependencies on plugins that are checked out locally.
func (c *Collection) removeLocal(reg known.Lookup) {
	for _, p := range c.WebPlugins {
		k, ok := lookup(reg, p)
		if ok && len(k.Dependencies) > 0 {
			for name := range k.Dependencies {
				delete(c.Dependencies, name)
			}
			continue
		}
		delete(c.Dependencies, p)
	}

	for _, p := range c.ServerPlugins {
		if k, ok := lookup(reg, p); ok {
			for name := range k.Requirements {
				delete(c.Requirements, name)
			}
			if k.Develop != nil {
				for name := range k.Develop.Requirements {
					delete(c.Requirements, name)
				}
			}
		}
		for name := range c.Requirements {
			if isRequirementOf(name, p) {
				delete(c.Requirements, name)
			}
		}
	}
}

// isRequirementOf reports whether requirement name refers to plugin p, either
// by name (with "-" and "_" treated alike) or as an editable checkout of the
// plugin's repository.
func isRequirementOf(name, p string) bool {
	return name == p ||
		strings.ReplaceAll(name, "-", "_") == p ||
		strings.Contains(name, "/"+p+".git")
}

func lookup(reg known.Lookup, name string) (known.Plugin, bool) {
	if reg == nil {
		return known.Plugin{}, false
	}
	return reg.ByName(name)
}

// Result is the merged dependency set of a workspace.
type Result struct {
	WebPlugins    []string
	ServerPlugins []string

	Dependencies    map[string]string
	DevDependencies map[string]string
	Requirements    map[string]string
	DevRequirements map[string]string

	// Fallbacks lists the dependencies whose specifiers did not intersect.
	Fallbacks []depmerge.Fallback
}

// Merge collects the plugins of dir and merges the specifiers of every
// dependency. Merge conflicts of all dependencies are reported together.
func Merge(dir string, opts Options) (*Result, error) {
	c, err := Collect(dir, opts)
	if err != nil {
		return nil, err
	}
	return c.Merge(opts)
}

// Merge merges the collected specifiers of every dependency.
func (c *Collection) Merge(opts Options) (*Result, error) {
	r := &Result{
		WebPlugins:    c.WebPlugins,
		ServerPlugins: c.ServerPlugins,
	}
	m, err := depmerge.NewMerger(
		depmerge.WithLogger(opts.logger()),
		depmerge.WithFallbackHandler(func(f depmerge.Fallback) {
			r.Fallbacks = append(r.Fallbacks, f)
		}),
	)
	if err != nil {
		return nil, err
	}

	var errs []error
	npm := func(deps map[string][]string) map[string]string {
		out := make(map[string]string, len(deps))
		for _, name := range slices.Sorted(maps.Keys(deps)) {
			v, err := m.MergeVersions(name, deps[name])
			if err != nil {
				errs = append(errs, err)
				continue
			}
			out[name] = v
		}
		return out
	}
	pip := func(reqs map[string][]string) map[string]string {
		out := make(map[string]string, len(reqs))
		for _, name := range slices.Sorted(maps.Keys(reqs)) {
			out[name] = m.MergePipVersions(name, reqs[name])
		}
		return out
	}

	r.Dependencies = npm(c.Dependencies)
	r.DevDependencies = npm(c.DevDependencies)
	r.Requirements = pip(c.Requirements)
	r.DevRequirements = pip(c.DevRequirements)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return r, nil
}

// Write stores the merged dependencies in dir: the dependency maps of
// package.json (created if missing, other fields kept), requirements.txt and
// requirements_dev.txt.
func (r *Result) Write(dir string) error {
	path := filepath.Join(dir, manifest.FileName)
	m, err := manifest.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		m = newWorkspaceManifest(dir)
	case err != nil:
		return err
	}
	m.Dependencies = r.Dependencies
	m.DevDependencies = r.DevDependencies
	if err := m.WriteFile(path); err != nil {
		return fmt.Errorf("write %s: %w", manifest.FileName, err)
	}

	for file, reqs := range map[string]map[string]string{
		RequirementsFile:    r.Requirements,
		DevRequirementsFile: r.DevRequirements,
	} {
		data := requirements.Format(reqs)
		if err := os.WriteFile(filepath.Join(dir, file), []byte(data), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", file, err)
		}
	}
	return nil
}

// newWorkspaceManifest returns a private manifest named after dir.
func newWorkspaceManifest(dir string) *manifest.Manifest {
	name := dir
	if abs, err := filepath.Abs(dir); err == nil {
		name = abs
	}
	return &manifest.Manifest{
		Name:  filepath.Base(name),
		Extra: map[string]json.RawMessage{"private": json.RawMessage("true")},
	}
}

// pluginsWith lists the subdirectories of dir containing file, sorted.
func pluginsWith(dir, file string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*", file))
	if err != nil {
		return nil, err
	}
	plugins := make([]string, 0, len(matches))
	for _, m := range matches {
		plugins = append(plugins, filepath.Base(filepath.Dir(m)))
	}
	slices.Sort(plugins)
	return plugins, nil
}

// defaultFirst moves the default app to the front.
func defaultFirst(plugins []string, defaultApp string) []string {
	i := slices.Index(plugins, defaultApp)
	if defaultApp == "" || i < 0 {
		return plugins
	}
	out := make([]string, 0, len(plugins))
	out = append(out, defaultApp)
	out = append(out, plugins[:i]...)
	return append(out, plugins[i+1:]...)
}

// readRequirements parses a requirements file. A missing file has no
// requirements.
func readRequirements(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return requirements.ParseRequirements(string(data)), nil
}

func addAll(dst map[string][]string, src map[string]string) {
	for _, name := range slices.Sorted(maps.Keys(src)) {
		dst[name] = append(dst[name], src[name])
	}
}
