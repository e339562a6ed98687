// Package known provides the registry of known workspace plugins and
// libraries.
//
// The registry is loaded from a YAML document (JSON is accepted as well):
//
//	plugins:
//	  - name: phovea_core
//	    type: lib
//	    repository: phovea/phovea_core
//	    dependencies:
//	      phovea_core: github:phovea/phovea_core#develop
//	splugins:
//	  - name: phovea_server
//	    type: slib
//	    requirements:
//	      phovea_server: "@develop#egg=phovea_server"
//
// Consumers depend on the Lookup interface rather than on a process-wide
// table, so tests can pass a Map.
package known

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/albertocavalcante/go-depmerge/repourl"
)

// Plugin describes a known plugin or library.
type Plugin struct {
	Name        string `yaml:"name" json:"name"`
	Type        string `yaml:"type,omitempty" json:"type,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Repository is a repository name, organization path or URL.
	Repository string `yaml:"repository,omitempty" json:"repository,omitempty"`

	// Dependencies are the npm dependencies a workspace needs to consume
	// the plugin without a local checkout.
	Dependencies map[string]string `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`

	// Requirements are the pip requirements, keyed by name, valued by the
	// version suffix ("==1.0.0", "@develop#egg=name").
	Requirements map[string]string `yaml:"requirements,omitempty" json:"requirements,omitempty"`

	// Develop holds the dependencies used while the plugin is developed.
	Develop *Develop `yaml:"develop,omitempty" json:"develop,omitempty"`

	Libraries []string          `yaml:"libraries,omitempty" json:"libraries,omitempty"`
	Externals []string          `yaml:"externals,omitempty" json:"externals,omitempty"`
	Aliases   map[string]string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
}

// Develop lists development variants of a plugin's dependencies.
type Develop struct {
	Dependencies map[string]string `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	Requirements map[string]string `yaml:"requirements,omitempty" json:"requirements,omitempty"`
}

// CloneURL returns the URL to clone the plugin repository from. Plugins
// without a repository fall back to their name.
func (p Plugin) CloneURL(ssh bool) string {
	repo := p.Repository
	if repo == "" {
		repo = p.Name
	}
	if ssh {
		return repourl.ToSSH(repo)
	}
	return repourl.ToHTTP(repo)
}

// Lookup finds known plugins by name.
type Lookup interface {
	ByName(name string) (Plugin, bool)
}

// Map is a Lookup backed by a map keyed by plugin name.
type Map map[string]Plugin

// ByName implements Lookup.
func (m Map) ByName(name string) (Plugin, bool) {
	p, ok := m[name]
	return p, ok
}

// Registry is the parsed registry document.
type Registry struct {
	Plugins         []Plugin `yaml:"plugins" json:"plugins"`
	ServerPlugins   []Plugin `yaml:"splugins" json:"splugins"`
	Libraries       []Plugin `yaml:"libraries" json:"libraries"`
	ServerLibraries []Plugin `yaml:"slibraries" json:"slibraries"`

	plugins   Map
	libraries Map
}

// Load reads a registry document from r.
func Load(r io.Reader) (*Registry, error) {
	var reg Registry
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&reg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode registry: %w", err)
	}
	if err := reg.index(); err != nil {
		return nil, err
	}
	return &reg, nil
}

// LoadFile reads a registry document from a file.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	defer f.Close()

	reg, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

func (r *Registry) index() error {
	var err error
	if r.plugins, err = toMap(r.Plugins, r.ServerPlugins); err != nil {
		return fmt.Errorf("plugins: %w", err)
	}
	if r.libraries, err = toMap(r.Libraries, r.ServerLibraries); err != nil {
		return fmt.Errorf("libraries: %w", err)
	}
	return nil
}

func toMap(lists ...[]Plugin) (Map, error) {
	m := make(Map)
	for _, list := range lists {
		for i, p := range list {
			if p.Name == "" {
				return nil, fmt.Errorf("entry %d has no name", i)
			}
			if _, dup := m[p.Name]; dup {
				return nil, fmt.Errorf("duplicate name %q", p.Name)
			}
			m[p.Name] = p
		}
	}
	return m, nil
}

// ByName returns the web or server plugin called name.
func (r *Registry) ByName(name string) (Plugin, bool) {
	return r.plugins.ByName(name)
}

// Exists reports whether a plugin called name is known.
func (r *Registry) Exists(name string) bool {
	_, ok := r.plugins[name]
	return ok
}

// Library returns the web or server library called name.
func (r *Registry) Library(name string) (Plugin, bool) {
	return r.libraries.ByName(name)
}

// WebPluginNames lists the web plugins in registry order.
func (r *Registry) WebPluginNames() []string {
	return names(r.Plugins)
}

// ServerPluginNames lists the server plugins in registry order.
func (r *Registry) ServerPluginNames() []string {
	return names(r.ServerPlugins)
}

func names(ps []Plugin) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}
