// Package manifest reads and writes package.json files.
//
// Fields other than the ones modeled by Manifest are preserved verbatim.
// Output is deterministic: "name", "version" and "description" come first, all
// other keys follow in sorted order, nested dependency maps are sorted, and
// version ranges are written without HTML escaping (">=1.0.0", not
// "\u003e=1.0.0").
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
)

// FileName is the manifest file of a web plugin.
const FileName = "package.json"

// filePermissions is the mode of written manifests.
const filePermissions = 0o644

// leadingKeys are written first, in this order.
var leadingKeys = []string{"name", "version", "description"}

// Manifest is a parsed package.json.
type Manifest struct {
	Name            string
	Version         string
	Dependencies    map[string]string
	DevDependencies map[string]string
	Scripts         map[string]string

	// Extra holds every other top-level field.
	Extra map[string]json.RawMessage
}

// ReadFile reads and parses a manifest.
func ReadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse parses package.json data.
func Parse(data []byte) (*Manifest, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("parse manifest JSON: %w", err)
	}

	m := &Manifest{Extra: make(map[string]json.RawMessage)}
	for k, raw := range fields {
		var err error
		switch k {
		case "name":
			err = json.Unmarshal(raw, &m.Name)
		case "version":
			err = json.Unmarshal(raw, &m.Version)
		case "dependencies":
			err = json.Unmarshal(raw, &m.Dependencies)
		case "devDependencies":
			err = json.Unmarshal(raw, &m.DevDependencies)
		case "scripts":
			err = json.Unmarshal(raw, &m.Scripts)
		default:
			m.Extra[k] = raw
		}
		if err != nil {
			return nil, fmt.Errorf("parse manifest field %q: %w", k, err)
		}
	}
	return m, nil
}

// WriteFile writes the manifest to path.
func (m *Manifest) WriteFile(path string) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, filePermissions)
}

// WriteTo writes the manifest to w.
func (m *Manifest) WriteTo(w io.Writer) (int64, error) {
	data, err := m.Marshal()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Marshal serializes the manifest with two-space indentation and a trailing
// newline.
func (m *Manifest) Marshal() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(m.Extra)+5)
	for k, v := range m.Extra {
		fields[k] = v
	}

	set := func(key string, v any, present bool) error {
		if !present {
			return nil
		}
		raw, err := marshalValue(v)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", key, err)
		}
		fields[key] = raw
		return nil
	}
	if err := set("name", m.Name, m.Name != ""); err != nil {
		return nil, err
	}
	if err := set("version", m.Version, m.Version != ""); err != nil {
		return nil, err
	}
	if err := set("dependencies", m.Dependencies, m.Dependencies != nil); err != nil {
		return nil, err
	}
	if err := set("devDependencies", m.DevDependencies, m.DevDependencies != nil); err != nil {
		return nil, err
	}
	if err := set("scripts", m.Scripts, m.Scripts != nil); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(orderedFields(fields)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// orderedRawMessageMap maintains key order for JSON marshaling.
type orderedRawMessageMap struct {
	keys   []string
	values map[string]json.RawMessage
}

func orderedFields(m map[string]json.RawMessage) orderedRawMessageMap {
	keys := make([]string, 0, len(m))
	for _, k := range leadingKeys {
		if _, ok := m[k]; ok {
			keys = append(keys, k)
		}
	}
	var rest []string
	for k := range m {
		if !slices.Contains(leadingKeys, k) {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	return orderedRawMessageMap{keys: append(keys, rest...), values: m}
}

func (o orderedRawMessageMap) MarshalJSON() ([]byte, error) {
	if len(o.keys) == 0 {
		return []byte("{}"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := marshalValue(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(o.values[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalValue is json.Marshal without HTML escaping. Map keys are sorted.
func marshalValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
