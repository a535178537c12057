// Package prefab loads entity subtree descriptions from YAML or JSON files
// and instantiates them into a scene graph.
package prefab

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/phanxgames/grove"
)

// Format is a document encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

var (
	ErrUnsupportedFormat = errors.New("prefab: unsupported format")
	ErrEmptyDocument     = errors.New("prefab: empty document")
)

// FormatFor picks the format from a file extension.
func FormatFor(name string) (Format, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
}

// IsPrefabFile reports whether name has a prefab extension.
func IsPrefabFile(name string) bool {
	_, err := FormatFor(name)
	return err == nil
}

// Parse decodes a single subtree description. Unknown top-level keys are
// rejected; component properties are passed through untouched.
func Parse(data []byte, format Format) (*grove.EntityData, error) {
	var d grove.EntityData
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&d); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, ErrEmptyDocument
			}
			return nil, fmt.Errorf("prefab: parse yaml: %w", err)
		}
	case FormatJSON:
		if len(bytes.TrimSpace(data)) == 0 {
			return nil, ErrEmptyDocument
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&d); err != nil {
			return nil, fmt.Errorf("prefab: parse json: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
	return &d, nil
}

// Encode writes d in the given format.
func Encode(d *grove.EntityData, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return nil, fmt.Errorf("prefab: encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("prefab: encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatJSON:
		out, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("prefab: encode json: %w", err)
		}
		return append(out, '\n'), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
}

// Load reads and parses name from fsys, choosing the format by extension.
func Load(fsys fs.FS, name string) (*grove.EntityData, error) {
	format, err := FormatFor(name)
	if err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("prefab: load %s: %w", name, err)
	}
	d, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("prefab: load %s: %w", name, err)
	}
	return d, nil
}

// Instantiate loads name from fsys and links the built subtree under parent
// (the root when parent is nil).
func Instantiate(g *grove.SceneGraph, fsys fs.FS, name string, parent *grove.Entity) (*grove.Entity, error) {
	d, err := Load(fsys, name)
	if err != nil {
		return nil, err
	}
	e, err := g.Instantiate(d, parent)
	if err != nil {
		return nil, fmt.Errorf("prefab: instantiate %s: %w", name, err)
	}
	return e, nil
}
