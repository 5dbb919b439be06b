package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/uld-packer/internal/geometry"
)

// Format is a manifest encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
	FormatXLSX
)

// Manifest is a box list with optional container and objective hints.
type Manifest struct {
	// ULD names a container preset.
	ULD       string              `json:"uld,omitempty" yaml:"uld"`
	Container *geometry.Container `json:"container,omitempty" yaml:"container"`
	Objective string              `json:"objective,omitempty" yaml:"objective"`
	Boxes     []geometry.Box      `json:"boxes" yaml:"boxes"`
}

// FormatFromPath picks a format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load reads a manifest file, choosing the decoder by extension.
func Load(path string) (*Manifest, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	m, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return m, nil
}

// Decode reads a manifest in the given format. YAML and JSON documents may
// be either a mapping with a boxes key or a bare list of boxes.
func Decode(r io.Reader, format Format) (*Manifest, error) {
	if format == FormatXLSX {
		boxes, err := ReadXLSX(r)
		if err != nil {
			return nil, err
		}
		return &Manifest{Boxes: boxes}, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	trimmed := bytes.TrimSpace(data)

	var m Manifest
	switch format {
	case FormatJSON:
		if bytes.HasPrefix(trimmed, []byte("[")) {
			err = json.Unmarshal(trimmed, &m.Boxes)
		} else {
			err = json.Unmarshal(trimmed, &m)
		}
		if err != nil {
			return nil, fmt.Errorf("parse JSON: %w", err)
		}
	case FormatYAML:
		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			return nil, fmt.Errorf("parse YAML: %w", err)
		}
		if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
			err = node.Decode(&m.Boxes)
		} else {
			err = node.Decode(&m)
		}
		if err != nil {
			return nil, fmt.Errorf("parse YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFormat, int(format))
	}
	return &m, nil
}
