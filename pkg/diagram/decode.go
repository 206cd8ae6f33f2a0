package diagram

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidDiagram is returned when a payload does not match the diagram
// schema.
var ErrInvalidDiagram = errors.New("invalid diagram")

// Parse validates and decodes a JSON diagram.
func Parse(data []byte) (Diagram, error) {
	if err := Validate(data); err != nil {
		return Diagram{}, err
	}
	var d Diagram
	if err := json.Unmarshal(data, &d); err != nil {
		return Diagram{}, fmt.Errorf("%w: %v", ErrInvalidDiagram, err)
	}
	return d, nil
}

// Decode reads a JSON diagram from r.
func Decode(r io.Reader) (Diagram, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Diagram{}, fmt.Errorf("read diagram: %w", err)
	}
	return Parse(data)
}

// ReadFile loads a diagram from disk. Files ending in .yaml or .yml are
// parsed as YAML; everything else as JSON. Both go through the same schema.
func ReadFile(path string) (Diagram, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Diagram{}, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if data, err = yamlToJSON(data); err != nil {
			return Diagram{}, fmt.Errorf("%s: %w", path, err)
		}
	}

	d, err := Parse(data)
	if err != nil {
		return Diagram{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDiagram, err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDiagram, err)
	}
	return out, nil
}

// Encode writes d as indented JSON.
func Encode(w io.Writer, d Diagram) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
