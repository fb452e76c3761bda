package mapping

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"accessor-compiler/expr"
)

// LoadFile loads and parses a YAML bindings file from the given path.
func LoadFile(path string) (*BindingsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bindings file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a BindingsFile. Unknown keys are errors.
func Parse(data []byte) (*BindingsFile, error) {
	var bf BindingsFile

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&bf); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("failed to parse bindings YAML: empty document")
		}

		return nil, fmt.Errorf("failed to parse bindings YAML: %w", err)
	}

	// Apply defaults and normalize
	applyDefaults(&bf)

	return &bf, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(bf *BindingsFile) {
	if bf.Version == "" {
		bf.Version = "1"
	}

	if bf.Param == "" {
		bf.Param = expr.DefaultParam
	}

	for i := range bf.Entities {
		e := &bf.Entities[i]
		e.Type = strings.TrimSpace(e.Type)

		for j := range e.Properties {
			e.Properties[j].Expr = strings.TrimSpace(e.Properties[j].Expr)
		}

		for j := range e.Expressions {
			e.Expressions[j].Expr = strings.TrimSpace(e.Expressions[j].Expr)
		}
	}
}

// PropertyBindings returns the strict bindings of e: its properties
// followed by its paths as member chains on param.
func (e *Entity) PropertyBindings(param string) []Binding {
	out := make([]Binding, 0, len(e.Properties)+len(e.Paths))
	out = append(out, e.Properties...)

	for _, p := range e.Paths {
		out = append(out, Binding{Expr: param + "." + p})
	}

	return out
}

// Marshal serializes a BindingsFile to YAML.
func Marshal(bf *BindingsFile) ([]byte, error) {
	return yaml.Marshal(bf)
}

// WriteFile writes a BindingsFile to the given path.
func WriteFile(bf *BindingsFile, path string) error {
	data, err := Marshal(bf)
	if err != nil {
		return fmt.Errorf("failed to marshal bindings: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write bindings file %s: %w", path, err)
	}

	return nil
}
