package mapping

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// BindingsFile is the root of a bindings file.
type BindingsFile struct {
	Version  string   `yaml:"version" validate:"required,oneof=1"`
	Package  string   `yaml:"package" validate:"required"`
	Param    string   `yaml:"param,omitempty" validate:"omitempty,goident"`
	Entities []Entity `yaml:"entities" validate:"required,min=1,dive"`
}

// Entity lists the bindings of one entity type.
type Entity struct {
	Type        string        `yaml:"type" validate:"required"`
	Properties  BindingList   `yaml:"properties,omitempty" validate:"dive"`
	Paths       StringOrArray `yaml:"paths,omitempty" validate:"dive,required"`
	Expressions BindingList   `yaml:"expressions,omitempty" validate:"dive"`
}

// Len returns the number of bindings of e.
func (e *Entity) Len() int {
	return len(e.Properties) + len(e.Expressions)
}

// Binding is a single bound expression.
type Binding struct {
	Expr    string `yaml:"expr" validate:"required"`
	Name    string `yaml:"name,omitempty" validate:"omitempty,goident"`
	AnyText bool   `yaml:"any_text,omitempty"`
}

// BindingList accepts a single expression, a single mapping or a list of
// either.
type BindingList []Binding

// UnmarshalYAML implements custom unmarshaling for BindingList.
func (b *BindingList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode, yaml.MappingNode:
		// Single item: "x.Name" or {expr: x.Name}
		item, err := decodeBinding(node)
		if err != nil {
			return err
		}

		*b = BindingList{item}

		return nil

	case yaml.SequenceNode:
		items := make(BindingList, 0, len(node.Content))

		for _, n := range node.Content {
			item, err := decodeBinding(n)
			if err != nil {
				return err
			}

			items = append(items, item)
		}

		*b = items

		return nil

	default:
		return fmt.Errorf("expected expression, map, or array, got %v", node.Kind)
	}
}

func decodeBinding(node *yaml.Node) (Binding, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		var src string
		if err := node.Decode(&src); err != nil {
			return Binding{}, err
		}

		return Binding{Expr: src}, nil

	case yaml.MappingNode:
		// decode through an alias type to avoid recursing into UnmarshalYAML
		type plain Binding

		var item plain
		if err := node.Decode(&item); err != nil {
			return Binding{}, err
		}

		return Binding(item), nil

	default:
		return Binding{}, fmt.Errorf("expected expression or map in array, got %v", node.Kind)
	}
}

// MarshalYAML writes bindings without options as plain expressions.
func (b BindingList) MarshalYAML() (any, error) {
	out := make([]any, 0, len(b))

	for _, item := range b {
		if item.Name == "" && !item.AnyText {
			out = append(out, item.Expr)

			continue
		}

		out = append(out, struct {
			Expr    string `yaml:"expr"`
			Name    string `yaml:"name,omitempty"`
			AnyText bool   `yaml:"any_text,omitempty"`
		}{item.Expr, item.Name, item.AnyText})
	}

	return out, nil
}

// StringOrArray represents a value that can be either a single string or an array of strings.
type StringOrArray []string

// UnmarshalYAML implements custom unmarshaling for StringOrArray.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		// Single string value
		var str string

		err := node.Decode(&str)
		if err != nil {
			return err
		}

		if str != "" {
			*s = StringOrArray{str}
		} else {
			*s = StringOrArray{}
		}

		return nil

	case yaml.SequenceNode:
		// Array of strings
		var arr []string

		err := node.Decode(&arr)
		if err != nil {
			return err
		}

		*s = arr

		return nil

	default:
		return fmt.Errorf("expected string or array, got %v", node.Kind)
	}
}
