// Package typelib is a table-driven type registry. Types are declared in a
// YAML schema and registered once; instances are created by name with every
// field at its default value.
package typelib

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vbxproj/vbxproj/internal/asset"
)

// maxNesting bounds default construction of nested composite fields.
const maxNesting = 16

// Type is one registered type: a composite with fields or an enumeration.
type Type struct {
	Name    string        `yaml:"name"`
	Fields  []FieldSchema `yaml:"fields,omitempty"`
	Members []string      `yaml:"enum,omitempty"`
}

// FieldSchema is the YAML form of asset.Field.
type FieldSchema struct {
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	Elem      string `yaml:"elem,omitempty"`
	Transient bool   `yaml:"transient,omitempty"`
}

// IsEnum reports whether the type is an enumeration.
func (t *Type) IsEnum() bool { return len(t.Members) > 0 }

// Schema is the document layout of a schema file.
type Schema struct {
	Types []Type `yaml:"types"`
}

// Registry implements asset.Registry.
type Registry struct {
	types  map[string]*Type
	fields map[string][]asset.Field
	order  []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		types:  make(map[string]*Type),
		fields: make(map[string][]asset.Field),
	}
}

// Load reads a YAML schema file.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	return Parse(data)
}

// Parse builds a registry from YAML schema bytes.
func Parse(data []byte) (*Registry, error) {
	var schema Schema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	r := New()
	for _, t := range schema.Types {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Register adds a type. Field accessors are built here, once.
func (r *Registry) Register(t Type) error {
	if t.Name == "" {
		return fmt.Errorf("type without a name")
	}
	if asset.IsScalarTag(t.Name) || t.Name == asset.TagList {
		return fmt.Errorf("type %s shadows a built-in tag", t.Name)
	}
	if _, exists := r.types[t.Name]; exists {
		return fmt.Errorf("type %s registered twice", t.Name)
	}
	if len(t.Fields) > 0 && len(t.Members) > 0 {
		return fmt.Errorf("type %s declares both fields and enum members", t.Name)
	}

	fields := make([]asset.Field, 0, len(t.Fields))
	seen := make(map[string]bool, len(t.Fields))
	for _, f := range t.Fields {
		if f.Name == "" || f.Type == "" {
			return fmt.Errorf("type %s: field needs a name and a type", t.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("type %s: duplicate field %s", t.Name, f.Name)
		}
		seen[f.Name] = true
		if f.Type == asset.TagList && f.Elem == "" {
			return fmt.Errorf("type %s: list field %s needs an elem type", t.Name, f.Name)
		}
		fields = append(fields, asset.Field{Name: f.Name, Type: f.Type, Elem: f.Elem, Transient: f.Transient})
	}

	stored := t
	r.types[t.Name] = &stored
	r.fields[t.Name] = fields
	r.order = append(r.order, t.Name)
	return nil
}

// Validate checks that every field type is either a built-in tag or a
// registered type.
func (r *Registry) Validate() error {
	for _, name := range r.order {
		for _, f := range r.fields[name] {
			if err := r.checkTag(f.Type); err != nil {
				return fmt.Errorf("type %s field %s: %w", name, f.Name, err)
			}
			if f.Type == asset.TagList {
				if err := r.checkTag(f.Elem); err != nil {
					return fmt.Errorf("type %s field %s: %w", name, f.Name, err)
				}
			}
		}
	}
	return nil
}

func (r *Registry) checkTag(tag string) error {
	if asset.IsScalarTag(tag) || tag == asset.TagList {
		return nil
	}
	if _, ok := r.types[tag]; ok {
		return nil
	}
	return fmt.Errorf("unknown type %s", tag)
}

// Names returns the registered type names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Lookup returns a registered type.
func (r *Registry) Lookup(name string) (*Type, bool) {
	t, ok := r.types[name]
	return t, ok
}

// Create implements asset.Registry.
func (r *Registry) Create(typeName string) (*asset.Object, error) {
	return r.create(typeName, 0)
}

func (r *Registry) create(typeName string, depth int) (*asset.Object, error) {
	t, ok := r.types[typeName]
	if !ok {
		return nil, fmt.Errorf("unknown type %s", typeName)
	}
	if t.IsEnum() {
		return nil, fmt.Errorf("type %s is an enum", typeName)
	}

	obj := asset.NewObject(typeName, asset.ObjectID{})
	for _, f := range r.fields[typeName] {
		if v, ok := r.defaultValue(f, depth); ok {
			obj.Set(f.Name, v)
		}
	}
	return obj, nil
}

func (r *Registry) defaultValue(f asset.Field, depth int) (asset.Value, bool) {
	if v, ok := asset.ZeroValue(f.Type); ok {
		return v, true
	}
	if f.Type == asset.TagList {
		return asset.List{Elem: f.Elem}, true
	}
	t, ok := r.types[f.Type]
	if !ok {
		return nil, false
	}
	if t.IsEnum() {
		return asset.EnumValue{Type: t.Name, Member: t.Members[0]}, true
	}
	if depth >= maxNesting {
		return nil, false
	}
	nested, err := r.create(f.Type, depth+1)
	if err != nil {
		return nil, false
	}
	return nested, true
}

// Fields implements asset.Registry.
func (r *Registry) Fields(typeName string) ([]asset.Field, bool) {
	fields, ok := r.fields[typeName]
	return fields, ok
}

// IsEnum implements asset.Registry.
func (r *Registry) IsEnum(typeName string) bool {
	t, ok := r.types[typeName]
	return ok && t.IsEnum()
}

// Members implements asset.Registry.
func (r *Registry) Members(typeName string) []string {
	t, ok := r.types[typeName]
	if !ok {
		return nil
	}
	return t.Members
}
