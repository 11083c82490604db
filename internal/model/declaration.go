package model

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Declaration is a class as written in a declaration file, before type
// shorthands are resolved against the full set of declared classes.
type Declaration struct {
	Name       string             `yaml:"name"`
	PrimaryKey string             `yaml:"primaryKey,omitempty"`
	Embedded   bool               `yaml:"embedded,omitempty"`
	Properties DeclaredProperties `yaml:"properties"`
}

// DeclaredProperty is a property in either shorthand ("int?[]") or long form.
type DeclaredProperty struct {
	Name            string `yaml:"name"`
	Type            string `yaml:"type"`
	ObjectType      string `yaml:"objectType,omitempty"`
	Optional        bool   `yaml:"optional,omitempty"`
	ElementOptional bool   `yaml:"elementOptional,omitempty"`
	Indexed         bool   `yaml:"indexed,omitempty"`
	PrimaryKey      bool   `yaml:"primaryKey,omitempty"`
	// Property is the forward link named by a linkingObjects declaration.
	Property string `yaml:"property,omitempty"`
}

// UnmarshalYAML accepts a bare shorthand scalar or the long form mapping.
func (p *DeclaredProperty) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		p.Type = n.Value
		return nil
	}
	type plain DeclaredProperty
	var v plain
	if err := n.Decode(&v); err != nil {
		return err
	}
	*p = DeclaredProperty(v)
	return nil
}

// DeclaredProperties keeps declaration order for both the mapping form
// (name: type) and the list form (- name: x).
type DeclaredProperties []DeclaredProperty

// UnmarshalYAML decodes mapping and sequence forms.
func (ps *DeclaredProperties) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.MappingNode:
		out := make(DeclaredProperties, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			var p DeclaredProperty
			if err := n.Content[i+1].Decode(&p); err != nil {
				return err
			}
			p.Name = n.Content[i].Value
			out = append(out, p)
		}
		*ps = out
		return nil
	case yaml.SequenceNode:
		var out []DeclaredProperty
		if err := n.Decode(&out); err != nil {
			return err
		}
		*ps = out
		return nil
	default:
		return fmt.Errorf("line %d: properties must be a mapping or a list", n.Line)
	}
}

type declarationFile struct {
	Classes []Declaration `yaml:"classes"`
}

// DecodeDeclarations reads YAML or JSON declarations. The document is either
// a list of classes or a mapping with a "classes" key.
func DecodeDeclarations(data []byte) ([]Declaration, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	doc := root.Content[0]
	if doc.Kind == yaml.SequenceNode {
		var decls []Declaration
		if err := doc.Decode(&decls); err != nil {
			return nil, err
		}
		return decls, nil
	}

	var f declarationFile
	if err := doc.Decode(&f); err != nil {
		return nil, err
	}
	return f.Classes, nil
}

// Normalize resolves shorthands across all declarations: a base type naming
// a declared class becomes a link, anything else is kept as a type tag.
func Normalize(decls []Declaration) []RawClass {
	declared := make(map[string]bool, len(decls))
	for _, d := range decls {
		declared[d.Name] = true
	}
	isClass := func(name string) bool { return declared[name] }

	classes := make([]RawClass, 0, len(decls))
	for _, d := range decls {
		rc := RawClass{
			Name:       d.Name,
			PrimaryKey: d.PrimaryKey,
			Embedded:   d.Embedded,
			Properties: make([]RawProperty, 0, len(d.Properties)),
		}
		for _, dp := range d.Properties {
			if dp.Type == TypeLinkingObjects {
				rc.Backlinks = append(rc.Backlinks, RawBacklink{Name: dp.Name, ObjectType: dp.ObjectType, Property: dp.Property})
				continue
			}
			rc.Properties = append(rc.Properties, dp.raw(isClass))
		}
		classes = append(classes, rc)
	}
	return classes
}

func (dp DeclaredProperty) raw(isClass func(string) bool) RawProperty {
	var p RawProperty

	switch dp.Type {
	case "list":
		// Realm long form: {type: list, objectType: <element>}. optional
		// there marks the elements, never the list itself.
		if tag, ok := ParseTypeTag(dp.ObjectType); ok {
			p = tag.Property(dp.Name, isClass)
			p.ElementOptional = p.ElementOptional || tag.Optional
			p.Optional = false
		} else {
			p = RawProperty{Name: dp.Name, Type: dp.ObjectType}
		}
		p.Collection = CollectionList
		p.ElementOptional = p.ElementOptional || dp.Optional || dp.ElementOptional
		p.Indexed = dp.Indexed
		p.PrimaryKey = dp.PrimaryKey
		return p
	case TypeObject:
		p = RawProperty{Name: dp.Name, Type: TypeObject, ObjectType: dp.ObjectType}
	default:
		tag, ok := ParseTypeTag(dp.Type)
		if !ok {
			p = RawProperty{Name: dp.Name, Type: dp.Type}
			break
		}
		p = tag.Property(dp.Name, isClass)
		if dp.ObjectType != "" && p.Type != TypeObject {
			p.ObjectType = dp.ObjectType
		}
	}

	p.Optional = p.Optional || dp.Optional
	p.ElementOptional = p.ElementOptional || dp.ElementOptional
	p.Indexed = dp.Indexed
	p.PrimaryKey = dp.PrimaryKey
	return p
}

// FileSupplier loads declaration files and normalizes them as one set.
type FileSupplier struct {
	Paths []string
	// Parsers maps a file extension (".model") to an alternative decoder.
	// YAML and JSON files use DecodeDeclarations.
	Parsers map[string]func(path string, data []byte) ([]Declaration, error)
}

// NewFileSupplier creates a supplier over the given files.
func NewFileSupplier(paths ...string) *FileSupplier {
	return &FileSupplier{Paths: paths}
}

// Classes reads every file and normalizes the combined declarations.
func (s *FileSupplier) Classes(ctx context.Context) ([]RawClass, error) {
	var all []Declaration
	for _, path := range s.Paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		decode := func(_ string, data []byte) ([]Declaration, error) { return DecodeDeclarations(data) }
		if parse, ok := s.Parsers[strings.ToLower(filepath.Ext(path))]; ok {
			decode = parse
		}

		decls, err := decode(path, data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		all = append(all, decls...)
	}
	return Normalize(all), nil
}
