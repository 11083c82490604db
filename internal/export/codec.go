// Package export serializes built schema documents and parses them back.
//
// The wire layout is one record per class holding an ordered list of
// property records. Field order is fixed by the record types below and
// class and property order is the declaration order of the document, so
// equal documents always serialize to equal bytes. Relationship edges are
// not written; they are recomputed after parsing.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tordrt/schemaexport/internal/schema"
)

// FormatVersion is the version written into every document. Documents with a
// higher version are rejected; unknown fields are ignored.
const FormatVersion = 1

// Format is a serialization format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat resolves a format name, accepting "yml" for YAML.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

type wireDocument struct {
	FormatVersion *int        `json:"formatVersion" yaml:"formatVersion"`
	Classes       []wireClass `json:"classes" yaml:"classes"`
}

type wireClass struct {
	ID         string         `json:"id,omitempty" yaml:"id,omitempty"`
	Name       string         `json:"name" yaml:"name"`
	Embedded   bool           `json:"embedded,omitempty" yaml:"embedded,omitempty"`
	PrimaryKey string         `json:"primaryKey,omitempty" yaml:"primaryKey,omitempty"`
	Properties []wireProperty `json:"properties" yaml:"properties"`
}

type wireProperty struct {
	ID              string `json:"id,omitempty" yaml:"id,omitempty"`
	Name            string `json:"name" yaml:"name"`
	Type            string `json:"type" yaml:"type"`
	ElementType     string `json:"elementType,omitempty" yaml:"elementType,omitempty"`
	ObjectType      string `json:"objectType,omitempty" yaml:"objectType,omitempty"`
	Optional        bool   `json:"optional" yaml:"optional"`
	ElementOptional bool   `json:"elementOptional,omitempty" yaml:"elementOptional,omitempty"`
	Indexed         bool   `json:"indexed,omitempty" yaml:"indexed,omitempty"`
}

// Serialize encodes doc in the given format.
func Serialize(doc *schema.Document, format Format) ([]byte, error) {
	w := toWire(doc)

	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(w, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode json: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(w); err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Write serializes doc to w.
func Write(w io.Writer, doc *schema.Document, format Format) error {
	data, err := Serialize(doc, format)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

// Deserialize parses a serialized document, re-validates it and recomputes
// its relationship edges. Any failure is a *ParseError and no partial
// document is returned.
func Deserialize(data []byte, format Format) (*schema.Document, error) {
	var w wireDocument

	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, jsonError(err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &w); err != nil {
			return nil, yamlError(err)
		}
	default:
		return nil, &ParseError{Err: fmt.Errorf("%w: %q", ErrUnknownFormat, format)}
	}

	switch {
	case w.FormatVersion == nil:
		return nil, fieldError("formatVersion", ErrMissingVersion)
	case *w.FormatVersion < 1 || *w.FormatVersion > FormatVersion:
		return nil, fieldError("formatVersion", fmt.Errorf("%w: %d", ErrUnsupportedVersion, *w.FormatVersion))
	}

	classes, err := fromWire(w.Classes)
	if err != nil {
		return nil, err
	}

	doc, err := schema.Assemble(classes)
	if err != nil {
		return nil, fieldError("classes", err)
	}
	return doc, nil
}

// Read parses a document from r.
func Read(r io.Reader, format Format) (*schema.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return Deserialize(data, format)
}

// Detect guesses the format of data: JSON when it starts with an object.
func Detect(data []byte) Format {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatJSON
	}
	return FormatYAML
}

// IsDocument reports whether data looks like a serialized document rather
// than a class declaration file, by the presence of formatVersion.
func IsDocument(data []byte) bool {
	var probe struct {
		FormatVersion *int `json:"formatVersion" yaml:"formatVersion"`
	}
	var err error
	if Detect(data) == FormatJSON {
		err = json.Unmarshal(data, &probe)
	} else {
		err = yaml.Unmarshal(data, &probe)
	}
	return err == nil && probe.FormatVersion != nil
}

func jsonError(err error) *ParseError {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &syntaxErr):
		return &ParseError{Offset: syntaxErr.Offset, Err: err}
	case errors.As(err, &typeErr):
		return &ParseError{Offset: typeErr.Offset, Field: typeErr.Field, Err: err}
	default:
		return &ParseError{Err: err}
	}
}

func toWire(doc *schema.Document) wireDocument {
	version := FormatVersion
	w := wireDocument{
		FormatVersion: &version,
		Classes:       make([]wireClass, 0, len(doc.Classes)),
	}

	for _, c := range doc.Classes {
		wc := wireClass{
			ID:         c.ID,
			Name:       c.Name,
			Embedded:   c.Embedded,
			PrimaryKey: c.PrimaryKey,
			Properties: make([]wireProperty, 0, len(c.Properties)),
		}
		for _, p := range c.Properties {
			wp := wireProperty{
				ID:              p.ID,
				Name:            p.Name,
				Type:            p.Kind.String(),
				ObjectType:      p.TargetClass,
				Optional:        p.Nullable,
				ElementOptional: p.ElementNullable,
				Indexed:         p.Indexed,
			}
			if p.Kind == schema.KindList {
				wp.ElementType = p.ElementKind.String()
			}
			wc.Properties = append(wc.Properties, wp)
		}
		w.Classes = append(w.Classes, wc)
	}
	return w
}

// fromWire converts records back into descriptors. Identifiers are not read:
// they are derived from names and reassigned on assembly.
func fromWire(in []wireClass) ([]schema.ClassDescriptor, error) {
	classes := make([]schema.ClassDescriptor, 0, len(in))

	for ci, wc := range in {
		field := fmt.Sprintf("classes[%d]", ci)
		if wc.Name == "" {
			return nil, fieldError(field+".name", errors.New("class name is required"))
		}

		cd := schema.ClassDescriptor{
			Name:       wc.Name,
			Embedded:   wc.Embedded,
			PrimaryKey: wc.PrimaryKey,
			Properties: make([]schema.PropertyDescriptor, 0, len(wc.Properties)),
		}
		for pi, wp := range wc.Properties {
			pd, err := propertyFromWire(wp)
			if err != nil {
				return nil, fieldError(fmt.Sprintf("%s.properties[%d].%s", field, pi, err.field), err.err)
			}
			cd.Properties = append(cd.Properties, pd)
		}
		classes = append(classes, cd)
	}
	return classes, nil
}

type propertyError struct {
	field string
	err   error
}

func propertyFromWire(wp wireProperty) (schema.PropertyDescriptor, *propertyError) {
	if wp.Name == "" {
		return schema.PropertyDescriptor{}, &propertyError{"name", errors.New("property name is required")}
	}

	kind, ok := schema.KindByName(wp.Type)
	if !ok {
		return schema.PropertyDescriptor{}, &propertyError{"type", fmt.Errorf("unknown type %q", wp.Type)}
	}

	pd := schema.PropertyDescriptor{
		Name:     wp.Name,
		Kind:     kind,
		Nullable: wp.Optional,
		Indexed:  wp.Indexed,
	}

	value := kind
	if kind == schema.KindList {
		elem, ok := schema.KindByName(wp.ElementType)
		if !ok || elem == schema.KindList {
			return schema.PropertyDescriptor{}, &propertyError{"elementType", fmt.Errorf("invalid element type %q", wp.ElementType)}
		}
		if elem == schema.KindObject && wp.ElementOptional {
			return schema.PropertyDescriptor{}, &propertyError{"elementOptional", errors.New("list of links cannot hold null elements")}
		}
		pd.ElementKind = elem
		pd.ElementNullable = wp.ElementOptional
		value = elem
	} else if wp.ElementType != "" || wp.ElementOptional {
		return schema.PropertyDescriptor{}, &propertyError{"elementType", fmt.Errorf("%s property cannot have element attributes", wp.Type)}
	}

	switch {
	case value == schema.KindObject && wp.ObjectType == "":
		return schema.PropertyDescriptor{}, &propertyError{"objectType", errors.New("link without a target class")}
	case value != schema.KindObject && wp.ObjectType != "":
		return schema.PropertyDescriptor{}, &propertyError{"objectType", fmt.Errorf("%s property cannot have a target class", wp.Type)}
	}
	pd.TargetClass = wp.ObjectType

	return pd, nil
}
