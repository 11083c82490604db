// Package model holds the raw class metadata handed to the schema builder,
// and the loaders that read it from declaration files.
//
// Raw metadata is loose: a declared type tag is carried as
// text and only the schema package decides whether it maps to a kind.
package model

import "context"

// TypeObject is the declared type tag of a single link to another class.
const TypeObject = "object"

// TypeLinkingObjects declares a reverse link: the objects of ObjectType
// whose Property links to the declaring class.
const TypeLinkingObjects = "linkingObjects"

// Collection is the collection wrapper of a raw property.
type Collection int

const (
	// CollectionNone marks a single value.
	CollectionNone Collection = iota
	// CollectionList wraps the declared type in an ordered list.
	CollectionList
)

// String returns a readable name for the wrapper.
func (c Collection) String() string {
	switch c {
	case CollectionNone:
		return "none"
	case CollectionList:
		return "list"
	default:
		return "unknown"
	}
}

// RawClass is the metadata of one declared class, as supplied by the host.
type RawClass struct {
	Name string
	// PrimaryKey optionally names the key property at class level. Property
	// level markers are merged with it by the builder.
	PrimaryKey string
	Embedded   bool
	Properties []RawProperty
	// Backlinks are declared reverse links. They hold no value of their own
	// and are checked against the forward link they name.
	Backlinks []RawBacklink
}

// RawBacklink is a declared reverse link.
type RawBacklink struct {
	Name       string
	ObjectType string
	Property   string
}

// RawProperty is one declared property.
type RawProperty struct {
	Name string
	// Type is the declared value type tag: a scalar name such as "int" or
	// "string", or TypeObject for links. For lists it is the element type.
	Type string
	// ObjectType is the target class name when Type is TypeObject.
	ObjectType string
	Collection Collection
	// Optional marks the value itself nullable, or for lists the container.
	Optional bool
	// ElementOptional marks list elements nullable.
	ElementOptional bool
	Indexed         bool
	PrimaryKey      bool
}

// IsLink reports whether the property refers to another class.
func (p RawProperty) IsLink() bool {
	return p.Type == TypeObject
}

// Supplier yields raw class metadata from some host facility: declaration
// files, a live database, or a manual registration table.
type Supplier interface {
	Classes(ctx context.Context) ([]RawClass, error)
}

// Static is a Supplier over an in-memory class list.
type Static []RawClass

// Classes returns the list unchanged.
func (s Static) Classes(_ context.Context) ([]RawClass, error) {
	return s, nil
}
