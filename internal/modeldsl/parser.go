// Package modeldsl parses .model declaration files:
//
//	// inventory
//	class Item {
//	  id: int @primary @indexed
//	  tags: string[]?
//	  owner: Person?
//	}
//
//	embedded class Address {
//	  street: string
//	}
//
// Types use the same shorthand as YAML declarations. Annotations are
// @primary and @indexed.
package modeldsl

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/tordrt/schemaexport/internal/model"
)

// File is the parsed content of one .model file.
type File struct {
	Classes []*Class `parser:"@@*"`
}

// Class is one class block.
type Class struct {
	Pos lexer.Position

	Embedded   bool        `parser:"@'embedded'?"`
	Name       string      `parser:"'class' @Ident"`
	Properties []*Property `parser:"'{' @@* '}'"`
}

// Property is one "name: type @annotation..." line.
type Property struct {
	Pos lexer.Position

	Name        string   `parser:"@Ident ':'"`
	Type        *TypeRef `parser:"@@"`
	Annotations []string `parser:"('@' @Ident)*"`
}

// TypeRef is a type shorthand such as int?[]?.
type TypeRef struct {
	Base     string      `parser:"@Ident"`
	Nullable bool        `parser:"@'?'?"`
	List     *ListSuffix `parser:"@@?"`
}

// ListSuffix is the "[]" part of a type, optionally followed by "?".
type ListSuffix struct {
	Open     bool `parser:"@'[' ']'"`
	Nullable bool `parser:"@'?'?"`
}

var modelLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `[{}:?\[\]@]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var parser = participle.MustBuild[File](
	participle.Lexer(modelLexer),
	participle.Elide("Whitespace", "Comment"),
)

// ParseBytes parses a .model file into its syntax tree.
func ParseBytes(filename string, data []byte) (*File, error) {
	return parser.ParseBytes(filename, data)
}

// Parse parses a .model file into class declarations. Its signature matches
// model.FileSupplier parsers.
func Parse(filename string, data []byte) ([]model.Declaration, error) {
	f, err := ParseBytes(filename, data)
	if err != nil {
		return nil, err
	}
	return f.Declarations()
}

// Declarations converts the syntax tree into class declarations.
func (f *File) Declarations() ([]model.Declaration, error) {
	decls := make([]model.Declaration, 0, len(f.Classes))

	for _, c := range f.Classes {
		d := model.Declaration{
			Name:       c.Name,
			Embedded:   c.Embedded,
			Properties: make(model.DeclaredProperties, 0, len(c.Properties)),
		}
		for _, p := range c.Properties {
			dp := model.DeclaredProperty{Name: p.Name, Type: p.Type.Tag().String()}
			for _, a := range p.Annotations {
				switch a {
				case "primary":
					dp.PrimaryKey = true
				case "indexed":
					dp.Indexed = true
				default:
					return nil, fmt.Errorf("%s: unknown annotation @%s on %s.%s", p.Pos, a, c.Name, p.Name)
				}
			}
			d.Properties = append(d.Properties, dp)
		}
		decls = append(decls, d)
	}
	return decls, nil
}

// Tag converts the reference to a type tag.
func (t *TypeRef) Tag() model.TypeTag {
	tag := model.TypeTag{Base: t.Base}
	if t.List == nil {
		tag.Optional = t.Nullable
		return tag
	}
	tag.List = true
	tag.ElementOptional = t.Nullable
	tag.Optional = t.List.Nullable
	return tag
}

// Parsers returns the FileSupplier parser table entry for .model files.
func Parsers() map[string]func(string, []byte) ([]model.Declaration, error) {
	return map[string]func(string, []byte) ([]model.Declaration, error){
		".model": Parse,
	}
}
