package codegen

import (
	"bytes"
	"fmt"

	"github.com/tordrt/schemaexport/internal/schema"
)

const csharpNotice = "// Please note: [Backlink] properties and default values are not represented\n// in the schema and thus will not be part of the generated models"

type csharpProperty struct {
	attributes []string
	mappedTo   string
	name       string
	typ        string
	setter     string
}

func generateCSharp(doc *schema.Document, _ string) []File {
	files := make([]File, 0, len(doc.Classes))
	for i := range doc.Classes {
		c := &doc.Classes[i]
		files = append(files, File{Name: c.Name + ".cs", Content: csharpClass(c)})
	}
	return files
}

func csharpClass(c *schema.ClassDescriptor) []byte {
	var (
		props []csharpProperty
		bson  bool
	)

	for _, p := range c.Properties {
		cp := csharpProperty{
			name:     capitalize(p.Name),
			mappedTo: p.Name,
			setter:   " set;",
		}

		switch {
		case c.IsPrimaryKey(p.Name):
			cp.attributes = append(cp.attributes, "PrimaryKey")
		case p.Indexed:
			cp.attributes = append(cp.attributes, "Indexed")
		}

		if k := p.ValueKind(); k == schema.KindObjectID || k == schema.KindDecimal128 {
			bson = true
		}

		typ, required := csharpType(p)
		if required {
			cp.attributes = append(cp.attributes, "Required")
		}
		if p.IsCollection() {
			// Lists are created by the SDK and only read
			cp.setter = ""
			typ = "IList<" + typ + ">"
		}
		cp.typ = typ

		props = append(props, cp)
	}

	base := "RealmObject"
	if c.Embedded {
		base = "EmbeddedObject"
	}

	var b bytes.Buffer
	b.WriteString(csharpNotice + "\n\n")
	b.WriteString("using System;\nusing System.Collections.Generic;\n")
	if bson {
		b.WriteString("using MongoDB.Bson;\n")
	}
	b.WriteString("using Realms;\n\n")
	b.WriteString("namespace MyProject.Models\n{\n")
	fmt.Fprintf(&b, "%spublic class %s : %s\n%s{\n", padding, c.Name, base, padding)

	for i, p := range props {
		if i > 0 {
			b.WriteString("\n")
		}
		for _, attr := range p.attributes {
			fmt.Fprintf(&b, "%s%s[%s]\n", padding, padding, attr)
		}
		if p.mappedTo != p.name {
			fmt.Fprintf(&b, "%s%s[MapTo(\"%s\")]\n", padding, padding, p.mappedTo)
		}
		fmt.Fprintf(&b, "%s%spublic %s %s { get;%s }\n", padding, padding, p.typ, p.name, p.setter)
	}

	fmt.Fprintf(&b, "%s}\n}\n", padding)
	return b.Bytes()
}

// csharpType maps the value type of p. Value types take a "?" when
// optional; non-optional reference types report required instead.
func csharpType(p schema.PropertyDescriptor) (typ string, required bool) {
	var (
		reference     bool
		canBeRequired = true
	)

	switch p.ValueKind() {
	case schema.KindBool:
		typ = "bool"
	case schema.KindInt:
		typ = "long"
	case schema.KindFloat:
		typ = "float"
	case schema.KindDouble:
		typ = "double"
	case schema.KindDate:
		typ = "DateTimeOffset"
	case schema.KindObjectID:
		typ = "ObjectId"
	case schema.KindDecimal128:
		typ = "Decimal128"
	case schema.KindData:
		typ = "byte[]"
		reference = true
	case schema.KindString:
		typ = "string"
		reference = true
	default:
		typ = p.TargetClass
		reference = true
		canBeRequired = false
	}

	opt := optional(p)
	switch {
	case opt && !reference:
		typ += "?"
	case !opt && reference && canBeRequired:
		required = true
	}
	return typ, required
}
