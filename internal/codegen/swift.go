package codegen

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/tordrt/schemaexport/internal/schema"
)

func generateSwift(doc *schema.Document, name string) []File {
	var b bytes.Buffer
	b.WriteString("import Foundation\nimport RealmSwift\n\n")

	for i := range doc.Classes {
		writeSwiftClass(&b, &doc.Classes[i])
	}
	return []File{{Name: name + "-model.swift", Content: b.Bytes()}}
}

func writeSwiftClass(b *bytes.Buffer, c *schema.ClassDescriptor) {
	base := "Object"
	if c.Embedded {
		base = "EmbeddedObject"
	}
	fmt.Fprintf(b, "class %s: %s {\n", c.Name, base)

	var indexed []string
	for _, p := range c.Properties {
		fmt.Fprintf(b, "    %s\n", swiftPropertyLine(p))
		if p.Indexed && !c.IsPrimaryKey(p.Name) {
			indexed = append(indexed, `"`+p.Name+`"`)
		}
	}

	if c.PrimaryKey != "" {
		b.WriteString("\n    override static func primaryKey() -> String? {\n")
		fmt.Fprintf(b, "        return \"%s\"\n", c.PrimaryKey)
		b.WriteString("    }\n")
	}

	if len(indexed) > 0 {
		b.WriteString("\n    override static func indexedProperties() -> [String] {\n")
		fmt.Fprintf(b, "        return [%s]\n", strings.Join(indexed, ", "))
		b.WriteString("    }\n")
	}

	b.WriteString("}\n\n")
}

func swiftPropertyLine(p schema.PropertyDescriptor) string {
	if p.IsCollection() {
		elem := swiftType(p)
		if p.ElementNullable {
			elem += "?"
		}
		return fmt.Sprintf("let %s = List<%s>()", p.Name, elem)
	}

	typ := swiftType(p)

	// Links are always optional in the object model
	if p.Kind == schema.KindObject {
		return fmt.Sprintf("@objc dynamic var %s: %s?", p.Name, typ)
	}

	if p.Nullable {
		switch p.Kind {
		case schema.KindBool, schema.KindInt, schema.KindFloat, schema.KindDouble:
			return fmt.Sprintf("let %s = RealmOptional<%s>()", p.Name, typ)
		default:
			return fmt.Sprintf("@objc dynamic var %s: %s? = nil", p.Name, typ)
		}
	}

	return fmt.Sprintf("@objc dynamic var %s: %s = %s", p.Name, typ, swiftDefault(p.Kind))
}

func swiftType(p schema.PropertyDescriptor) string {
	if p.IsLink() {
		return p.TargetClass
	}

	switch p.ValueKind() {
	case schema.KindBool:
		return "Bool"
	case schema.KindInt:
		return "Int"
	case schema.KindFloat:
		return "Float"
	case schema.KindDouble:
		return "Double"
	case schema.KindString:
		return "String"
	case schema.KindData:
		return "Data"
	case schema.KindDate:
		return "Date"
	case schema.KindObjectID:
		return "ObjectId"
	case schema.KindDecimal128:
		return "Decimal128"
	default:
		return p.ValueKind().String()
	}
}

func swiftDefault(k schema.ValueKind) string {
	switch k {
	case schema.KindBool:
		return "false"
	case schema.KindInt, schema.KindFloat, schema.KindDouble:
		return "0"
	case schema.KindString:
		return `""`
	case schema.KindData:
		return "Data()"
	case schema.KindDate:
		return "Date()"
	case schema.KindObjectID:
		return "ObjectId.generate()"
	case schema.KindDecimal128:
		return "Decimal128()"
	default:
		return "nil"
	}
}
