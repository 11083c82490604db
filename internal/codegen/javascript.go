package codegen

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/tordrt/schemaexport/internal/schema"
)

func generateJavaScript(doc *schema.Document, name string) []File {
	var b bytes.Buffer
	for i := range doc.Classes {
		c := &doc.Classes[i]
		fmt.Fprintf(&b, "exports.%s = {\n", c.Name)
		writeSchemaObject(&b, c)
		b.WriteString("}\n\n")
	}
	return []File{{Name: name + "-model.js", Content: b.Bytes()}}
}

func generateTypeScript(doc *schema.Document, name string) []File {
	var b bytes.Buffer
	b.WriteString("import * as Realm from \"realm\";\n\n")

	names := make([]string, len(doc.Classes))
	for i := range doc.Classes {
		c := &doc.Classes[i]
		names[i] = c.Name + "Schema"

		fmt.Fprintf(&b, "export type %s = {\n", c.Name)
		for _, p := range c.Properties {
			marker := ""
			if p.Nullable && !p.IsCollection() {
				marker = "?"
			}
			fmt.Fprintf(&b, "  %s%s: %s;\n", p.Name, marker, tsType(p))
		}
		b.WriteString("};\n\n")

		fmt.Fprintf(&b, "export const %sSchema = {\n", c.Name)
		writeSchemaObject(&b, c)
		b.WriteString("};\n\n")
	}

	fmt.Fprintf(&b, "export const Schema = [%s];\n", strings.Join(names, ", "))
	return []File{{Name: name + "-model.ts", Content: b.Bytes()}}
}

// writeSchemaObject writes the body of a JavaScript object schema literal,
// up to and excluding its closing brace.
func writeSchemaObject(b *bytes.Buffer, c *schema.ClassDescriptor) {
	fmt.Fprintf(b, "  name: '%s',\n", c.Name)
	if c.PrimaryKey != "" {
		fmt.Fprintf(b, "  primaryKey: '%s',\n", c.PrimaryKey)
	}
	if c.Embedded {
		b.WriteString("  embedded: true,\n")
	}

	b.WriteString("  properties: {\n")
	for i, p := range c.Properties {
		b.WriteString("    " + jsPropertyLine(p, c.IsPrimaryKey(p.Name)))
		if i < len(c.Properties)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("  }\n")
}

func jsPropertyLine(p schema.PropertyDescriptor, primaryKey bool) string {
	typeStr := baseName(p)
	// Single links are always nullable and carry no marker
	if optional(p) && p.Kind != schema.KindObject {
		typeStr += "?"
	}
	if p.IsCollection() {
		typeStr += "[]"
	}

	if p.Indexed && !primaryKey {
		return fmt.Sprintf("%s: { type: '%s', indexed: true }", p.Name, typeStr)
	}
	return fmt.Sprintf("%s: '%s'", p.Name, typeStr)
}

func tsType(p schema.PropertyDescriptor) string {
	elem := tsScalar(p.ValueKind())
	if p.IsLink() {
		elem = p.TargetClass
	}

	if p.IsCollection() {
		if p.ElementNullable {
			return "Array<" + elem + " | undefined>"
		}
		return "Array<" + elem + ">"
	}
	return elem
}

func tsScalar(k schema.ValueKind) string {
	switch k {
	case schema.KindBool:
		return "boolean"
	case schema.KindInt, schema.KindFloat, schema.KindDouble:
		return "number"
	case schema.KindData:
		return "ArrayBuffer"
	case schema.KindDate:
		return "Date"
	case schema.KindObjectID:
		return "Realm.BSON.ObjectId"
	case schema.KindDecimal128:
		return "Realm.BSON.Decimal128"
	default:
		return k.String()
	}
}
