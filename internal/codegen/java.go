package codegen

import (
	"bytes"
	"fmt"

	"github.com/tordrt/schemaexport/internal/schema"
)

func generateJava(doc *schema.Document, _ string) []File {
	files := make([]File, 0, len(doc.Classes))
	for i := range doc.Classes {
		c := &doc.Classes[i]
		files = append(files, File{Name: c.Name + ".java", Content: javaClass(c)})
	}
	return files
}

func javaClass(c *schema.ClassDescriptor) []byte {
	imports := importSet{}
	imports.add("import io.realm.RealmObject;")

	var fields, accessors bytes.Buffer
	for _, p := range c.Properties {
		typ := javaType(p, imports)

		switch {
		case c.IsPrimaryKey(p.Name):
			imports.add("import io.realm.annotations.PrimaryKey;")
			fields.WriteString(padding + "@PrimaryKey\n")
		case p.Indexed:
			imports.add("import io.realm.annotations.Index;")
			fields.WriteString(padding + "@Index\n")
		}
		if javaRequired(p) {
			imports.add("import io.realm.annotations.Required;")
			fields.WriteString(padding + "@Required\n")
		}
		fmt.Fprintf(&fields, "%sprivate %s %s;\n", padding, typ, p.Name)

		getter := "get"
		if p.Kind == schema.KindBool {
			getter = "is"
		}
		fmt.Fprintf(&accessors, "\n%spublic %s %s%s() { return %s; }\n", padding, typ, getter, capitalize(p.Name), p.Name)
		fmt.Fprintf(&accessors, "\n%spublic void set%s(%s %s) { this.%s = %s; }\n", padding, capitalize(p.Name), typ, p.Name, p.Name, p.Name)
	}

	if c.Embedded {
		imports.add("import io.realm.annotations.RealmClass;")
	}

	var b bytes.Buffer
	b.WriteString(jvmNotice + "\n")
	b.WriteString(jvmPackageLine + ";\n\n")
	for _, line := range imports.sorted() {
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")

	if c.Embedded {
		b.WriteString("@RealmClass(embedded = true)\n")
	}
	fmt.Fprintf(&b, "public class %s extends RealmObject {\n", c.Name)
	b.Write(fields.Bytes())
	b.Write(accessors.Bytes())
	b.WriteString("}\n")
	return b.Bytes()
}

// javaRequired reports whether a non-null reference type needs @Required.
// Primitives are non-null already and links cannot be required.
func javaRequired(p schema.PropertyDescriptor) bool {
	if optional(p) || p.IsLink() {
		return false
	}
	if p.IsCollection() {
		return true
	}
	switch p.Kind {
	case schema.KindString, schema.KindData, schema.KindDate, schema.KindObjectID, schema.KindDecimal128:
		return true
	default:
		return false
	}
}

func javaType(p schema.PropertyDescriptor, imports importSet) string {
	if p.IsCollection() {
		imports.add("import io.realm.RealmList;")
		elem := p.TargetClass
		if !p.IsLink() {
			// Generic arguments are always boxed
			elem = javaScalar(p.ElementKind, true, imports)
		}
		return "RealmList<" + elem + ">"
	}

	if p.Kind == schema.KindObject {
		return p.TargetClass
	}
	return javaScalar(p.Kind, p.Nullable, imports)
}

func javaScalar(k schema.ValueKind, boxed bool, imports importSet) string {
	switch k {
	case schema.KindBool:
		if boxed {
			return "Boolean"
		}
		return "boolean"
	case schema.KindInt:
		if boxed {
			return "Long"
		}
		return "long"
	case schema.KindFloat:
		if boxed {
			return "Float"
		}
		return "float"
	case schema.KindDouble:
		if boxed {
			return "Double"
		}
		return "double"
	case schema.KindString:
		return "String"
	case schema.KindData:
		return "byte[]"
	case schema.KindDate:
		imports.add("import java.util.Date;")
		return "Date"
	case schema.KindObjectID:
		imports.add("import org.bson.types.ObjectId;")
		return "ObjectId"
	case schema.KindDecimal128:
		imports.add("import org.bson.types.Decimal128;")
		return "Decimal128"
	default:
		return k.String()
	}
}
