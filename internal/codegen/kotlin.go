package codegen

import (
	"bytes"
	"fmt"

	"github.com/tordrt/schemaexport/internal/schema"
)

const (
	padding        = "    "
	jvmPackageLine = "package your.package.name.here"
	jvmNotice      = "// Please note: @LinkingObjects and default values are not represented in the schema and thus will not be part of the generated models"
)

func generateKotlin(doc *schema.Document, _ string) []File {
	files := make([]File, 0, len(doc.Classes))
	for i := range doc.Classes {
		c := &doc.Classes[i]
		files = append(files, File{Name: c.Name + ".kt", Content: kotlinClass(c)})
	}
	return files
}

func kotlinClass(c *schema.ClassDescriptor) []byte {
	imports := importSet{}
	imports.add("import io.realm.RealmObject")

	var fields bytes.Buffer
	for _, p := range c.Properties {
		switch {
		case c.IsPrimaryKey(p.Name):
			imports.add("import io.realm.annotations.PrimaryKey")
			fields.WriteString(padding + "@PrimaryKey\n")
		case p.Indexed:
			imports.add("import io.realm.annotations.Index")
			fields.WriteString(padding + "@Index\n")
		}
		if p.IsCollection() && !p.IsLink() && !p.ElementNullable {
			imports.add("import io.realm.annotations.Required")
			fields.WriteString(padding + "@Required\n")
		}
		fmt.Fprintf(&fields, "%svar %s: %s = %s\n", padding, p.Name, kotlinType(p, imports), kotlinDefault(p))
	}

	if c.Embedded {
		imports.add("import io.realm.annotations.RealmClass")
	}

	var b bytes.Buffer
	b.WriteString(jvmNotice + "\n")
	b.WriteString(jvmPackageLine + "\n\n")
	for _, line := range imports.sorted() {
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")

	if c.Embedded {
		b.WriteString("@RealmClass(embedded = true)\n")
	}
	fmt.Fprintf(&b, "open class %s : RealmObject() {\n\n", c.Name)
	b.Write(fields.Bytes())
	b.WriteString("\n}\n")
	return b.Bytes()
}

func kotlinType(p schema.PropertyDescriptor, imports importSet) string {
	elem := p.TargetClass
	if !p.IsLink() {
		elem = kotlinScalar(p.ValueKind(), imports)
	}

	if p.IsCollection() {
		imports.add("import io.realm.RealmList")
		if p.ElementNullable {
			elem += "?"
		}
		return "RealmList<" + elem + ">"
	}

	if p.Nullable || p.Kind == schema.KindObject {
		return elem + "?"
	}
	return elem
}

func kotlinScalar(k schema.ValueKind, imports importSet) string {
	switch k {
	case schema.KindBool:
		return "Boolean"
	case schema.KindInt:
		return "Long"
	case schema.KindFloat:
		return "Float"
	case schema.KindDouble:
		return "Double"
	case schema.KindString:
		return "String"
	case schema.KindData:
		return "ByteArray"
	case schema.KindDate:
		imports.add("import java.util.Date")
		return "Date"
	case schema.KindObjectID:
		imports.add("import org.bson.types.ObjectId")
		return "ObjectId"
	case schema.KindDecimal128:
		imports.add("import org.bson.types.Decimal128")
		return "Decimal128"
	default:
		return k.String()
	}
}

func kotlinDefault(p schema.PropertyDescriptor) string {
	if p.IsCollection() {
		return "RealmList()"
	}
	if p.Nullable || p.Kind == schema.KindObject {
		return "null"
	}

	switch p.Kind {
	case schema.KindBool:
		return "false"
	case schema.KindInt:
		return "0"
	case schema.KindFloat:
		return "0.0f"
	case schema.KindDouble:
		return "0.0"
	case schema.KindString:
		return `""`
	case schema.KindData:
		return "ByteArray(0)"
	case schema.KindDate:
		return "Date()"
	case schema.KindObjectID:
		return "ObjectId()"
	case schema.KindDecimal128:
		return "Decimal128(0)"
	default:
		return "null"
	}
}
