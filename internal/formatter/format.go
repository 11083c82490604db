// Package formatter renders a built schema document as human readable
// documentation: compact text, markdown, or a directory with one file per
// class.
package formatter

import (
	"strings"

	"github.com/tordrt/schemaexport/internal/model"
	"github.com/tordrt/schemaexport/internal/schema"
)

const (
	formatMarkdown = "markdown"
	formatText     = "text"
)

// Formatter writes a document somewhere
type Formatter interface {
	Format(doc *schema.Document) error
}

// typeLabel renders a property type in declaration shorthand, such as
// "int?", "Person" or "string?[]".
func typeLabel(p schema.PropertyDescriptor) string {
	base := p.ValueKind().String()
	if p.IsLink() {
		base = p.TargetClass
	}
	return model.TypeTag{
		Base:            base,
		List:            p.IsCollection(),
		Optional:        p.Nullable,
		ElementOptional: p.ElementNullable,
	}.String()
}

func markers(c *schema.ClassDescriptor, p schema.PropertyDescriptor) []string {
	var m []string
	if c.IsPrimaryKey(p.Name) {
		m = append(m, "PK")
	}
	if p.Indexed {
		m = append(m, "INDEXED")
	}
	return m
}

func joinRefs(refs []schema.PropertyRef) string {
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}

// linkTargets lists the distinct classes linked from class, in property order
func linkTargets(doc *schema.Document, class string) []string {
	var targets []string
	seen := make(map[string]bool)
	for _, e := range doc.EdgesFrom(class) {
		if !seen[e.Target] {
			seen[e.Target] = true
			targets = append(targets, e.Target)
		}
	}
	return targets
}
