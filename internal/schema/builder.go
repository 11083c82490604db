package schema

import (
	"fmt"
	"strings"

	"github.com/tordrt/schemaexport/internal/model"
)

// Build maps raw classes into descriptors, validates the result and resolves
// relationships. Every violation is collected: on failure the returned
// error is a *ValidationErrors listing all of them and no document is
// returned. Input order is kept, so equal input gives equal output.
func Build(raw []model.RawClass) (*Document, error) {
	errs := &ValidationErrors{}
	classes := make([]ClassDescriptor, 0, len(raw))

	for _, rc := range raw {
		classes = append(classes, mapClass(rc, errs))
	}
	validateBacklinks(raw, newDocument(classes), errs)

	return assemble(classes, errs)
}

// validateBacklinks checks declared reverse links. Each must name a link on
// its origin class that targets the declaring class. Backlinks are not kept
// in the document; the resolver derives them again as reverse edges.
func validateBacklinks(raw []model.RawClass, doc *Document, errs *ValidationErrors) {
	for _, rc := range raw {
		for _, b := range rc.Backlinks {
			for _, p := range rc.Properties {
				if p.Name == b.Name {
					errs.add(&ValidationError{Kind: ErrDuplicateName, Class: rc.Name, Property: b.Name, Detail: "property declared more than once"})
				}
			}

			var detail string
			if origin, ok := doc.Class(b.ObjectType); !ok {
				detail = "class " + b.ObjectType + " is not declared"
			} else if p, ok := origin.Property(b.Property); !ok {
				detail = fmt.Sprintf("%s has no property %q", b.ObjectType, b.Property)
			} else if !p.IsLink() || p.TargetClass != rc.Name {
				detail = fmt.Sprintf("%s.%s does not link to %s", b.ObjectType, b.Property, rc.Name)
			}
			if detail != "" {
				errs.add(&ValidationError{
					Kind:     ErrDanglingReference,
					Class:    rc.Name,
					Property: b.Name,
					Target:   b.ObjectType,
					Detail:   detail,
				})
			}
		}
	}
}

// Assemble validates descriptors that are already mapped, such as those read
// back from an exported document, and resolves relationships. The input is
// not modified.
func Assemble(classes []ClassDescriptor) (*Document, error) {
	return assemble(cloneClasses(classes), &ValidationErrors{})
}

func assemble(classes []ClassDescriptor, errs *ValidationErrors) (*Document, error) {
	doc := newDocument(classes)
	validate(doc, errs)

	edges, dangling := Resolve(doc)
	for _, e := range dangling {
		errs.add(e)
	}

	if !errs.empty() {
		return nil, errs
	}

	assignIDs(doc.Classes)
	doc.Edges = edges
	return doc, nil
}

// mapClass maps every property of rc. Properties that fail to map are kept
// with KindInvalid so that name checks still see them.
func mapClass(rc model.RawClass, errs *ValidationErrors) ClassDescriptor {
	cd := ClassDescriptor{
		Name:       rc.Name,
		Embedded:   rc.Embedded,
		Properties: make([]PropertyDescriptor, 0, len(rc.Properties)),
	}

	var keys []string
	addKey := func(name string) {
		for _, k := range keys {
			if k == name {
				return
			}
		}
		keys = append(keys, name)
	}
	if rc.PrimaryKey != "" {
		addKey(rc.PrimaryKey)
	}

	for _, rp := range rc.Properties {
		pd, err := Map(rp)
		if err != nil {
			ve := err.(*ValidationError)
			ve.Class = rc.Name
			errs.add(ve)
			pd = PropertyDescriptor{Name: rp.Name, Kind: KindInvalid}
		}
		if rp.PrimaryKey {
			addKey(rp.Name)
		}
		cd.Properties = append(cd.Properties, pd)
	}

	if len(keys) > 1 {
		errs.add(&ValidationError{
			Kind:   ErrMultiplePrimaryKeys,
			Class:  rc.Name,
			Detail: strings.Join(keys, ", "),
		})
	}
	if len(keys) > 0 {
		cd.PrimaryKey = keys[0]
	}

	return cd
}

// validate checks names, primary keys and index flags of every class.
// Link targets are checked by Resolve.
func validate(doc *Document, errs *ValidationErrors) {
	seenClasses := make(map[string]bool, len(doc.Classes))

	for ci := range doc.Classes {
		c := &doc.Classes[ci]

		if seenClasses[c.Name] {
			errs.add(&ValidationError{Kind: ErrDuplicateName, Class: c.Name, Detail: "class declared more than once"})
		}
		seenClasses[c.Name] = true

		seenProps := make(map[string]bool, len(c.Properties))
		for _, p := range c.Properties {
			if seenProps[p.Name] {
				errs.add(&ValidationError{Kind: ErrDuplicateName, Class: c.Name, Property: p.Name, Detail: "property declared more than once"})
			}
			seenProps[p.Name] = true

			if p.Indexed && p.Kind != KindInvalid && (p.Kind == KindList || !p.Kind.IsIndexable()) {
				errs.add(&ValidationError{
					Kind:     ErrInvalidIndex,
					Class:    c.Name,
					Property: p.Name,
					Detail:   fmt.Sprintf("%s properties cannot be indexed", describeKind(p)),
				})
			}
		}

		validatePrimaryKey(c, errs)
	}
}

func validatePrimaryKey(c *ClassDescriptor, errs *ValidationErrors) {
	if c.PrimaryKey == "" {
		return
	}

	if c.Embedded {
		errs.add(&ValidationError{Kind: ErrEmbeddedPrimaryKey, Class: c.Name, Property: c.PrimaryKey})
	}

	p, ok := c.Property(c.PrimaryKey)
	if !ok {
		errs.add(&ValidationError{
			Kind:   ErrUnknownPrimaryKey,
			Class:  c.Name,
			Detail: fmt.Sprintf("no property named %q", c.PrimaryKey),
		})
		return
	}

	switch {
	case p.Kind == KindInvalid:
		// Already reported as unsupported.
	case p.Kind == KindList || !p.Kind.IsKeyable():
		errs.add(&ValidationError{
			Kind:     ErrInvalidPrimaryKeyType,
			Class:    c.Name,
			Property: p.Name,
			Detail:   fmt.Sprintf("%s is not admissible as a key", describeKind(*p)),
		})
	case p.Nullable:
		errs.add(&ValidationError{
			Kind:     ErrInvalidPrimaryKeyType,
			Class:    c.Name,
			Property: p.Name,
			Detail:   "primary key cannot be nullable",
		})
	}
}

func describeKind(p PropertyDescriptor) string {
	if p.Kind == KindList {
		return "list of " + p.ElementKind.String()
	}
	return p.Kind.String()
}

func cloneClasses(in []ClassDescriptor) []ClassDescriptor {
	out := make([]ClassDescriptor, len(in))
	for i, c := range in {
		out[i] = c
		out[i].Properties = append([]PropertyDescriptor(nil), c.Properties...)
	}
	return out
}
