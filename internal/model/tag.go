package model

import "strings"

// TypeTag is a parsed type shorthand such as "int?[]" or "Item[]?".
type TypeTag struct {
	Base            string
	List            bool
	Optional        bool
	ElementOptional bool
}

// ParseTypeTag parses the declaration shorthand:
//
//	int        required value
//	int?       nullable value
//	int[]      list of required ints
//	int?[]     list of nullable ints
//	int[]?     nullable list of required ints
//	int?[]?    nullable list of nullable ints
//
// ok is false when the text does not follow the grammar.
func ParseTypeTag(s string) (TypeTag, bool) {
	s = strings.TrimSpace(s)
	var tag TypeTag

	if strings.HasSuffix(s, "[]?") {
		tag.List = true
		tag.Optional = true
		s = strings.TrimSuffix(s, "[]?")
	} else if strings.HasSuffix(s, "[]") {
		tag.List = true
		s = strings.TrimSuffix(s, "[]")
	}

	if strings.HasSuffix(s, "?") {
		s = strings.TrimSuffix(s, "?")
		if tag.List {
			tag.ElementOptional = true
		} else {
			tag.Optional = true
		}
	}

	if !validIdentifier(s) {
		return TypeTag{}, false
	}
	tag.Base = s
	return tag, true
}

// String formats the tag back into shorthand.
func (t TypeTag) String() string {
	var b strings.Builder
	b.WriteString(t.Base)
	if t.List {
		if t.ElementOptional {
			b.WriteByte('?')
		}
		b.WriteString("[]")
	}
	if t.Optional {
		b.WriteByte('?')
	}
	return b.String()
}

// Property builds a raw property from the tag. classes reports whether a
// base name is a declared class; such bases become links.
func (t TypeTag) Property(name string, classes func(string) bool) RawProperty {
	p := RawProperty{
		Name:            name,
		Type:            t.Base,
		Optional:        t.Optional,
		ElementOptional: t.ElementOptional,
	}
	if t.List {
		p.Collection = CollectionList
	}
	if classes != nil && classes(t.Base) {
		p.Type = TypeObject
		p.ObjectType = t.Base
	}
	return p
}

// validIdentifier accepts letters, digits, underscores and inner spaces
// ("object id" is a legacy scalar spelling).
func validIdentifier(s string) bool {
	if s == "" || s[0] == ' ' || s[len(s)-1] == ' ' {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		case r == ' ':
		default:
			return false
		}
	}
	return true
}
