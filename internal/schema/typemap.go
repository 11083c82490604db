package schema

import (
	"fmt"

	"github.com/tordrt/schemaexport/internal/model"
)

// Map translates a raw property declaration into a descriptor. The declared
// type and the wrapper markers jointly select one kind; unsupported
// combinations fail with ErrUnsupportedType. The class of the returned
// error is left empty for the caller to fill in.
func Map(p model.RawProperty) (PropertyDescriptor, error) {
	unsupported := func(format string, args ...any) (PropertyDescriptor, error) {
		return PropertyDescriptor{}, &ValidationError{
			Kind:     ErrUnsupportedType,
			Property: p.Name,
			Detail:   fmt.Sprintf(format, args...),
		}
	}

	value, err := mapValue(p)
	if err != nil {
		return unsupported("%v", err)
	}

	pd := PropertyDescriptor{
		Name:        p.Name,
		Indexed:     p.Indexed,
		TargetClass: p.ObjectType,
	}
	if value != KindObject {
		pd.TargetClass = ""
	}

	switch p.Collection {
	case model.CollectionNone:
		if p.ElementOptional {
			return unsupported("element nullability requires a collection")
		}
		pd.Kind = value
		pd.Nullable = p.Optional
	case model.CollectionList:
		if value == KindObject && p.ElementOptional {
			return unsupported("list of %s cannot hold null links", p.ObjectType)
		}
		pd.Kind = KindList
		pd.ElementKind = value
		pd.Nullable = p.Optional
		pd.ElementNullable = p.ElementOptional
	default:
		return unsupported("unknown collection wrapper %d", int(p.Collection))
	}

	return pd, nil
}

// mapValue resolves the declared value type of p to a scalar or KindObject.
func mapValue(p model.RawProperty) (ValueKind, error) {
	if p.Type == model.TypeObject {
		if p.ObjectType == "" {
			return KindInvalid, fmt.Errorf("object link without a target class")
		}
		return KindObject, nil
	}

	k, ok := ScalarByName(p.Type)
	if !ok {
		if p.Type == "" {
			return KindInvalid, fmt.Errorf("missing declared type")
		}
		return KindInvalid, fmt.Errorf("%q has no mapping", p.Type)
	}
	if p.ObjectType != "" {
		return KindInvalid, fmt.Errorf("%q cannot carry target class %q", p.Type, p.ObjectType)
	}
	return k, nil
}
