package schema

// ValueKind identifies the normalized type of a property.
type ValueKind int

const (
	// KindInvalid is the zero value and never appears in a built document.
	KindInvalid ValueKind = iota

	KindBool
	KindInt
	KindFloat
	KindDouble
	KindString
	KindDate
	KindData
	KindObjectID
	KindDecimal128

	// KindObject is a single forward link to another class.
	KindObject
	// KindList is a collection; its element kind is carried separately.
	KindList
)

// kindInfo describes one entry of the kind registry.
type kindInfo struct {
	name      string
	scalar    bool
	indexable bool
	keyable   bool
}

// kinds is the immutable registry of supported kinds. It is only ever read,
// so concurrent builds can share it without synchronization.
var kinds = map[ValueKind]kindInfo{
	KindBool:       {name: "bool", scalar: true, indexable: true},
	KindInt:        {name: "int", scalar: true, indexable: true, keyable: true},
	KindFloat:      {name: "float", scalar: true},
	KindDouble:     {name: "double", scalar: true},
	KindString:     {name: "string", scalar: true, indexable: true, keyable: true},
	KindDate:       {name: "date", scalar: true, indexable: true},
	KindData:       {name: "data", scalar: true},
	KindObjectID:   {name: "objectId", scalar: true, indexable: true, keyable: true},
	KindDecimal128: {name: "decimal128", scalar: true},
	KindObject:     {name: "object"},
	KindList:       {name: "list"},
}

// kindsByName is the reverse lookup of kinds, including accepted aliases.
var kindsByName = buildKindsByName()

func buildKindsByName() map[string]ValueKind {
	m := make(map[string]ValueKind, len(kinds)+4)
	for k, info := range kinds {
		m[info.name] = k
	}
	m["boolean"] = KindBool
	m["integer"] = KindInt
	m["object id"] = KindObjectID
	m["decimal"] = KindDecimal128
	return m
}

// String returns the wire name of the kind.
func (k ValueKind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return "invalid"
}

// IsScalar reports whether k is a non-link, non-collection kind.
func (k ValueKind) IsScalar() bool {
	return kinds[k].scalar
}

// IsIndexable reports whether a property of kind k may carry the indexed flag.
func (k ValueKind) IsIndexable() bool {
	return kinds[k].indexable
}

// IsKeyable reports whether a property of kind k may be a primary key.
func (k ValueKind) IsKeyable() bool {
	return kinds[k].keyable
}

// KindByName resolves a wire or declared type name to a kind.
func KindByName(name string) (ValueKind, bool) {
	k, ok := kindsByName[name]
	return k, ok
}

// ScalarByName resolves name to a scalar kind only.
func ScalarByName(name string) (ValueKind, bool) {
	k, ok := kindsByName[name]
	if !ok || !k.IsScalar() {
		return KindInvalid, false
	}
	return k, true
}
