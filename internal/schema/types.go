package schema

// Document is a validated, ordered set of classes
type Document struct {
	Classes []ClassDescriptor
	// Edges is derived by the relationship resolver and never serialized
	Edges []RelationshipEdge

	index map[string]int
}

// ClassDescriptor describes one modeled class
type ClassDescriptor struct {
	ID         string
	Name       string
	Embedded   bool
	PrimaryKey string
	Properties []PropertyDescriptor
}

// PropertyDescriptor describes one property of a class
type PropertyDescriptor struct {
	ID   string
	Name string
	Kind ValueKind
	// ElementKind is set for KindList only
	ElementKind ValueKind
	// Nullable is the nullability of the value, or of the list container
	Nullable bool
	// ElementNullable is the nullability of list elements
	ElementNullable bool
	Indexed         bool
	// TargetClass names the linked class for object links and object lists
	TargetClass string
}

// PropertyRef names a property by owning class
type PropertyRef struct {
	Class    string
	Property string
}

// String returns "Class.property".
func (r PropertyRef) String() string {
	return r.Class + "." + r.Property
}

// RelationshipEdge pairs a forward link with the properties on the target
// class that link back to the source class
type RelationshipEdge struct {
	Source  PropertyRef
	Target  string
	Reverse []PropertyRef
}

// IsLink reports whether p refers to another class.
func (p PropertyDescriptor) IsLink() bool {
	return p.Kind == KindObject || (p.Kind == KindList && p.ElementKind == KindObject)
}

// IsCollection reports whether p is a list.
func (p PropertyDescriptor) IsCollection() bool {
	return p.Kind == KindList
}

// ValueKind returns the kind of a single value: the element kind for lists.
func (p PropertyDescriptor) ValueKind() ValueKind {
	if p.Kind == KindList {
		return p.ElementKind
	}
	return p.Kind
}

// Property looks up a property by name.
func (c *ClassDescriptor) Property(name string) (*PropertyDescriptor, bool) {
	for i := range c.Properties {
		if c.Properties[i].Name == name {
			return &c.Properties[i], true
		}
	}
	return nil, false
}

// IsPrimaryKey reports whether name is the class primary key.
func (c *ClassDescriptor) IsPrimaryKey(name string) bool {
	return c.PrimaryKey != "" && c.PrimaryKey == name
}

// newDocument indexes classes by name. On duplicate names the first
// declaration wins; duplicates are reported by validation.
func newDocument(classes []ClassDescriptor) *Document {
	d := &Document{
		Classes: classes,
		index:   make(map[string]int, len(classes)),
	}
	for i, c := range classes {
		if _, ok := d.index[c.Name]; !ok {
			d.index[c.Name] = i
		}
	}
	return d
}

// Class looks up a class by name.
func (d *Document) Class(name string) (*ClassDescriptor, bool) {
	if d.index == nil {
		for i := range d.Classes {
			if d.Classes[i].Name == name {
				return &d.Classes[i], true
			}
		}
		return nil, false
	}
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return &d.Classes[i], true
}

// EdgesFrom returns the forward edges declared on class, in property order.
func (d *Document) EdgesFrom(class string) []RelationshipEdge {
	var out []RelationshipEdge
	for _, e := range d.Edges {
		if e.Source.Class == class {
			out = append(out, e)
		}
	}
	return out
}

// EdgesTo returns the forward edges that point at class.
func (d *Document) EdgesTo(class string) []RelationshipEdge {
	var out []RelationshipEdge
	for _, e := range d.Edges {
		if e.Target == class {
			out = append(out, e)
		}
	}
	return out
}

// Names returns the class names in declaration order.
func (d *Document) Names() []string {
	names := make([]string, len(d.Classes))
	for i, c := range d.Classes {
		names[i] = c.Name
	}
	return names
}
