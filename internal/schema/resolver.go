package schema

// Resolve computes the relationship edges of d. It does not modify d.
//
// Every link property yields one edge. The reverse side of an edge is every
// link property on the target class that points back at the source class,
// in declaration order. Two links to the same target get independent edges
// that may share reverse properties. A self link never lists itself as its
// own reverse.
//
// Links whose target class is not in d are returned as dangling reference
// errors, all of them, in class then property order.
func Resolve(d *Document) ([]RelationshipEdge, []*ValidationError) {
	// d is fully indexed before any edge is resolved, so the result does not
	// depend on which class comes first.
	if d.index == nil {
		d = newDocument(d.Classes)
	}

	var (
		edges    []RelationshipEdge
		dangling []*ValidationError
	)

	for ci := range d.Classes {
		source := &d.Classes[ci]
		for _, p := range source.Properties {
			if !p.IsLink() {
				continue
			}

			target, ok := d.Class(p.TargetClass)
			if !ok {
				dangling = append(dangling, &ValidationError{
					Kind:     ErrDanglingReference,
					Class:    source.Name,
					Property: p.Name,
					Target:   p.TargetClass,
					Detail:   "class " + p.TargetClass + " is not declared",
				})
				continue
			}

			edge := RelationshipEdge{
				Source: PropertyRef{Class: source.Name, Property: p.Name},
				Target: target.Name,
			}
			for _, q := range target.Properties {
				if !q.IsLink() || q.TargetClass != source.Name {
					continue
				}
				if target.Name == source.Name && q.Name == p.Name {
					continue
				}
				edge.Reverse = append(edge.Reverse, PropertyRef{Class: target.Name, Property: q.Name})
			}
			edges = append(edges, edge)
		}
	}

	return edges, dangling
}
