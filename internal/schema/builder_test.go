package schema

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/schemaexport/internal/model"
)

// loadAllTypes reads the shared sample schema.
func loadAllTypes(t *testing.T) []model.RawClass {
	t.Helper()

	data, err := os.ReadFile("../../testdata/alltypes.yaml")
	require.NoError(t, err)
	decls, err := model.DecodeDeclarations(data)
	require.NoError(t, err)
	return model.Normalize(decls)
}

func validationErrors(t *testing.T, err error) *ValidationErrors {
	t.Helper()

	require.Error(t, err)
	v, ok := AsValidationErrors(err)
	require.True(t, ok, "expected *ValidationErrors, got %T", err)
	return v
}

func TestBuildAllTypes(t *testing.T) {
	doc, err := Build(loadAllTypes(t))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"IndexedTypes", "LinkTypes", "OptionalTypes", "RequiredTypes",
		"ReverseType", "ChildEmbeddedType", "ParentEmbeddedType",
	}, doc.Names())

	indexed, ok := doc.Class("IndexedTypes")
	require.True(t, ok)
	assert.Equal(t, "intIndexed", indexed.PrimaryKey)
	assert.True(t, indexed.IsPrimaryKey("intIndexed"))

	optional, _ := doc.Class("OptionalTypes")
	arr, ok := optional.Property("intOptionalArray")
	require.True(t, ok)
	assert.Equal(t, KindList, arr.Kind)
	assert.Equal(t, KindInt, arr.ElementKind)
	assert.False(t, arr.Nullable)
	assert.True(t, arr.ElementNullable)

	child, _ := doc.Class("ChildEmbeddedType")
	assert.True(t, child.Embedded)

	for _, c := range doc.Classes {
		assert.NotEmpty(t, c.ID, c.Name)
		for _, p := range c.Properties {
			assert.NotEmpty(t, p.ID, c.Name+"."+p.Name)
		}
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	first, err := Build(loadAllTypes(t))
	require.NoError(t, err)
	second, err := Build(loadAllTypes(t))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	raw := loadAllTypes(t)
	before := loadAllTypes(t)

	_, err := Build(raw)
	require.NoError(t, err)
	assert.Equal(t, before, raw)
}

func TestBuildDanglingReference(t *testing.T) {
	raw := loadAllTypes(t)
	raw[1].Properties = append(raw[1].Properties, model.RawProperty{
		Name:       "lost",
		Type:       model.TypeObject,
		ObjectType: "Missing",
		Optional:   true,
	})

	doc, err := Build(raw)
	assert.Nil(t, doc)

	v := validationErrors(t, err)
	require.Len(t, v.Errors, 1)
	e := v.Errors[0]
	assert.True(t, errors.Is(e, ErrDanglingReference))
	assert.Equal(t, "LinkTypes", e.Class)
	assert.Equal(t, "lost", e.Property)
	assert.Equal(t, "Missing", e.Target)
}

func TestBuildReportsEveryViolation(t *testing.T) {
	raw := []model.RawClass{
		{
			Name: "A",
			Properties: []model.RawProperty{
				{Name: "x", Type: model.TypeObject, ObjectType: "Missing1"},
				{Name: "y", Type: model.TypeObject, ObjectType: "Missing2", Collection: model.CollectionList},
				{Name: "z", Type: "geo"},
			},
		},
		{
			Name: "B",
			Properties: []model.RawProperty{
				{Name: "id", Type: "int", PrimaryKey: true},
				{Name: "id", Type: "string"},
			},
		},
		{Name: "B"},
	}

	_, err := Build(raw)
	v := validationErrors(t, err)

	assert.Len(t, v.Of(ErrDanglingReference), 2)
	assert.Len(t, v.Of(ErrUnsupportedType), 1)
	assert.Len(t, v.Of(ErrDuplicateName), 2)
	assert.Len(t, v.Errors, 5)

	assert.True(t, errors.Is(err, ErrDanglingReference))
	assert.True(t, errors.Is(err, ErrUnsupportedType))
	assert.False(t, errors.Is(err, ErrMultiplePrimaryKeys))
	assert.Contains(t, err.Error(), "schema has 5 error(s)")
	assert.Contains(t, err.Error(), "A.z: unsupported type")
}

func TestBuildMultiplePrimaryKeys(t *testing.T) {
	raw := []model.RawClass{{
		Name: "Pair",
		Properties: []model.RawProperty{
			{Name: "a", Type: "int", PrimaryKey: true},
			{Name: "b", Type: "int", PrimaryKey: true},
			{Name: "c", Type: "string", PrimaryKey: true},
		},
	}}

	_, err := Build(raw)
	v := validationErrors(t, err)
	require.Len(t, v.Errors, 1)
	assert.True(t, errors.Is(v.Errors[0], ErrMultiplePrimaryKeys))
	assert.Equal(t, "Pair", v.Errors[0].Class)
	assert.Equal(t, "a, b, c", v.Errors[0].Detail)
}

func TestBuildClassLevelAndPropertyLevelKeyAgree(t *testing.T) {
	raw := []model.RawClass{{
		Name:       "Item",
		PrimaryKey: "id",
		Properties: []model.RawProperty{{Name: "id", Type: "string", PrimaryKey: true}},
	}}

	doc, err := Build(raw)
	require.NoError(t, err)
	assert.Equal(t, "id", doc.Classes[0].PrimaryKey)
}

func TestBuildPrimaryKeyViolations(t *testing.T) {
	tests := []struct {
		name  string
		class model.RawClass
		kind  error
	}{
		{
			name: "float key",
			class: model.RawClass{Name: "C", Properties: []model.RawProperty{
				{Name: "k", Type: "float", PrimaryKey: true},
			}},
			kind: ErrInvalidPrimaryKeyType,
		},
		{
			name: "nullable key",
			class: model.RawClass{Name: "C", Properties: []model.RawProperty{
				{Name: "k", Type: "int", Optional: true, PrimaryKey: true},
			}},
			kind: ErrInvalidPrimaryKeyType,
		},
		{
			name: "list key",
			class: model.RawClass{Name: "C", Properties: []model.RawProperty{
				{Name: "k", Type: "int", Collection: model.CollectionList, PrimaryKey: true},
			}},
			kind: ErrInvalidPrimaryKeyType,
		},
		{
			name:  "unknown key",
			class: model.RawClass{Name: "C", PrimaryKey: "nope", Properties: []model.RawProperty{{Name: "k", Type: "int"}}},
			kind:  ErrUnknownPrimaryKey,
		},
		{
			name: "embedded key",
			class: model.RawClass{Name: "C", Embedded: true, Properties: []model.RawProperty{
				{Name: "k", Type: "int", PrimaryKey: true},
			}},
			kind: ErrEmbeddedPrimaryKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build([]model.RawClass{tt.class})
			v := validationErrors(t, err)
			require.Len(t, v.Errors, 1, v.Error())
			assert.True(t, errors.Is(v.Errors[0], tt.kind))
		})
	}
}

func TestBuildUnsupportedKeyReportedOnce(t *testing.T) {
	_, err := Build([]model.RawClass{{Name: "C", Properties: []model.RawProperty{
		{Name: "k", Type: "uuid", PrimaryKey: true},
	}}})
	v := validationErrors(t, err)
	require.Len(t, v.Errors, 1)
	assert.True(t, errors.Is(v.Errors[0], ErrUnsupportedType))
}

func TestBuildInvalidIndex(t *testing.T) {
	_, err := Build([]model.RawClass{{Name: "C", Properties: []model.RawProperty{
		{Name: "f", Type: "float", Indexed: true},
		{Name: "l", Type: "int", Collection: model.CollectionList, Indexed: true},
		{Name: "ok", Type: "objectId", Indexed: true},
	}}})
	v := validationErrors(t, err)
	require.Len(t, v.Errors, 2)
	assert.Equal(t, "f", v.Errors[0].Property)
	assert.Equal(t, "l", v.Errors[1].Property)
	assert.True(t, errors.Is(v.Errors[1], ErrInvalidIndex))
}

func TestBuildItemRoundTripShape(t *testing.T) {
	doc, err := Build([]model.RawClass{{
		Name: "Item",
		Properties: []model.RawProperty{
			{Name: "id", Type: "int", PrimaryKey: true, Indexed: true},
			{Name: "tags", Type: "string", Collection: model.CollectionList, Optional: true},
		},
	}})
	require.NoError(t, err)

	item := doc.Classes[0]
	assert.Equal(t, "id", item.PrimaryKey)
	assert.Equal(t, PropertyDescriptor{ID: PropertyID("Item", "id"), Name: "id", Kind: KindInt, Indexed: true}, item.Properties[0])
	assert.Equal(t, PropertyDescriptor{
		ID: PropertyID("Item", "tags"), Name: "tags", Kind: KindList, ElementKind: KindString, Nullable: true,
	}, item.Properties[1])
	assert.Empty(t, doc.Edges)
}

func TestAssembleDoesNotMutateInput(t *testing.T) {
	in := []ClassDescriptor{{Name: "A", Properties: []PropertyDescriptor{{Name: "x", Kind: KindInt}}}}

	doc, err := Assemble(in)
	require.NoError(t, err)
	assert.Empty(t, in[0].ID)
	assert.Empty(t, in[0].Properties[0].ID)
	assert.Equal(t, ClassID("A"), doc.Classes[0].ID)
}

func TestStableIdentifiers(t *testing.T) {
	assert.Equal(t, ClassID("Item"), ClassID("Item"))
	assert.NotEqual(t, ClassID("Item"), ClassID("Other"))
	assert.NotEqual(t, PropertyID("A", "x"), PropertyID("B", "x"))
	assert.Len(t, ClassID("Item"), 36)
}

func TestBuildAcceptsDeclaredBacklink(t *testing.T) {
	raw := loadAllTypes(t)
	require.Equal(t, []model.RawBacklink{{Name: "linkingObjects", ObjectType: "ReverseType", Property: "links"}}, raw[1].Backlinks)

	doc, err := Build(raw)
	require.NoError(t, err)

	links, _ := doc.Class("LinkTypes")
	_, ok := links.Property("linkingObjects")
	assert.False(t, ok, "backlinks are not stored as properties")

	// the declared backlink shows up as the reverse side of each forward link
	for _, e := range doc.EdgesTo("ReverseType") {
		assert.Equal(t, []PropertyRef{{Class: "ReverseType", Property: "links"}}, e.Reverse, e.Source.String())
	}
}

func TestBuildBrokenBacklinks(t *testing.T) {
	tests := []struct {
		name       string
		backlink   model.RawBacklink
		wantKind   error
		wantDetail string
	}{
		{
			name:       "unknown origin class",
			backlink:   model.RawBacklink{Name: "back", ObjectType: "Missing", Property: "links"},
			wantKind:   ErrDanglingReference,
			wantDetail: "class Missing is not declared",
		},
		{
			name:       "unknown origin property",
			backlink:   model.RawBacklink{Name: "back", ObjectType: "ReverseType", Property: "nope"},
			wantKind:   ErrDanglingReference,
			wantDetail: `ReverseType has no property "nope"`,
		},
		{
			name:       "origin property links elsewhere",
			backlink:   model.RawBacklink{Name: "back", ObjectType: "OptionalTypes", Property: "objectOptional"},
			wantKind:   ErrDanglingReference,
			wantDetail: "OptionalTypes.objectOptional does not link to LinkTypes",
		},
		{
			name:       "origin property is a scalar",
			backlink:   model.RawBacklink{Name: "back", ObjectType: "RequiredTypes", Property: "intRequired"},
			wantKind:   ErrDanglingReference,
			wantDetail: "RequiredTypes.intRequired does not link to LinkTypes",
		},
		{
			name:       "name collides with a property",
			backlink:   model.RawBacklink{Name: "listType", ObjectType: "ReverseType", Property: "links"},
			wantKind:   ErrDuplicateName,
			wantDetail: "property declared more than once",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := loadAllTypes(t)
			raw[1].Backlinks = []model.RawBacklink{tt.backlink}

			_, err := Build(raw)
			v := validationErrors(t, err)
			require.Len(t, v.Errors, 1)
			e := v.Errors[0]
			assert.True(t, errors.Is(e, tt.wantKind))
			assert.Equal(t, "LinkTypes", e.Class)
			assert.Equal(t, tt.backlink.Name, e.Property)
			assert.Equal(t, tt.wantDetail, e.Detail)
		})
	}
}
