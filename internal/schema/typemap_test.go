package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/schemaexport/internal/model"
)

func TestMap(t *testing.T) {
	tests := []struct {
		name string
		raw  model.RawProperty
		want PropertyDescriptor
	}{
		{
			name: "required scalar",
			raw:  model.RawProperty{Name: "count", Type: "int"},
			want: PropertyDescriptor{Name: "count", Kind: KindInt},
		},
		{
			name: "nullable scalar",
			raw:  model.RawProperty{Name: "title", Type: "string", Optional: true},
			want: PropertyDescriptor{Name: "title", Kind: KindString, Nullable: true},
		},
		{
			name: "indexed date",
			raw:  model.RawProperty{Name: "at", Type: "date", Indexed: true},
			want: PropertyDescriptor{Name: "at", Kind: KindDate, Indexed: true},
		},
		{
			name: "alias spelling",
			raw:  model.RawProperty{Name: "flag", Type: "boolean"},
			want: PropertyDescriptor{Name: "flag", Kind: KindBool},
		},
		{
			name: "object link",
			raw:  model.RawProperty{Name: "owner", Type: model.TypeObject, ObjectType: "Person", Optional: true},
			want: PropertyDescriptor{Name: "owner", Kind: KindObject, Nullable: true, TargetClass: "Person"},
		},
		{
			name: "object list",
			raw:  model.RawProperty{Name: "dogs", Type: model.TypeObject, ObjectType: "Dog", Collection: model.CollectionList},
			want: PropertyDescriptor{Name: "dogs", Kind: KindList, ElementKind: KindObject, TargetClass: "Dog"},
		},
		{
			name: "list of nullable scalars",
			raw:  model.RawProperty{Name: "scores", Type: "double", Collection: model.CollectionList, ElementOptional: true},
			want: PropertyDescriptor{Name: "scores", Kind: KindList, ElementKind: KindDouble, ElementNullable: true},
		},
		{
			name: "nullable list of required scalars",
			raw:  model.RawProperty{Name: "tags", Type: "string", Collection: model.CollectionList, Optional: true},
			want: PropertyDescriptor{Name: "tags", Kind: KindList, ElementKind: KindString, Nullable: true},
		},
		{
			name: "nullable list of nullable scalars",
			raw:  model.RawProperty{Name: "xs", Type: "int", Collection: model.CollectionList, Optional: true, ElementOptional: true},
			want: PropertyDescriptor{Name: "xs", Kind: KindList, ElementKind: KindInt, Nullable: true, ElementNullable: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Map(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapCollectionNullabilityIsIndependent(t *testing.T) {
	for _, container := range []bool{false, true} {
		for _, element := range []bool{false, true} {
			got, err := Map(model.RawProperty{
				Name:            "p",
				Type:            "int",
				Collection:      model.CollectionList,
				Optional:        container,
				ElementOptional: element,
			})
			require.NoError(t, err)
			assert.Equal(t, container, got.Nullable, "container nullability")
			assert.Equal(t, element, got.ElementNullable, "element nullability")
		}
	}
}

func TestMapUnsupported(t *testing.T) {
	tests := []struct {
		name string
		raw  model.RawProperty
	}{
		{name: "unknown tag", raw: model.RawProperty{Name: "p", Type: "point"}},
		{name: "empty tag", raw: model.RawProperty{Name: "p"}},
		{name: "link without target", raw: model.RawProperty{Name: "p", Type: model.TypeObject}},
		{name: "scalar with target", raw: model.RawProperty{Name: "p", Type: "int", ObjectType: "Person"}},
		{name: "element nullability without list", raw: model.RawProperty{Name: "p", Type: "int", ElementOptional: true}},
		{name: "nullable link elements", raw: model.RawProperty{Name: "p", Type: model.TypeObject, ObjectType: "Dog", Collection: model.CollectionList, ElementOptional: true}},
		{name: "unknown wrapper", raw: model.RawProperty{Name: "p", Type: "int", Collection: model.Collection(7)}},
		{name: "wire-only kind", raw: model.RawProperty{Name: "p", Type: "list"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Map(tt.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnsupportedType))

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, "p", ve.Property)
		})
	}
}

func TestKindRegistry(t *testing.T) {
	for _, name := range []string{"bool", "int", "float", "double", "string", "date", "data", "objectId", "decimal128", "object", "list"} {
		k, ok := KindByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, k.String())
	}

	assert.True(t, KindInt.IsKeyable())
	assert.True(t, KindString.IsKeyable())
	assert.False(t, KindDate.IsKeyable())
	assert.True(t, KindDate.IsIndexable())
	assert.False(t, KindFloat.IsIndexable())
	assert.False(t, KindObject.IsScalar())
	assert.Equal(t, "invalid", ValueKind(99).String())

	_, ok := ScalarByName("object")
	assert.False(t, ok)
}
