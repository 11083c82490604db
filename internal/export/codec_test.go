package export

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/schemaexport/internal/model"
	"github.com/tordrt/schemaexport/internal/schema"
)

var documentCmp = []cmp.Option{
	cmpopts.IgnoreUnexported(schema.Document{}),
	cmpopts.EquateEmpty(),
}

func allTypes(t *testing.T) *schema.Document {
	t.Helper()

	data, err := os.ReadFile("../../testdata/alltypes.yaml")
	require.NoError(t, err)
	decls, err := model.DecodeDeclarations(data)
	require.NoError(t, err)
	doc, err := schema.Build(model.Normalize(decls))
	require.NoError(t, err)
	return doc
}

func itemDocument(t *testing.T) *schema.Document {
	t.Helper()

	doc, err := schema.Build([]model.RawClass{{
		Name: "Item",
		Properties: []model.RawProperty{
			{Name: "id", Type: "int", PrimaryKey: true, Indexed: true},
			{Name: "tags", Type: "string", Collection: model.CollectionList, Optional: true},
		},
	}})
	require.NoError(t, err)
	return doc
}

func TestRoundTrip(t *testing.T) {
	docs := map[string]func(*testing.T) *schema.Document{
		"alltypes": allTypes,
		"item":     itemDocument,
	}

	for name, build := range docs {
		for _, format := range []Format{FormatJSON, FormatYAML} {
			t.Run(name+"/"+string(format), func(t *testing.T) {
				doc := build(t)

				data, err := Serialize(doc, format)
				require.NoError(t, err)

				got, err := Deserialize(data, format)
				require.NoError(t, err)

				if diff := cmp.Diff(doc, got, documentCmp...); diff != "" {
					t.Errorf("round trip mismatch (-want +got):\n%s", diff)
				}
			})
		}
	}
}

func TestRoundTripItem(t *testing.T) {
	data, err := Serialize(itemDocument(t), FormatJSON)
	require.NoError(t, err)

	doc, err := Deserialize(data, FormatJSON)
	require.NoError(t, err)

	require.Len(t, doc.Classes, 1)
	item := doc.Classes[0]
	assert.Equal(t, "id", item.PrimaryKey)

	id, _ := item.Property("id")
	assert.Equal(t, schema.KindInt, id.Kind)
	assert.True(t, id.Indexed)
	assert.False(t, id.Nullable)

	tags, _ := item.Property("tags")
	assert.Equal(t, schema.KindList, tags.Kind)
	assert.Equal(t, schema.KindString, tags.ElementKind)
	assert.True(t, tags.Nullable)
	assert.False(t, tags.ElementNullable)

	assert.Empty(t, doc.Edges)
}

func TestRoundTripRecomputesEdges(t *testing.T) {
	doc := allTypes(t)
	data, err := Serialize(doc, FormatYAML)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "reverse")

	got, err := Deserialize(data, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, doc.Edges, got.Edges)
	assert.NotEmpty(t, got.Edges)
}

func TestSerializeIsStable(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML} {
		a, err := Serialize(allTypes(t), format)
		require.NoError(t, err)
		b, err := Serialize(allTypes(t), format)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(a, b), "format %s", format)
	}
}

func TestSerializeKeepsDeclarationOrder(t *testing.T) {
	data, err := Serialize(itemDocument(t), FormatJSON)
	require.NoError(t, err)

	s := string(data)
	assert.True(t, strings.HasPrefix(s, "{\n  \"formatVersion\": 1,"), s)
	assert.Less(t, strings.Index(s, `"name": "id"`), strings.Index(s, `"name": "tags"`))
	assert.Less(t, strings.Index(s, `"type": "list"`), strings.Index(s, `"elementType": "string"`))
}

func TestDeserializeTruncated(t *testing.T) {
	data, err := Serialize(itemDocument(t), FormatJSON)
	require.NoError(t, err)

	truncated := data[:len(data)/2]
	_, err = Deserialize(truncated, FormatJSON)
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Greater(t, pe.Offset, int64(0))
	assert.Contains(t, pe.Error(), "offset")
}

func TestDeserializeErrors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
		field  string
		is     error
	}{
		{
			name:   "missing version",
			format: FormatJSON,
			input:  `{"classes": []}`,
			field:  "formatVersion",
			is:     ErrMissingVersion,
		},
		{
			name:   "future version",
			format: FormatYAML,
			input:  "formatVersion: 2\nclasses: []\n",
			field:  "formatVersion",
			is:     ErrUnsupportedVersion,
		},
		{
			name:   "unknown type",
			format: FormatYAML,
			input:  "formatVersion: 1\nclasses:\n  - name: A\n    properties:\n      - name: p\n        type: point\n",
			field:  "classes[0].properties[0].type",
		},
		{
			name:   "list without element",
			format: FormatJSON,
			input:  `{"formatVersion": 1, "classes": [{"name": "A", "properties": [{"name": "p", "type": "list"}]}]}`,
			field:  "classes[0].properties[0].elementType",
		},
		{
			name:   "link without target",
			format: FormatJSON,
			input:  `{"formatVersion": 1, "classes": [{"name": "A", "properties": [{"name": "p", "type": "object"}]}]}`,
			field:  "classes[0].properties[0].objectType",
		},
		{
			name:   "dangling link",
			format: FormatJSON,
			input:  `{"formatVersion": 1, "classes": [{"name": "A", "properties": [{"name": "p", "type": "object", "objectType": "B", "optional": true}]}]}`,
			field:  "classes",
			is:     schema.ErrDanglingReference,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Deserialize([]byte(tt.input), tt.format)
			assert.Nil(t, doc)

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.field, pe.Field)
			if tt.is != nil {
				assert.True(t, errors.Is(err, tt.is), err.Error())
			}
		})
	}
}

func TestDeserializeIgnoresUnknownFields(t *testing.T) {
	input := `{"formatVersion": 1, "generator": "x", "classes": [{"name": "A", "color": "red", "properties": [{"name": "n", "type": "int", "optional": false}]}]}`

	doc, err := Deserialize([]byte(input), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, doc.Names())
}

func TestDeserializeYAMLSyntaxLine(t *testing.T) {
	_, err := Deserialize([]byte("formatVersion: 1\nclasses:\n  - name: [\n"), FormatYAML)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Greater(t, pe.Line, 0)
}

func TestDetectAndIsDocument(t *testing.T) {
	data, err := Serialize(itemDocument(t), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, Detect(data))
	assert.True(t, IsDocument(data))

	data, err = Serialize(itemDocument(t), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, Detect(data))
	assert.True(t, IsDocument(data))

	assert.False(t, IsDocument([]byte("classes:\n  - name: A\n")))
	assert.False(t, IsDocument([]byte("- name: A\n")))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
