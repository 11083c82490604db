package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTypeTag(t *testing.T) {
	tests := []struct {
		in     string
		want   TypeTag
		wantOK bool
	}{
		{in: "int", want: TypeTag{Base: "int"}, wantOK: true},
		{in: "string?", want: TypeTag{Base: "string", Optional: true}, wantOK: true},
		{in: "int[]", want: TypeTag{Base: "int", List: true}, wantOK: true},
		{in: "int?[]", want: TypeTag{Base: "int", List: true, ElementOptional: true}, wantOK: true},
		{in: "string[]?", want: TypeTag{Base: "string", List: true, Optional: true}, wantOK: true},
		{in: "date?[]?", want: TypeTag{Base: "date", List: true, Optional: true, ElementOptional: true}, wantOK: true},
		{in: " ReverseType[] ", want: TypeTag{Base: "ReverseType", List: true}, wantOK: true},
		{in: "object id", want: TypeTag{Base: "object id"}, wantOK: true},
		{in: "", wantOK: false},
		{in: "int[][]", wantOK: false},
		{in: "int??", wantOK: false},
		{in: "9lives", wantOK: false},
		{in: "map<string>", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTypeTag(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestTypeTagString(t *testing.T) {
	for _, s := range []string{"int", "string?", "int[]", "int?[]", "string[]?", "date?[]?"} {
		tag, ok := ParseTypeTag(s)
		if !ok {
			t.Fatalf("ParseTypeTag(%q) failed", s)
		}
		if got := tag.String(); got != s {
			t.Errorf("String() = %q, want %q", got, s)
		}
	}
}

func TestTypeTagProperty(t *testing.T) {
	isClass := func(name string) bool { return name == "Item" }

	tag, _ := ParseTypeTag("Item[]")
	p := tag.Property("items", isClass)
	assert.Equal(t, RawProperty{Name: "items", Type: TypeObject, ObjectType: "Item", Collection: CollectionList}, p)

	tag, _ = ParseTypeTag("Missing?")
	p = tag.Property("other", isClass)
	assert.Equal(t, RawProperty{Name: "other", Type: "Missing", Optional: true}, p)
}
