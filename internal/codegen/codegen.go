// Package codegen turns a schema document into model class sources for the
// object store SDKs: JavaScript, TypeScript, Swift, Kotlin, Java and C#.
//
// JavaScript, TypeScript and Swift produce a single "<name>-model" file
// holding every class. Kotlin, Java and C# produce one file per class.
// Reverse links are not part of the document and are never generated.
package codegen

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tordrt/schemaexport/internal/schema"
)

// ErrUnknownLanguage is returned for a language without a generator
var ErrUnknownLanguage = errors.New("unknown language")

// Language names a target SDK
type Language string

const (
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	Swift      Language = "swift"
	Kotlin     Language = "kotlin"
	Java       Language = "java"
	CSharp     Language = "csharp"
)

// File is one generated source file
type File struct {
	// Name is relative to the output directory, e.g. "Person.kt"
	Name    string
	Content []byte
}

type generateFunc func(doc *schema.Document, name string) []File

var generators = map[Language]generateFunc{
	JavaScript: generateJavaScript,
	TypeScript: generateTypeScript,
	Swift:      generateSwift,
	Kotlin:     generateKotlin,
	Java:       generateJava,
	CSharp:     generateCSharp,
}

// aliases accepted by ParseLanguage besides the canonical names
var aliases = map[string]Language{
	"js":     JavaScript,
	"ts":     TypeScript,
	"kt":     Kotlin,
	"cs":     CSharp,
	"c#":     CSharp,
	"dotnet": CSharp,
}

// Languages returns the supported languages in name order.
func Languages() []Language {
	langs := make([]Language, 0, len(generators))
	for l := range generators {
		langs = append(langs, l)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}

// ParseLanguage resolves a language name or common alias, case-insensitively.
func ParseLanguage(s string) (Language, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if _, ok := generators[Language(key)]; ok {
		return Language(key), nil
	}
	if l, ok := aliases[key]; ok {
		return l, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, s)
}

// Generate produces the model sources of doc for lang. name is the base of
// single-file outputs and defaults to "default".
func Generate(lang string, doc *schema.Document, name string) ([]File, error) {
	l, err := ParseLanguage(lang)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = "default"
	}
	return generators[l](doc, name), nil
}

// WriteFiles writes files below dir, creating it when missing.
func WriteFiles(dir string, files []File) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, f := range files {
		path := filepath.Join(dir, f.Name)
		if err := os.WriteFile(path, f.Content, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}

// optional is nullability as the SDKs see it: the value itself for single
// properties and the elements for lists.
func optional(p schema.PropertyDescriptor) bool {
	if p.IsCollection() {
		return p.ElementNullable
	}
	return p.Nullable
}

// baseName is the element kind name, or the target class of a link.
func baseName(p schema.PropertyDescriptor) string {
	if p.IsLink() {
		return p.TargetClass
	}
	return p.ValueKind().String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// importSet collects import lines once each
type importSet map[string]bool

func (s importSet) add(line string) {
	s[line] = true
}

func (s importSet) sorted() []string {
	lines := make([]string, 0, len(s))
	for l := range s {
		lines = append(lines, l)
	}
	sort.Strings(lines)
	return lines
}
