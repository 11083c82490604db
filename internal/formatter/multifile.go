package formatter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tordrt/schemaexport/internal/schema"
)

// MultiFileFormatter writes a document to multiple files in a directory
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string // "text" or "markdown"
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, format string) *MultiFileFormatter {
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
	}
}

// Format writes an overview file and one file per class
func (f *MultiFileFormatter) Format(doc *schema.Document) error {
	if f.OutputFormat != formatMarkdown && f.OutputFormat != formatText {
		return fmt.Errorf("unsupported docs format: %q", f.OutputFormat)
	}

	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := f.writeOverview(doc); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	for i := range doc.Classes {
		c := &doc.Classes[i]
		if err := f.writeClassFile(doc, c); err != nil {
			return fmt.Errorf("failed to write class file for %s: %w", c.Name, err)
		}
	}

	return nil
}

func (f *MultiFileFormatter) writeOverview(doc *schema.Document) error {
	file, err := os.Create(filepath.Join(f.OutputDir, "_overview"+f.getFileExtension()))
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	if f.OutputFormat == formatMarkdown {
		f.writeMarkdownOverview(file, doc)
	} else {
		f.writeTextOverview(file, doc)
	}
	return nil
}

func (f *MultiFileFormatter) writeMarkdownOverview(w io.Writer, doc *schema.Document) {
	_, _ = fmt.Fprintf(w, "# Schema Overview\n\n")
	_, _ = fmt.Fprintf(w, "Each class has a corresponding file: `<ClassName>%s`\n\n", f.getFileExtension())
	_, _ = fmt.Fprintf(w, "## Classes\n\n")

	for _, name := range sortedNames(doc) {
		_, _ = fmt.Fprintf(w, "- **%s**", name)
		if targets := linkTargets(doc, name); len(targets) > 0 {
			_, _ = fmt.Fprintf(w, " (links: %s)", strings.Join(targets, ", "))
		}
		_, _ = fmt.Fprintf(w, "\n")
	}
}

func (f *MultiFileFormatter) writeTextOverview(w io.Writer, doc *schema.Document) {
	_, _ = fmt.Fprintf(w, "SCHEMA OVERVIEW\n")
	_, _ = fmt.Fprintf(w, "Each class has a file: <ClassName>%s\n\n", f.getFileExtension())

	for _, name := range sortedNames(doc) {
		_, _ = fmt.Fprintf(w, "%s", name)
		if targets := linkTargets(doc, name); len(targets) > 0 {
			_, _ = fmt.Fprintf(w, " (links: %s)", strings.Join(targets, ","))
		}
		_, _ = fmt.Fprintf(w, "\n")
	}
}

func (f *MultiFileFormatter) writeClassFile(doc *schema.Document, c *schema.ClassDescriptor) error {
	file, err := os.Create(filepath.Join(f.OutputDir, c.Name+f.getFileExtension()))
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	if f.OutputFormat == formatMarkdown {
		return NewMarkdownFormatter(file).FormatClass(doc, c)
	}
	return NewTextFormatter(file).formatClass(doc, c)
}

func sortedNames(doc *schema.Document) []string {
	names := doc.Names()
	sort.Strings(names)
	return names
}

func (f *MultiFileFormatter) getFileExtension() string {
	if f.OutputFormat == formatMarkdown {
		return ".md"
	}
	return ".txt"
}
