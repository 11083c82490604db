package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/schemaexport/internal/schema"
)

// TextFormatter formats a document as compact text
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes every class in compact text format
func (f *TextFormatter) Format(doc *schema.Document) error {
	for i := range doc.Classes {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer) // Blank line between classes
		}

		if err := f.formatClass(doc, &doc.Classes[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *TextFormatter) formatClass(doc *schema.Document, c *schema.ClassDescriptor) error {
	header := "CLASS"
	if c.Embedded {
		header = "EMBEDDED CLASS"
	}
	pkStr := ""
	if c.PrimaryKey != "" {
		pkStr = fmt.Sprintf(" (PK: %s)", c.PrimaryKey)
	}
	_, _ = fmt.Fprintf(f.writer, "%s %s%s\n", header, c.Name, pkStr)

	for _, p := range c.Properties {
		parts := append([]string{p.Name + ":", typeLabel(p)}, markers(c, p)...)
		_, _ = fmt.Fprintf(f.writer, "  %s\n", strings.Join(parts, " "))
	}

	// Links
	if edges := doc.EdgesFrom(c.Name); len(edges) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "  LINKS:")
		for _, e := range edges {
			reverse := ""
			if len(e.Reverse) > 0 {
				reverse = fmt.Sprintf(" (reverse: %s)", joinRefs(e.Reverse))
			}
			_, _ = fmt.Fprintf(f.writer, "    %s → %s%s\n", e.Source.Property, e.Target, reverse)
		}
	}

	// Incoming links
	if edges := doc.EdgesTo(c.Name); len(edges) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "  REFERENCED BY:")
		for _, e := range edges {
			_, _ = fmt.Fprintf(f.writer, "    %s\n", e.Source)
		}
	}

	return nil
}
