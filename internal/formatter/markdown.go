package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/schemaexport/internal/schema"
)

// MarkdownFormatter formats a document as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the document in markdown format
func (f *MarkdownFormatter) Format(doc *schema.Document) error {
	_, _ = fmt.Fprintln(f.writer, "# Object Schema")
	_, _ = fmt.Fprintln(f.writer)

	for i := range doc.Classes {
		if err := f.FormatClass(doc, &doc.Classes[i]); err != nil {
			return err
		}
	}
	return nil
}

// FormatClass formats a single class (exported for use by multifile formatter)
func (f *MarkdownFormatter) FormatClass(doc *schema.Document, c *schema.ClassDescriptor) error {
	if c.Embedded {
		_, _ = fmt.Fprintf(f.writer, "## %s (embedded)\n\n", c.Name)
	} else {
		_, _ = fmt.Fprintf(f.writer, "## %s\n\n", c.Name)
	}

	_, _ = fmt.Fprintln(f.writer, "### Properties")
	_, _ = fmt.Fprintln(f.writer)

	if len(c.Properties) == 0 {
		_, _ = fmt.Fprintln(f.writer, "_none_")
	}
	for _, p := range c.Properties {
		if m := markers(c, p); len(m) > 0 {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s, %s\n", p.Name, typeLabel(p), strings.Join(m, ", "))
		} else {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s\n", p.Name, typeLabel(p))
		}
	}
	_, _ = fmt.Fprintln(f.writer)

	if edges := doc.EdgesFrom(c.Name); len(edges) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### Links")
		_, _ = fmt.Fprintln(f.writer)
		for _, e := range edges {
			if len(e.Reverse) > 0 {
				_, _ = fmt.Fprintf(f.writer, "- %s → %s (reverse: %s)\n", e.Source.Property, e.Target, joinRefs(e.Reverse))
			} else {
				_, _ = fmt.Fprintf(f.writer, "- %s → %s\n", e.Source.Property, e.Target)
			}
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	if edges := doc.EdgesTo(c.Name); len(edges) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### Referenced by")
		_, _ = fmt.Fprintln(f.writer)
		for _, e := range edges {
			_, _ = fmt.Fprintf(f.writer, "- %s\n", e.Source)
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	return nil
}
