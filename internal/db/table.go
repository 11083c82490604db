// Package db reads class metadata out of live databases. Relational
// extractors read tables, columns, keys and indexes and convert them to raw
// classes; the Neo4j extractor reads node labels and relationship types.
package db

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/tordrt/schemaexport/internal/model"
	"github.com/tordrt/schemaexport/internal/schema"
)

// Table is one introspected database table
type Table struct {
	Name       string
	Columns    []Column
	Relations  []Relation
	Indexes    []Index
	PrimaryKey []string
}

// Column is one table column
type Column struct {
	Name     string
	Type     string
	Nullable bool
	// EnumValues is set when the column type is an enum
	EnumValues []string
}

// Relation is a foreign key from SourceColumn to TargetTable.TargetColumn.
// Columns of one composite key share the Constraint name.
type Relation struct {
	Constraint   string
	SourceColumn string
	TargetTable  string
	TargetColumn string
}

// Index is a secondary index; primary key indexes are not listed
type Index struct {
	Name     string
	Columns  []string
	IsUnique bool
}

// TableExtractor reads tables from one database. An empty table list means
// every table of the configured schema.
type TableExtractor interface {
	ExtractTables(ctx context.Context, tables []string) ([]Table, error)
}

// TableSupplier adapts a TableExtractor to model.Supplier.
type TableSupplier struct {
	extractor TableExtractor
	dialect   Dialect
	tables    []string
	exclude   []string
	logger    *zap.Logger
}

// NewTableSupplier creates a supplier reading the given tables, minus the
// excluded ones.
func NewTableSupplier(extractor TableExtractor, dialect Dialect, tables, exclude []string, logger *zap.Logger) *TableSupplier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TableSupplier{
		extractor: extractor,
		dialect:   dialect,
		tables:    tables,
		exclude:   exclude,
		logger:    logger,
	}
}

// Classes extracts the tables and converts them to raw classes.
func (s *TableSupplier) Classes(ctx context.Context) ([]model.RawClass, error) {
	tables, err := s.extractor.ExtractTables(ctx, s.tables)
	if err != nil {
		return nil, fmt.Errorf("failed to extract tables: %w", err)
	}

	tables = filterExcludedTables(tables, s.exclude)
	s.logger.Debug("extracted tables",
		zap.Stringer("dialect", s.dialect),
		zap.Int("count", len(tables)),
	)

	return ToRawClasses(tables, s.dialect), nil
}

func filterExcludedTables(tables []Table, excludeList []string) []Table {
	if len(excludeList) == 0 {
		return tables
	}

	excludeSet := make(map[string]bool, len(excludeList))
	for _, name := range excludeList {
		excludeSet[name] = true
	}

	filtered := make([]Table, 0, len(tables))
	for _, t := range tables {
		if !excludeSet[t.Name] {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// ToRawClasses converts tables to raw classes, ordered by table name.
//
// A column carrying a single-column foreign key to a table in the set
// becomes a link to that table. Primary key columns are marked, so a
// composite key surfaces as a multiple primary key violation. Primary key
// columns are never nullable (SQLite reports INTEGER PRIMARY KEY columns as
// nullable). Single-column secondary indexes mark their column indexed when
// its kind can be indexed. Column types that have no
// scalar mapping are passed through unchanged and rejected by the builder.
func ToRawClasses(tables []Table, dialect Dialect) []model.RawClass {
	sorted := append([]Table(nil), tables...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	present := make(map[string]bool, len(sorted))
	for _, t := range sorted {
		present[t.Name] = true
	}

	classes := make([]model.RawClass, 0, len(sorted))
	for _, t := range sorted {
		classes = append(classes, tableClass(t, dialect, present))
	}
	return classes
}

func tableClass(t Table, dialect Dialect, present map[string]bool) model.RawClass {
	keys := make(map[string]bool, len(t.PrimaryKey))
	for _, k := range t.PrimaryKey {
		keys[k] = true
	}

	links := make(map[string]string)
	for _, rel := range singleColumnRelations(t.Relations) {
		if present[rel.TargetTable] && !keys[rel.SourceColumn] {
			links[rel.SourceColumn] = rel.TargetTable
		}
	}

	indexed := make(map[string]bool)
	for _, idx := range t.Indexes {
		if len(idx.Columns) == 1 {
			indexed[idx.Columns[0]] = true
		}
	}

	rc := model.RawClass{
		Name:       t.Name,
		Properties: make([]model.RawProperty, 0, len(t.Columns)),
	}
	for _, col := range t.Columns {
		p := model.RawProperty{
			Name:       col.Name,
			Optional:   col.Nullable && !keys[col.Name],
			PrimaryKey: keys[col.Name],
		}

		if target, ok := links[col.Name]; ok {
			p.Type = model.TypeObject
			p.ObjectType = target
			// Single links are always nullable in the object model.
			p.Optional = true
		} else {
			tag, list := dialect.ScalarTag(col)
			p.Type = tag
			if list {
				p.Collection = model.CollectionList
				p.ElementOptional = true
			}
			if kind, ok := schema.ScalarByName(tag); ok && !list {
				p.Indexed = indexed[col.Name] && kind.IsIndexable()
			}
		}

		rc.Properties = append(rc.Properties, p)
	}
	return rc
}

// singleColumnRelations drops composite foreign keys.
func singleColumnRelations(relations []Relation) []Relation {
	perConstraint := make(map[string]int)
	for _, r := range relations {
		perConstraint[r.Constraint]++
	}

	var out []Relation
	for _, r := range relations {
		if r.Constraint == "" || perConstraint[r.Constraint] == 1 {
			out = append(out, r)
		}
	}
	return out
}

// quoteIdentifier quotes name for use in statements that cannot take
// parameters, such as SQLite pragmas.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
