package db

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteClient manages the connection to a SQLite file
type SQLiteClient struct {
	db *sql.DB
}

// NewSQLiteClient opens and pings the database file
func NewSQLiteClient(ctx context.Context, path string) (*SQLiteClient, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteClient{db: db}, nil
}

// Close closes the database connection
func (c *SQLiteClient) Close() error {
	return c.db.Close()
}

// DB returns the underlying handle
func (c *SQLiteClient) DB() *sql.DB {
	return c.db
}

// SQLiteExtractor reads tables of a SQLite database
type SQLiteExtractor struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteExtractor creates an extractor over client
func NewSQLiteExtractor(client *SQLiteClient, logger *zap.Logger) *SQLiteExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLiteExtractor{db: client.db, logger: logger}
}

// ExtractTables extracts the given tables, or every user table
func (e *SQLiteExtractor) ExtractTables(ctx context.Context, tables []string) ([]Table, error) {
	tableNames := tables
	if len(tableNames) == 0 {
		var err error
		tableNames, err = queryStrings(ctx, e.db, `
			SELECT name
			FROM sqlite_master
			WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
			ORDER BY name
		`)
		if err != nil {
			return nil, fmt.Errorf("failed to get table names: %w", err)
		}
	}

	extracted := make([]Table, 0, len(tableNames))
	for _, tableName := range tableNames {
		table, err := e.extractTable(ctx, tableName)
		if err != nil {
			return nil, fmt.Errorf("failed to extract table %s: %w", tableName, err)
		}
		e.logger.Debug("extracted table", zap.String("table", tableName), zap.Int("columns", len(table.Columns)))
		extracted = append(extracted, *table)
	}

	return extracted, nil
}

func (e *SQLiteExtractor) extractTable(ctx context.Context, tableName string) (*Table, error) {
	table := &Table{Name: tableName}
	var err error

	if table.Columns, table.PrimaryKey, err = e.extractColumns(ctx, tableName); err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	if table.Relations, err = e.extractRelations(ctx, tableName); err != nil {
		return nil, fmt.Errorf("failed to extract relations: %w", err)
	}
	if table.Indexes, err = e.extractIndexes(ctx, tableName); err != nil {
		return nil, fmt.Errorf("failed to extract indexes: %w", err)
	}

	return table, nil
}

// extractColumns reads columns and the primary key, ordered by key position
func (e *SQLiteExtractor) extractColumns(ctx context.Context, tableName string) ([]Column, []string, error) {
	rows, err := e.db.QueryContext(ctx, "PRAGMA table_info("+quoteIdentifier(tableName)+")")
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var columns []Column
	keyOrder := map[int]string{}

	for rows.Next() {
		var (
			cid          int
			name         string
			colType      string
			notNull      int
			defaultValue sql.NullString
			pk           int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultValue, &pk); err != nil {
			return nil, nil, err
		}

		columns = append(columns, Column{Name: name, Type: colType, Nullable: notNull == 0})
		if pk > 0 {
			keyOrder[pk] = name
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	pk := make([]string, 0, len(keyOrder))
	for i := 1; i <= len(keyOrder); i++ {
		pk = append(pk, keyOrder[i])
	}

	return columns, pk, nil
}

func (e *SQLiteExtractor) extractRelations(ctx context.Context, tableName string) ([]Relation, error) {
	rows, err := e.db.QueryContext(ctx, "PRAGMA foreign_key_list("+quoteIdentifier(tableName)+")")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var relations []Relation
	for rows.Next() {
		var (
			id, seq                   int
			targetTable, fromCol      string
			toCol                     sql.NullString
			onUpdate, onDelete, match string
		)
		if err := rows.Scan(&id, &seq, &targetTable, &fromCol, &toCol, &onUpdate, &onDelete, &match); err != nil {
			return nil, err
		}

		relations = append(relations, Relation{
			Constraint:   "fk" + strconv.Itoa(id),
			SourceColumn: fromCol,
			TargetTable:  targetTable,
			TargetColumn: toCol.String,
		})
	}

	return relations, rows.Err()
}

func (e *SQLiteExtractor) extractIndexes(ctx context.Context, tableName string) ([]Index, error) {
	rows, err := e.db.QueryContext(ctx, "PRAGMA index_list("+quoteIdentifier(tableName)+")")
	if err != nil {
		return nil, err
	}

	type indexRow struct {
		name   string
		unique bool
	}
	var list []indexRow

	for rows.Next() {
		var (
			seq             int
			name, origin    string
			unique, partial int
		)
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			rows.Close()
			return nil, err
		}
		// Primary key indexes are described by the key itself
		if origin == "pk" {
			continue
		}
		list = append(list, indexRow{name: name, unique: unique == 1})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	var indexes []Index
	for _, idx := range list {
		columns, err := e.indexColumns(ctx, idx.name)
		if err != nil {
			return nil, err
		}
		if len(columns) > 0 {
			indexes = append(indexes, Index{Name: idx.name, IsUnique: idx.unique, Columns: columns})
		}
	}

	// index_list is ordered by creation; keep name order like the other dialects
	sort.Slice(indexes, func(i, j int) bool { return indexes[i].Name < indexes[j].Name })
	return indexes, nil
}

func (e *SQLiteExtractor) indexColumns(ctx context.Context, indexName string) ([]string, error) {
	rows, err := e.db.QueryContext(ctx, "PRAGMA index_info("+quoteIdentifier(indexName)+")")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var seqno, cid int
		var colName sql.NullString

		if err := rows.Scan(&seqno, &cid, &colName); err != nil {
			return nil, err
		}
		if colName.Valid {
			columns = append(columns, colName.String)
		}
	}

	return columns, rows.Err()
}
