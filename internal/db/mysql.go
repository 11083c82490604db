package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// MySQLClient manages the connection to MySQL
type MySQLClient struct {
	db *sql.DB
}

// NewMySQLClient opens and pings the database. dsn uses the driver format
// (user:pass@tcp(host:3306)/dbname).
func NewMySQLClient(ctx context.Context, dsn string) (*MySQLClient, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &MySQLClient{db: db}, nil
}

// Close closes the database connection
func (c *MySQLClient) Close() error {
	return c.db.Close()
}

// ParseDatabaseName returns the database named in a driver DSN.
func ParseDatabaseName(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("failed to parse dsn: %w", err)
	}
	if cfg.DBName == "" {
		return "", fmt.Errorf("dsn does not name a database")
	}
	return cfg.DBName, nil
}

// MySQLExtractor reads tables of one MySQL database
type MySQLExtractor struct {
	db         *sql.DB
	schemaName string
	logger     *zap.Logger
}

// NewMySQLExtractor creates an extractor for schemaName
func NewMySQLExtractor(client *MySQLClient, schemaName string, logger *zap.Logger) *MySQLExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MySQLExtractor{
		db:         client.db,
		schemaName: schemaName,
		logger:     logger,
	}
}

// ExtractTables extracts the given tables, or every base table of the database
func (e *MySQLExtractor) ExtractTables(ctx context.Context, tables []string) ([]Table, error) {
	tableNames, err := e.getTableNames(ctx, tables)
	if err != nil {
		return nil, fmt.Errorf("failed to get table names: %w", err)
	}

	extracted := make([]Table, 0, len(tableNames))
	for _, tableName := range tableNames {
		table, err := e.extractTable(ctx, tableName)
		if err != nil {
			return nil, fmt.Errorf("failed to extract table %s: %w", tableName, err)
		}
		e.logger.Debug("extracted table", zap.String("schema", e.schemaName), zap.String("table", tableName), zap.Int("columns", len(table.Columns)))
		extracted = append(extracted, *table)
	}

	return extracted, nil
}

func (e *MySQLExtractor) getTableNames(ctx context.Context, requestedTables []string) ([]string, error) {
	if len(requestedTables) > 0 {
		return requestedTables, nil
	}

	return queryStrings(ctx, e.db, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`, e.schemaName)
}

func (e *MySQLExtractor) extractTable(ctx context.Context, tableName string) (*Table, error) {
	table := &Table{Name: tableName}
	var err error

	if table.Columns, err = e.extractColumns(ctx, tableName); err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	if table.PrimaryKey, err = queryStrings(ctx, e.db, `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ? AND table_name = ? AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position
	`, e.schemaName, tableName); err != nil {
		return nil, fmt.Errorf("failed to extract primary key: %w", err)
	}
	if table.Relations, err = e.extractRelations(ctx, tableName); err != nil {
		return nil, fmt.Errorf("failed to extract relations: %w", err)
	}
	if table.Indexes, err = e.extractIndexes(ctx, tableName); err != nil {
		return nil, fmt.Errorf("failed to extract indexes: %w", err)
	}

	return table, nil
}

func (e *MySQLExtractor) extractColumns(ctx context.Context, tableName string) ([]Column, error) {
	rows, err := e.db.QueryContext(ctx, `
		SELECT column_name, column_type, is_nullable, data_type
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position
	`, e.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var col Column
		var nullable, dataType string

		if err := rows.Scan(&col.Name, &col.Type, &nullable, &dataType); err != nil {
			return nil, err
		}
		col.Nullable = nullable == "YES"

		if dataType == "enum" {
			values, err := parseEnumValues(col.Type)
			if err != nil {
				return nil, err
			}
			col.EnumValues = values
		}

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

// parseEnumValues reads the values of a column type such as
// "enum('small','large')".
func parseEnumValues(columnType string) ([]string, error) {
	start := strings.Index(columnType, "(")
	end := strings.LastIndex(columnType, ")")
	if start == -1 || end == -1 || start >= end {
		return nil, fmt.Errorf("invalid enum type format: %s", columnType)
	}

	var values []string
	for _, part := range strings.Split(columnType[start+1:end], ",") {
		part = strings.TrimSpace(part)
		if len(part) >= 2 && part[0] == '\'' && part[len(part)-1] == '\'' {
			part = part[1 : len(part)-1]
		}
		values = append(values, part)
	}

	return values, nil
}

func (e *MySQLExtractor) extractRelations(ctx context.Context, tableName string) ([]Relation, error) {
	rows, err := e.db.QueryContext(ctx, `
		SELECT constraint_name, column_name, referenced_table_name, referenced_column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ?
			AND table_name = ?
			AND referenced_table_name IS NOT NULL
		ORDER BY constraint_name, ordinal_position
	`, e.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var relations []Relation
	for rows.Next() {
		var rel Relation
		if err := rows.Scan(&rel.Constraint, &rel.SourceColumn, &rel.TargetTable, &rel.TargetColumn); err != nil {
			return nil, err
		}
		relations = append(relations, rel)
	}

	return relations, rows.Err()
}

func (e *MySQLExtractor) extractIndexes(ctx context.Context, tableName string) ([]Index, error) {
	rows, err := e.db.QueryContext(ctx, `
		SELECT
			index_name,
			non_unique = 0 AS is_unique,
			GROUP_CONCAT(column_name ORDER BY seq_in_index) AS column_names
		FROM information_schema.statistics
		WHERE table_schema = ?
			AND table_name = ?
			AND index_name != 'PRIMARY'
		GROUP BY index_name, non_unique
		ORDER BY index_name
	`, e.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []Index
	for rows.Next() {
		var idx Index
		var columnNames string

		if err := rows.Scan(&idx.Name, &idx.IsUnique, &columnNames); err != nil {
			return nil, err
		}
		idx.Columns = strings.Split(columnNames, ",")

		indexes = append(indexes, idx)
	}

	return indexes, rows.Err()
}

// queryStrings runs a query returning one string column.
func queryStrings(ctx context.Context, db *sql.DB, query string, args ...any) ([]string, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}

	return out, rows.Err()
}
