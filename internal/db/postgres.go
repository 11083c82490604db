package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const varcharType = "varchar"

// PostgresClient manages the connection to PostgreSQL
type PostgresClient struct {
	conn *pgx.Conn
}

// NewPostgresClient connects and pings the database
func NewPostgresClient(ctx context.Context, connString string) (*PostgresClient, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresClient{conn: conn}, nil
}

// Close closes the database connection
func (c *PostgresClient) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

// PostgresExtractor reads tables of one PostgreSQL schema
type PostgresExtractor struct {
	conn   *pgx.Conn
	schema string
	logger *zap.Logger
}

// NewPostgresExtractor creates an extractor for schemaName ("public" when empty)
func NewPostgresExtractor(client *PostgresClient, schemaName string, logger *zap.Logger) *PostgresExtractor {
	if schemaName == "" {
		schemaName = "public"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresExtractor{
		conn:   client.conn,
		schema: schemaName,
		logger: logger,
	}
}

// ExtractTables extracts the given tables, or every base table of the schema
func (e *PostgresExtractor) ExtractTables(ctx context.Context, tables []string) ([]Table, error) {
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
		e.logger.Debug("extracted table", zap.String("schema", e.schema), zap.String("table", tableName), zap.Int("columns", len(table.Columns)))
		extracted = append(extracted, *table)
	}

	return extracted, nil
}

func (e *PostgresExtractor) getTableNames(ctx context.Context, requestedTables []string) ([]string, error) {
	if len(requestedTables) > 0 {
		return requestedTables, nil
	}

	rows, err := e.conn.Query(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`, e.schema)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (e *PostgresExtractor) extractTable(ctx context.Context, tableName string) (*Table, error) {
	table := &Table{Name: tableName}
	var err error

	if table.Columns, err = e.extractColumns(ctx, tableName); err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	if table.PrimaryKey, err = e.extractPrimaryKey(ctx, tableName); err != nil {
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

// normalizePostgresType maps verbose SQL type names to the short PostgreSQL
// spellings; arrays become "<element>[]"
func normalizePostgresType(dataType, udtName string, charMaxLength *int) string {
	switch dataType {
	case "timestamp with time zone":
		return "timestamptz"
	case "timestamp without time zone":
		return "timestamp"
	case "time with time zone":
		return "timetz"
	case "time without time zone":
		return "time"
	case "character varying":
		if charMaxLength != nil {
			return fmt.Sprintf("varchar(%d)", *charMaxLength)
		}
		return varcharType
	case "character":
		if charMaxLength != nil {
			return fmt.Sprintf("char(%d)", *charMaxLength)
		}
		return "char"
	case "ARRAY":
		// udt_name of an array is the element name prefixed with "_"
		if len(udtName) > 0 && udtName[0] == '_' {
			return normalizeUdtName(udtName[1:]) + "[]"
		}
		return "array"
	case "USER-DEFINED":
		return udtName
	default:
		return dataType
	}
}

func normalizeUdtName(udtName string) string {
	switch udtName {
	case "int4":
		return "integer"
	case "int8":
		return "bigint"
	case "int2":
		return "smallint"
	case "float4":
		return "real"
	case "float8":
		return "double precision"
	case "bool":
		return "boolean"
	default:
		return udtName
	}
}

func (e *PostgresExtractor) extractColumns(ctx context.Context, tableName string) ([]Column, error) {
	rows, err := e.conn.Query(ctx, `
		SELECT column_name, data_type, is_nullable, udt_name, character_maximum_length
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`, e.schema, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []Column
	var userTypes []string

	for rows.Next() {
		var (
			col           Column
			dataType      string
			nullable      string
			udtName       string
			charMaxLength *int
		)
		if err := rows.Scan(&col.Name, &dataType, &nullable, &udtName, &charMaxLength); err != nil {
			return nil, err
		}

		col.Nullable = nullable == "YES"
		col.Type = normalizePostgresType(dataType, udtName, charMaxLength)
		if dataType == "USER-DEFINED" {
			userTypes = append(userTypes, udtName)
		}

		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(userTypes) == 0 {
		return columns, nil
	}

	// User-defined types that are enums map to strings
	enumValues, err := e.extractEnumValuesMap(ctx, userTypes)
	if err != nil {
		return nil, err
	}
	for i := range columns {
		if values, ok := enumValues[columns[i].Type]; ok {
			columns[i].EnumValues = values
		}
	}

	return columns, nil
}

func (e *PostgresExtractor) extractEnumValuesMap(ctx context.Context, typeNames []string) (map[string][]string, error) {
	rows, err := e.conn.Query(ctx, `
		SELECT t.typname, e.enumlabel
		FROM pg_type t
		JOIN pg_enum e ON t.oid = e.enumtypid
		JOIN pg_namespace n ON t.typnamespace = n.oid
		WHERE n.nspname = $1 AND t.typname = ANY($2)
		ORDER BY t.typname, e.enumsortorder
	`, e.schema, typeNames)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]string)
	for rows.Next() {
		var typName, label string
		if err := rows.Scan(&typName, &label); err != nil {
			return nil, err
		}
		result[typName] = append(result[typName], label)
	}

	return result, rows.Err()
}

func (e *PostgresExtractor) extractPrimaryKey(ctx context.Context, tableName string) ([]string, error) {
	rows, err := e.conn.Query(ctx, `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
			AND tc.table_name = kcu.table_name
		WHERE tc.table_schema = $1
			AND tc.table_name = $2
			AND tc.constraint_type = 'PRIMARY KEY'
		ORDER BY kcu.ordinal_position
	`, e.schema, tableName)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (e *PostgresExtractor) extractRelations(ctx context.Context, tableName string) ([]Relation, error) {
	rows, err := e.conn.Query(ctx, `
		SELECT
			tc.constraint_name,
			kcu.column_name,
			ccu.table_name AS foreign_table_name,
			ccu.column_name AS foreign_column_name
		FROM information_schema.table_constraints AS tc
		JOIN information_schema.key_column_usage AS kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage AS ccu
			ON ccu.constraint_name = tc.constraint_name
			AND ccu.table_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
			AND tc.table_schema = $1
			AND tc.table_name = $2
		ORDER BY tc.constraint_name, kcu.ordinal_position
	`, e.schema, tableName)
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

func (e *PostgresExtractor) extractIndexes(ctx context.Context, tableName string) ([]Index, error) {
	rows, err := e.conn.Query(ctx, `
		SELECT
			i.relname AS index_name,
			ix.indisunique AS is_unique,
			array_agg(a.attname ORDER BY array_position(ix.indkey, a.attnum)) AS column_names
		FROM pg_class t
		JOIN pg_index ix ON t.oid = ix.indrelid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
		JOIN pg_namespace n ON n.oid = t.relnamespace
		WHERE t.relkind = 'r'
			AND n.nspname = $1
			AND t.relname = $2
			AND NOT ix.indisprimary
		GROUP BY i.relname, ix.indisunique
		ORDER BY i.relname
	`, e.schema, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []Index
	for rows.Next() {
		var idx Index
		if err := rows.Scan(&idx.Name, &idx.IsUnique, &idx.Columns); err != nil {
			return nil, err
		}
		indexes = append(indexes, idx)
	}

	return indexes, rows.Err()
}
