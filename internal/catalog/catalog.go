package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/meridiandb/meridian/internal/errors"
	"github.com/meridiandb/meridian/pkg/types"
)

// Catalog manages validated table schemas in catalog.db.
type Catalog interface {
	// RegisterTable stores a validated table schema. Registration is
	// idempotent for an identical schema: re-registering a table whose
	// fingerprint matches the stored one succeeds without change, while a
	// name collision with a different schema fails.
	RegisterTable(ctx context.Context, table *types.Table) error

	// GetTable retrieves a table schema by name.
	GetTable(ctx context.Context, name string) (*types.Table, error)

	// ListTables returns the names of all registered tables.
	ListTables(ctx context.Context) ([]string, error)

	// DropTable removes a table and its columns.
	DropTable(ctx context.Context, name string) error

	// ShowCreateTable renders the canonical DDL of a stored table.
	ShowCreateTable(ctx context.Context, name string) (string, error)

	// Snapshot returns every registered table, ordered by name. Used for
	// schema export.
	Snapshot(ctx context.Context) ([]*types.Table, error)

	// Close closes the catalog database connections.
	Close() error
}

// SQLiteCatalog implements Catalog using SQLite.
type SQLiteCatalog struct {
	db     *sql.DB // Write connection (single writer)
	readDB *sql.DB // Read connection pool (concurrent readers)
	dbPath string
	mu     sync.Mutex // Write-only lock (reads don't need this)
}

// NewCatalog creates a new SQLite-based catalog.
func NewCatalog(dbPath string) (*SQLiteCatalog, error) {
	// Write connection: single writer with WAL mode
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // Single writer
	db.SetMaxIdleConns(1)

	// Read connection pool: concurrent readers
	readDB, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: failed to open read database: %w", err)
	}
	readDB.SetMaxOpenConns(4)
	readDB.SetMaxIdleConns(4)
	readDB.SetConnMaxLifetime(5 * time.Minute)

	catalog := &SQLiteCatalog{
		db:     db,
		readDB: readDB,
		dbPath: dbPath,
	}

	if err := catalog.initSchema(); err != nil {
		readDB.Close()
		db.Close()
		return nil, fmt.Errorf("catalog: failed to initialize schema: %w", err)
	}

	return catalog, nil
}

// initSchema creates all required tables and indexes.
func (c *SQLiteCatalog) initSchema() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, stmt := range AllSchemaSQL() {
		if _, err := c.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

// RegisterTable stores a validated table schema.
func (c *SQLiteCatalog) RegisterTable(ctx context.Context, table *types.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Idempotency check by name + fingerprint.
	var existingFP int64
	err := c.db.QueryRowContext(ctx,
		"SELECT fingerprint FROM tables WHERE name = ?", table.Name,
	).Scan(&existingFP)
	if err == nil {
		if uint64(existingFP) == table.Fingerprint() {
			return nil
		}
		return errors.NewCatalogError(errors.CodeTableExists,
			"Table already exists with a different schema: "+table.Name, nil)
	}
	if err != sql.ErrNoRows {
		return errors.NewCatalogError(errors.CodeCatalogIO,
			"failed to check existing table", err)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewCatalogError(errors.CodeCatalogIO, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tables (table_id, name, engine, key_type, comment, fingerprint, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		table.ID, table.Name, table.Engine, string(table.KeyType),
		table.Comment, int64(table.Fingerprint()), table.CreatedAt.Unix(),
	)
	if err != nil {
		return errors.NewCatalogError(errors.CodeCatalogIO, "failed to insert table", err)
	}

	for i := range table.Columns {
		col := &table.Columns[i]
		var defaultValue *string
		if v, ok := col.Default.Value(); ok {
			defaultValue = &v
		}
		agg := ""
		if col.Agg != types.AggNone {
			agg = col.Agg.String()
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO columns (
				table_id, ordinal, name, type, len, precision, scale,
				is_key, agg, nullable, default_set, default_value, comment
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			table.ID, i, col.Name, col.Type.Type.String(),
			col.Type.Len, col.Type.Precision, col.Type.Scale,
			boolToInt(col.IsKey), agg, boolToInt(col.Nullable),
			boolToInt(col.Default.IsSet()), defaultValue, col.Comment,
		)
		if err != nil {
			return errors.NewCatalogError(errors.CodeCatalogIO,
				"failed to insert column "+col.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewCatalogError(errors.CodeCatalogIO, "failed to commit transaction", err)
	}

	return nil
}

// GetTable retrieves a table schema by name.
func (c *SQLiteCatalog) GetTable(ctx context.Context, name string) (*types.Table, error) {
	row := c.readDB.QueryRowContext(ctx, `
		SELECT table_id, name, engine, key_type, comment, created_at
		FROM tables WHERE name = ?`, name)

	var table types.Table
	var keyType string
	var createdAt int64
	err := row.Scan(&table.ID, &table.Name, &table.Engine, &keyType, &table.Comment, &createdAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewCatalogError(errors.CodeTableNotFound,
			"Unknown table: "+name, nil)
	}
	if err != nil {
		return nil, errors.NewCatalogError(errors.CodeCatalogIO, "failed to read table", err)
	}
	table.KeyType = types.KeyType(keyType)
	table.CreatedAt = time.Unix(createdAt, 0).UTC()

	columns, err := c.readColumns(ctx, table.ID)
	if err != nil {
		return nil, err
	}
	table.Columns = columns

	return &table, nil
}

// readColumns loads a table's columns in declaration order.
func (c *SQLiteCatalog) readColumns(ctx context.Context, tableID string) ([]types.Column, error) {
	rows, err := c.readDB.QueryContext(ctx, `
		SELECT name, type, len, precision, scale, is_key, agg, nullable,
			default_set, default_value, comment
		FROM columns WHERE table_id = ? ORDER BY ordinal`, tableID)
	if err != nil {
		return nil, errors.NewCatalogError(errors.CodeCatalogIO, "failed to read columns", err)
	}
	defer rows.Close()

	var columns []types.Column
	for rows.Next() {
		var col types.Column
		var typeName, agg string
		var isKey, nullable, defaultSet int
		var defaultValue *string

		err := rows.Scan(&col.Name, &typeName, &col.Type.Len, &col.Type.Precision,
			&col.Type.Scale, &isKey, &agg, &nullable, &defaultSet, &defaultValue, &col.Comment)
		if err != nil {
			return nil, errors.NewCatalogError(errors.CodeCatalogIO, "failed to scan column", err)
		}

		col.Type.Type = types.ParsePrimitiveType(typeName)
		col.IsKey = isKey != 0
		col.Nullable = nullable != 0
		if agg != "" {
			col.Agg = types.ParseAggregateType(agg)
		}
		switch {
		case defaultSet != 0 && defaultValue != nil:
			col.Default = types.ValueDefault(*defaultValue)
		case defaultSet != 0:
			col.Default = types.NullDefault()
		default:
			col.Default = types.NoDefault()
		}

		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewCatalogError(errors.CodeCatalogIO, "failed to iterate columns", err)
	}

	return columns, nil
}

// ListTables returns the names of all registered tables.
func (c *SQLiteCatalog) ListTables(ctx context.Context) ([]string, error) {
	rows, err := c.readDB.QueryContext(ctx, "SELECT name FROM tables ORDER BY name")
	if err != nil {
		return nil, errors.NewCatalogError(errors.CodeCatalogIO, "failed to list tables", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.NewCatalogError(errors.CodeCatalogIO, "failed to scan table name", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DropTable removes a table and its columns.
func (c *SQLiteCatalog) DropTable(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var tableID string
	err := c.db.QueryRowContext(ctx, "SELECT table_id FROM tables WHERE name = ?", name).Scan(&tableID)
	if err == sql.ErrNoRows {
		return errors.NewCatalogError(errors.CodeTableNotFound, "Unknown table: "+name, nil)
	}
	if err != nil {
		return errors.NewCatalogError(errors.CodeCatalogIO, "failed to find table", err)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewCatalogError(errors.CodeCatalogIO, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM columns WHERE table_id = ?", tableID); err != nil {
		return errors.NewCatalogError(errors.CodeCatalogIO, "failed to delete columns", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM tables WHERE table_id = ?", tableID); err != nil {
		return errors.NewCatalogError(errors.CodeCatalogIO, "failed to delete table", err)
	}

	if err := tx.Commit(); err != nil {
		return errors.NewCatalogError(errors.CodeCatalogIO, "failed to commit transaction", err)
	}
	return nil
}

// ShowCreateTable renders the canonical DDL of a stored table.
func (c *SQLiteCatalog) ShowCreateTable(ctx context.Context, name string) (string, error) {
	table, err := c.GetTable(ctx, name)
	if err != nil {
		return "", err
	}
	return table.ToSQL(), nil
}

// Snapshot returns every registered table, ordered by name.
func (c *SQLiteCatalog) Snapshot(ctx context.Context) ([]*types.Table, error) {
	names, err := c.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	tables := make([]*types.Table, 0, len(names))
	for _, name := range names {
		table, err := c.GetTable(ctx, name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	return tables, nil
}

// Close closes the catalog database connections.
func (c *SQLiteCatalog) Close() error {
	// Close read connection first, then write connection
	if err := c.readDB.Close(); err != nil {
		c.db.Close()
		return err
	}
	return c.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
