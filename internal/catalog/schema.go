// Package catalog provides the schema catalog for validated table metadata.
package catalog

// Schema contains the SQL definitions for the schema catalog (catalog.db).
// The catalog is a SQLite database holding the normalized output of DDL
// analysis: one row per table plus one row per column.

// CreateTablesTableSQL creates the tables table.
const CreateTablesTableSQL = `
CREATE TABLE IF NOT EXISTS tables (
    table_id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    engine TEXT NOT NULL,
    key_type TEXT NOT NULL,
    comment TEXT NOT NULL DEFAULT '',
    fingerprint INTEGER NOT NULL,
    created_at INTEGER NOT NULL
)`

// CreateColumnsTableSQL creates the columns table. Columns are stored in
// declaration order; default_value is NULL both when no default is
// configured and for an explicit null default, so default_set carries the
// tri-state distinction.
const CreateColumnsTableSQL = `
CREATE TABLE IF NOT EXISTS columns (
    table_id TEXT NOT NULL,
    ordinal INTEGER NOT NULL,
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    len INTEGER NOT NULL DEFAULT 0,
    precision INTEGER NOT NULL DEFAULT 0,
    scale INTEGER NOT NULL DEFAULT 0,
    is_key INTEGER NOT NULL,
    agg TEXT NOT NULL DEFAULT '',
    nullable INTEGER NOT NULL,
    default_set INTEGER NOT NULL,
    default_value TEXT,
    comment TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (table_id, ordinal),
    FOREIGN KEY (table_id) REFERENCES tables(table_id)
)`

// CreateColumnsIndexSQL indexes columns by table for schema reads.
const CreateColumnsIndexSQL = `
CREATE INDEX IF NOT EXISTS idx_columns_table ON columns(table_id)`

// AllSchemaSQL returns all schema statements in execution order.
func AllSchemaSQL() []string {
	return []string{
		CreateTablesTableSQL,
		CreateColumnsTableSQL,
		CreateColumnsIndexSQL,
	}
}
