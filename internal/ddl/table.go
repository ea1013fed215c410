package ddl

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meridiandb/meridian/internal/errors"
	"github.com/meridiandb/meridian/pkg/types"
)

// DefaultEngine is the storage engine assumed when a CREATE TABLE statement
// does not name one.
const DefaultEngine = "OLAP"

// TableDef is a raw CREATE TABLE definition produced by the DDL parser.
type TableDef struct {
	Name        string
	IfNotExists bool
	Engine      string
	KeyType     types.KeyType
	KeyColumns  []string
	Columns     []*ColumnDef
	Comment     string
}

// Analyze validates the table definition and every column in it, producing
// the catalog-ready schema. Column rules run in declaration order; the first
// violation aborts the pass.
func (def *TableDef) Analyze() (*types.Table, error) {
	if err := CheckTableName(def.Name); err != nil {
		return nil, err
	}
	if len(def.Columns) == 0 {
		return nil, errors.NewSchemaError(errors.CodeEmptyTable,
			"Table must have at least one column: "+def.Name)
	}

	seen := make(map[string]bool, len(def.Columns))
	for _, col := range def.Columns {
		lower := strings.ToLower(col.Name)
		if seen[lower] {
			return nil, errors.NewSchemaError(errors.CodeDuplicateColumn,
				"Duplicate column name: "+col.Name)
		}
		seen[lower] = true
	}

	engine := def.Engine
	if engine == "" {
		engine = DefaultEngine
	}
	isOlap := strings.EqualFold(engine, DefaultEngine)

	if err := def.applyKeyClause(); err != nil {
		return nil, err
	}

	keyType := def.resolveKeyType()

	// Unique-key tables leave the merge semantics implicit: every value
	// column replaces on key collision.
	if keyType == types.KeyUnique {
		for _, col := range def.Columns {
			if !col.IsKey && col.Agg == types.AggNone {
				col.Agg = types.AggReplace
			}
		}
	}

	if keyType == types.KeyAggregate {
		for _, col := range def.Columns {
			if !col.IsKey && col.Agg == types.AggNone {
				return nil, errors.NewSchemaError(errors.CodeMissingAggregate,
					"Value column must specify an aggregate function in an aggregate key table: "+col.Name)
			}
		}
	}

	columns := make([]types.Column, 0, len(def.Columns))
	hasKey := false
	for _, colDef := range def.Columns {
		col, err := colDef.Analyze(isOlap)
		if err != nil {
			return nil, err
		}
		if col.IsKey {
			hasKey = true
		}
		columns = append(columns, *col)
	}

	if !hasKey {
		return nil, errors.NewSchemaError(errors.CodeMissingKey,
			"Table must have at least one key column: "+def.Name)
	}

	return &types.Table{
		ID:        uuid.New().String(),
		Name:      def.Name,
		Engine:    strings.ToUpper(engine),
		KeyType:   keyType,
		Columns:   columns,
		Comment:   def.Comment,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// applyKeyClause marks the columns named in a trailing KEY (...) clause as
// key columns. Columns flagged KEY inline are left untouched when no clause
// is present.
func (def *TableDef) applyKeyClause() error {
	if len(def.KeyColumns) == 0 {
		return nil
	}

	byName := make(map[string]*ColumnDef, len(def.Columns))
	for _, col := range def.Columns {
		byName[strings.ToLower(col.Name)] = col
	}

	for _, col := range def.Columns {
		col.IsKey = false
	}
	for _, name := range def.KeyColumns {
		col, ok := byName[strings.ToLower(name)]
		if !ok {
			return errors.NewSchemaError(errors.CodeUnknownKeyColumn, fmt.Sprintf(
				"Key column %s does not exist in table %s", name, def.Name))
		}
		col.IsKey = true
	}
	return nil
}

// resolveKeyType picks the table key model: an explicit clause wins;
// otherwise a table with any aggregated column is an aggregate-key table
// and everything else is duplicate-key.
func (def *TableDef) resolveKeyType() types.KeyType {
	if def.KeyType != "" {
		return def.KeyType
	}
	for _, col := range def.Columns {
		if col.Agg != types.AggNone {
			return types.KeyAggregate
		}
	}
	return types.KeyDuplicate
}
