// Package ddl implements analysis of parsed DDL definitions: it validates
// and normalizes column and table definitions into catalog-ready schema
// metadata.
//
// Column clause syntax:
//
//	name type [KEY] [agg_type] [NULL | NOT NULL] [DEFAULT default_value] [COMMENT "..."]
//
// Example:
//
//	id bigint KEY NOT NULL DEFAULT "-1" COMMENT "user id"
//	pv bigint SUM NULL DEFAULT "-1" COMMENT "page visit"
package ddl

import (
	"fmt"

	"github.com/meridiandb/meridian/internal/errors"
	"github.com/meridiandb/meridian/pkg/types"
)

// ColumnDef is a raw column definition produced by the DDL parser. Analyze
// borrows it mutably for one pass: the type length, aggregate presence,
// nullability, and default-value clause may be rewritten during
// normalization.
type ColumnDef struct {
	Name     string
	Type     *types.ScalarType
	IsKey    bool
	Agg      types.AggregateType
	Nullable bool
	Default  types.DefaultValue
	Comment  string
}

// NewColumnDef creates a column definition with no key, aggregate, or
// default clause.
func NewColumnDef(name string, t *types.ScalarType) *ColumnDef {
	return &ColumnDef{
		Name:     name,
		Type:     t,
		Nullable: true,
		Default:  types.NoDefault(),
	}
}

// Analyze validates the definition and produces the normalized column
// record. Rules run in a fixed order and the first violation wins; the error
// text is the user-visible DDL failure. isOlap selects the storage-engine
// restrictions that only apply to OLAP tables.
func (def *ColumnDef) Analyze(isOlap bool) (*types.Column, error) {
	if def.Name == "" || def.Type == nil {
		return nil, errors.NewSchemaError(errors.CodeMissingNameOrType,
			"No column name or column type in column definition.")
	}
	if err := CheckColumnName(def.Name); err != nil {
		return nil, err
	}

	// When a string type length is not assigned in the syntax, it defaults
	// to 1. This must happen before any length-based default-value check.
	if def.Type.Type.IsStringType() && !def.Type.LenAssigned {
		def.Type.Len = 1
	}

	if err := def.Type.Finalize(); err != nil {
		return nil, errors.Wrap(errors.ErrCategoryType, errors.CodeInvalidTypeParams,
			fmt.Sprintf("Invalid column type for %s", def.Name), err)
	}

	// Bitmap and HLL are aggregate-only types: never keys, never bare values.
	if def.Type.Type == types.TypeBitmap || def.Type.Type == types.TypeHLL {
		if def.IsKey {
			return nil, errors.NewSchemaError(errors.CodeKeyTypeConflict,
				"Key column can not set bitmap or hll type:"+def.Name)
		}
		if def.Agg == types.AggNone {
			return nil, errors.NewSchemaError(errors.CodeMissingAggregate,
				"Bitmap and hll type have to use aggregate function"+def.Name)
		}
	}

	// A column is a key column iff IsKey is set. Agg == AggNone does not
	// imply a key column: unique-key tables leave the aggregate implicit.
	if def.Agg != types.AggNone {
		if def.IsKey {
			return nil, errors.NewSchemaError(errors.CodeKeyAggregate,
				"Key column can not set aggregation type: "+def.Name)
		}
		if !def.Agg.CompatibleWith(def.Type.Type) {
			return nil, errors.NewSchemaError(errors.CodeIncompatibleAgg, fmt.Sprintf(
				"Aggregate type %s is not compatible with primitive type %s",
				def.Agg, def.Type.ToSQL()))
		}
	}

	if def.Type.Type == types.TypeFloat || def.Type.Type == types.TypeDouble {
		if isOlap && def.IsKey {
			return nil, errors.NewSchemaError(errors.CodeFloatKey,
				"Float or double can not used as a key, use decimal instead.")
		}
	}

	// HLL and BITMAP columns never hold a user default: the effective
	// default is always the fixed empty sentinel.
	if def.Type.Type == types.TypeHLL {
		if def.Default.IsSet() {
			return nil, errors.NewSchemaError(errors.CodeForcedDefault,
				"Hll type column can not set default value")
		}
		def.Default = types.HLLEmptyDefault()
	}

	if def.Type.Type == types.TypeBitmap {
		if def.Default.IsSet() {
			return nil, errors.NewSchemaError(errors.CodeForcedDefault,
				"Bitmap type column can not set default value")
		}
		def.Default = types.BitmapEmptyDefault()
	}

	// REPLACE_IF_NOT_NULL implies a nullable column; an absent default is
	// promoted to an explicit null default.
	if def.Agg == types.AggReplaceIfNotNull {
		def.Nullable = true
		if !def.Default.IsSet() {
			def.Default = types.NullDefault()
		}
	}

	if !def.Nullable && def.Default.IsNull() {
		return nil, errors.NewSchemaError(errors.CodeNullDefaultConflict,
			"Can not set null default value to non nullable column: "+def.Name)
	}

	if v, ok := def.Default.Value(); ok {
		if err := ValidateDefaultValue(def.Type, v); err != nil {
			return nil, err
		}
	}

	return &types.Column{
		Name:     def.Name,
		Type:     *def.Type,
		IsKey:    def.IsKey,
		Agg:      def.Agg,
		Nullable: def.Nullable,
		Default:  def.Default,
		Comment:  def.Comment,
	}, nil
}
