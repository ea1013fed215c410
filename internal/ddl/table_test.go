package ddl

import (
	"strings"
	"testing"

	"github.com/meridiandb/meridian/internal/errors"
	"github.com/meridiandb/meridian/pkg/types"
)

func keyCol(name string, p types.PrimitiveType) *ColumnDef {
	d := NewColumnDef(name, types.NewScalarType(p))
	d.IsKey = true
	d.Nullable = false
	return d
}

func aggCol(name string, p types.PrimitiveType, agg types.AggregateType) *ColumnDef {
	d := NewColumnDef(name, types.NewScalarType(p))
	d.Agg = agg
	d.Nullable = false
	return d
}

func TestTableDef_AnalyzeAggregateTable(t *testing.T) {
	def := &TableDef{
		Name: "site_visit",
		Columns: []*ColumnDef{
			keyCol("siteid", types.TypeInt),
			keyCol("city", types.TypeSmallInt),
			aggCol("pv", types.TypeBigInt, types.AggSum),
		},
	}

	tbl, err := def.Analyze()
	if err != nil {
		t.Fatalf("Analyze() = %v", err)
	}
	if tbl.Engine != "OLAP" {
		t.Errorf("Engine = %q, want the OLAP default", tbl.Engine)
	}
	if tbl.KeyType != types.KeyAggregate {
		t.Errorf("KeyType = %q, want AGGREGATE (inferred from the SUM column)", tbl.KeyType)
	}
	if tbl.ID == "" {
		t.Error("expected a generated table ID")
	}
	if len(tbl.Columns) != 3 {
		t.Fatalf("len(Columns) = %d", len(tbl.Columns))
	}
}

func TestTableDef_AnalyzeDuplicateDefault(t *testing.T) {
	def := &TableDef{
		Name: "events",
		Columns: []*ColumnDef{
			keyCol("id", types.TypeBigInt),
			NewColumnDef("payload", types.NewStringType(types.TypeVarchar, 1024)),
		},
	}

	tbl, err := def.Analyze()
	if err != nil {
		t.Fatalf("Analyze() = %v", err)
	}
	if tbl.KeyType != types.KeyDuplicate {
		t.Errorf("KeyType = %q, want DUPLICATE when no column aggregates", tbl.KeyType)
	}
}

func TestTableDef_KeyClauseOverridesInlineFlags(t *testing.T) {
	def := &TableDef{
		Name:       "t",
		KeyColumns: []string{"B"},
		Columns: []*ColumnDef{
			keyCol("a", types.TypeInt),
			keyCol("b", types.TypeInt),
		},
	}

	tbl, err := def.Analyze()
	if err != nil {
		t.Fatalf("Analyze() = %v", err)
	}
	if tbl.Columns[0].IsKey {
		t.Error("column a must lose its inline key flag when a KEY clause is present")
	}
	if !tbl.Columns[1].IsKey {
		t.Error("column b named in the KEY clause (case-insensitively) must be a key")
	}
}

func TestTableDef_UnknownKeyColumn(t *testing.T) {
	def := &TableDef{
		Name:       "t",
		KeyColumns: []string{"missing"},
		Columns:    []*ColumnDef{keyCol("a", types.TypeInt)},
	}

	_, err := def.Analyze()
	if errors.GetCode(err) != errors.CodeUnknownKeyColumn {
		t.Fatalf("code = %q, want %q", errors.GetCode(err), errors.CodeUnknownKeyColumn)
	}
	if !strings.Contains(errors.UserMessage(err), "Key column missing does not exist in table t") {
		t.Errorf("message = %q", errors.UserMessage(err))
	}
}

func TestTableDef_UniqueKeyImpliesReplace(t *testing.T) {
	def := &TableDef{
		Name:    "users",
		KeyType: types.KeyUnique,
		Columns: []*ColumnDef{
			keyCol("id", types.TypeBigInt),
			NewColumnDef("name", types.NewStringType(types.TypeVarchar, 64)),
		},
	}

	tbl, err := def.Analyze()
	if err != nil {
		t.Fatalf("Analyze() = %v", err)
	}
	if tbl.Columns[1].Agg != types.AggReplace {
		t.Errorf("Agg = %v, want the implicit REPLACE on a unique-key value column", tbl.Columns[1].Agg)
	}
}

func TestTableDef_AggregateKeyRequiresAggregates(t *testing.T) {
	def := &TableDef{
		Name:    "t",
		KeyType: types.KeyAggregate,
		Columns: []*ColumnDef{
			keyCol("id", types.TypeBigInt),
			NewColumnDef("v", types.NewScalarType(types.TypeBigInt)),
		},
	}

	_, err := def.Analyze()
	if errors.GetCode(err) != errors.CodeMissingAggregate {
		t.Fatalf("code = %q, want %q", errors.GetCode(err), errors.CodeMissingAggregate)
	}
	if !strings.Contains(errors.UserMessage(err), "Value column must specify an aggregate function") {
		t.Errorf("message = %q", errors.UserMessage(err))
	}
}

func TestTableDef_AnalyzeRejections(t *testing.T) {
	tests := []struct {
		name     string
		def      *TableDef
		wantCode string
	}{
		{
			name:     "bad table name",
			def:      &TableDef{Name: "1t", Columns: []*ColumnDef{keyCol("a", types.TypeInt)}},
			wantCode: errors.CodeInvalidName,
		},
		{
			name:     "no columns",
			def:      &TableDef{Name: "t"},
			wantCode: errors.CodeEmptyTable,
		},
		{
			name: "duplicate column names ignore case",
			def: &TableDef{Name: "t", Columns: []*ColumnDef{
				keyCol("id", types.TypeInt),
				keyCol("ID", types.TypeBigInt),
			}},
			wantCode: errors.CodeDuplicateColumn,
		},
		{
			name: "no key column",
			def: &TableDef{Name: "t", Columns: []*ColumnDef{
				NewColumnDef("v", types.NewScalarType(types.TypeBigInt)),
			}},
			wantCode: errors.CodeMissingKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.def.Analyze()
			if got := errors.GetCode(err); got != tt.wantCode {
				t.Errorf("code = %q, want %q", got, tt.wantCode)
			}
		})
	}
}

func TestTableDef_NonOlapEngineSkipsFloatKeyRule(t *testing.T) {
	def := &TableDef{
		Name:   "metrics",
		Engine: "mysql",
		Columns: []*ColumnDef{
			keyCol("score", types.TypeDouble),
		},
	}

	tbl, err := def.Analyze()
	if err != nil {
		t.Fatalf("Analyze() = %v", err)
	}
	if tbl.Engine != "MYSQL" {
		t.Errorf("Engine = %q, want the upper-cased declared engine", tbl.Engine)
	}
}
