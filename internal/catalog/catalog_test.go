package catalog

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/meridiandb/meridian/internal/errors"
	"github.com/meridiandb/meridian/pkg/types"
)

func newTestCatalog(t *testing.T) *SQLiteCatalog {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "catalog_test_*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })

	catalog, err := NewCatalog(tmpFile.Name())
	if err != nil {
		t.Fatalf("failed to create catalog: %v", err)
	}
	t.Cleanup(func() { catalog.Close() })

	return catalog
}

func testTable(name string) *types.Table {
	return &types.Table{
		ID:      uuid.New().String(),
		Name:    name,
		Engine:  "OLAP",
		KeyType: types.KeyAggregate,
		Columns: []types.Column{
			{
				Name:     "user_id",
				Type:     types.ScalarType{Type: types.TypeBigInt},
				IsKey:    true,
				Nullable: false,
				Default:  types.NoDefault(),
			},
			{
				Name:     "city",
				Type:     types.ScalarType{Type: types.TypeVarchar, Len: 32, LenAssigned: true},
				IsKey:    true,
				Nullable: true,
				Default:  types.NullDefault(),
			},
			{
				Name:     "pv",
				Type:     types.ScalarType{Type: types.TypeBigInt},
				Agg:      types.AggSum,
				Nullable: false,
				Default:  types.ValueDefault("0"),
				Comment:  "page views",
			},
		},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestCatalog_RegisterAndGetTable(t *testing.T) {
	catalog := newTestCatalog(t)
	ctx := context.Background()

	table := testTable("user_activity")
	if err := catalog.RegisterTable(ctx, table); err != nil {
		t.Fatalf("failed to register table: %v", err)
	}

	got, err := catalog.GetTable(ctx, "user_activity")
	if err != nil {
		t.Fatalf("failed to get table: %v", err)
	}

	if got.ID != table.ID {
		t.Errorf("table_id mismatch: got %s, want %s", got.ID, table.ID)
	}
	if got.Engine != "OLAP" {
		t.Errorf("engine mismatch: got %s, want OLAP", got.Engine)
	}
	if got.KeyType != types.KeyAggregate {
		t.Errorf("key_type mismatch: got %s, want %s", got.KeyType, types.KeyAggregate)
	}
	if len(got.Columns) != 3 {
		t.Fatalf("column count mismatch: got %d, want 3", len(got.Columns))
	}

	// The stored schema must render byte-identically to the registered one.
	if got.ToSQL() != table.ToSQL() {
		t.Errorf("round-trip DDL mismatch:\ngot:  %s\nwant: %s", got.ToSQL(), table.ToSQL())
	}
	if got.Fingerprint() != table.Fingerprint() {
		t.Errorf("fingerprint mismatch: got %d, want %d", got.Fingerprint(), table.Fingerprint())
	}
}

func TestCatalog_DefaultTriState(t *testing.T) {
	catalog := newTestCatalog(t)
	ctx := context.Background()

	table := testTable("defaults")
	if err := catalog.RegisterTable(ctx, table); err != nil {
		t.Fatalf("failed to register table: %v", err)
	}

	got, err := catalog.GetTable(ctx, "defaults")
	if err != nil {
		t.Fatalf("failed to get table: %v", err)
	}

	// user_id: no default at all.
	if got.Columns[0].Default.IsSet() {
		t.Error("user_id: expected unset default")
	}
	// city: explicit DEFAULT NULL must survive, distinct from unset.
	if !got.Columns[1].Default.IsSet() || !got.Columns[1].Default.IsNull() {
		t.Error("city: expected explicit null default")
	}
	// pv: explicit value.
	if v, ok := got.Columns[2].Default.Value(); !ok || v != "0" {
		t.Errorf("pv: expected default value %q, got %q (ok=%v)", "0", v, ok)
	}
}

func TestCatalog_RegisterIdempotent(t *testing.T) {
	catalog := newTestCatalog(t)
	ctx := context.Background()

	table := testTable("events")
	if err := catalog.RegisterTable(ctx, table); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	// Same schema again: idempotent no-op, even with a fresh ID.
	again := testTable("events")
	if err := catalog.RegisterTable(ctx, again); err != nil {
		t.Fatalf("idempotent re-register failed: %v", err)
	}

	// Different schema under the same name: conflict.
	conflict := testTable("events")
	conflict.Columns[2].Default = types.ValueDefault("1")
	err := catalog.RegisterTable(ctx, conflict)
	if err == nil {
		t.Fatal("expected conflict error for schema change under same name")
	}
	if errors.GetCode(err) != errors.CodeTableExists {
		t.Errorf("expected code %s, got %s", errors.CodeTableExists, errors.GetCode(err))
	}
}

func TestCatalog_ListAndDrop(t *testing.T) {
	catalog := newTestCatalog(t)
	ctx := context.Background()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := catalog.RegisterTable(ctx, testTable(name)); err != nil {
			t.Fatalf("failed to register %s: %v", name, err)
		}
	}

	names, err := catalog.ListTables(ctx)
	if err != nil {
		t.Fatalf("failed to list tables: %v", err)
	}
	want := []string{"alpha", "mid", "zeta"}
	if len(names) != len(want) {
		t.Fatalf("table count mismatch: got %d, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %s, want %s", i, names[i], want[i])
		}
	}

	if err := catalog.DropTable(ctx, "mid"); err != nil {
		t.Fatalf("failed to drop table: %v", err)
	}

	if _, err := catalog.GetTable(ctx, "mid"); errors.GetCode(err) != errors.CodeTableNotFound {
		t.Errorf("expected TABLE_NOT_FOUND after drop, got %v", err)
	}

	// Dropping again is an error, not a no-op.
	if err := catalog.DropTable(ctx, "mid"); errors.GetCode(err) != errors.CodeTableNotFound {
		t.Errorf("expected TABLE_NOT_FOUND on double drop, got %v", err)
	}
}

func TestCatalog_ShowCreateTable(t *testing.T) {
	catalog := newTestCatalog(t)
	ctx := context.Background()

	table := testTable("render_me")
	if err := catalog.RegisterTable(ctx, table); err != nil {
		t.Fatalf("failed to register table: %v", err)
	}

	ddl, err := catalog.ShowCreateTable(ctx, "render_me")
	if err != nil {
		t.Fatalf("failed to show create table: %v", err)
	}
	if ddl != table.ToSQL() {
		t.Errorf("DDL mismatch:\ngot:  %s\nwant: %s", ddl, table.ToSQL())
	}

	if _, err := catalog.ShowCreateTable(ctx, "nope"); errors.GetCode(err) != errors.CodeTableNotFound {
		t.Errorf("expected TABLE_NOT_FOUND, got %v", err)
	}
}

func TestCatalog_Snapshot(t *testing.T) {
	catalog := newTestCatalog(t)
	ctx := context.Background()

	for _, name := range []string{"b_table", "a_table"} {
		if err := catalog.RegisterTable(ctx, testTable(name)); err != nil {
			t.Fatalf("failed to register %s: %v", name, err)
		}
	}

	tables, err := catalog.Snapshot(ctx)
	if err != nil {
		t.Fatalf("failed to snapshot: %v", err)
	}
	if len(tables) != 2 {
		t.Fatalf("snapshot size mismatch: got %d, want 2", len(tables))
	}
	if tables[0].Name != "a_table" || tables[1].Name != "b_table" {
		t.Errorf("snapshot not ordered by name: %s, %s", tables[0].Name, tables[1].Name)
	}
}
