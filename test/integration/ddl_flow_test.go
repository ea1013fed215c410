// Package integration provides end-to-end integration tests for Meridian.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	apihttp "github.com/meridiandb/meridian/internal/api/http"
	"github.com/meridiandb/meridian/internal/catalog"
	"github.com/meridiandb/meridian/internal/observability"
	"github.com/meridiandb/meridian/internal/snapshot"
	"github.com/meridiandb/meridian/internal/storage"
)

type testEnv struct {
	catalog catalog.Catalog
	store   *storage.LocalStorage
	handler http.Handler
	tables  http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	tempDir := t.TempDir()

	store, err := storage.NewLocalStorage(filepath.Join(tempDir, "objects"))
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	cat, err := catalog.NewCatalog(filepath.Join(tempDir, "catalog.db"))
	if err != nil {
		t.Fatalf("failed to create catalog: %v", err)
	}
	t.Cleanup(func() { cat.Close() })

	stats := observability.NewDDLStats()
	mw := apihttp.DefaultMiddleware()

	return &testEnv{
		catalog: cat,
		store:   store,
		handler: mw(apihttp.NewDDLHandler(cat, stats, "olap", 4)),
		tables:  mw(apihttp.NewTablesHandler(cat)),
	}
}

func (e *testEnv) ddl(t *testing.T, sql string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(apihttp.DDLRequest{SQL: sql})
	req := httptest.NewRequest(http.MethodPost, "/v1/ddl", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// TestDDLFlow drives the full path: parse, analyze, register, reflect.
func TestDDLFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.ddl(t, `
		CREATE TABLE site_visit (
			siteid INT DEFAULT "10",
			city SMALLINT,
			pv BIGINT SUM DEFAULT "0"
		) AGGREGATE KEY (siteid, city);

		CREATE TABLE user_profile (
			user_id BIGINT KEY NOT NULL,
			name varchar(64)
		) UNIQUE KEY (user_id);
	`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp apihttp.DDLResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("len(Results) = %d", len(resp.Results))
	}

	show := env.ddl(t, "SHOW CREATE TABLE site_visit")
	if show.Code != http.StatusOK {
		t.Fatalf("show status = %d, body = %s", show.Code, show.Body.String())
	}
	var showResp apihttp.DDLResponse
	if err := json.Unmarshal(show.Body.Bytes(), &showResp); err != nil {
		t.Fatalf("failed to decode show response: %v", err)
	}
	ddlText := showResp.Results[0].DDL
	if !bytes.Contains([]byte(ddlText), []byte("AGGREGATE KEY (`siteid`, `city`)")) {
		t.Errorf("unexpected DDL text:\n%s", ddlText)
	}

	// The listing endpoint sees both tables.
	req := httptest.NewRequest(http.MethodGet, "/v1/tables", nil)
	rec = httptest.NewRecorder()
	env.tables.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list apihttp.TableListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("failed to decode listing: %v", err)
	}
	names := list.Tables
	if len(names) != 2 || names[0] != "site_visit" || names[1] != "user_profile" {
		t.Errorf("names = %v", names)
	}
}

// TestDDLFlow_BatchRollbackSemantics verifies that a batch with a bad
// statement applies nothing.
func TestDDLFlow_BatchRollbackSemantics(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	rec := env.ddl(t, `
		CREATE TABLE good (id BIGINT KEY);
		CREATE TABLE bad (score FLOAT KEY);
	`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var errResp apihttp.DDLErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	if errResp.StatementIndex != 1 {
		t.Errorf("StatementIndex = %d, want 1", errResp.StatementIndex)
	}

	// The valid statement before the failure must not have been applied.
	if names, err := env.catalog.ListTables(ctx); err != nil || len(names) != 0 {
		t.Errorf("ListTables = %v, %v; want an empty catalog", names, err)
	}
}

// TestSnapshotRoundTrip exports the catalog through the snapshot layer and
// restores it into a fresh catalog, checking the reflected DDL survives.
func TestSnapshotRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	rec := env.ddl(t, `
		CREATE TABLE events (
			id BIGINT KEY NOT NULL DEFAULT "-1",
			note varchar(32) REPLACE NULL DEFAULT NULL,
			uv HLL HLL_UNION
		);
	`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	snap := snapshot.NewSnapshotter(env.catalog, env.store)
	manifest, err := snap.Export(ctx)
	if err != nil {
		t.Fatalf("Export() = %v", err)
	}
	if manifest == nil || manifest.TableCount != 1 {
		t.Fatalf("manifest = %+v", manifest)
	}

	want, err := env.catalog.ShowCreateTable(ctx, "events")
	if err != nil {
		t.Fatalf("ShowCreateTable() = %v", err)
	}

	restored, err := catalog.NewCatalog(filepath.Join(t.TempDir(), "restored.db"))
	if err != nil {
		t.Fatalf("failed to create catalog: %v", err)
	}
	defer restored.Close()

	restorer := snapshot.NewSnapshotter(restored, env.store)
	if _, err := restorer.Restore(ctx); err != nil {
		t.Fatalf("Restore() = %v", err)
	}

	got, err := restored.ShowCreateTable(ctx, "events")
	if err != nil {
		t.Fatalf("ShowCreateTable() after restore = %v", err)
	}
	if got != want {
		t.Errorf("restored DDL differs:\n%s\nwant\n%s", got, want)
	}
}

// TestDropFlow exercises DROP TABLE end to end, including IF EXISTS.
func TestDropFlow(t *testing.T) {
	env := newTestEnv(t)

	if rec := env.ddl(t, "CREATE TABLE t (id INT KEY)"); rec.Code != http.StatusOK {
		t.Fatalf("create status = %d", rec.Code)
	}
	if rec := env.ddl(t, "DROP TABLE t"); rec.Code != http.StatusOK {
		t.Fatalf("drop status = %d", rec.Code)
	}
	if rec := env.ddl(t, "DROP TABLE t"); rec.Code != http.StatusNotFound {
		t.Fatalf("second drop status = %d, want 404", rec.Code)
	}
	if rec := env.ddl(t, "DROP TABLE IF EXISTS t"); rec.Code != http.StatusOK {
		t.Fatalf("drop if exists status = %d", rec.Code)
	}
}
