package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/meridiandb/meridian/internal/catalog"
	"github.com/meridiandb/meridian/internal/ddl/parser"
	"github.com/meridiandb/meridian/internal/errors"
	"github.com/meridiandb/meridian/internal/observability"
	"github.com/meridiandb/meridian/pkg/types"
)

// DDLRequest represents a DDL execution request. SQL may contain one or more
// semicolon-separated statements.
type DDLRequest struct {
	SQL string `json:"sql"`
}

// StatementResult is the outcome of one statement.
type StatementResult struct {
	Kind  string `json:"kind"`
	Table string `json:"table,omitempty"`
	DDL   string `json:"ddl,omitempty"`
}

// DDLResponse represents the DDL execution response.
type DDLResponse struct {
	Results   []StatementResult `json:"results"`
	RequestID string            `json:"request_id"`
}

// DDLErrorResponse reports the first failing statement in statement order.
type DDLErrorResponse struct {
	Error          string `json:"error"`
	StatementIndex int    `json:"statement_index"`
	RequestID      string `json:"request_id,omitempty"`
}

// DDLHandler handles POST /v1/ddl requests.
type DDLHandler struct {
	catalog       catalog.Catalog
	stats         *observability.DDLStats
	defaultEngine string
	concurrency   int64
}

// NewDDLHandler creates a new DDL handler.
// defaultEngine is assumed for statements without an ENGINE clause and drives
// engine-specific column rules; concurrency bounds the number of statements
// of one batch analyzed in parallel.
func NewDDLHandler(cat catalog.Catalog, stats *observability.DDLStats, defaultEngine string, concurrency int) *DDLHandler {
	if concurrency < 1 {
		concurrency = 1
	}
	return &DDLHandler{
		catalog:       cat,
		stats:         stats,
		defaultEngine: defaultEngine,
		concurrency:   int64(concurrency),
	}
}

// ServeHTTP handles the DDL HTTP request.
func (h *DDLHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", requestID)
		return
	}

	var req DDLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err), requestID)
		return
	}
	if req.SQL == "" {
		writeError(w, http.StatusBadRequest, "sql is required", requestID)
		return
	}

	stmts, err := parser.ParseAll(req.SQL)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid SQL: %v", err), requestID)
		return
	}
	if len(stmts) == 0 {
		writeError(w, http.StatusBadRequest, "no statements to execute", requestID)
		return
	}

	// Phase one: analyze all CREATE TABLE statements concurrently. Analysis
	// is pure, so order does not matter here; errors are reported by the
	// lowest failing statement index.
	tables, analyzeErrs := h.analyzeAll(r.Context(), stmts)
	for i, aerr := range analyzeErrs {
		if aerr != nil {
			h.writeStatementError(w, r, i, aerr)
			return
		}
	}

	// Phase two: apply effects sequentially in statement order.
	results := make([]StatementResult, 0, len(stmts))
	for i, stmt := range stmts {
		result, err := h.apply(r.Context(), stmt, tables[i])
		if err != nil {
			h.writeStatementError(w, r, i, err)
			return
		}
		results = append(results, result)
	}

	writeJSON(w, http.StatusOK, DDLResponse{
		Results:   results,
		RequestID: requestID,
	})
}

// analyzeAll validates the CREATE TABLE definitions of a batch under the
// concurrency bound. Returned slices are indexed by statement position.
func (h *DDLHandler) analyzeAll(ctx context.Context, stmts []parser.Statement) ([]*types.Table, []error) {
	tables := make([]*types.Table, len(stmts))
	errs := make([]error, len(stmts))

	sem := semaphore.NewWeighted(h.concurrency)
	for i, stmt := range stmts {
		create, ok := stmt.(*parser.CreateTableStatement)
		if !ok {
			continue
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			errs[i] = err
			continue
		}
		if create.Def.Engine == "" {
			create.Def.Engine = h.defaultEngine
		}
		go func(i int, create *parser.CreateTableStatement) {
			defer sem.Release(1)
			start := time.Now()
			table, err := create.Def.Analyze()
			if err != nil {
				errs[i] = err
				h.stats.RecordFailure("CREATE_TABLE", err, time.Since(start))
				return
			}
			tables[i] = table
			h.stats.RecordSuccess("CREATE_TABLE", len(create.Def.Columns), time.Since(start))
		}(i, create)
	}

	// Draining the semaphore waits for all workers.
	if err := sem.Acquire(context.Background(), h.concurrency); err == nil {
		sem.Release(h.concurrency)
	}

	return tables, errs
}

// apply executes the effect of one statement against the catalog.
func (h *DDLHandler) apply(ctx context.Context, stmt parser.Statement, table *types.Table) (StatementResult, error) {
	switch s := stmt.(type) {
	case *parser.CreateTableStatement:
		err := h.catalog.RegisterTable(ctx, table)
		if err != nil && s.Def.IfNotExists && errors.GetCode(err) == errors.CodeTableExists {
			err = nil
		}
		if err != nil {
			return StatementResult{}, err
		}
		return StatementResult{Kind: "CREATE_TABLE", Table: table.Name}, nil

	case *parser.DropTableStatement:
		start := time.Now()
		err := h.catalog.DropTable(ctx, s.Name)
		if err != nil && s.IfExists && errors.GetCode(err) == errors.CodeTableNotFound {
			err = nil
		}
		if err != nil {
			h.stats.RecordFailure("DROP_TABLE", err, time.Since(start))
			return StatementResult{}, err
		}
		h.stats.RecordSuccess("DROP_TABLE", 0, time.Since(start))
		return StatementResult{Kind: "DROP_TABLE", Table: s.Name}, nil

	case *parser.ShowCreateTableStatement:
		start := time.Now()
		ddlText, err := h.catalog.ShowCreateTable(ctx, s.Name)
		if err != nil {
			h.stats.RecordFailure("SHOW_CREATE_TABLE", err, time.Since(start))
			return StatementResult{}, err
		}
		h.stats.RecordSuccess("SHOW_CREATE_TABLE", 0, time.Since(start))
		return StatementResult{Kind: "SHOW_CREATE_TABLE", Table: s.Name, DDL: ddlText}, nil

	default:
		return StatementResult{}, errors.New(errors.ErrCategoryParse,
			errors.CodeUnsupportedSyntax, "unsupported statement")
	}
}

// writeStatementError maps a statement failure to an HTTP status. The
// failure is logged with the request's correlation ID so a client-supplied
// trace can be followed across services.
func (h *DDLHandler) writeStatementError(w http.ResponseWriter, r *http.Request, index int, err error) {
	requestID := GetRequestID(r.Context())
	log.Printf("ddl: statement %d failed (request_id=%s correlation_id=%s): %v",
		index, requestID, GetCorrelationID(r.Context()), err)

	status := http.StatusBadRequest
	switch errors.GetCode(err) {
	case errors.CodeTableExists:
		status = http.StatusConflict
	case errors.CodeTableNotFound:
		status = http.StatusNotFound
	case errors.CodeCatalogIO, errors.CodeUnexpected:
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(DDLErrorResponse{
		Error:          errors.UserMessage(err),
		StatementIndex: index,
		RequestID:      requestID,
	})
}
