package http

import (
	"net/http"
	"strings"

	"github.com/meridiandb/meridian/internal/catalog"
	"github.com/meridiandb/meridian/internal/errors"
	"github.com/meridiandb/meridian/internal/observability"
)

// TableListResponse represents the table listing response.
type TableListResponse struct {
	Tables    []string `json:"tables"`
	RequestID string   `json:"request_id"`
}

// TableResponse represents a single table's canonical DDL.
type TableResponse struct {
	Table     string `json:"table"`
	DDL       string `json:"ddl"`
	RequestID string `json:"request_id"`
}

// TablesHandler handles /v1/tables and /v1/tables/{name} requests.
type TablesHandler struct {
	catalog catalog.Catalog
}

// NewTablesHandler creates a new tables handler.
func NewTablesHandler(cat catalog.Catalog) *TablesHandler {
	return &TablesHandler{catalog: cat}
}

// ServeHTTP routes table requests by path and method.
func (h *TablesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/tables"), "/")

	switch {
	case name == "" && r.Method == http.MethodGet:
		h.list(w, r, requestID)
	case name != "" && r.Method == http.MethodGet:
		h.show(w, r, name, requestID)
	case name != "" && r.Method == http.MethodDelete:
		h.drop(w, r, name, requestID)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", requestID)
	}
}

func (h *TablesHandler) list(w http.ResponseWriter, r *http.Request, requestID string) {
	names, err := h.catalog.ListTables(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.UserMessage(err), requestID)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, TableListResponse{Tables: names, RequestID: requestID})
}

func (h *TablesHandler) show(w http.ResponseWriter, r *http.Request, name, requestID string) {
	ddl, err := h.catalog.ShowCreateTable(r.Context(), name)
	if err != nil {
		if errors.GetCode(err) == errors.CodeTableNotFound {
			writeError(w, http.StatusNotFound, errors.UserMessage(err), requestID)
			return
		}
		writeError(w, http.StatusInternalServerError, errors.UserMessage(err), requestID)
		return
	}
	writeJSON(w, http.StatusOK, TableResponse{Table: name, DDL: ddl, RequestID: requestID})
}

func (h *TablesHandler) drop(w http.ResponseWriter, r *http.Request, name, requestID string) {
	if err := h.catalog.DropTable(r.Context(), name); err != nil {
		if errors.GetCode(err) == errors.CodeTableNotFound {
			writeError(w, http.StatusNotFound, errors.UserMessage(err), requestID)
			return
		}
		writeError(w, http.StatusInternalServerError, errors.UserMessage(err), requestID)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"table":      name,
		"status":     "dropped",
		"request_id": requestID,
	})
}

// StatsHandler handles GET /v1/stats requests.
type StatsHandler struct {
	stats *observability.DDLStats
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(stats *observability.DDLStats) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// ServeHTTP handles the stats HTTP request.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", requestID)
		return
	}

	writeJSON(w, http.StatusOK, h.stats.Snapshot())
}
