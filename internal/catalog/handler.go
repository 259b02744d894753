package catalog

import (
	"log/slog"
	"net/http"

	"github.com/mlavergne/stratify/pkg/handlers"
	"github.com/mlavergne/stratify/pkg/pagination"
)

// Handler provides HTTP endpoints for published-table queries.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "catalog"),
		pagination: pagination,
	}
}

// Register mounts the catalog endpoints under the given base path.
func (h *Handler) Register(mux *http.ServeMux, basePath string) {
	mux.HandleFunc("GET "+basePath+"/tables", h.List)
	mux.HandleFunc("GET "+basePath+"/tables/{name}", h.Rows)
	mux.HandleFunc("GET "+basePath+"/tables/{name}/count", h.Count)
	mux.HandleFunc("GET "+basePath+"/tables/{name}/freshness", h.Freshness)
}

// List returns every published collection name.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	names, err := h.sys.List(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, names)
}

// Rows returns a window of a collection's rows with an optional equality filter
// via filter_field and filter_value query parameters.
func (h *Handler) Rows(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	page := pagination.FromQuery(r.URL.Query(), h.pagination)

	filter, err := filterFromQuery(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	result, err := h.sys.Rows(r.Context(), name, page, filter)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Count returns the number of published rows in a collection.
func (h *Handler) Count(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	count, err := h.sys.Count(r.Context(), name)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"collection": name,
		"count":      count,
	})
}

// Freshness returns the collection's ingestion freshness record.
func (h *Handler) Freshness(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	freshness, err := h.sys.Freshness(r.Context(), name)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, freshness)
}

func filterFromQuery(r *http.Request) (*Filter, error) {
	field := r.URL.Query().Get("filter_field")
	value := r.URL.Query().Get("filter_value")

	if field == "" && value == "" {
		return nil, nil
	}
	if field == "" || value == "" {
		return nil, ErrInvalidFilter
	}
	return &Filter{Field: field, Value: value}, nil
}
