package minespec

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/bitechdev/MineSpec/pkg/logger"
	"github.com/bitechdev/MineSpec/pkg/spectypes"
)

// Handler serves the search API over HTTP.
type Handler struct {
	engine *Engine
	saved  *SavedQueryStore

	// BulkMaxQueries caps how many queries one bulk request may carry.
	// Zero means the default of 10.
	BulkMaxQueries int
}

// NewHandler creates a search API handler around the engine.
func NewHandler(engine *Engine) *Handler {
	return &Handler{
		engine: engine,
		saved:  NewSavedQueryStore(),
	}
}

// Engine returns the wrapped search engine
func (h *Handler) Engine() *Engine {
	return h.engine
}

// SetupRoutes registers the search API on the router under /search.
func (h *Handler) SetupRoutes(r *mux.Router) {
	s := r.PathPrefix("/search").Subrouter()
	s.HandleFunc("/query", h.HandleQuery).Methods("POST")
	s.HandleFunc("/quick-search", h.HandleQuickSearch).Methods("POST")
	s.HandleFunc("/bulk-search", h.HandleBulkSearch).Methods("POST")
	s.HandleFunc("/schema/{entity}", h.HandleSchema).Methods("GET")
	s.HandleFunc("/fields/{entity}", h.HandleFields).Methods("GET")
	s.HandleFunc("/entities", h.HandleEntities).Methods("GET")
	s.HandleFunc("/analytics/summary", h.HandleAnalyticsSummary).Methods("POST")
	s.HandleFunc("/saved-queries", h.HandleSaveQuery).Methods("POST")
	s.HandleFunc("/saved-queries", h.HandleListSavedQueries).Methods("GET")
	s.HandleFunc("/saved-queries/{id}", h.HandleDeleteSavedQuery).Methods("DELETE")
	s.HandleFunc("/health", h.HandleHealth).Methods("GET")
}

// HandleQuery executes a full search query.
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if err := recover(); err != nil {
			h.handlePanic(w, "HandleQuery", err)
		}
	}()

	query := spectypes.DefaultSearchQuery()
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_request", "Failed to parse search query", err)
		return
	}

	result, err := h.engine.Search(r.Context(), query)
	if err != nil {
		h.sendSearchError(w, err)
		return
	}

	h.sendJSON(w, http.StatusOK, result)
}

// HandleQuickSearch runs a text-only search driven by query parameters:
// entity, q, fields (repeatable), limit.
func (h *Handler) HandleQuickSearch(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if err := recover(); err != nil {
			h.handlePanic(w, "HandleQuickSearch", err)
		}
	}()

	entity := r.URL.Query().Get("entity")
	text := r.URL.Query().Get("q")
	if entity == "" || text == "" {
		h.sendError(w, http.StatusBadRequest, "invalid_request", "entity and q query parameters are required", nil)
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			h.sendError(w, http.StatusBadRequest, "invalid_request", "limit must be between 1 and 100", err)
			return
		}
		limit = n
	}

	query := spectypes.DefaultSearchQuery()
	query.Entity = entity
	query.SearchText = text
	query.SearchFields = r.URL.Query()["fields"]
	query.PageSize = limit
	query.IncludeRelations = false

	result, err := h.engine.Search(r.Context(), query)
	if err != nil {
		h.sendSearchError(w, err)
		return
	}

	h.sendJSON(w, http.StatusOK, result)
}

// bulkEntry pairs one bulk query with its result or error.
type bulkEntry struct {
	QueryEntity string                  `json:"query_entity"`
	Result      *spectypes.SearchResult `json:"result,omitempty"`
	Error       string                  `json:"error,omitempty"`
}

// HandleBulkSearch executes multiple queries concurrently and returns the
// results in request order. One failing query does not fail the batch.
func (h *Handler) HandleBulkSearch(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if err := recover(); err != nil {
			h.handlePanic(w, "HandleBulkSearch", err)
		}
	}()

	var queries []spectypes.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&queries); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_request", "Failed to parse bulk queries", err)
		return
	}

	maxQueries := h.BulkMaxQueries
	if maxQueries <= 0 {
		maxQueries = 10
	}
	if len(queries) == 0 || len(queries) > maxQueries {
		h.sendError(w, http.StatusBadRequest, "invalid_request",
			fmt.Sprintf("bulk search accepts between 1 and %d queries", maxQueries), nil)
		return
	}

	results := make([]bulkEntry, len(queries))
	var wg sync.WaitGroup
	for i, query := range queries {
		wg.Add(1)
		go func(i int, query spectypes.SearchQuery) {
			defer wg.Done()
			defer logger.CatchPanic("HandleBulkSearch.worker")

			entry := bulkEntry{QueryEntity: query.Entity}
			result, err := h.engine.Search(r.Context(), query)
			if err != nil {
				entry.Error = err.Error()
			} else {
				entry.Result = result
			}
			results[i] = entry
		}(i, query)
	}
	wg.Wait()

	h.sendJSON(w, http.StatusOK, map[string]interface{}{
		"results":       results,
		"total_queries": len(queries),
		"executed_at":   time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleSchema returns the searchable schema for one entity.
func (h *Handler) HandleSchema(w http.ResponseWriter, r *http.Request) {
	entity := mux.Vars(r)["entity"]

	schema, err := h.engine.EntitySchema(entity)
	if err != nil {
		h.sendSearchError(w, err)
		return
	}

	h.sendJSON(w, http.StatusOK, schema)
}

// HandleFields returns the flat field catalogue for one entity, with
// relation paths included on request (?include_relations=true).
func (h *Handler) HandleFields(w http.ResponseWriter, r *http.Request) {
	entity := mux.Vars(r)["entity"]

	schema, err := h.engine.EntitySchema(entity)
	if err != nil {
		h.sendSearchError(w, err)
		return
	}

	fields := make([]string, 0, len(schema.SearchableFields))
	for name := range schema.SearchableFields {
		fields = append(fields, name)
	}

	result := map[string]interface{}{
		"entity":           entity,
		"fields":           fields,
		"full_text_fields": schema.FullTextFields,
		"field_types":      schema.SearchableFields,
	}
	if r.URL.Query().Get("include_relations") == "true" {
		result["relation_fields"] = schema.RelationFields
	}

	h.sendJSON(w, http.StatusOK, result)
}

// HandleEntities lists all searchable entities.
func (h *Handler) HandleEntities(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, http.StatusOK, map[string]interface{}{
		"entities":    h.engine.Entities(),
		"description": "Available entities for search and data mining",
	})
}

// HandleAnalyticsSummary counts records across the requested entities
// (?entities=students&entities=projects).
func (h *Handler) HandleAnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if err := recover(); err != nil {
			h.handlePanic(w, "HandleAnalyticsSummary", err)
		}
	}()

	entities := r.URL.Query()["entities"]
	if len(entities) == 0 {
		h.sendError(w, http.StatusBadRequest, "invalid_request", "at least one entities query parameter is required", nil)
		return
	}

	summary := make(map[string]interface{}, len(entities))
	for _, entity := range entities {
		query := spectypes.DefaultSearchQuery()
		query.Entity = entity
		query.PageSize = 1
		query.IncludeRelations = false
		query.AggregateFunctions = map[string]string{"id": "count"}

		result, err := h.engine.Search(r.Context(), query)
		if err != nil {
			h.sendSearchError(w, err)
			return
		}

		summary[entity] = map[string]interface{}{
			"total_count":  result.TotalCount,
			"aggregations": result.Aggregations,
			"last_updated": time.Now().UTC().Format(time.RFC3339),
		}
	}

	h.sendJSON(w, http.StatusOK, map[string]interface{}{
		"summary":      summary,
		"generated_at": time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleSaveQuery stores a query for reuse. Name comes from the ?name
// parameter, the query itself from the body.
func (h *Handler) HandleSaveQuery(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if err := recover(); err != nil {
			h.handlePanic(w, "HandleSaveQuery", err)
		}
	}()

	name := r.URL.Query().Get("name")
	if name == "" {
		h.sendError(w, http.StatusBadRequest, "invalid_request", "name query parameter is required", nil)
		return
	}

	query := spectypes.DefaultSearchQuery()
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_request", "Failed to parse search query", err)
		return
	}
	if _, err := h.engine.schema.Entity(query.Entity); err != nil {
		h.sendSearchError(w, err)
		return
	}

	saved := h.saved.Save(name, r.URL.Query().Get("description"), query)
	logger.Info("Saved search query %q as %s", name, saved.ID)

	h.sendJSON(w, http.StatusCreated, saved)
}

// HandleListSavedQueries lists all saved queries, newest first.
func (h *Handler) HandleListSavedQueries(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, http.StatusOK, map[string]interface{}{
		"queries": h.saved.List(),
	})
}

// HandleDeleteSavedQuery removes one saved query by id.
func (h *Handler) HandleDeleteSavedQuery(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !h.saved.Delete(id) {
		h.sendError(w, http.StatusNotFound, "not_found", fmt.Sprintf("saved query %s not found", id), nil)
		return
	}
	h.sendJSON(w, http.StatusOK, map[string]interface{}{"deleted": id})
}

// HandleHealth reports service health.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "search",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// sendSearchError maps engine errors to HTTP statuses: unknown entities
// are client errors, everything else is a server error.
func (h *Handler) sendSearchError(w http.ResponseWriter, err error) {
	if spectypes.IsUnknownEntity(err) {
		h.sendError(w, http.StatusBadRequest, "unknown_entity", err.Error(), nil)
		return
	}
	h.sendError(w, http.StatusInternalServerError, "search_failed", "Search execution failed", err)
}

func (h *Handler) handlePanic(w http.ResponseWriter, method string, err interface{}) {
	stack := debug.Stack()
	logger.Error("Panic in %s: %v\nStack trace:\n%s", method, err, string(stack))
	h.sendError(w, http.StatusInternalServerError, "internal_error", fmt.Sprintf("Internal server error in %s", method), fmt.Errorf("%v", err))
}

func (h *Handler) sendJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("Error sending response: %v", err)
	}
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (h *Handler) sendError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	e := apiError{Code: code, Message: message}
	if details != nil {
		e.Details = fmt.Sprintf("%v", details)
	}
	h.sendJSON(w, status, map[string]interface{}{"error": e})
}
