package extractspec

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gorilla/mux"

	"github.com/bitechdev/MineSpec/pkg/logger"
	"github.com/bitechdev/MineSpec/pkg/spectypes"
)

// Handler serves the export API over HTTP.
type Handler struct {
	engine *Engine
}

// NewHandler creates an export API handler around the engine.
func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

// SetupRoutes registers the export API on the router under /search/export.
func (h *Handler) SetupRoutes(r *mux.Router) {
	s := r.PathPrefix("/search/export").Subrouter()
	s.HandleFunc("", h.HandleExport).Methods("POST")
	s.HandleFunc("/templates", h.HandleTemplates).Methods("GET")
	s.HandleFunc("/formats", h.HandleFormats).Methods("GET")
	s.HandleFunc("/download/{filename}", h.HandleDownload).Methods("GET")
}

// ExportRequest is the export endpoint body: the query to run plus the
// options shaping its serialization.
type ExportRequest struct {
	Query   spectypes.SearchQuery   `json:"query"`
	Options spectypes.ExportOptions `json:"export_options"`
}

// HandleExport runs a search and returns the serialized payload.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if err := recover(); err != nil {
			h.handlePanic(w, "HandleExport", err)
		}
	}()

	req := ExportRequest{
		Query:   spectypes.DefaultSearchQuery(),
		Options: spectypes.DefaultExportOptions(),
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_request", "Failed to parse export request", err)
		return
	}

	result, err := h.engine.Extract(r.Context(), req.Query, req.Options)
	if err != nil {
		switch {
		case spectypes.IsUnknownEntity(err), spectypes.IsUnsupportedFormat(err):
			h.sendError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		default:
			h.sendError(w, http.StatusInternalServerError, "export_failed", "Export failed", err)
		}
		return
	}

	h.sendJSON(w, http.StatusOK, result)
}

// HandleTemplates lists the registered export templates.
func (h *Handler) HandleTemplates(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, http.StatusOK, h.engine.Templates())
}

// HandleFormats lists the registered export formats.
func (h *Handler) HandleFormats(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, http.StatusOK, map[string]interface{}{
		"formats": Formats(),
	})
}

// HandleDownload turns a previously returned file_data payload back into
// a file attachment. The payload travels in the file_data query
// parameter, base64 encoded.
func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]
	format := spectypes.ExportFormat(r.URL.Query().Get("format"))
	fileData := r.URL.Query().Get("file_data")

	if fileData == "" {
		h.sendError(w, http.StatusBadRequest, "invalid_request", "file_data query parameter is required", nil)
		return
	}

	payload, err := base64.StdEncoding.DecodeString(fileData)
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_request", "file_data must be base64 encoded", err)
		return
	}

	contentType := "application/octet-stream"
	if serializer, err := SerializerFor(format); err == nil {
		contentType = serializer.ContentType()
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	if _, err := w.Write(payload); err != nil {
		logger.Error("Error writing download: %v", err)
	}
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
