package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/fixora/fieldreports/internal/domain"
	"github.com/fixora/fieldreports/internal/logger"
	"github.com/fixora/fieldreports/internal/usecase"
)

// DatasetInvalidator drops cached report data before a forced reload
type DatasetInvalidator interface {
	Invalidate(ctx context.Context) error
}

// ReportHandler handles HTTP requests for the report panel and saved reports
type ReportHandler struct {
	workspaces  *usecase.Workspaces
	invalidator DatasetInvalidator
	logger      logger.Logger
}

// NewReportHandler creates a new report handler. invalidator may be nil.
func NewReportHandler(workspaces *usecase.Workspaces, invalidator DatasetInvalidator, log logger.Logger) *ReportHandler {
	return &ReportHandler{
		workspaces:  workspaces,
		invalidator: invalidator,
		logger:      log,
	}
}

// RegisterRoutes registers report routes
func (h *ReportHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/reports/load", h.LoadData).Methods("POST")
	router.HandleFunc("/reports/current", h.GetCurrent).Methods("GET")
	router.HandleFunc("/reports/current/filters", h.SetFilters).Methods("PUT")
	router.HandleFunc("/reports/current/export", h.Export).Methods("GET")
	router.HandleFunc("/reports", h.SaveReport).Methods("POST")
	router.HandleFunc("/reports", h.ListReports).Methods("GET")
	router.HandleFunc("/reports/{id}", h.GetReport).Methods("GET")
	router.HandleFunc("/reports/{id}", h.DeleteReport).Methods("DELETE")
	router.HandleFunc("/session", h.EndSession).Methods("DELETE")
}

type saveReportRequest struct {
	ReportName string `json:"report_name"`
}

// LoadData reloads technicians and work orders and recomputes the snapshot
func (h *ReportHandler) LoadData(w http.ResponseWriter, r *http.Request) {
	panel, ok := h.panel(w, r)
	if !ok {
		return
	}

	if r.URL.Query().Get("refresh") == "true" && h.invalidator != nil {
		if err := h.invalidator.Invalidate(r.Context()); err != nil {
			h.logger.Warn(r.Context(), "Failed to invalidate dataset cache", map[string]interface{}{"error": err.Error()})
		}
	}

	snap, err := panel.Load(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	success(w, http.StatusOK, "Report data loaded", snap)
}

// GetCurrent returns the current snapshot, loading the data on first use
func (h *ReportHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	panel, ok := h.panel(w, r)
	if !ok {
		return
	}

	snap, err := panel.Snapshot()
	if errors.Is(err, domain.ErrDatasetNotLoaded) {
		snap, err = panel.Load(r.Context())
	}
	if err != nil {
		writeError(w, err)
		return
	}
	success(w, http.StatusOK, "Current report", snap)
}

// SetFilters replaces the active filters and returns the recomputed snapshot
func (h *ReportHandler) SetFilters(w http.ResponseWriter, r *http.Request) {
	panel, ok := h.panel(w, r)
	if !ok {
		return
	}

	var f domain.ReportFilter
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		if domain.IsValidation(err) {
			writeError(w, err)
			return
		}
		badRequest(w, "Invalid request body")
		return
	}
	if f.StartDate.IsZero() || f.EndDate.IsZero() {
		badRequest(w, "start_date and end_date are required")
		return
	}

	snap, err := panel.SetFilters(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	success(w, http.StatusOK, "Filters applied", snap)
}

// Export downloads the current metric list as CSV
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	panel, ok := h.panel(w, r)
	if !ok {
		return
	}

	doc, err := panel.Export(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Body)))
	w.WriteHeader(http.StatusOK)
	w.Write(doc.Body)
}

// SaveReport stores the current snapshot under the given name
func (h *ReportHandler) SaveReport(w http.ResponseWriter, r *http.Request) {
	panel, ok := h.panel(w, r)
	if !ok {
		return
	}

	var req saveReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}

	saved, err := panel.Save(r.Context(), req.ReportName)
	if err != nil {
		writeError(w, err)
		return
	}
	success(w, http.StatusCreated, "Report saved successfully", saved)
}

// ListReports returns one page of saved reports, most recent first
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	panel, ok := h.panel(w, r)
	if !ok {
		return
	}

	page, err := queryInt(r, "page")
	if err != nil {
		writeError(w, err)
		return
	}
	pageSize, err := queryInt(r, "page_size")
	if err != nil {
		writeError(w, err)
		return
	}

	history, err := panel.Store().List(r.Context(), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	success(w, http.StatusOK, "Report history", history)
}

// GetReport returns a saved report
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	panel, ok := h.panel(w, r)
	if !ok {
		return
	}

	report, err := panel.Store().Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	success(w, http.StatusOK, "Report detail", report)
}

// DeleteReport removes a saved report
func (h *ReportHandler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	panel, ok := h.panel(w, r)
	if !ok {
		return
	}

	if err := panel.Store().Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	success(w, http.StatusOK, "Report deleted successfully", nil)
}

// EndSession discards the caller's panel state
func (h *ReportHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFromContext(r.Context())
	if !ok {
		unauthorized(w, "Authentication required")
		return
	}
	h.workspaces.Close(session)
	success(w, http.StatusOK, "Session closed", nil)
}

func (h *ReportHandler) panel(w http.ResponseWriter, r *http.Request) (*usecase.ReportPanel, bool) {
	session, ok := SessionFromContext(r.Context())
	if !ok {
		unauthorized(w, "Authentication required")
		return nil, false
	}
	panel, err := h.workspaces.Panel(session)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return panel, true
}

// queryInt parses an optional integer query parameter, 0 when absent
func queryInt(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.ErrInvalidPagination
	}
	return v, nil
}
