package schedule

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mnogodumalon/schichtplan/internal/api"
	"github.com/mnogodumalon/schichtplan/internal/livingapps"
	"github.com/mnogodumalon/schichtplan/internal/middleware"
)

const maxScanImageBytes = 10 << 20

// Handler exposes the scheduling operations over HTTP: CRUD for the four
// collections, the enriched weekly plan, and the photo-scan merge.
type Handler struct {
	Store     RecordStore
	Loader    *Loader
	Cols      Collections
	Extractor Extractor
}

func NewHandler(store RecordStore, loader *Loader, cols Collections, extractor Extractor) *Handler {
	return &Handler{Store: store, Loader: loader, Cols: cols, Extractor: extractor}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	h.registerCollection(r, "/companies", h.Cols.Companies, CompanySchema)
	h.registerCollection(r, "/shift-types", h.Cols.ShiftTypes, ShiftTypeSchema)
	h.registerCollection(r, "/employees", h.Cols.Employees, EmployeeSchema)
	h.registerCollection(r, "/assignments", h.Cols.Assignments, AssignmentSchema)

	r.Post("/assignments/scan", h.handleScan)
	r.Get("/plan", h.handlePlan)
	r.Post("/plan/refresh", h.handlePlanRefresh)
}

func (h *Handler) registerCollection(r chi.Router, pattern, appID string, schema Schema) {
	r.Route(pattern, func(r chi.Router) {
		r.Get("/", h.handleList(appID, schema))
		r.Post("/", h.handleCreate(appID, schema))
		r.Route("/{recordID}", func(r chi.Router) {
			r.Get("/", h.handleGet(appID, schema))
			r.Patch("/", h.handleUpdate(appID, schema))
			r.Delete("/", h.handleDelete(appID))
		})
	})
}

func (h *Handler) handleList(appID string, schema Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := h.Store.List(r.Context(), appID)
		if err != nil {
			api.Fail(w, http.StatusBadGateway, "store_list_failed", err.Error(), middleware.GetRequestID(r.Context()))
			return
		}
		normalized := make([]livingapps.Record, 0, len(records))
		for _, record := range records {
			normalized = append(normalized, schema.Normalize(record))
		}
		api.Success(w, normalized, middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) handleGet(appID string, schema Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, err := h.Store.Get(r.Context(), appID, chi.URLParam(r, "recordID"))
		if err != nil {
			api.Fail(w, http.StatusNotFound, "not_found", err.Error(), middleware.GetRequestID(r.Context()))
			return
		}
		api.Success(w, schema.Normalize(*record), middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) handleCreate(appID string, schema Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fields, ok := decodeFields(w, r, schema)
		if !ok {
			return
		}
		id, err := h.Store.Create(r.Context(), appID, fields)
		if err != nil {
			api.Fail(w, http.StatusBadGateway, "store_create_failed", err.Error(), middleware.GetRequestID(r.Context()))
			return
		}
		h.refreshAsync()
		api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) handleUpdate(appID string, schema Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fields, ok := decodeFields(w, r, schema)
		if !ok {
			return
		}
		recordID := chi.URLParam(r, "recordID")
		if err := h.Store.Update(r.Context(), appID, recordID, fields); err != nil {
			api.Fail(w, http.StatusBadGateway, "store_update_failed", err.Error(), middleware.GetRequestID(r.Context()))
			return
		}
		h.refreshAsync()
		api.Success(w, map[string]string{"id": recordID}, middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) handleDelete(appID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recordID := chi.URLParam(r, "recordID")
		if err := h.Store.Delete(r.Context(), appID, recordID); err != nil {
			api.Fail(w, http.StatusBadGateway, "store_delete_failed", err.Error(), middleware.GetRequestID(r.Context()))
			return
		}
		h.refreshAsync()
		api.Success(w, map[string]string{"id": recordID}, middleware.GetRequestID(r.Context()))
	}
}

// handlePlan serves the enriched weekly plan from the loader snapshot. The
// first call triggers a load; afterwards the snapshot is refreshed via
// /plan/refresh or implicitly after mutations.
func (h *Handler) handlePlan(w http.ResponseWriter, r *http.Request) {
	snap := h.Loader.Snapshot()
	if !snap.Loaded {
		var err error
		if snap, err = h.Loader.Refresh(r.Context()); err != nil {
			api.Fail(w, http.StatusBadGateway, "load_failed", err.Error(), middleware.GetRequestID(r.Context()))
			return
		}
	}
	weekStart := WeekOf(time.Now().UTC())
	if value := r.URL.Query().Get("week"); value != "" {
		parsed, err := ParseDate(value)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_week", "week must be YYYY-MM-DD", middleware.GetRequestID(r.Context()))
			return
		}
		weekStart = WeekOf(parsed)
	}

	enriched := EnrichAssignments(snap.Assignments, snap.Indexes)
	var loadError string
	if snap.Err != nil {
		loadError = snap.Err.Error()
	}
	api.Success(w, map[string]any{
		"week":        BuildWeekPlan(enriched, weekStart),
		"assignments": enriched,
		"loading":     snap.Loading,
		"loadError":   loadError,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePlanRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Loader.Refresh(r.Context())
	if err != nil {
		api.Fail(w, http.StatusBadGateway, "load_failed", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{
		"companies":   len(snap.Companies),
		"shiftTypes":  len(snap.ShiftTypes),
		"employees":   len(snap.Employees),
		"assignments": len(snap.Assignments),
	}, middleware.GetRequestID(r.Context()))
}

// handleScan accepts a multipart form with a "photo" image and an optional
// "fields" part holding the current form state as JSON, runs the extraction
// capability, and returns the merged form state. Extraction failures are
// logged and answered with the unchanged form state so manual entry can
// continue.
func (h *Handler) handleScan(w http.ResponseWriter, r *http.Request) {
	if h.Extractor == nil {
		api.Fail(w, http.StatusServiceUnavailable, "scan_disabled", "photo scan is not configured", middleware.GetRequestID(r.Context()))
		return
	}

	if err := r.ParseMultipartForm(maxScanImageBytes); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "expected multipart form data", middleware.GetRequestID(r.Context()))
		return
	}

	form := map[string]string{}
	if raw := r.FormValue("fields"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &form); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "fields must be a JSON object of strings", middleware.GetRequestID(r.Context()))
			return
		}
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "photo file is required", middleware.GetRequestID(r.Context()))
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxScanImageBytes))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "could not read photo", middleware.GetRequestID(r.Context()))
		return
	}

	snap := h.Loader.Snapshot()
	if !snap.Loaded {
		if snap, err = h.Loader.Refresh(r.Context()); err != nil {
			api.Fail(w, http.StatusBadGateway, "load_failed", err.Error(), middleware.GetRequestID(r.Context()))
			return
		}
	}

	extracted, err := h.Extractor.ExtractFields(r.Context(), image, contentTypeOf(header), AssignmentScanSchema)
	if err != nil {
		slog.Warn("photo scan failed", "err", err, "requestId", middleware.GetRequestID(r.Context()))
		api.Success(w, form, middleware.GetRequestID(r.Context()))
		return
	}

	merged := MergeExtracted(form, extracted, Lookups{
		Employees:  snap.Employees,
		Companies:  snap.Companies,
		ShiftTypes: snap.ShiftTypes,
	}, h.Cols)
	api.Success(w, merged, middleware.GetRequestID(r.Context()))
}

func contentTypeOf(header *multipart.FileHeader) string {
	if header != nil {
		if contentType := header.Header.Get("Content-Type"); contentType != "" {
			return contentType
		}
	}
	return "image/jpeg"
}

// refreshAsync reloads the plan snapshot after a mutation without blocking
// the response. A failed reload lands in the snapshot error state and is
// retried by the next explicit refresh.
func (h *Handler) refreshAsync() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := h.Loader.Refresh(ctx); err != nil {
			slog.Warn("plan refresh after mutation failed", "err", err)
		}
	}()
}

func decodeFields(w http.ResponseWriter, r *http.Request, schema Schema) (map[string]string, bool) {
	var payload struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	if payload.Fields == nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "fields object is required", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	return schema.Filter(payload.Fields), true
}
