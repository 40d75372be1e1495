package export

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mnogodumalon/schichtplan/internal/api"
	"github.com/mnogodumalon/schichtplan/internal/middleware"
	"github.com/mnogodumalon/schichtplan/internal/schedule"
)

// Handler serves weekly plan downloads built from the loader snapshot.
type Handler struct {
	Loader *schedule.Loader
}

func NewHandler(loader *schedule.Loader) *Handler {
	return &Handler{Loader: loader}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/plan/export.pdf", h.handlePDF)
	r.Get("/plan/export.xlsx", h.handleXLSX)
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.weekPlan(w, r)
	if !ok {
		return
	}
	payload, err := WeekPlanPDF(plan)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_failed", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	serveDownload(w, payload, "application/pdf", fmt.Sprintf("schichtplan-%s.pdf", plan.WeekStart))
}

func (h *Handler) handleXLSX(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.weekPlan(w, r)
	if !ok {
		return
	}
	payload, err := WeekPlanXLSX(plan)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_failed", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	serveDownload(w, payload, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", fmt.Sprintf("schichtplan-%s.xlsx", plan.WeekStart))
}

func (h *Handler) weekPlan(w http.ResponseWriter, r *http.Request) (schedule.WeekPlan, bool) {
	snap := h.Loader.Snapshot()
	if !snap.Loaded {
		var err error
		if snap, err = h.Loader.Refresh(r.Context()); err != nil {
			api.Fail(w, http.StatusBadGateway, "load_failed", err.Error(), middleware.GetRequestID(r.Context()))
			return schedule.WeekPlan{}, false
		}
	}

	weekStart := schedule.WeekOf(time.Now().UTC())
	if value := r.URL.Query().Get("week"); value != "" {
		parsed, err := schedule.ParseDate(value)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_week", "week must be YYYY-MM-DD", middleware.GetRequestID(r.Context()))
			return schedule.WeekPlan{}, false
		}
		weekStart = schedule.WeekOf(parsed)
	}

	enriched := schedule.EnrichAssignments(snap.Assignments, snap.Indexes)
	return schedule.BuildWeekPlan(enriched, weekStart), true
}

func serveDownload(w http.ResponseWriter, payload []byte, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(payload)))
	_, _ = w.Write(payload)
}
