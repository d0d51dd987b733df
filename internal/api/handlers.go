package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sathish136/automationhub-sub003/internal/metrics"
	"github.com/sathish136/automationhub-sub003/internal/sitedb"
	"github.com/sathish136/automationhub-sub003/internal/storage"
)

// Checker is the maintenance engine surface the HTTP layer drives.
type Checker interface {
	RunOnce(ctx context.Context) bool
	SendManualEmail(ctx context.Context, equipmentID int64, scheduleID *int64) error
}

// SitePool is the connection pool surface for external site databases.
type SitePool interface {
	Acquire(ctx context.Context, database string) (sitedb.SiteConnector, error)
	TestConnection(ctx context.Context, database string) (bool, string)
}

type Handler struct {
	Checker  Checker
	Pool     SitePool
	Log      *slog.Logger
	RowLimit int
	Timeout  time.Duration
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/maintenance/check", h.handleMaintenanceCheck)
	r.Post("/maintenance/email", h.handleManualEmail)
	r.Route("/sites/{database}", func(r chi.Router) {
		r.Get("/events", h.handleSiteEvents)
		r.Get("/tables", h.handleSiteTables)
		r.Get("/status", h.handleSiteStatus)
	})
}

func (h *Handler) handleMaintenanceCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	ran := h.Checker.RunOnce(ctx)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "ran": ran})
}

type manualEmailRequest struct {
	EquipmentID int64  `json:"equipmentId"`
	ScheduleID  *int64 `json:"scheduleId"`
}

func (h *Handler) handleManualEmail(w http.ResponseWriter, r *http.Request) {
	var req manualEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "message": err.Error()})
		return
	}
	if req.EquipmentID == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "message": "equipmentId is required"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	if err := h.Checker.SendManualEmail(ctx, req.EquipmentID, req.ScheduleID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, storage.ErrNotFound) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, map[string]any{"ok": false, "message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// handleSiteEvents serves bounded reads from operator-named site tables. Site
// databases are flaky by nature, so any failure past identifier validation is
// logged and reported as an empty result set rather than an error.
func (h *Handler) handleSiteEvents(w http.ResponseWriter, r *http.Request) {
	database := chi.URLParam(r, "database")
	table := r.URL.Query().Get("table")
	if !sitedb.ValidIdentifier(database) || !sitedb.ValidIdentifier(table) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "message": "database and table must match ^[A-Za-z0-9_]+$"})
		return
	}
	limit := h.RowLimit
	if limit <= 0 {
		limit = sitedb.DefaultRowLimit
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	started := time.Now()
	rows, err := h.querySiteEvents(ctx, database, table, limit)
	metrics.SiteQueryDuration.WithLabelValues(database).Observe(time.Since(started).Seconds())
	if err != nil {
		h.Log.Error("site event query failed",
			slog.String("database", database), slog.String("table", table), slog.String("error", err.Error()))
		metrics.SiteQueries.WithLabelValues(database, "error").Inc()
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "rows": []map[string]any{}})
		return
	}
	metrics.SiteQueries.WithLabelValues(database, "ok").Inc()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "rows": rows})
}

func (h *Handler) querySiteEvents(ctx context.Context, database, table string, limit int) ([]map[string]any, error) {
	conn, err := h.Pool.Acquire(ctx, database)
	if err != nil {
		return nil, err
	}
	return conn.QueryRecent(ctx, table, limit)
}

func (h *Handler) handleSiteTables(w http.ResponseWriter, r *http.Request) {
	database := chi.URLParam(r, "database")
	if !sitedb.ValidIdentifier(database) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "message": "database must match ^[A-Za-z0-9_]+$"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	tables, err := h.listSiteTables(ctx, database)
	if err != nil {
		h.Log.Error("site table discovery failed",
			slog.String("database", database), slog.String("error", err.Error()))
		tables = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "tables": tables})
}

func (h *Handler) listSiteTables(ctx context.Context, database string) ([]string, error) {
	conn, err := h.Pool.Acquire(ctx, database)
	if err != nil {
		return nil, err
	}
	return conn.ListAlertTables(ctx)
}

func (h *Handler) handleSiteStatus(w http.ResponseWriter, r *http.Request) {
	database := chi.URLParam(r, "database")
	if !sitedb.ValidIdentifier(database) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "message": "database must match ^[A-Za-z0-9_]+$"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()
	ok, message := h.Pool.TestConnection(ctx, database)
	writeJSON(w, http.StatusOK, map[string]any{"ok": ok, "message": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
