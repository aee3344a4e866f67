package web

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/resale/internal/core"
	"github.com/JonMunkholm/resale/internal/web/templates"
)

// dashboardAuditEntries is how many recent audit entries the dashboard shows.
const dashboardAuditEntries = 10

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sum, err := s.service.Summary(ctx)
	if err != nil {
		respondError(w, r, err)
		return
	}
	recent, err := s.service.GetAuditLog(ctx, core.AuditLogFilter{Limit: dashboardAuditEntries})
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Dashboard(sum, s.service.ListCollections(), recent).Render(ctx, w); err != nil {
		slog.Error("render dashboard", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	limiter := s.service.ImageLimiter()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"image_batches": limiter.Status(),
	})
}

func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.ListCollections())
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.service.Summary(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// handleAuditLog lists audit entries newest first, optionally filtered by
// ?collection=, ?action= and capped by ?limit=.
func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := core.AuditLogFilter{
		Collection: q.Get("collection"),
		Action:     core.AuditAction(q.Get("action")),
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			respondError(w, r, &core.ValidationError{Field: "limit", Value: v, Message: "invalid whole number " + strconv.Quote(v)})
			return
		}
		filter.Limit = limit
	}

	entries, err := s.service.GetAuditLog(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
