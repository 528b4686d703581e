package api

import (
	"net/http"
	"strconv"
)

const (
	defaultAnalyticsDays = 7
	maxAnalyticsDays     = 90
)

// handleDailyAnalytics returns per-day usage aggregates, newest first.
// GET /api/analytics/daily?days=N
func (s *Server) handleDailyAnalytics(w http.ResponseWriter, r *http.Request) {
	days := defaultAnalyticsDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondErr(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = n
	}
	if days > maxAnalyticsDays {
		days = maxAnalyticsDays
	}

	stats, err := s.analytics.Daily(r.Context(), days)
	if err != nil {
		s.respondInternalErr(w, r, err)
		return
	}

	respond(w, http.StatusOK, map[string]any{
		"days":  days,
		"daily": stats,
	})
}
