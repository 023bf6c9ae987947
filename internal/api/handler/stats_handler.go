package handler

import (
	"net/http"
	"strconv"

	"prep_tracker/internal/app/service"
	"prep_tracker/internal/common"

	"github.com/go-chi/chi/v5"
)

type StatsHandler struct {
	statsService *service.StatsService
}

func NewStatsHandler(ss *service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: ss}
}

func (h *StatsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/stats", h.getStats)                 // GET /api/stats
	r.Get("/recent-activity", h.recentActivity) // GET /api/recent-activity?limit=5
}

func (h *StatsHandler) getStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	stats, err := h.statsService.GetStats(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, stats)
}

func (h *StatsHandler) recentActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	problems, err := h.statsService.GetRecentActivity(r.Context(), userID, limit)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problems)
}
