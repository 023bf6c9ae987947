package handler

import (
	"net/http"

	"prep_tracker/internal/app/service"
	"prep_tracker/internal/common"

	"github.com/go-chi/chi/v5"
)

type RecommendationHandler struct {
	recommendationService *service.RecommendationService
}

func NewRecommendationHandler(rs *service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{recommendationService: rs}
}

func (h *RecommendationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/generate", h.generate)
}

func (h *RecommendationHandler) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	recs, err := h.recommendationService.List(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, recs)
}

func (h *RecommendationHandler) generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	recs, err := h.recommendationService.Generate(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, recs)
}
