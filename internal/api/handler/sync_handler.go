package handler

import (
	"net/http"

	"prep_tracker/internal/app/service"
	"prep_tracker/internal/common"

	"github.com/go-chi/chi/v5"
)

type SyncHandler struct {
	syncService *service.SyncService
}

func NewSyncHandler(ss *service.SyncService) *SyncHandler {
	return &SyncHandler{syncService: ss}
}

func (h *SyncHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.sync)           // POST /api/sync-platforms
	r.Post("/saved", h.syncSaved) // POST /api/sync-platforms/saved
}

func (h *SyncHandler) sync(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req service.SyncRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.syncService.Sync(r.Context(), userID, req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}

func (h *SyncHandler) syncSaved(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	result, err := h.syncService.SyncSaved(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}
