package handler

import (
	"net/http"

	"prep_tracker/internal/app/service"
	"prep_tracker/internal/common"

	"github.com/go-chi/chi/v5"
)

type CredentialHandler struct {
	credentialService *service.CredentialService
}

func NewCredentialHandler(cs *service.CredentialService) *CredentialHandler {
	return &CredentialHandler{credentialService: cs}
}

func (h *CredentialHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.save)
	r.Delete("/{platform}", h.delete)
}

func (h *CredentialHandler) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	creds, err := h.credentialService.List(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, creds)
}

func (h *CredentialHandler) save(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req service.SaveCredentialRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cred, err := h.credentialService.Save(r.Context(), userID, req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, cred)
}

func (h *CredentialHandler) delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	if err := h.credentialService.Delete(r.Context(), userID, chi.URLParam(r, "platform")); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
