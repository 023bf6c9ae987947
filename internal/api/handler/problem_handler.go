package handler

import (
	"net/http"

	"prep_tracker/internal/app/service"
	"prep_tracker/internal/common"

	"github.com/go-chi/chi/v5"
)

type ProblemHandler struct {
	problemService *service.ProblemService
}

func NewProblemHandler(ps *service.ProblemService) *ProblemHandler {
	return &ProblemHandler{problemService: ps}
}

func (h *ProblemHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listProblems)                         // GET /api/problems
	r.Post("/", h.createProblem)                       // POST /api/problems
	r.Delete("/", h.clearAll)                          // DELETE /api/problems
	r.Patch("/{id}/difficulty", h.updateDifficulty)    // PATCH /api/problems/{id}/difficulty
	r.Patch("/{id}/category", h.updateCategory)        // PATCH /api/problems/{id}/category
	r.Delete("/{id}", h.deleteProblem)                 // DELETE /api/problems/{id}
	r.Delete("/platform/{platform}", h.deletePlatform) // DELETE /api/problems/platform/gfg
}

func (h *ProblemHandler) listProblems(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	problems, err := h.problemService.ListProblems(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problems)
}

func (h *ProblemHandler) createProblem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req service.CreateProblemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	problem, err := h.problemService.CreateProblem(r.Context(), userID, req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, problem)
}

func (h *ProblemHandler) updateDifficulty(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req struct {
		Difficulty string `json:"difficulty"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	problem, err := h.problemService.UpdateDifficulty(r.Context(), userID, chi.URLParam(r, "id"), req.Difficulty)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problem)
}

func (h *ProblemHandler) updateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req struct {
		Category string `json:"category"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	problem, err := h.problemService.UpdateCategory(r.Context(), userID, chi.URLParam(r, "id"), req.Category)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problem)
}

func (h *ProblemHandler) deleteProblem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	if err := h.problemService.DeleteProblem(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProblemHandler) deletePlatform(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	if err := h.problemService.DeleteByPlatform(r.Context(), userID, chi.URLParam(r, "platform")); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProblemHandler) clearAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	if err := h.problemService.ClearAll(r.Context(), userID); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportCSV serves GET /api/export.
func (h *ProblemHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	body, err := h.problemService.ExportCSV(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	common.RespondWithAttachment(w, "text/csv; charset=utf-8", "problems.csv", body)
}
