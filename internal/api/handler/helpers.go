package handler

import (
	"encoding/json"
	"net/http"

	"prep_tracker/internal/api/middleware"
	"prep_tracker/internal/common"
)

func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
	}
	return userID, ok
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return false
	}
	return true
}

func respondWithServiceError(w http.ResponseWriter, err error) {
	common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
}
