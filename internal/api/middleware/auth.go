package middleware

import (
	"context"
	"errors"
	"net/http"

	"prep_tracker/internal/common"
	"prep_tracker/internal/common/security"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const UserIDCtxKey contextKey = "userID"

// Authenticator must run after jwtauth.Verifier. It rejects unverified requests and
// stores the token subject under UserIDCtxKey.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		switch {
		case errors.Is(err, jwtauth.ErrNoTokenFound):
			common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
			return
		case err != nil:
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token: "+err.Error())
			return
		case token == nil:
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		userID, err := security.GetUserIDFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), UserIDCtxKey, userID)))
	})
}

func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(string)
	return userID, ok && userID != ""
}
