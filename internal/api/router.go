package api

import (
	"net/http"
	"time"

	"prep_tracker/internal/api/handler"
	"prep_tracker/internal/api/middleware"
	"prep_tracker/internal/app/service"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

const (
	requestTimeout = 60 * time.Second
	// Sync renders up to three profiles in a headless browser.
	syncTimeout = 3 * time.Minute
)

func NewRouter(
	tokenAuth *jwtauth.JWTAuth,
	problemService *service.ProblemService,
	statsService *service.StatsService,
	syncService *service.SyncService,
	credentialService *service.CredentialService,
	recommendationService *service.RecommendationService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	problemHandler := handler.NewProblemHandler(problemService)
	statsHandler := handler.NewStatsHandler(statsService)
	syncHandler := handler.NewSyncHandler(syncService)
	credentialHandler := handler.NewCredentialHandler(credentialService)
	recommendationHandler := handler.NewRecommendationHandler(recommendationService)

	r.Route("/api", func(api chi.Router) {
		// Looks for "Authorization: Bearer T", then rejects anything unverified.
		api.Use(jwtauth.Verifier(tokenAuth))
		api.Use(middleware.Authenticator)

		api.Group(func(g chi.Router) {
			g.Use(chiMiddleware.Timeout(requestTimeout))

			g.Route("/problems", problemHandler.RegisterRoutes)
			g.Get("/export", problemHandler.ExportCSV)
			statsHandler.RegisterRoutes(g)
			g.Route("/platform-credentials", credentialHandler.RegisterRoutes)
			g.Route("/recommendations", recommendationHandler.RegisterRoutes)
		})

		api.Group(func(g chi.Router) {
			g.Use(chiMiddleware.Timeout(syncTimeout))
			g.Route("/sync-platforms", syncHandler.RegisterRoutes)
		})
	})

	return r
}
