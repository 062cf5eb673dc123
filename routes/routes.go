package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/backoffice/app"
	"github.com/upb/backoffice/handlers"
	"github.com/upb/backoffice/middleware"
	"github.com/upb/backoffice/utils"
)

// SetupRoutes configures all application routes and middleware.
// Every route, including unmatched ones, passes the authentication filter.
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger, deps.Metrics))
	r.Use(chimiddleware.Recoverer)
	if timeout := deps.Config.Server.RequestTimeout; timeout > 0 {
		r.Use(chimiddleware.Timeout(timeout))
	}

	// CORS answers preflight requests before authentication
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"HEAD", "GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept"},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(deps.AuthMiddleware.Authenticate)

	accountHandler := handlers.NewAccountHandler(deps.AccountService, deps.TokenService, deps.Logger)
	healthHandler := handlers.NewHealthHandler(deps.Accounts, deps.Config.Auth.StoreTimeout, deps.Logger)

	// Actuator endpoints
	r.Route("/actuator", func(r chi.Router) {
		r.Get("/health", healthHandler.HandleHealth)
		r.Get("/health/readiness", healthHandler.HandleReadiness)
		if deps.Config.Observability.MetricsEnabled {
			r.Method(http.MethodGet, "/prometheus", deps.Metrics.Handler())
		}
	})

	r.Route("/api/accounts", func(r chi.Router) {
		r.Post("/signin", accountHandler.HandleSignIn)
		r.Post("/signup", accountHandler.HandleSignUp)

		r.Group(func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Get("/me", accountHandler.HandleMe)
			r.Get("/find", accountHandler.HandleFindAccount)
			r.Get("/{id}", accountHandler.HandleGetAccount)
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	})

	return r
}
