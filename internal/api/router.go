package api

import (
	"net/http"
	"time"

	"tasktrack/internal/api/handler"
	"tasktrack/internal/app/service"
	"tasktrack/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"github.com/rs/cors"
)

func NewRouter(
	tokens *security.TokenManager,
	authService *service.AuthService,
	taskService *service.TaskService,
	allowedOrigins []string,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger) // Chi's logger
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	r.Use(cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler)

	// Extracts the bearer token from "Authorization: Bearer T" and puts the
	// verified claims in context; Authenticator enforces them per route group.
	r.Use(jwtauth.Verifier(tokens.Auth()))

	// Liveness probe
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("API working"))
	})

	authHandler := handler.NewAuthHandler(authService)
	r.Route("/api/user", authHandler.RegisterRoutes)

	taskHandler := handler.NewTaskHandler(taskService)
	r.Route("/api/tasks", taskHandler.RegisterRoutes)

	return r
}
