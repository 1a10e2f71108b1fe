package handler

import (
	"encoding/json"
	"net/http"

	"tasktrack/internal/api/middleware"
	"tasktrack/internal/app/service"
	"tasktrack/internal/common"
	"tasktrack/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

// Success payloads sit at the top level next to "success"; that is the shape
// the frontend reads (response.token, response.user).
type authResponse struct {
	Success bool        `json:"success"`
	User    *model.User `json:"user"`
	Token   string      `json:"token"`
}

type userResponse struct {
	Success bool        `json:"success"`
	User    *model.User `json:"user"`
}

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)

	r.Group(func(protected chi.Router) {
		protected.Use(middleware.Authenticator)
		protected.Get("/me", h.currentUser)
	})
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	resp, err := h.authService.Register(r.Context(), req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, authResponse{Success: true, User: resp.User, Token: resp.Token})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, authResponse{Success: true, User: resp.User, Token: resp.Token})
}

func (h *AuthHandler) currentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	user, err := h.authService.CurrentUser(r.Context(), userID)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, userResponse{Success: true, User: user})
}
