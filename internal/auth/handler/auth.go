package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"skillex/internal/auth/service"
	apperrors "skillex/pkg/errors"
	httputil "skillex/pkg/http"
	"skillex/pkg/logger"
	"skillex/pkg/middleware"
)

type AuthHandler struct {
	service service.AuthService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewAuthHandler(service service.AuthService, auth *middleware.Authenticator, log *logger.Logger) *AuthHandler {
	return &AuthHandler{service: service, auth: auth, log: log}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req service.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	result, err := h.service.Register(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, "Registration successful", result)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req service.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	result, err := h.service.Login(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Login successful", result)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, _ := middleware.IdentityFrom(r.Context())

	user, err := h.service.Me(r.Context(), identity)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "", user)
}

func (h *AuthHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/auth/register", h.Register)
	router.POST("/api/auth/login", h.Login)
	router.GET("/api/auth/me", h.auth.Require(h.Me))
}
