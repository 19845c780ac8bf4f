package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"skillex/internal/users/service"
	apperrors "skillex/pkg/errors"
	httputil "skillex/pkg/http"
	"skillex/pkg/logger"
	"skillex/pkg/middleware"
	"skillex/pkg/model"
)

type UserHandler struct {
	service service.UserService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewUserHandler(service service.UserService, auth *middleware.Authenticator, log *logger.Logger) *UserHandler {
	return &UserHandler{service: service, auth: auth, log: log}
}

func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "", user)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, _ := middleware.IdentityFrom(r.Context())

	var updates model.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), identity, &updates)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Profile updated successfully", user)
}

func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, _ := middleware.IdentityFrom(r.Context())

	data, err := readImageFile(r, "avatar")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	url, err := h.service.UpdateAvatar(r.Context(), identity, data)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Avatar updated successfully", map[string]string{"avatar": url})
}

// readImageFile pulls one multipart file field from the request. Body size
// is already capped by the MaxRequestSize middleware.
func readImageFile(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, apperrors.InvalidInput("Missing file field: " + field)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apperrors.InvalidInput("Failed to read uploaded file")
	}
	return data, nil
}

func (h *UserHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/users/:id", h.GetByID)
	router.PUT("/api/users/profile", h.auth.Require(h.UpdateProfile))
	router.POST("/api/users/avatar", h.auth.Require(h.UploadAvatar))
}
