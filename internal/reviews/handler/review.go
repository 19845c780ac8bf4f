package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"skillex/internal/reviews/service"
	apperrors "skillex/pkg/errors"
	httputil "skillex/pkg/http"
	"skillex/pkg/logger"
	"skillex/pkg/middleware"
	"skillex/pkg/model"
)

type ReviewHandler struct {
	service service.ReviewService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewReviewHandler(service service.ReviewService, auth *middleware.Authenticator, log *logger.Logger) *ReviewHandler {
	return &ReviewHandler{service: service, auth: auth, log: log}
}

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, _ := middleware.IdentityFrom(r.Context())

	var review model.Review
	if err := json.NewDecoder(r.Body).Decode(&review); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Create(r.Context(), identity, &review); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, "Review submitted", review)
}

// ListByUser serves a user's received reviews.
func (h *ReviewHandler) ListByUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	page, limit, err := httputil.ExtractPagination(r, httputil.DefaultPageSize)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	reviews, total, err := h.service.ListByReviewee(r.Context(), ps.ByName("id"), limit, httputil.Skip(page, limit))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteList(w, reviews, len(reviews), total, page, limit)
}

func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, _ := middleware.IdentityFrom(r.Context())

	var updates model.ReviewUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	review, err := h.service.Update(r.Context(), identity, ps.ByName("id"), &updates)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Review updated successfully", review)
}

func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, _ := middleware.IdentityFrom(r.Context())

	if err := h.service.Delete(r.Context(), identity, ps.ByName("id")); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Review deleted successfully", nil)
}

func (h *ReviewHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/reviews", h.auth.Require(h.Create))
	router.PUT("/api/reviews/:id", h.auth.Require(h.Update))
	router.DELETE("/api/reviews/:id", h.auth.Require(h.Delete))

	router.GET("/api/users/:id/reviews", h.ListByUser)
}
