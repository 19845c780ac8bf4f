package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"skillex/internal/bookings/service"
	apperrors "skillex/pkg/errors"
	httputil "skillex/pkg/http"
	"skillex/pkg/logger"
	"skillex/pkg/middleware"
	"skillex/pkg/model"
)

type BookingHandler struct {
	service service.BookingService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, auth *middleware.Authenticator, log *logger.Logger) *BookingHandler {
	return &BookingHandler{service: service, auth: auth, log: log}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, _ := middleware.IdentityFrom(r.Context())

	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.Create(r.Context(), identity, &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, "Booking request sent", booking)
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, _ := middleware.IdentityFrom(r.Context())

	booking, err := h.service.GetByID(r.Context(), identity, ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "", booking)
}

// List returns the caller's bookings. role=teacher selects the bookings
// received on their listings; anything else selects bookings they requested.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, _ := middleware.IdentityFrom(r.Context())

	page, limit, err := httputil.ExtractPagination(r, httputil.DefaultPageSize)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	filter := &model.BookingFilter{Status: r.URL.Query().Get("status")}
	if r.URL.Query().Get("role") == model.RoleTeacher {
		filter.TeacherID = identity.UserID
	} else {
		filter.LearnerID = identity.UserID
	}

	bookings, total, err := h.service.List(r.Context(), identity, filter, limit, httputil.Skip(page, limit))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteList(w, bookings, len(bookings), total, page, limit)
}

func (h *BookingHandler) Confirm(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.transition(w, r, ps.ByName("id"), h.service.Confirm, "Booking confirmed")
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.transition(w, r, ps.ByName("id"), h.service.Cancel, "Booking cancelled")
}

func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.transition(w, r, ps.ByName("id"), h.service.Complete, "Booking completed")
}

func (h *BookingHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	id string,
	op func(ctx context.Context, identity model.Identity, id string) (*model.Booking, error),
	message string,
) {
	identity, _ := middleware.IdentityFrom(r.Context())

	booking, err := op(r.Context(), identity, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, message, booking)
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/bookings", h.auth.Require(h.Create))
	router.GET("/api/bookings", h.auth.Require(h.List))
	router.GET("/api/bookings/:id", h.auth.Require(h.GetByID))
	router.PUT("/api/bookings/:id/confirm", h.auth.Require(h.Confirm))
	router.PUT("/api/bookings/:id/cancel", h.auth.Require(h.Cancel))
	router.PUT("/api/bookings/:id/complete", h.auth.Require(h.Complete))
}
