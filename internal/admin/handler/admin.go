package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"skillex/internal/admin/service"
	httputil "skillex/pkg/http"
	"skillex/pkg/logger"
	"skillex/pkg/middleware"
	"skillex/pkg/model"
)

type AdminHandler struct {
	service service.AdminService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewAdminHandler(service service.AdminService, auth *middleware.Authenticator, log *logger.Logger) *AdminHandler {
	return &AdminHandler{service: service, auth: auth, log: log}
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "", stats)
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, limit, err := httputil.ExtractPagination(r, httputil.DefaultPageSize)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	users, total, err := h.service.ListUsers(r.Context(), limit, httputil.Skip(page, limit))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteList(w, users, len(users), total, page, limit)
}

func (h *AdminHandler) ListListings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, limit, err := httputil.ExtractPagination(r, httputil.DefaultPageSize)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	filter := &model.ListingFilter{
		Status:   r.URL.Query().Get("status"),
		Category: r.URL.Query().Get("category"),
	}

	listings, total, err := h.service.ListListings(r.Context(), filter, limit, httputil.Skip(page, limit))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteList(w, listings, len(listings), total, page, limit)
}

func (h *AdminHandler) FlagListing(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	listing, err := h.service.FlagListing(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Listing status toggled", listing)
}

func (h *AdminHandler) RegisterRoutes(router *httprouter.Router) {
	admin := func(next httprouter.Handle) httprouter.Handle {
		return h.auth.RequireRole(next, model.RoleAdmin)
	}

	router.GET("/api/admin/stats", admin(h.Stats))
	router.GET("/api/admin/users", admin(h.ListUsers))
	router.GET("/api/admin/listings", admin(h.ListListings))
	router.PUT("/api/admin/listings/:id/flag", admin(h.FlagListing))
}
