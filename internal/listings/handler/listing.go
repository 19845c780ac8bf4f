package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"skillex/internal/listings/service"
	apperrors "skillex/pkg/errors"
	httputil "skillex/pkg/http"
	"skillex/pkg/logger"
	"skillex/pkg/middleware"
	"skillex/pkg/model"
)

type ListingHandler struct {
	service service.ListingService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewListingHandler(service service.ListingService, auth *middleware.Authenticator, log *logger.Logger) *ListingHandler {
	return &ListingHandler{service: service, auth: auth, log: log}
}

func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, _ := middleware.IdentityFrom(r.Context())

	var listing model.Listing
	if err := json.NewDecoder(r.Body).Decode(&listing); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Create(r.Context(), identity, &listing); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, "Listing created successfully", listing)
}

func (h *ListingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	viewerID := ""
	if identity, ok := middleware.IdentityFrom(r.Context()); ok {
		viewerID = identity.UserID
	}

	listing, err := h.service.GetByID(r.Context(), ps.ByName("id"), viewerID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "", listing)
}

// Browse is the public search over active listings.
func (h *ListingHandler) Browse(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, limit, err := httputil.ExtractPagination(r, httputil.DefaultPageSize)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	filter.Status = model.ListingActive

	listings, total, err := h.service.Search(r.Context(), filter, limit, httputil.Skip(page, limit))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteList(w, listings, len(listings), total, page, limit)
}

// ListByTeacher serves a user's public listings. The owner sees every
// status; everyone else sees active only.
func (h *ListingHandler) ListByTeacher(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	teacherID := ps.ByName("id")

	page, limit, err := httputil.ExtractPagination(r, httputil.DefaultPageSize)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	filter := &model.ListingFilter{TeacherID: teacherID, Status: model.ListingActive}
	if identity, ok := middleware.IdentityFrom(r.Context()); ok {
		if identity.UserID == teacherID || identity.IsAdmin() {
			filter.Status = r.URL.Query().Get("status")
		}
	}

	listings, total, err := h.service.Search(r.Context(), filter, limit, httputil.Skip(page, limit))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteList(w, listings, len(listings), total, page, limit)
}

func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, _ := middleware.IdentityFrom(r.Context())

	var updates model.ListingUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	listing, err := h.service.Update(r.Context(), identity, ps.ByName("id"), &updates)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Listing updated successfully", listing)
}

func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, _ := middleware.IdentityFrom(r.Context())

	if err := h.service.Delete(r.Context(), identity, ps.ByName("id")); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Listing deleted successfully", nil)
}

func (h *ListingHandler) AddImage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, _ := middleware.IdentityFrom(r.Context())

	file, _, err := r.FormFile("image")
	if err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Missing file field: image"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Failed to read uploaded file"))
		return
	}

	url, err := h.service.AddImage(r.Context(), identity, ps.ByName("id"), data)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Image uploaded successfully", map[string]string{"image": url})
}

func (h *ListingHandler) Favorite(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, _ := middleware.IdentityFrom(r.Context())

	if err := h.service.Favorite(r.Context(), identity, ps.ByName("id")); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, "Listing added to favorites", nil)
}

func (h *ListingHandler) Unfavorite(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, _ := middleware.IdentityFrom(r.Context())

	if err := h.service.Unfavorite(r.Context(), identity, ps.ByName("id")); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Listing removed from favorites", nil)
}

func (h *ListingHandler) ListFavorites(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, _ := middleware.IdentityFrom(r.Context())

	listings, err := h.service.ListFavorites(r.Context(), identity)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteList(w, listings, len(listings), int64(len(listings)), 0, 0)
}

func parseFilter(r *http.Request) (*model.ListingFilter, error) {
	query := r.URL.Query()

	filter := &model.ListingFilter{
		Search:       query.Get("search"),
		Category:     query.Get("category"),
		LocationType: query.Get("locationType"),
		City:         query.Get("city"),
		Sort:         query.Get("sort"),
	}

	if s := query.Get("minPrice"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, apperrors.InvalidInput("invalid minPrice parameter: " + s)
		}
		filter.MinPrice = &v
	}
	if s := query.Get("maxPrice"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, apperrors.InvalidInput("invalid maxPrice parameter: " + s)
		}
		filter.MaxPrice = &v
	}

	return filter, nil
}

func (h *ListingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/listings", h.Browse)
	router.GET("/api/listings/:id", h.auth.Optional(h.GetByID))
	router.POST("/api/listings", h.auth.Require(h.Create))
	router.PUT("/api/listings/:id", h.auth.Require(h.Update))
	router.DELETE("/api/listings/:id", h.auth.Require(h.Delete))
	router.POST("/api/listings/:id/images", h.auth.Require(h.AddImage))

	router.POST("/api/listings/:id/favorite", h.auth.Require(h.Favorite))
	router.DELETE("/api/listings/:id/favorite", h.auth.Require(h.Unfavorite))
	router.GET("/api/favorites", h.auth.Require(h.ListFavorites))

	router.GET("/api/users/:id/listings", h.auth.Optional(h.ListByTeacher))
}
