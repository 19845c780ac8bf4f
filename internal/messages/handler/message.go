package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"skillex/internal/messages/service"
	apperrors "skillex/pkg/errors"
	httputil "skillex/pkg/http"
	"skillex/pkg/logger"
	"skillex/pkg/middleware"
)

type MessageHandler struct {
	service service.MessageService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewMessageHandler(service service.MessageService, auth *middleware.Authenticator, log *logger.Logger) *MessageHandler {
	return &MessageHandler{service: service, auth: auth, log: log}
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, _ := middleware.IdentityFrom(r.Context())

	var req service.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	message, err := h.service.Send(r.Context(), identity, &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, "Message sent", message)
}

func (h *MessageHandler) ListThreads(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, _ := middleware.IdentityFrom(r.Context())

	threads, err := h.service.ListThreads(r.Context(), identity)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteList(w, threads, len(threads), int64(len(threads)), 0, 0)
}

func (h *MessageHandler) ListThread(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, _ := middleware.IdentityFrom(r.Context())

	page, limit, err := httputil.ExtractPagination(r, httputil.MaxPageSize)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	messages, total, err := h.service.ListThread(r.Context(), identity, ps.ByName("threadId"), limit, httputil.Skip(page, limit))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteList(w, messages, len(messages), total, page, limit)
}

func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, _ := middleware.IdentityFrom(r.Context())

	if err := h.service.MarkRead(r.Context(), identity, ps.ByName("id")); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Message marked as read", nil)
}

func (h *MessageHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/messages", h.auth.Require(h.Send))
	router.GET("/api/messages/threads", h.auth.Require(h.ListThreads))
	router.GET("/api/messages/threads/:threadId", h.auth.Require(h.ListThread))
	router.PUT("/api/messages/:id/read", h.auth.Require(h.MarkRead))
}
