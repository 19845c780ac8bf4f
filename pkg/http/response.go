package http

import (
	"encoding/json"
	"net/http"

	apperrors "skillex/pkg/errors"
)

// Response is the envelope every endpoint returns:
// {"success": bool, "message": "...", "data": {...}}.
// List endpoints additionally carry count/total/page/pages.
type Response struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Count   *int           `json:"count,omitempty"`
	Total   *int64         `json:"total,omitempty"`
	Page    *int           `json:"page,omitempty"`
	Pages   *int           `json:"pages,omitempty"`
	Data    any            `json:"data,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func WriteError(w http.ResponseWriter, err error) {
	appErr := apperrors.AsAppError(err)
	WriteJSON(w, appErr.StatusCode(), Response{
		Success: false,
		Message: appErr.Message,
		Details: appErr.Details,
	})
}

func WriteSuccess(w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func WriteCreated(w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// WriteList writes a paginated collection. pages is derived from total and
// the page size; a zero limit means the endpoint is unpaginated and count is
// the full result size.
func WriteList(w http.ResponseWriter, data any, count int, total int64, page, limit int) {
	resp := Response{
		Success: true,
		Count:   &count,
		Data:    data,
	}
	if limit > 0 {
		pages := int((total + int64(limit) - 1) / int64(limit))
		resp.Total = &total
		resp.Page = &page
		resp.Pages = &pages
	}
	WriteJSON(w, http.StatusOK, resp)
}
