package api

import (
	"database/sql"
	"net/http"

	"github.com/campushare/campushare/internal/model"
	"github.com/campushare/campushare/internal/store"
)

// FeedbackHandler handles report and feedback endpoints.
type FeedbackHandler struct {
	DB *sql.DB
}

type createFeedbackRequest struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Create handles POST /api/feedback.
func (h *FeedbackHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createFeedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !model.ValidFeedbackType(req.Type) {
		jsonError(w, http.StatusBadRequest, "type must be Report, Feedback or Query")
		return
	}
	if req.Message == "" {
		jsonError(w, http.StatusBadRequest, "message required")
		return
	}

	fb, err := store.CreateFeedback(r.Context(), h.DB, actorFrom(r.Context()).ID, req.Type, req.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, fb)
}

// List handles GET /api/admin/feedback.
func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := store.ListFeedback(r.Context(), h.DB)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []model.Feedback{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"feedback": entries})
}
