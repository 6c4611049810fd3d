package api

import (
	"database/sql"
	"net/http"

	"github.com/campushare/campushare/internal/model"
	"github.com/campushare/campushare/internal/store"
)

// RequestsHandler handles request endpoints.
type RequestsHandler struct {
	DB *sql.DB
}

type createRequestRequest struct {
	ItemID  string `json:"item_id"`
	Message string `json:"message"`
}

// Create handles POST /api/requests.
func (h *RequestsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ItemID == "" {
		jsonError(w, http.StatusBadRequest, "item_id required")
		return
	}

	created, err := store.CreateRequest(r.Context(), h.DB, req.ItemID, actorFrom(r.Context()).ID, req.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, created)
}

// Mine handles GET /api/requests/mine: requests the caller has made.
func (h *RequestsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	reqs, err := store.ListRequestsByUser(r.Context(), h.DB, actorFrom(r.Context()).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if reqs == nil {
		reqs = []model.Request{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"requests": reqs})
}

// Approve handles POST /api/requests/{id}/approve. Only one request per
// item can ever be approved; concurrent approvals lose with a conflict.
func (h *RequestsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	req, err := store.ApproveRequest(r.Context(), h.DB, r.PathValue("id"), actorFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, req)
}

// Reject handles POST /api/requests/{id}/reject.
func (h *RequestsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	req, err := store.RejectRequest(r.Context(), h.DB, r.PathValue("id"), actorFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, req)
}

// Cancel handles DELETE /api/requests/{id}: the requester withdraws a
// pending request.
func (h *RequestsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := store.CancelRequest(r.Context(), h.DB, r.PathValue("id"), actorFrom(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "request cancelled"})
}
