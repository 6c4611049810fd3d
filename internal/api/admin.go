package api

import (
	"database/sql"
	"net/http"

	"github.com/campushare/campushare/internal/model"
	"github.com/campushare/campushare/internal/store"
)

// AdminHandler handles admin-only endpoints.
type AdminHandler struct {
	DB *sql.DB
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := store.GetStats(r.Context(), h.DB)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}

// Users handles GET /api/admin/users with search and paging.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	users, total, err := store.ListUsers(r.Context(), h.DB, q.Get("q"), intQuery(q.Get("limit"), 50), intQuery(q.Get("offset"), 0))
	if err != nil {
		writeError(w, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"users": users, "total": total})
}

// UpdateUserRole handles PATCH /api/admin/users/{id}/role. Admins cannot
// demote themselves, so the system always keeps at least one admin.
func (h *AdminHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	var req updateRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !model.ValidRole(req.Role) {
		jsonError(w, http.StatusBadRequest, "role must be admin or user")
		return
	}

	id := r.PathValue("id")
	if id == actorFrom(r.Context()).ID && req.Role != model.RoleAdmin {
		jsonError(w, http.StatusBadRequest, "you cannot demote yourself")
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}

	if err := store.UpdateUserRole(r.Context(), h.DB, id, req.Role); err != nil {
		writeError(w, err)
		return
	}
	user.Role = req.Role
	jsonResponse(w, http.StatusOK, user)
}

// Requests handles GET /api/admin/requests with an optional status filter.
func (h *AdminHandler) Requests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := q.Get("status")
	if status != "" && status != model.RequestPending && status != model.RequestApproved && status != model.RequestRejected {
		jsonError(w, http.StatusBadRequest, "status must be Pending, Approved or Rejected")
		return
	}

	reqs, total, err := store.ListRequests(r.Context(), h.DB, status, intQuery(q.Get("limit"), 50), intQuery(q.Get("offset"), 0))
	if err != nil {
		writeError(w, err)
		return
	}
	if reqs == nil {
		reqs = []model.Request{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"requests": reqs, "total": total})
}

// DeleteRequest handles DELETE /api/admin/requests/{id}: removes a
// request regardless of its status.
func (h *AdminHandler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	if err := store.DeleteRequest(r.Context(), h.DB, r.PathValue("id"), actorFrom(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "request deleted"})
}
