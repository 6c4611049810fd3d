package api

import (
	"database/sql"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/campushare/campushare/internal/imaging"
	"github.com/campushare/campushare/internal/model"
	"github.com/campushare/campushare/internal/store"
)

// ItemsHandler handles item endpoints.
type ItemsHandler struct {
	DB *sql.DB
}

type createItemRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Condition   string `json:"condition"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Contact     string `json:"contact"`
}

type updateItemRequest struct {
	Name        *string `json:"name"`
	Category    *string `json:"category"`
	Condition   *string `json:"condition"`
	Description *string `json:"description"`
	Contact     *string `json:"contact"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type itemListResponse struct {
	Items  []model.Item `json:"items"`
	Total  int          `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

// List handles GET /api/items with q/category/kind/limit/offset filters.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.ItemFilter{
		Category: q.Get("category"),
		Kind:     q.Get("kind"),
		Query:    q.Get("q"),
		Limit:    intQuery(q.Get("limit"), 20),
		Offset:   intQuery(q.Get("offset"), 0),
	}
	if filter.Kind != "" && !model.ValidKind(filter.Kind) {
		jsonError(w, http.StatusBadRequest, "kind must be Donate or Lend")
		return
	}

	items, total, err := store.ListItems(r.Context(), h.DB, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, itemListResponse{Items: items, Total: total, Limit: filter.Limit, Offset: filter.Offset})
}

// Mine handles GET /api/items/mine: the caller's own items.
func (h *ItemsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	items, total, err := store.ListItems(r.Context(), h.DB, store.ItemFilter{OwnerID: actor.ID, Limit: 100})
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, itemListResponse{Items: items, Total: total, Limit: 100})
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := store.GetItem(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Create handles POST /api/items. Accepts JSON, or multipart form data
// with an optional photo under the "image" field.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())

	var req createItemRequest
	var photo *imaging.Result

	if isMultipart(r) {
		if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		req = createItemRequest{
			Name:        r.FormValue("name"),
			Category:    r.FormValue("category"),
			Condition:   r.FormValue("condition"),
			Kind:        r.FormValue("kind"),
			Description: r.FormValue("description"),
			Contact:     r.FormValue("contact"),
		}
		file, _, err := r.FormFile("image")
		if err == nil {
			defer file.Close()
			photo, err = imaging.Process(file)
			if err != nil {
				jsonError(w, http.StatusBadRequest, err.Error())
				return
			}
		}
	} else {
		if err := decodeJSON(r, &req); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	if req.Name == "" || req.Category == "" || req.Condition == "" || req.Kind == "" || req.Contact == "" {
		jsonError(w, http.StatusBadRequest, "missing required fields: name, category, condition, kind, contact")
		return
	}
	if !model.ValidKind(req.Kind) {
		jsonError(w, http.StatusBadRequest, "kind must be Donate or Lend")
		return
	}

	item, err := store.CreateItem(r.Context(), h.DB, store.NewItem{
		Name:        req.Name,
		Category:    req.Category,
		Condition:   req.Condition,
		Kind:        req.Kind,
		Description: req.Description,
		Contact:     req.Contact,
		OwnerID:     actor.ID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if photo != nil {
		if err := store.SetItemImage(r.Context(), h.DB, item.ID, actor, photo.Data, photo.MIME); err != nil {
			writeError(w, err)
			return
		}
		item, err = store.GetItem(r.Context(), h.DB, item.ID)
		if err != nil {
			writeError(w, err)
			return
		}
	}

	jsonResponse(w, http.StatusCreated, item)
}

// Update handles PATCH /api/items/{id}: owner-editable fields only, and
// only while the item is AVAILABLE.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name != nil && *req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name cannot be empty")
		return
	}

	item, err := store.UpdateItemFields(r.Context(), h.DB, r.PathValue("id"), actorFrom(r.Context()), store.ItemEdit{
		Name:        req.Name,
		Category:    req.Category,
		Condition:   req.Condition,
		Description: req.Description,
		Contact:     req.Contact,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// UpdateStatus handles PATCH /api/items/{id}/status: the owner moves the
// item one step forward along its kind's chain.
func (h *ItemsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status == "" {
		jsonError(w, http.StatusBadRequest, "status required")
		return
	}

	item, err := store.AdvanceItemStatus(r.Context(), h.DB, r.PathValue("id"), actorFrom(r.Context()), req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := store.DeleteItem(r.Context(), h.DB, r.PathValue("id"), actorFrom(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// UploadImage handles PUT /api/items/{id}/image.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes)
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	photo, err := imaging.Process(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetItemImage(r.Context(), h.DB, r.PathValue("id"), actorFrom(r.Context()), photo.Data, photo.MIME); err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "image uploaded"})
}

// GetImage handles GET /api/items/{id}/image.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	data, mimeType, err := store.GetItemImage(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

// ListRequests handles GET /api/items/{id}/requests (owner or admin).
func (h *ItemsHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := store.ListRequestsForItem(r.Context(), h.DB, r.PathValue("id"), actorFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if reqs == nil {
		reqs = []model.Request{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"requests": reqs})
}

// intQuery parses a numeric query parameter, falling back on garbage.
func intQuery(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// isMultipart reports whether the request body is multipart form data.
func isMultipart(r *http.Request) bool {
	ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(ct, "multipart/")
}
