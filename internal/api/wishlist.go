package api

import (
	"database/sql"
	"net/http"

	"github.com/campushare/campushare/internal/imaging"
	"github.com/campushare/campushare/internal/model"
	"github.com/campushare/campushare/internal/store"
)

// WishlistHandler handles wish post endpoints.
type WishlistHandler struct {
	DB *sql.DB
}

// List handles GET /api/wishlist.
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := store.ListWishPosts(r.Context(), h.DB)
	if err != nil {
		writeError(w, err)
		return
	}
	if posts == nil {
		posts = []model.WishPost{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{"posts": posts})
}

// Create handles POST /api/wishlist: multipart form with the wanted item
// name and an optional reference image.
func (h *WishlistHandler) Create(w http.ResponseWriter, r *http.Request) {
	var itemName string
	var photo *imaging.Result

	if isMultipart(r) {
		if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		itemName = r.FormValue("item_name")
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
		var req struct {
			ItemName string `json:"item_name"`
		}
		if err := decodeJSON(r, &req); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		itemName = req.ItemName
	}

	if itemName == "" {
		jsonError(w, http.StatusBadRequest, "item_name required")
		return
	}

	var data []byte
	var mimeType string
	if photo != nil {
		data = photo.Data
		mimeType = photo.MIME
	}

	post, err := store.CreateWishPost(r.Context(), h.DB, actorFrom(r.Context()).ID, itemName, data, mimeType)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, post)
}

// Delete handles DELETE /api/wishlist/{id}: own posts, or any as admin.
func (h *WishlistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := store.DeleteWishPost(r.Context(), h.DB, r.PathValue("id"), actorFrom(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "wish post deleted"})
}

// GetImage handles GET /api/wishlist/{id}/image.
func (h *WishlistHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	data, mimeType, err := store.GetWishPostImage(r.Context(), h.DB, r.PathValue("id"))
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
