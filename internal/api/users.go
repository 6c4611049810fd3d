package api

import (
	"database/sql"
	"net/http"

	"github.com/campushare/campushare/internal/imaging"
	"github.com/campushare/campushare/internal/store"
)

// UsersHandler handles profile endpoints.
type UsersHandler struct {
	DB *sql.DB
}

type updateProfileRequest struct {
	Name       *string `json:"name"`
	Department *string `json:"department"`
	Semester   *string `json:"semester"`
	WhatsApp   *string `json:"whatsapp"`
}

// Me handles GET /api/users/me: the caller's profile with activity counts.
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := store.GetUserWithCounts(r.Context(), h.DB, actorFrom(r.Context()).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

// UpdateMe handles PATCH /api/users/me.
func (h *UsersHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name != nil && *req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name cannot be empty")
		return
	}

	user, err := store.UpdateUserProfile(r.Context(), h.DB, actorFrom(r.Context()).ID, store.ProfileEdit{
		Name:       req.Name,
		Department: req.Department,
		Semester:   req.Semester,
		WhatsApp:   req.WhatsApp,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

// UploadPicture handles PUT /api/users/me/picture.
func (h *UsersHandler) UploadPicture(w http.ResponseWriter, r *http.Request) {
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

	if err := store.SetUserPicture(r.Context(), h.DB, actorFrom(r.Context()).ID, photo.Data, photo.MIME); err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "picture uploaded"})
}

// GetPicture handles GET /api/users/{id}/picture.
func (h *UsersHandler) GetPicture(w http.ResponseWriter, r *http.Request) {
	data, mimeType, err := store.GetUserPicture(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no picture")
		return
	}

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
