package api

import (
	"database/sql"
	"net/http"

	"github.com/campushare/campushare/internal/auth"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, verifier auth.Verifier) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret, Verifier: verifier}
	usersHandler := &UsersHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db}
	requestsHandler := &RequestsHandler{DB: db}
	wishlistHandler := &WishlistHandler{DB: db}
	feedbackHandler := &FeedbackHandler{DB: db}
	adminHandler := &AdminHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	admin := func(h http.HandlerFunc) http.Handler { return authMW(RequireAdmin(h)) }

	// Public routes.
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("POST /api/auth/google", authHandler.GoogleLogin)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Profile.
	mux.Handle("GET /api/users/me", authMW(http.HandlerFunc(usersHandler.Me)))
	mux.Handle("PATCH /api/users/me", authMW(http.HandlerFunc(usersHandler.UpdateMe)))
	mux.Handle("PUT /api/users/me/picture", authMW(http.HandlerFunc(usersHandler.UploadPicture)))
	mux.Handle("GET /api/users/{id}/picture", authMW(http.HandlerFunc(usersHandler.GetPicture)))

	// Items. Ownership and state rules are enforced in the store layer.
	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("GET /api/items/mine", authMW(http.HandlerFunc(itemsHandler.Mine)))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("PATCH /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Update)))
	mux.Handle("PATCH /api/items/{id}/status", authMW(http.HandlerFunc(itemsHandler.UpdateStatus)))
	mux.Handle("DELETE /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Delete)))
	mux.Handle("PUT /api/items/{id}/image", authMW(http.HandlerFunc(itemsHandler.UploadImage)))
	mux.Handle("GET /api/items/{id}/image", authMW(http.HandlerFunc(itemsHandler.GetImage)))
	mux.Handle("GET /api/items/{id}/requests", authMW(http.HandlerFunc(itemsHandler.ListRequests)))

	// Requests.
	mux.Handle("POST /api/requests", authMW(http.HandlerFunc(requestsHandler.Create)))
	mux.Handle("GET /api/requests/mine", authMW(http.HandlerFunc(requestsHandler.Mine)))
	mux.Handle("POST /api/requests/{id}/approve", authMW(http.HandlerFunc(requestsHandler.Approve)))
	mux.Handle("POST /api/requests/{id}/reject", authMW(http.HandlerFunc(requestsHandler.Reject)))
	mux.Handle("DELETE /api/requests/{id}", authMW(http.HandlerFunc(requestsHandler.Cancel)))

	// Wishlist.
	mux.Handle("GET /api/wishlist", authMW(http.HandlerFunc(wishlistHandler.List)))
	mux.Handle("POST /api/wishlist", authMW(http.HandlerFunc(wishlistHandler.Create)))
	mux.Handle("DELETE /api/wishlist/{id}", authMW(http.HandlerFunc(wishlistHandler.Delete)))
	mux.Handle("GET /api/wishlist/{id}/image", authMW(http.HandlerFunc(wishlistHandler.GetImage)))

	// Feedback.
	mux.Handle("POST /api/feedback", authMW(http.HandlerFunc(feedbackHandler.Create)))

	// Admin.
	mux.Handle("GET /api/admin/stats", admin(adminHandler.Stats))
	mux.Handle("GET /api/admin/users", admin(adminHandler.Users))
	mux.Handle("PATCH /api/admin/users/{id}/role", admin(adminHandler.UpdateUserRole))
	mux.Handle("GET /api/admin/requests", admin(adminHandler.Requests))
	mux.Handle("DELETE /api/admin/requests/{id}", admin(adminHandler.DeleteRequest))
	mux.Handle("GET /api/admin/feedback", admin(feedbackHandler.List))

	return mux
}
