package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/campushare/campushare/internal/lifecycle"
	"github.com/campushare/campushare/internal/model"
)

// CreateWishPost creates a wishlist post, optionally with an image.
func CreateWishPost(ctx context.Context, db *sql.DB, userID, itemName string, image []byte, mime string) (*model.WishPost, error) {
	id := newID()
	_, err := db.ExecContext(ctx,
		`INSERT INTO wish_posts (id, user_id, item_name, image, image_mime)
		 VALUES (?, ?, ?, ?, NULLIF(?, ''))`,
		id, userID, itemName, image, mime,
	)
	if err != nil {
		return nil, fmt.Errorf("creating wish post: %w", err)
	}
	return GetWishPost(ctx, db, id)
}

// GetWishPost returns a wish post by ID, or nil.
func GetWishPost(ctx context.Context, db *sql.DB, id string) (*model.WishPost, error) {
	w := &model.WishPost{}
	var mime, userPicture sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT w.id, w.user_id, w.item_name, w.image_mime, w.created_at, u.name, u.picture_url
		 FROM wish_posts w JOIN users u ON u.id = w.user_id
		 WHERE w.id = ?`, id,
	).Scan(&w.ID, &w.UserID, &w.ItemName, &mime, &w.CreatedAt, &w.UserName, &userPicture)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting wish post: %w", err)
	}
	w.ImageMime = mime.String
	w.UserPicture = userPicture.String
	if mime.Valid {
		w.ImageURL = "/api/wishlist/" + w.ID + "/image"
	}
	return w, nil
}

// ListWishPosts returns all wish posts, newest first.
func ListWishPosts(ctx context.Context, db *sql.DB) ([]model.WishPost, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT w.id, w.user_id, w.item_name, w.image_mime, w.created_at, u.name, u.picture_url
		 FROM wish_posts w JOIN users u ON u.id = w.user_id
		 ORDER BY w.created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing wish posts: %w", err)
	}
	defer rows.Close()

	var posts []model.WishPost
	for rows.Next() {
		var w model.WishPost
		var mime, userPicture sql.NullString
		if err := rows.Scan(&w.ID, &w.UserID, &w.ItemName, &mime, &w.CreatedAt, &w.UserName, &userPicture); err != nil {
			return nil, fmt.Errorf("scanning wish post: %w", err)
		}
		w.ImageMime = mime.String
		w.UserPicture = userPicture.String
		if mime.Valid {
			w.ImageURL = "/api/wishlist/" + w.ID + "/image"
		}
		posts = append(posts, w)
	}
	return posts, rows.Err()
}

// GetWishPostImage returns a wish post's image data and MIME type.
func GetWishPostImage(ctx context.Context, db *sql.DB, id string) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM wish_posts WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting wish post image: %w", err)
	}
	return image, mime.String, nil
}

// DeleteWishPost removes a wish post. Posters may delete their own; admins
// may delete any.
func DeleteWishPost(ctx context.Context, db *sql.DB, id string, actor lifecycle.Actor) error {
	w, err := GetWishPost(ctx, db, id)
	if err != nil {
		return err
	}
	if w == nil {
		return lifecycle.NotFound("wish post not found")
	}
	if w.UserID != actor.ID && !actor.IsAdmin() {
		return lifecycle.Forbidden("you can only delete your own wish posts")
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM wish_posts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting wish post: %w", err)
	}
	return nil
}
