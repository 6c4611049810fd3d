package model

import "time"

// WishPost is a "looking for this item" post on the community wishlist.
type WishPost struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ItemName  string    `json:"item_name"`
	ImageMime string    `json:"image_mime,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	UserName    string `json:"user_name,omitempty"`
	UserPicture string `json:"user_picture,omitempty"`
}
