package types

import "time"

// Post is a user-owned entry. DeletedAt is nil while the post is visible.
type Post struct {
	ID        int64      `json:"id" example:"1"`
	OwnerID   int64      `json:"ownerId" example:"1"`
	Title     string     `json:"title" example:"Hi"`
	Content   string     `json:"content" example:"body"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt"`
}

// PostRequest is the create and update request body.
type PostRequest struct {
	Title   string `json:"title" validate:"notblank,max=255" example:"Hi"`
	Content string `json:"content" validate:"notblank" example:"body"`
}
