package posts

import (
	"time"

	"github.com/google/uuid"
)

// Content length bounds in characters.
const (
	PostContentMin    = 1
	PostContentMax    = 50_000
	CommentContentMin = 1
	CommentContentMax = 10_000
)

// Post is the public representation of a post.
// The same shape is returned by the store and stored in the cache.
type Post struct {
	ID          uuid.UUID `json:"id"`
	Content     string    `json:"content"`
	UserID      uuid.UUID `json:"user_id"`
	CreatedTime time.Time `json:"created_time"`
	UpdatedTime time.Time `json:"updated_time"`
}

// Comment is the public representation of a comment.
// PostID is the public id of the parent post.
type Comment struct {
	ID          uuid.UUID `json:"id"`
	Content     string    `json:"content"`
	UserID      uuid.UUID `json:"user_id"`
	PostID      uuid.UUID `json:"post_id"`
	CreatedTime time.Time `json:"created_time"`
	UpdatedTime time.Time `json:"updated_time"`
}

type CreatePostInput struct {
	Content string
	UserID  uuid.UUID
}

type UpdatePostInput struct {
	Content string
}

type AddCommentInput struct {
	Content string
	UserID  uuid.UUID
}

type UpdateCommentInput struct {
	Content string
}

// DeletedPost is the last state of a deleted post together with the ids of
// the comments removed with it.
type DeletedPost struct {
	Post       Post
	CommentIDs []uuid.UUID
}
