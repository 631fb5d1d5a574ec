package posts

import (
	"context"

	"github.com/google/uuid"
)

// PostRepository persists posts.
// Missing posts are reported as ErrPostNotFound, store failures wrap ErrPersistence.
type PostRepository interface {
	Create(ctx context.Context, in CreatePostInput) (Post, error)
	FindByID(ctx context.Context, id uuid.UUID) (Post, error)
	// FindAll returns every post ordered by creation time, never nil.
	FindAll(ctx context.Context) ([]Post, error)
	Update(ctx context.Context, id uuid.UUID, in UpdatePostInput) (Post, error)
	// Delete removes the post and its comments. If the post was removed but
	// the cascade failed, it returns the DeletedPost together with an error
	// matching ErrCascadeIncomplete.
	Delete(ctx context.Context, id uuid.UUID) (DeletedPost, error)
}

// CommentRepository persists comments.
// Comments reference their post by the store's internal identity; the
// repository resolves public post ids itself.
type CommentRepository interface {
	// Create fails with ErrPostNotFound, without inserting, if the post is missing.
	Create(ctx context.Context, postID uuid.UUID, in AddCommentInput) (Comment, error)
	FindByID(ctx context.Context, id uuid.UUID) (Comment, error)
	// FindByPost returns the post's comments ordered by creation time, never nil.
	// Fails with ErrPostNotFound if the post is missing.
	FindByPost(ctx context.Context, postID uuid.UUID) ([]Comment, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateCommentInput) (Comment, error)
	Delete(ctx context.Context, id uuid.UUID) (Comment, error)
}
