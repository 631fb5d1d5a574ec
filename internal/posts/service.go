package posts

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/postcache/pkg/cache"
)

// ServiceOption configures the Service.
type ServiceOption func(*Service)

// WithLogger sets the logger for absorbed cache failures.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTTL sets the TTL for populated entries with the cache store's
// semantics: zero (the default) uses the store default, negative never expires.
func WithTTL(d time.Duration) ServiceOption {
	return func(s *Service) {
		s.ttl = d
	}
}

// Service serves posts and comments through a cache-aside layer.
//
// Reads check the cache first and fall back to the repositories on a miss,
// populating the cache with the result. Writes mutate the repositories first
// and then invalidate every key the mutation could have made stale.
// Cache failures never fail a request: reads fall through to the store and
// failed populates or invalidations are logged.
type Service struct {
	posts    PostRepository
	comments CommentRepository
	store    cache.Store
	logger   *slog.Logger

	post     *cache.Typed[Post]
	postList *cache.Typed[[]Post]
	comment  *cache.Typed[Comment]
	thread   *cache.Typed[[]Comment]

	ttl time.Duration
}

// NewService creates a Service.
func NewService(posts PostRepository, comments CommentRepository, store cache.Store, opts ...ServiceOption) *Service {
	s := &Service{
		posts:    posts,
		comments: comments,
		store:    store,
		logger:   slog.New(slog.DiscardHandler),
		post:     cache.NewTyped[Post](store, nil),
		postList: cache.NewTyped[[]Post](store, nil),
		comment:  cache.NewTyped[Comment](store, nil),
		thread:   cache.NewTyped[[]Comment](store, nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetPost returns a post by id.
func (s *Service) GetPost(ctx context.Context, id uuid.UUID) (Post, error) {
	return readThrough(ctx, s, s.post, PostKey(id), func(ctx context.Context) (Post, error) {
		return s.posts.FindByID(ctx, id)
	})
}

// GetAllPosts returns every post ordered by creation time.
func (s *Service) GetAllPosts(ctx context.Context) ([]Post, error) {
	return readThrough(ctx, s, s.postList, AllPostsKey, func(ctx context.Context) ([]Post, error) {
		list, err := s.posts.FindAll(ctx)
		return nonNil(list), err
	})
}

// GetComment returns a comment by id.
func (s *Service) GetComment(ctx context.Context, id uuid.UUID) (Comment, error) {
	return readThrough(ctx, s, s.comment, CommentKey(id), func(ctx context.Context) (Comment, error) {
		return s.comments.FindByID(ctx, id)
	})
}

// GetPostComments returns the comments of a post ordered by creation time.
func (s *Service) GetPostComments(ctx context.Context, postID uuid.UUID) ([]Comment, error) {
	return readThrough(ctx, s, s.thread, PostCommentsKey(postID), func(ctx context.Context) ([]Comment, error) {
		list, err := s.comments.FindByPost(ctx, postID)
		return nonNil(list), err
	})
}

// CreatePost stores a new post.
func (s *Service) CreatePost(ctx context.Context, in CreatePostInput) (Post, error) {
	p, err := s.posts.Create(ctx, in)
	if err != nil {
		return Post{}, err
	}
	s.invalidate(ctx, AllPostsKey)
	return p, nil
}

// UpdatePost replaces the content of a post.
func (s *Service) UpdatePost(ctx context.Context, id uuid.UUID, in UpdatePostInput) (Post, error) {
	p, err := s.posts.Update(ctx, id, in)
	if err != nil {
		return Post{}, err
	}
	s.invalidate(ctx, PostKey(id), AllPostsKey)
	return p, nil
}

// DeletePost removes a post with its comments and returns the post's last state.
func (s *Service) DeletePost(ctx context.Context, id uuid.UUID) (Post, error) {
	deleted, err := s.posts.Delete(ctx, id)
	if err != nil && deleted.Post.ID == uuid.Nil {
		return Post{}, err
	}

	keys := make([]string, 0, 3+len(deleted.CommentIDs))
	keys = append(keys, PostKey(id), AllPostsKey, PostCommentsKey(id))
	for _, cid := range deleted.CommentIDs {
		keys = append(keys, CommentKey(cid))
	}
	s.invalidate(ctx, keys...)

	// The post itself is gone, so the delete is reported as done.
	if err != nil {
		s.logger.ErrorContext(ctx, "post deleted with leftover comments",
			slog.String("post_id", id.String()),
			slog.String("error", err.Error()),
		)
	}
	return deleted.Post, nil
}

// AddComment attaches a new comment to a post.
func (s *Service) AddComment(ctx context.Context, postID uuid.UUID, in AddCommentInput) (Comment, error) {
	c, err := s.comments.Create(ctx, postID, in)
	if err != nil {
		return Comment{}, err
	}
	s.invalidate(ctx, PostCommentsKey(postID))
	return c, nil
}

// UpdateComment replaces the content of a comment.
func (s *Service) UpdateComment(ctx context.Context, id uuid.UUID, in UpdateCommentInput) (Comment, error) {
	c, err := s.comments.Update(ctx, id, in)
	if err != nil {
		return Comment{}, err
	}
	s.invalidate(ctx, CommentKey(id), PostCommentsKey(c.PostID))
	return c, nil
}

// DeleteComment removes a comment and returns its last state.
func (s *Service) DeleteComment(ctx context.Context, id uuid.UUID) (Comment, error) {
	c, err := s.comments.Delete(ctx, id)
	if err != nil {
		return Comment{}, err
	}
	s.invalidate(ctx, CommentKey(id), PostCommentsKey(c.PostID))
	return c, nil
}

// readThrough serves key from the cache or loads and caches it.
// Repository errors are returned as is and never cached.
func readThrough[V any](ctx context.Context, s *Service, c *cache.Typed[V], key string, load func(context.Context) (V, error)) (V, error) {
	v, err := c.Get(ctx, key)
	switch {
	case err == nil:
		return v, nil
	case errors.Is(err, cache.ErrNotFound):
	default:
		// Unreachable backend or undecodable entry: treat as a miss.
		s.logger.WarnContext(ctx, "cache read failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}

	v, err = load(ctx)
	if err != nil {
		var zero V
		return zero, err
	}

	if err := c.Set(ctx, key, v, s.ttl); err != nil {
		s.logger.WarnContext(ctx, "cache populate failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
	return v, nil
}

// invalidate deletes keys after a successful mutation. Failures are logged:
// the mutation stands and the entries expire with their TTL.
func (s *Service) invalidate(ctx context.Context, keys ...string) {
	// The mutation is committed; a client disconnect must not skip invalidation.
	ctx = context.WithoutCancel(ctx)
	if err := s.store.Delete(ctx, keys...); err != nil {
		s.logger.ErrorContext(ctx, "cache invalidation failed",
			slog.Any("keys", keys),
			slog.String("error", err.Error()),
		)
	}
}

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
