package posts_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/postcache/internal/posts"
	"github.com/dmitrymomot/postcache/pkg/cache"
)

// memoryDB is an in-memory document store shared by the fake repositories.
type memoryDB struct {
	mu       sync.Mutex
	posts    []posts.Post
	comments []posts.Comment
	calls    map[string]int
	err      error
	// cascadeErr fails post deletion after the post row is removed.
	cascadeErr error
}

func newMemoryDB() *memoryDB {
	return &memoryDB{calls: make(map[string]int)}
}

func (db *memoryDB) record(name string) error {
	db.calls[name]++
	return db.err
}

func (db *memoryDB) Calls(name string) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.calls[name]
}

func (db *memoryDB) FailWith(err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.err = err
}

func (db *memoryDB) FailCascadeWith(err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.cascadeErr = err
}

func (db *memoryDB) CommentCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.comments)
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func (db *memoryDB) postIndex(id uuid.UUID) int {
	return slices.IndexFunc(db.posts, func(p posts.Post) bool { return p.ID == id })
}

func (db *memoryDB) commentIndex(id uuid.UUID) int {
	return slices.IndexFunc(db.comments, func(c posts.Comment) bool { return c.ID == id })
}

type postRepo struct{ db *memoryDB }

func (r postRepo) Create(_ context.Context, in posts.CreatePostInput) (posts.Post, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.record("posts.Create"); err != nil {
		return posts.Post{}, err
	}

	ts := now()
	p := posts.Post{ID: uuid.New(), Content: in.Content, UserID: in.UserID, CreatedTime: ts, UpdatedTime: ts}
	r.db.posts = append(r.db.posts, p)
	return p, nil
}

func (r postRepo) FindByID(_ context.Context, id uuid.UUID) (posts.Post, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.record("posts.FindByID"); err != nil {
		return posts.Post{}, err
	}

	i := r.db.postIndex(id)
	if i < 0 {
		return posts.Post{}, posts.ErrPostNotFound
	}
	return r.db.posts[i], nil
}

func (r postRepo) FindAll(context.Context) ([]posts.Post, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.record("posts.FindAll"); err != nil {
		return nil, err
	}
	return slices.Clone(r.db.posts), nil
}

func (r postRepo) Update(_ context.Context, id uuid.UUID, in posts.UpdatePostInput) (posts.Post, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.record("posts.Update"); err != nil {
		return posts.Post{}, err
	}

	i := r.db.postIndex(id)
	if i < 0 {
		return posts.Post{}, posts.ErrPostNotFound
	}
	r.db.posts[i].Content = in.Content
	r.db.posts[i].UpdatedTime = now()
	return r.db.posts[i], nil
}

func (r postRepo) Delete(_ context.Context, id uuid.UUID) (posts.DeletedPost, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.record("posts.Delete"); err != nil {
		return posts.DeletedPost{}, err
	}

	i := r.db.postIndex(id)
	if i < 0 {
		return posts.DeletedPost{}, posts.ErrPostNotFound
	}

	deleted := posts.DeletedPost{Post: r.db.posts[i], CommentIDs: []uuid.UUID{}}
	r.db.posts = slices.Delete(r.db.posts, i, i+1)

	if r.db.cascadeErr != nil {
		// Comments are listed but never removed.
		for _, c := range r.db.comments {
			if c.PostID == id {
				deleted.CommentIDs = append(deleted.CommentIDs, c.ID)
			}
		}
		return deleted, errors.Join(posts.ErrCascadeIncomplete, r.db.cascadeErr)
	}
	r.db.comments = slices.DeleteFunc(r.db.comments, func(c posts.Comment) bool {
		if c.PostID == id {
			deleted.CommentIDs = append(deleted.CommentIDs, c.ID)
			return true
		}
		return false
	})
	return deleted, nil
}

type commentRepo struct{ db *memoryDB }

func (r commentRepo) Create(_ context.Context, postID uuid.UUID, in posts.AddCommentInput) (posts.Comment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.record("comments.Create"); err != nil {
		return posts.Comment{}, err
	}

	if r.db.postIndex(postID) < 0 {
		return posts.Comment{}, posts.ErrPostNotFound
	}

	ts := now()
	c := posts.Comment{ID: uuid.New(), Content: in.Content, UserID: in.UserID, PostID: postID, CreatedTime: ts, UpdatedTime: ts}
	r.db.comments = append(r.db.comments, c)
	return c, nil
}

func (r commentRepo) FindByID(_ context.Context, id uuid.UUID) (posts.Comment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.record("comments.FindByID"); err != nil {
		return posts.Comment{}, err
	}

	i := r.db.commentIndex(id)
	if i < 0 {
		return posts.Comment{}, posts.ErrCommentNotFound
	}
	return r.db.comments[i], nil
}

func (r commentRepo) FindByPost(_ context.Context, postID uuid.UUID) ([]posts.Comment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.record("comments.FindByPost"); err != nil {
		return nil, err
	}

	if r.db.postIndex(postID) < 0 {
		return nil, posts.ErrPostNotFound
	}

	var out []posts.Comment
	for _, c := range r.db.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r commentRepo) Update(_ context.Context, id uuid.UUID, in posts.UpdateCommentInput) (posts.Comment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.record("comments.Update"); err != nil {
		return posts.Comment{}, err
	}

	i := r.db.commentIndex(id)
	if i < 0 {
		return posts.Comment{}, posts.ErrCommentNotFound
	}
	r.db.comments[i].Content = in.Content
	r.db.comments[i].UpdatedTime = now()
	return r.db.comments[i], nil
}

func (r commentRepo) Delete(_ context.Context, id uuid.UUID) (posts.Comment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.record("comments.Delete"); err != nil {
		return posts.Comment{}, err
	}

	i := r.db.commentIndex(id)
	if i < 0 {
		return posts.Comment{}, posts.ErrCommentNotFound
	}
	c := r.db.comments[i]
	r.db.comments = slices.Delete(r.db.comments, i, i+1)
	return c, nil
}

// downStore is a cache whose backend is unreachable.
type downStore struct {
	mu      sync.Mutex
	deletes [][]string
}

func (s *downStore) Get(context.Context, string) ([]byte, error) {
	return nil, cache.ErrUnavailable
}

func (s *downStore) Set(context.Context, string, []byte, time.Duration) error {
	return cache.ErrUnavailable
}

func (s *downStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, keys)
	return cache.ErrUnavailable
}

func (s *downStore) Close() error { return nil }

type fixture struct {
	db    *memoryDB
	store cache.Store
	svc   *posts.Service
}

func newFixture(store cache.Store, opts ...posts.ServiceOption) *fixture {
	db := newMemoryDB()
	return &fixture{
		db:    db,
		store: store,
		svc:   posts.NewService(postRepo{db}, commentRepo{db}, store, opts...),
	}
}

func newMemoryFixture() *fixture {
	return newFixture(cache.NewMemory(cache.WithCleanupInterval(0)))
}
