package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/postcache/internal/posts"
	"github.com/dmitrymomot/postcache/pkg/db"
)

const postColumns = `id, content, user_id, created_time, updated_time`

// PostRepository implements posts.PostRepository.
type PostRepository struct {
	db DB
}

// NewPostRepository creates a PostRepository.
func NewPostRepository(conn DB) *PostRepository {
	return &PostRepository{db: conn}
}

func (r *PostRepository) Create(ctx context.Context, in posts.CreatePostInput) (posts.Post, error) {
	ts := now()
	p := posts.Post{
		ID:          uuid.New(),
		Content:     in.Content,
		UserID:      in.UserID,
		CreatedTime: ts,
		UpdatedTime: ts,
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO posts (`+postColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.Content, p.UserID, p.CreatedTime, p.UpdatedTime,
	)
	if err != nil {
		return posts.Post{}, storeError(err, posts.ErrPostNotFound)
	}
	return p, nil
}

func (r *PostRepository) FindByID(ctx context.Context, id uuid.UUID) (posts.Post, error) {
	row := r.db.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	p, err := scanPost(row)
	if err != nil {
		return posts.Post{}, storeError(err, posts.ErrPostNotFound)
	}
	return p, nil
}

func (r *PostRepository) FindAll(ctx context.Context) ([]posts.Post, error) {
	rows, err := r.db.Query(ctx, `SELECT `+postColumns+` FROM posts ORDER BY created_time, pk`)
	if err != nil {
		return nil, storeError(err, posts.ErrPostNotFound)
	}

	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (posts.Post, error) {
		return scanPost(row)
	})
	if err != nil {
		return nil, storeError(err, posts.ErrPostNotFound)
	}
	return list, nil
}

func (r *PostRepository) Update(ctx context.Context, id uuid.UUID, in posts.UpdatePostInput) (posts.Post, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE posts SET content = $2, updated_time = $3 WHERE id = $1 RETURNING `+postColumns,
		id, in.Content, now(),
	)
	p, err := scanPost(row)
	if err != nil {
		return posts.Post{}, storeError(err, posts.ErrPostNotFound)
	}
	return p, nil
}

// Delete removes the post and its comments in one transaction.
func (r *PostRepository) Delete(ctx context.Context, id uuid.UUID) (posts.DeletedPost, error) {
	var deleted posts.DeletedPost

	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var pk int64
		row := tx.QueryRow(ctx, `SELECT pk, `+postColumns+` FROM posts WHERE id = $1 FOR UPDATE`, id)
		if err := row.Scan(&pk, &deleted.Post.ID, &deleted.Post.Content, &deleted.Post.UserID,
			&deleted.Post.CreatedTime, &deleted.Post.UpdatedTime); err != nil {
			return err
		}
		deleted.Post = normalizePost(deleted.Post)

		rows, err := tx.Query(ctx, `DELETE FROM comments WHERE post_pk = $1 RETURNING id`, pk)
		if err != nil {
			return err
		}
		if deleted.CommentIDs, err = pgx.CollectRows(rows, pgx.RowTo[uuid.UUID]); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `DELETE FROM posts WHERE pk = $1`, pk)
		return err
	})
	if err != nil {
		return posts.DeletedPost{}, storeError(err, posts.ErrPostNotFound)
	}
	return deleted, nil
}

func scanPost(row pgx.Row) (posts.Post, error) {
	var p posts.Post
	if err := row.Scan(&p.ID, &p.Content, &p.UserID, &p.CreatedTime, &p.UpdatedTime); err != nil {
		return posts.Post{}, err
	}
	return normalizePost(p), nil
}

// normalizePost drops the session time zone pgx applies to timestamptz.
func normalizePost(p posts.Post) posts.Post {
	p.CreatedTime = p.CreatedTime.UTC()
	p.UpdatedTime = p.UpdatedTime.UTC()
	return p
}

var _ posts.PostRepository = (*PostRepository)(nil)
