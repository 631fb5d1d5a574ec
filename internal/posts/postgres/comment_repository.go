package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/postcache/internal/posts"
	"github.com/dmitrymomot/postcache/pkg/db"
)

// Columns of a comment joined with its post (alias p) for the public post id.
const commentColumns = `c.id, c.content, c.user_id, p.id, c.created_time, c.updated_time`

// CommentRepository implements posts.CommentRepository.
type CommentRepository struct {
	db DB
}

// NewCommentRepository creates a CommentRepository.
func NewCommentRepository(conn DB) *CommentRepository {
	return &CommentRepository{db: conn}
}

// Create inserts a comment after locking the parent post against deletion.
func (r *CommentRepository) Create(ctx context.Context, postID uuid.UUID, in posts.AddCommentInput) (posts.Comment, error) {
	ts := now()
	c := posts.Comment{
		ID:          uuid.New(),
		Content:     in.Content,
		UserID:      in.UserID,
		PostID:      postID,
		CreatedTime: ts,
		UpdatedTime: ts,
	}

	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		postPK, err := resolvePost(ctx, tx, postID, "FOR SHARE")
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO comments (id, post_pk, content, user_id, created_time, updated_time)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			c.ID, postPK, c.Content, c.UserID, c.CreatedTime, c.UpdatedTime,
		)
		return err
	})
	if err != nil {
		return posts.Comment{}, storeError(err, posts.ErrPostNotFound)
	}
	return c, nil
}

func (r *CommentRepository) FindByID(ctx context.Context, id uuid.UUID) (posts.Comment, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+commentColumns+` FROM comments c JOIN posts p ON p.pk = c.post_pk WHERE c.id = $1`,
		id,
	)
	c, err := scanComment(row)
	if err != nil {
		return posts.Comment{}, storeError(err, posts.ErrCommentNotFound)
	}
	return c, nil
}

func (r *CommentRepository) FindByPost(ctx context.Context, postID uuid.UUID) ([]posts.Comment, error) {
	postPK, err := resolvePost(ctx, r.db, postID, "")
	if err != nil {
		return nil, storeError(err, posts.ErrPostNotFound)
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+commentColumns+` FROM comments c JOIN posts p ON p.pk = c.post_pk
		 WHERE c.post_pk = $1 ORDER BY c.created_time, c.pk`,
		postPK,
	)
	if err != nil {
		return nil, storeError(err, posts.ErrPostNotFound)
	}

	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (posts.Comment, error) {
		return scanComment(row)
	})
	if err != nil {
		return nil, storeError(err, posts.ErrPostNotFound)
	}
	return list, nil
}

func (r *CommentRepository) Update(ctx context.Context, id uuid.UUID, in posts.UpdateCommentInput) (posts.Comment, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE comments c SET content = $2, updated_time = $3
		 FROM posts p WHERE c.id = $1 AND p.pk = c.post_pk
		 RETURNING `+commentColumns,
		id, in.Content, now(),
	)
	c, err := scanComment(row)
	if err != nil {
		return posts.Comment{}, storeError(err, posts.ErrCommentNotFound)
	}
	return c, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id uuid.UUID) (posts.Comment, error) {
	row := r.db.QueryRow(ctx,
		`DELETE FROM comments c USING posts p
		 WHERE c.id = $1 AND p.pk = c.post_pk
		 RETURNING `+commentColumns,
		id,
	)
	c, err := scanComment(row)
	if err != nil {
		return posts.Comment{}, storeError(err, posts.ErrCommentNotFound)
	}
	return c, nil
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// resolvePost returns the internal key of a post by its public id.
// lock is appended to the query, e.g. "FOR SHARE".
func resolvePost(ctx context.Context, q rowQuerier, postID uuid.UUID, lock string) (int64, error) {
	var pk int64
	err := q.QueryRow(ctx, `SELECT pk FROM posts WHERE id = $1 `+lock, postID).Scan(&pk)
	if err != nil {
		return 0, storeError(err, posts.ErrPostNotFound)
	}
	return pk, nil
}

func scanComment(row pgx.Row) (posts.Comment, error) {
	var c posts.Comment
	if err := row.Scan(&c.ID, &c.Content, &c.UserID, &c.PostID, &c.CreatedTime, &c.UpdatedTime); err != nil {
		return posts.Comment{}, err
	}
	c.CreatedTime = c.CreatedTime.UTC()
	c.UpdatedTime = c.UpdatedTime.UTC()
	return c, nil
}

var _ posts.CommentRepository = (*CommentRepository)(nil)
