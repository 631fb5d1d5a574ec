package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dmitrymomot/postcache/internal/posts"
)

// CommentRepository implements posts.CommentRepository.
type CommentRepository struct {
	posts    collection
	comments collection
}

// NewCommentRepository creates a CommentRepository on db.
func NewCommentRepository(db *mongo.Database) *CommentRepository {
	return &CommentRepository{
		posts:    db.Collection(PostsCollection),
		comments: db.Collection(CommentsCollection),
	}
}

// Create inserts a comment under an existing post. If the post is deleted
// while the insert runs, the comment is removed again and ErrPostNotFound
// is returned; if that removal fails the error is ErrPersistence.
func (r *CommentRepository) Create(ctx context.Context, postID uuid.UUID, in posts.AddCommentInput) (posts.Comment, error) {
	parent, err := r.resolvePost(ctx, postID)
	if err != nil {
		return posts.Comment{}, err
	}

	ts := now()
	doc := commentDoc{
		ID:          uuid.NewString(),
		Post:        parent,
		PostID:      postID.String(),
		Content:     in.Content,
		UserID:      in.UserID.String(),
		CreatedTime: ts,
		UpdatedTime: ts,
	}
	res, err := r.comments.InsertOne(ctx, doc)
	if err != nil {
		return posts.Comment{}, storeError(err, posts.ErrPostNotFound)
	}

	if _, err := r.resolvePost(ctx, postID); errors.Is(err, posts.ErrPostNotFound) {
		_, delErr := r.comments.DeleteOne(context.WithoutCancel(ctx), bson.M{"_id": res.InsertedID})
		if delErr != nil {
			return posts.Comment{}, errors.Join(posts.ErrPersistence, fmt.Errorf("remove orphaned comment %s: %w", doc.ID, delErr))
		}
		return posts.Comment{}, posts.ErrPostNotFound
	}

	return decodeComment(doc)
}

func (r *CommentRepository) FindByID(ctx context.Context, id uuid.UUID) (posts.Comment, error) {
	var doc commentDoc
	if err := r.comments.FindOne(ctx, bson.M{"id": id.String()}).Decode(&doc); err != nil {
		return posts.Comment{}, storeError(err, posts.ErrCommentNotFound)
	}
	return decodeComment(doc)
}

func (r *CommentRepository) FindByPost(ctx context.Context, postID uuid.UUID) ([]posts.Comment, error) {
	parent, err := r.resolvePost(ctx, postID)
	if err != nil {
		return nil, err
	}

	cur, err := r.comments.Find(ctx, bson.M{"post": parent}, options.Find().SetSort(creationOrder))
	if err != nil {
		return nil, storeError(err, posts.ErrPostNotFound)
	}

	var docs []commentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storeError(err, posts.ErrPostNotFound)
	}

	list := make([]posts.Comment, 0, len(docs))
	for _, doc := range docs {
		c, err := decodeComment(doc)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, nil
}

func (r *CommentRepository) Update(ctx context.Context, id uuid.UUID, in posts.UpdateCommentInput) (posts.Comment, error) {
	var doc commentDoc
	err := r.comments.FindOneAndUpdate(ctx,
		bson.M{"id": id.String()},
		bson.M{"$set": bson.M{"content": in.Content, "updated_time": now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return posts.Comment{}, storeError(err, posts.ErrCommentNotFound)
	}
	return decodeComment(doc)
}

func (r *CommentRepository) Delete(ctx context.Context, id uuid.UUID) (posts.Comment, error) {
	var doc commentDoc
	if err := r.comments.FindOneAndDelete(ctx, bson.M{"id": id.String()}).Decode(&doc); err != nil {
		return posts.Comment{}, storeError(err, posts.ErrCommentNotFound)
	}
	return decodeComment(doc)
}

// resolvePost returns the ObjectID of a post by its public id.
func (r *CommentRepository) resolvePost(ctx context.Context, postID uuid.UUID) (primitive.ObjectID, error) {
	var ref struct {
		OID primitive.ObjectID `bson:"_id"`
	}
	err := r.posts.FindOne(ctx,
		bson.M{"id": postID.String()},
		options.FindOne().SetProjection(bson.M{"_id": 1}),
	).Decode(&ref)
	if err != nil {
		return primitive.NilObjectID, storeError(err, posts.ErrPostNotFound)
	}
	return ref.OID, nil
}

func decodeComment(doc commentDoc) (posts.Comment, error) {
	c, err := doc.toComment()
	if err != nil {
		return posts.Comment{}, storeError(err, posts.ErrCommentNotFound)
	}
	return c, nil
}

var _ posts.CommentRepository = (*CommentRepository)(nil)
