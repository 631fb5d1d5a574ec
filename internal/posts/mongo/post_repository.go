package mongo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dmitrymomot/postcache/internal/posts"
)

// PostRepository implements posts.PostRepository.
type PostRepository struct {
	posts    collection
	comments collection
}

// NewPostRepository creates a PostRepository on db.
func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{
		posts:    db.Collection(PostsCollection),
		comments: db.Collection(CommentsCollection),
	}
}

func (r *PostRepository) Create(ctx context.Context, in posts.CreatePostInput) (posts.Post, error) {
	ts := now()
	doc := postDoc{
		ID:          uuid.NewString(),
		Content:     in.Content,
		UserID:      in.UserID.String(),
		CreatedTime: ts,
		UpdatedTime: ts,
	}
	if _, err := r.posts.InsertOne(ctx, doc); err != nil {
		return posts.Post{}, storeError(err, posts.ErrPostNotFound)
	}
	return decodePost(doc)
}

func (r *PostRepository) FindByID(ctx context.Context, id uuid.UUID) (posts.Post, error) {
	var doc postDoc
	if err := r.posts.FindOne(ctx, bson.M{"id": id.String()}).Decode(&doc); err != nil {
		return posts.Post{}, storeError(err, posts.ErrPostNotFound)
	}
	return decodePost(doc)
}

func (r *PostRepository) FindAll(ctx context.Context) ([]posts.Post, error) {
	cur, err := r.posts.Find(ctx, bson.M{}, options.Find().SetSort(creationOrder))
	if err != nil {
		return nil, storeError(err, posts.ErrPostNotFound)
	}

	var docs []postDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storeError(err, posts.ErrPostNotFound)
	}

	list := make([]posts.Post, 0, len(docs))
	for _, doc := range docs {
		p, err := decodePost(doc)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, nil
}

func (r *PostRepository) Update(ctx context.Context, id uuid.UUID, in posts.UpdatePostInput) (posts.Post, error) {
	var doc postDoc
	err := r.posts.FindOneAndUpdate(ctx,
		bson.M{"id": id.String()},
		bson.M{"$set": bson.M{"content": in.Content, "updated_time": now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return posts.Post{}, storeError(err, posts.ErrPostNotFound)
	}
	return decodePost(doc)
}

// Delete removes the post first so no new comment can resolve it, then
// removes its comments. Once the post is gone a failing cascade is reported
// as ErrCascadeIncomplete alongside the DeletedPost.
func (r *PostRepository) Delete(ctx context.Context, id uuid.UUID) (posts.DeletedPost, error) {
	var doc postDoc
	if err := r.posts.FindOneAndDelete(ctx, bson.M{"id": id.String()}).Decode(&doc); err != nil {
		return posts.DeletedPost{}, storeError(err, posts.ErrPostNotFound)
	}

	var errs []error
	p, err := decodePost(doc)
	if err != nil {
		p = posts.Post{ID: id}
		errs = append(errs, err)
	}
	deleted := posts.DeletedPost{Post: p}

	ids, err := r.deleteComments(ctx, doc.OID)
	deleted.CommentIDs = ids
	if err != nil {
		errs = append(errs, posts.ErrCascadeIncomplete, storeError(err, posts.ErrPostNotFound))
	}
	return deleted, errors.Join(errs...)
}

// deleteComments removes the comments of a post and returns the ids it saw.
// Removal is attempted even when listing fails.
func (r *PostRepository) deleteComments(ctx context.Context, post primitive.ObjectID) ([]uuid.UUID, error) {
	// The post is already gone; finish the cascade even if the caller left.
	ctx = context.WithoutCancel(ctx)
	filter := bson.M{"post": post}

	ids, listErr := r.commentIDs(ctx, filter)
	if _, err := r.comments.DeleteMany(ctx, filter); err != nil {
		return ids, errors.Join(listErr, err)
	}
	return ids, listErr
}

func (r *PostRepository) commentIDs(ctx context.Context, filter bson.M) ([]uuid.UUID, error) {
	cur, err := r.comments.Find(ctx, filter, options.Find().SetProjection(bson.M{"id": 1}))
	if err != nil {
		return nil, err
	}
	var refs []struct {
		ID string `bson:"id"`
	}
	if err := cur.All(ctx, &refs); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(refs))
	for _, ref := range refs {
		cid, err := uuid.Parse(ref.ID)
		if err != nil {
			return ids, err
		}
		ids = append(ids, cid)
	}
	return ids, nil
}

func decodePost(doc postDoc) (posts.Post, error) {
	p, err := doc.toPost()
	if err != nil {
		return posts.Post{}, storeError(err, posts.ErrPostNotFound)
	}
	return p, nil
}

var _ posts.PostRepository = (*PostRepository)(nil)
