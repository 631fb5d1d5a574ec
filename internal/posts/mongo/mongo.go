// Package mongo stores posts and comments in MongoDB.
//
// Each document keeps the driver-assigned ObjectID next to the public UUID.
// Comments reference their post by that ObjectID and carry the post's
// public id for reads.
package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dmitrymomot/postcache/internal/posts"
)

// Collection names.
const (
	PostsCollection    = "posts"
	CommentsCollection = "comments"
)

// collection is the part of *mongo.Collection the repositories use.
type collection interface {
	InsertOne(ctx context.Context, document any, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	FindOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) *mongo.SingleResult
	Find(ctx context.Context, filter any, opts ...*options.FindOptions) (*mongo.Cursor, error)
	FindOneAndUpdate(ctx context.Context, filter, update any, opts ...*options.FindOneAndUpdateOptions) *mongo.SingleResult
	FindOneAndDelete(ctx context.Context, filter any, opts ...*options.FindOneAndDeleteOptions) *mongo.SingleResult
	DeleteOne(ctx context.Context, filter any, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	DeleteMany(ctx context.Context, filter any, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

type postDoc struct {
	OID         primitive.ObjectID `bson:"_id,omitempty"`
	ID          string             `bson:"id"`
	Content     string             `bson:"content"`
	UserID      string             `bson:"user_id"`
	CreatedTime time.Time          `bson:"created_time"`
	UpdatedTime time.Time          `bson:"updated_time"`
}

type commentDoc struct {
	OID         primitive.ObjectID `bson:"_id,omitempty"`
	ID          string             `bson:"id"`
	Post        primitive.ObjectID `bson:"post"`
	PostID      string             `bson:"post_id"`
	Content     string             `bson:"content"`
	UserID      string             `bson:"user_id"`
	CreatedTime time.Time          `bson:"created_time"`
	UpdatedTime time.Time          `bson:"updated_time"`
}

// EnsureIndexes creates the indexes both repositories rely on.
// Safe to call on every startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(PostsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "created_time", Value: 1}, {Key: "_id", Value: 1}}},
	})
	if err != nil {
		return errors.Join(posts.ErrPersistence, err)
	}

	_, err = db.Collection(CommentsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "post", Value: 1}, {Key: "created_time", Value: 1}, {Key: "_id", Value: 1}}},
	})
	if err != nil {
		return errors.Join(posts.ErrPersistence, err)
	}
	return nil
}

// now returns the current time at BSON date precision.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// creationOrder sorts documents oldest first with insertion as tie-breaker.
var creationOrder = bson.D{{Key: "created_time", Value: 1}, {Key: "_id", Value: 1}}

func storeError(err, notFound error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound
	}
	if errors.Is(err, posts.ErrNotFound) {
		return err
	}
	return errors.Join(posts.ErrPersistence, err)
}

func (d postDoc) toPost() (posts.Post, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return posts.Post{}, err
	}
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return posts.Post{}, err
	}
	return posts.Post{
		ID:          id,
		Content:     d.Content,
		UserID:      userID,
		CreatedTime: d.CreatedTime.UTC(),
		UpdatedTime: d.UpdatedTime.UTC(),
	}, nil
}

func (d commentDoc) toComment() (posts.Comment, error) {
	var c posts.Comment
	var err error
	if c.ID, err = uuid.Parse(d.ID); err != nil {
		return posts.Comment{}, err
	}
	if c.PostID, err = uuid.Parse(d.PostID); err != nil {
		return posts.Comment{}, err
	}
	if c.UserID, err = uuid.Parse(d.UserID); err != nil {
		return posts.Comment{}, err
	}
	c.Content = d.Content
	c.CreatedTime = d.CreatedTime.UTC()
	c.UpdatedTime = d.UpdatedTime.UTC()
	return c, nil
}

var _ collection = (*mongo.Collection)(nil)
