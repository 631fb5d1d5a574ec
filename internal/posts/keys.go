package posts

import "github.com/google/uuid"

// AllPostsKey caches the list of every post.
const AllPostsKey = "posts"

// PostKey caches a single post.
func PostKey(id uuid.UUID) string {
	return "posts/" + id.String()
}

// CommentKey caches a single comment.
func CommentKey(id uuid.UUID) string {
	return "comments/" + id.String()
}

// PostCommentsKey caches the comments of a post.
func PostCommentsKey(postID uuid.UUID) string {
	return "posts/" + postID.String() + "/comments"
}
