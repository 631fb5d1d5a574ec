// Package posts implements posts and comments behind a cache-aside layer.
//
// [Service] is the orchestrator. Reads go cache first and fall back to the
// repositories; writes go to the repositories first and then invalidate:
//
//	CreatePost     posts
//	UpdatePost     posts/{id}, posts
//	DeletePost     posts/{id}, posts, posts/{id}/comments, comments/{cid}...
//	AddComment     posts/{post_id}/comments
//	UpdateComment  comments/{id}, posts/{post_id}/comments
//	DeleteComment  comments/{id}, posts/{post_id}/comments
//
// A cache that cannot be reached never fails a request. Repository
// implementations live in the postgres and mongo subpackages; [Handler]
// exposes the service over HTTP.
package posts
