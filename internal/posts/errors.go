package posts

import "errors"

var (
	// ErrNotFound matches every missing-entity error.
	ErrNotFound = errors.New("posts: not found")

	ErrPostNotFound    error = notFoundError("posts: post not found")
	ErrCommentNotFound error = notFoundError("posts: comment not found")

	// ErrPersistence wraps failures of the document store.
	ErrPersistence = errors.New("posts: persistence failure")

	// ErrCascadeIncomplete is returned with a non-empty DeletedPost when the
	// post is gone but some of its comments could not be removed.
	ErrCascadeIncomplete = errors.New("posts: comment cascade incomplete")
)

type notFoundError string

func (e notFoundError) Error() string { return string(e) }

func (e notFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationErrors maps request fields to human-readable problems.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	return "posts: validation failed"
}
