package mongo

import "errors"

var (
	ErrInvalidURI        = errors.New("mongo: invalid connection uri")
	ErrEmptyDatabase     = errors.New("mongo: empty database name")
	ErrConnectionFailed  = errors.New("mongo: failed to establish connection")
	ErrHealthcheckFailed = errors.New("mongo: healthcheck failed")
)
