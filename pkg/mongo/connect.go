package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Config holds MongoDB connection parameters.
type Config struct {
	URI      string `env:"STORE_URI,required"`
	Database string `env:"MONGO_DATABASE" envDefault:"postcache"`
}

// Option configures a MongoDB connection.
type Option func(*connOptions)

type connOptions struct {
	maxPoolSize            uint64
	minPoolSize            uint64
	maxConnIdleTime        time.Duration
	connectTimeout         time.Duration
	serverSelectionTimeout time.Duration
	retryAttempts          int
	retryInterval          time.Duration
}

func defaultOptions() *connOptions {
	return &connOptions{
		maxPoolSize:            10,
		minPoolSize:            2,
		maxConnIdleTime:        10 * time.Minute,
		connectTimeout:         5 * time.Second,
		serverSelectionTimeout: 5 * time.Second,
		retryAttempts:          3,
		retryInterval:          2 * time.Second,
	}
}

// WithPoolSize sets the minimum and maximum number of pooled connections.
// Default: 2..10
func WithPoolSize(minSize, maxSize uint64) Option {
	return func(o *connOptions) {
		o.minPoolSize = minSize
		o.maxPoolSize = maxSize
	}
}

// WithMaxConnIdleTime sets how long an idle connection stays in the pool.
// Default: 10 minutes
func WithMaxConnIdleTime(d time.Duration) Option {
	return func(o *connOptions) {
		o.maxConnIdleTime = d
	}
}

// WithTimeouts sets the connect and server selection timeouts.
// Default: 5 seconds each
func WithTimeouts(connect, serverSelection time.Duration) Option {
	return func(o *connOptions) {
		o.connectTimeout = connect
		o.serverSelectionTimeout = serverSelection
	}
}

// WithRetry configures startup retry behavior.
// Default: 3 attempts, 2 second base interval with linear backoff.
func WithRetry(attempts int, interval time.Duration) Option {
	return func(o *connOptions) {
		o.retryAttempts = attempts
		o.retryInterval = interval
	}
}

// Open connects to MongoDB, verifies the connection with a primary ping and
// returns the configured database handle.
func Open(ctx context.Context, cfg Config, opts ...Option) (*mongo.Database, error) {
	if !IsMongoURI(cfg.URI) {
		return nil, ErrInvalidURI
	}
	if cfg.Database == "" {
		return nil, ErrEmptyDatabase
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(o.maxPoolSize).
		SetMinPoolSize(o.minPoolSize).
		SetMaxConnIdleTime(o.maxConnIdleTime).
		SetConnectTimeout(o.connectTimeout).
		SetServerSelectionTimeout(o.serverSelectionTimeout)
	if err := clientOpts.Validate(); err != nil {
		return nil, errors.Join(ErrInvalidURI, err)
	}

	client, err := connect(ctx, clientOpts, o.retryAttempts, o.retryInterval)
	if err != nil {
		return nil, err
	}
	return client.Database(cfg.Database), nil
}

// IsMongoURI reports whether uri uses a MongoDB scheme.
func IsMongoURI(uri string) bool {
	return strings.HasPrefix(uri, "mongodb://") || strings.HasPrefix(uri, "mongodb+srv://")
}

func connect(ctx context.Context, opts *options.ClientOptions, attempts int, interval time.Duration) (*mongo.Client, error) {
	attempts = max(attempts, 1)

	var lastErr error
	for i := range attempts {
		client, err := mongo.Connect(ctx, opts)
		if err == nil {
			if err = client.Ping(ctx, readpref.Primary()); err == nil {
				return client, nil
			}
			_ = client.Disconnect(context.WithoutCancel(ctx))
		}
		lastErr = err

		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrConnectionFailed, ctx.Err())
		case <-time.After(time.Duration(i+1) * interval):
		}
	}

	return nil, errors.Join(ErrConnectionFailed, lastErr)
}

// Healthcheck returns a closure that pings the primary.
// Compatible with health.CheckFunc.
func Healthcheck(db *mongo.Database) func(context.Context) error {
	return func(ctx context.Context) error {
		if db == nil {
			return ErrHealthcheckFailed
		}
		if err := db.Client().Ping(ctx, readpref.Primary()); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// Shutdown returns a hook that disconnects the client behind db.
//
//	app.Run(addr, server.ShutdownHook(mongo.Shutdown(db)))
func Shutdown(db *mongo.Database) func(context.Context) error {
	return func(ctx context.Context) error {
		if db == nil {
			return nil
		}
		return db.Client().Disconnect(ctx)
	}
}
