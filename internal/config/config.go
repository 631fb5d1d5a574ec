// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/dmitrymomot/postcache/pkg/db"
	"github.com/dmitrymomot/postcache/pkg/logger"
	"github.com/dmitrymomot/postcache/pkg/mongo"
	"github.com/dmitrymomot/postcache/pkg/redis"
)

// ErrInvalid is returned when the environment cannot be parsed or fails validation.
var ErrInvalid = errors.New("config: invalid configuration")

// Storage backends selected by the STORE_URI scheme.
const (
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

// Config is the complete service configuration.
type Config struct {
	Port            int           `env:"PORT" envDefault:"3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	DB        db.Config
	Mongo     mongo.Config
	MongoPool MongoPoolConfig
	Redis     redis.Config
	RedisPool RedisPoolConfig
	Cache     CacheConfig
	Log       logger.Config
}

// RedisPoolConfig tunes the Redis client pool and startup retries.
type RedisPoolConfig struct {
	PoolSize      int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns  int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"5"`
	MaxIdleTime   time.Duration `env:"REDIS_MAX_IDLE_TIME" envDefault:"10m"`
	MaxActiveTime time.Duration `env:"REDIS_MAX_ACTIVE_TIME" envDefault:"30m"`
	RetryAttempts int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
	DialTimeout   time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout   time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout  time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// Options converts the pool settings for redis.Open.
func (c RedisPoolConfig) Options() []redis.Option {
	return []redis.Option{
		redis.WithPoolSize(c.PoolSize),
		redis.WithMinIdleConns(c.MinIdleConns),
		redis.WithMaxIdleTime(c.MaxIdleTime),
		redis.WithMaxActiveTime(c.MaxActiveTime),
		redis.WithRetry(c.RetryAttempts, c.RetryInterval),
		redis.WithDialTimeout(c.DialTimeout),
		redis.WithReadTimeout(c.ReadTimeout),
		redis.WithWriteTimeout(c.WriteTimeout),
	}
}

// MongoPoolConfig tunes the MongoDB client pool and startup retries.
type MongoPoolConfig struct {
	MinPoolSize            uint64        `env:"MONGO_MIN_POOL_SIZE" envDefault:"2"`
	MaxPoolSize            uint64        `env:"MONGO_MAX_POOL_SIZE" envDefault:"10"`
	MaxConnIdleTime        time.Duration `env:"MONGO_MAX_CONN_IDLE_TIME" envDefault:"10m"`
	ConnectTimeout         time.Duration `env:"MONGO_CONNECT_TIMEOUT" envDefault:"5s"`
	ServerSelectionTimeout time.Duration `env:"MONGO_SERVER_SELECTION_TIMEOUT" envDefault:"5s"`
	RetryAttempts          int           `env:"MONGO_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval          time.Duration `env:"MONGO_RETRY_INTERVAL" envDefault:"2s"`
}

// Options converts the pool settings for mongo.Open.
func (c MongoPoolConfig) Options() []mongo.Option {
	return []mongo.Option{
		mongo.WithPoolSize(c.MinPoolSize, c.MaxPoolSize),
		mongo.WithMaxConnIdleTime(c.MaxConnIdleTime),
		mongo.WithTimeouts(c.ConnectTimeout, c.ServerSelectionTimeout),
		mongo.WithRetry(c.RetryAttempts, c.RetryInterval),
	}
}

// CacheConfig tunes the cache layer in front of the store.
type CacheConfig struct {
	// Default entry lifetime in milliseconds.
	TTLMillis int64 `env:"REDIS_TTL_MS" envDefault:"300000"`
	// Key namespace inside a shared Redis.
	Prefix string `env:"CACHE_PREFIX"`
	// Entry cap for the in-memory fallback; 0 means unbounded.
	MemoryMaxEntries int `env:"CACHE_MEMORY_MAX_ENTRIES" envDefault:"10000"`

	BreakerTimeout     time.Duration `env:"CACHE_BREAKER_TIMEOUT" envDefault:"10s"`
	BreakerInterval    time.Duration `env:"CACHE_BREAKER_INTERVAL" envDefault:"30s"`
	BreakerThreshold   float64       `env:"CACHE_BREAKER_THRESHOLD" envDefault:"0.5"`
	BreakerMinRequests uint32        `env:"CACHE_BREAKER_MIN_REQUESTS" envDefault:"5"`
}

// TTL returns the default entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMillis) * time.Millisecond
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, errors.Join(ErrInvalid, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, errors.Join(ErrInvalid, err)
	}
	return cfg, nil
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Store reports which backend STORE_URI points at.
func (c Config) Store() string {
	if mongo.IsMongoURI(c.DB.ConnectionString) {
		return StoreMongo
	}
	return StorePostgres
}

// CacheEnabled reports whether a Redis host is configured.
// Without one the service caches in process memory.
func (c Config) CacheEnabled() bool {
	return c.Redis.Host != ""
}

func (c Config) validate() error {
	var errs []error
	if c.DB.ConnectionString == "" {
		errs = append(errs, errors.New("STORE_URI is empty"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if c.Cache.TTLMillis <= 0 {
		errs = append(errs, fmt.Errorf("REDIS_TTL_MS must be positive, got %d", c.Cache.TTLMillis))
	}
	if c.RedisPool.PoolSize <= 0 {
		errs = append(errs, fmt.Errorf("REDIS_POOL_SIZE must be positive, got %d", c.RedisPool.PoolSize))
	}
	if c.MongoPool.MaxPoolSize < c.MongoPool.MinPoolSize {
		errs = append(errs, fmt.Errorf("MONGO_MAX_POOL_SIZE %d is below MONGO_MIN_POOL_SIZE %d", c.MongoPool.MaxPoolSize, c.MongoPool.MinPoolSize))
	}
	if c.Cache.BreakerThreshold <= 0 || c.Cache.BreakerThreshold > 1 {
		errs = append(errs, fmt.Errorf("CACHE_BREAKER_THRESHOLD must be in (0, 1], got %v", c.Cache.BreakerThreshold))
	}
	return errors.Join(errs...)
}
