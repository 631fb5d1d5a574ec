// Command server runs the posts and comments API.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/postcache/internal/config"
	"github.com/dmitrymomot/postcache/internal/posts"
	postsmongo "github.com/dmitrymomot/postcache/internal/posts/mongo"
	"github.com/dmitrymomot/postcache/internal/posts/postgres"
	"github.com/dmitrymomot/postcache/internal/server"
	"github.com/dmitrymomot/postcache/middlewares"
	"github.com/dmitrymomot/postcache/pkg/cache"
	"github.com/dmitrymomot/postcache/pkg/db"
	"github.com/dmitrymomot/postcache/pkg/logger"
	"github.com/dmitrymomot/postcache/pkg/mongo"
	"github.com/dmitrymomot/postcache/pkg/redis"
)

const metricsNamespace = "postcache"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New(os.Stdout, cfg.Log, middlewares.RequestIDExtractor())

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// backend bundles the repositories of one storage engine with its lifecycle hooks.
type backend struct {
	posts    posts.PostRepository
	comments posts.CommentRepository
	health   func(context.Context) error
	shutdown func(context.Context) error
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	var (
		store       backend
		redisClient goredis.UniversalClient
	)

	// Store and cache connect concurrently; each retries on its own schedule.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		store, err = openStore(gctx, cfg, log)
		return err
	})
	if cfg.CacheEnabled() {
		g.Go(func() error {
			var err error
			redisClient, err = redis.Open(gctx, cfg.Redis, cfg.RedisPool.Options()...)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		if store.shutdown != nil {
			_ = store.shutdown(context.WithoutCancel(ctx))
		}
		if redisClient != nil {
			_ = redisClient.Close()
		}
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	cacheStore := newCacheStore(cfg, redisClient, reg, log)

	svc := posts.NewService(store.posts, store.comments, cacheStore,
		posts.WithLogger(log),
		posts.WithTTL(cfg.Cache.TTL()),
	)

	healthOpts := []server.HealthOption{
		server.WithReadinessCheck("store", store.health),
	}
	if redisClient != nil {
		healthOpts = append(healthOpts, server.WithOptionalCheck("cache", redis.Healthcheck(redisClient)))
	}

	app := server.New(
		server.WithLogger(log),
		server.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Logger(log),
			middlewares.Recover(
				middlewares.WithRecoverLogger(log),
				middlewares.WithRecoverHandler(server.WritePanic),
			),
		),
		server.WithHandlers(posts.NewHandler(svc, log), posts.Docs{}),
		server.WithHealthChecks(healthOpts...),
		server.WithMetrics("", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})),
	)

	runOpts := []server.RunOption{
		server.WithContext(ctx),
		server.ShutdownTimeout(cfg.ShutdownTimeout),
		server.ShutdownHook(func(context.Context) error { return cacheStore.Close() }),
		server.ShutdownHook(store.shutdown),
	}
	if redisClient != nil {
		runOpts = append(runOpts, server.ShutdownHook(redis.Shutdown(redisClient)))
	}

	log.Info("starting server",
		slog.String("addr", cfg.Addr()),
		slog.String("store", cfg.Store()),
		slog.Bool("redis", redisClient != nil),
	)
	return app.Run(cfg.Addr(), runOpts...)
}

// openStore connects to the backend named by STORE_URI and prepares its schema.
func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (backend, error) {
	if cfg.Store() == config.StoreMongo {
		database, err := mongo.Open(ctx, cfg.Mongo, cfg.MongoPool.Options()...)
		if err != nil {
			return backend{}, err
		}
		b := backend{
			posts:    postsmongo.NewPostRepository(database),
			comments: postsmongo.NewCommentRepository(database),
			health:   mongo.Healthcheck(database),
			shutdown: mongo.Shutdown(database),
		}
		if err := postsmongo.EnsureIndexes(ctx, database); err != nil {
			return b, err
		}
		return b, nil
	}

	pool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return backend{}, err
	}
	b := backend{
		posts:    postgres.NewPostRepository(pool),
		comments: postgres.NewCommentRepository(pool),
		health:   db.Healthcheck(pool),
		shutdown: db.Shutdown(pool),
	}
	if err := db.Migrate(ctx, pool, postgres.Migrations, postgres.MigrationsDir, cfg.DB.MigrationsTable, log); err != nil {
		return b, err
	}
	return b, nil
}

// newCacheStore builds Redis behind a circuit breaker, or process memory
// when no Redis host is configured. Both report metrics to reg.
func newCacheStore(cfg config.Config, client goredis.UniversalClient, reg prometheus.Registerer, log *slog.Logger) cache.Store {
	var store cache.Store
	if client != nil {
		store = cache.NewBreaker(
			cache.NewRedis(client,
				cache.WithRedisDefaultTTL(cfg.Cache.TTL()),
				cache.WithPrefix(cfg.Cache.Prefix),
			),
			cache.WithBreakerName("redis"),
			cache.WithBreakerTimeout(cfg.Cache.BreakerTimeout),
			cache.WithBreakerInterval(cfg.Cache.BreakerInterval),
			cache.WithBreakerThreshold(cfg.Cache.BreakerThreshold, cfg.Cache.BreakerMinRequests),
			cache.WithBreakerLogger(log),
		)
	} else {
		log.Warn("REDIS_HOST is not set, caching in process memory")
		store = cache.NewMemory(
			cache.WithDefaultTTL(cfg.Cache.TTL()),
			cache.WithMaxEntries(cfg.Cache.MemoryMaxEntries),
		)
	}
	return cache.NewInstrumented(store, reg, metricsNamespace)
}
