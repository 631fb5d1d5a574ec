package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/postcache/internal/server"
	"github.com/dmitrymomot/postcache/middlewares"
)

type pingHandler struct{}

func (pingHandler) Routes(r chi.Router) {
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		server.JSON(w, http.StatusOK, map[string]string{"pong": "ok"})
	})
	r.Get("/boom", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) server.ErrorBody {
	t.Helper()
	var body server.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestApp_Routes(t *testing.T) {
	t.Parallel()

	app := server.New(
		server.WithMiddleware(
			middlewares.RequestID(middlewares.WithRequestIDGenerator(func() string { return "rid" })),
			middlewares.Recover(middlewares.WithRecoverHandler(server.WritePanic)),
		),
		server.WithHandlers(pingHandler{}),
	)

	t.Run("handler route", func(t *testing.T) {
		t.Parallel()

		rec := do(t, app, http.MethodGet, "/ping")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"pong":"ok"}`, rec.Body.String())
		assert.Equal(t, "rid", rec.Header().Get("X-Request-ID"))
	})

	t.Run("not found renders json", func(t *testing.T) {
		t.Parallel()

		rec := do(t, app, http.MethodGet, "/missing")
		require.Equal(t, http.StatusNotFound, rec.Code)

		body := decodeError(t, rec)
		assert.Equal(t, 404, body.StatusCode)
		assert.Equal(t, "Not Found", body.Error)
		assert.Equal(t, "rid", body.RequestID)
	})

	t.Run("method not allowed renders json", func(t *testing.T) {
		t.Parallel()

		rec := do(t, app, http.MethodDelete, "/ping")
		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, "Method Not Allowed", decodeError(t, rec).Error)
	})

	t.Run("panic renders 500", func(t *testing.T) {
		t.Parallel()

		rec := do(t, app, http.MethodGet, "/boom")
		require.Equal(t, http.StatusInternalServerError, rec.Code)

		body := decodeError(t, rec)
		assert.Equal(t, "internal server error", body.Message)
		assert.Equal(t, "rid", body.RequestID)
	})
}

func TestApp_MiddlewareOrder(t *testing.T) {
	t.Parallel()

	var order []string
	mark := func(name string) server.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	app := server.New(
		server.WithMiddleware(mark("first"), nil, mark("second")),
		server.WithHandlers(pingHandler{}, nil),
	)
	do(t, app, http.MethodGet, "/ping")

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestApp_Health(t *testing.T) {
	t.Parallel()

	failing := func(context.Context) error { return errors.New("down") }
	healthy := func(context.Context) error { return nil }

	t.Run("disabled by default", func(t *testing.T) {
		t.Parallel()

		app := server.New()
		assert.Equal(t, http.StatusNotFound, do(t, app, http.MethodGet, "/health/live").Code)
	})

	t.Run("optional failure stays ready", func(t *testing.T) {
		t.Parallel()

		app := server.New(server.WithHealthChecks(
			server.WithReadinessCheck("store", healthy),
			server.WithOptionalCheck("cache", failing),
		))

		assert.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/health/live").Code)

		rec := do(t, app, http.MethodGet, "/health/ready")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
	})

	t.Run("required failure is unready", func(t *testing.T) {
		t.Parallel()

		app := server.New(server.WithHealthChecks(
			server.WithReadinessCheck("store", failing),
			server.WithReadinessPath("/ready"),
			server.WithLivenessPath("/live"),
		))

		assert.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/live").Code)
		assert.Equal(t, http.StatusServiceUnavailable, do(t, app, http.MethodGet, "/ready").Code)
	})
}

func TestApp_Metrics(t *testing.T) {
	t.Parallel()

	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})

	app := server.New(server.WithMetrics("", metrics))
	rec := do(t, app, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# metrics", rec.Body.String())

	custom := server.New(server.WithMetrics("/internal/metrics", metrics))
	assert.Equal(t, http.StatusOK, do(t, custom, http.MethodGet, "/internal/metrics").Code)
}

func TestApp_Run(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var hookCalls atomic.Int32

	app := server.New(server.WithHandlers(pingHandler{}))

	done := make(chan error, 1)
	go func() {
		done <- app.Run("",
			server.Listener(ln),
			server.WithContext(ctx),
			server.ShutdownTimeout(time.Second),
			server.ShutdownHook(func(context.Context) error {
				hookCalls.Add(1)
				return nil
			}),
		)
	}()

	url := "http://" + ln.Addr().String() + "/ping"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Equal(t, int32(1), hookCalls.Load())
}

func TestApp_Run_HookErrors(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	boom := errors.New("close failed")
	var secondRan bool
	err = server.New().Run("",
		server.Listener(ln),
		server.WithContext(ctx),
		server.ShutdownHook(func(context.Context) error { return boom }),
		server.ShutdownHook(func(context.Context) error {
			secondRan = true
			return nil
		}),
	)

	require.ErrorIs(t, err, boom)
	assert.True(t, secondRan)
}

func TestApp_Run_ListenError(t *testing.T) {
	t.Parallel()

	err := server.New().Run("256.0.0.1:bad")
	require.ErrorIs(t, err, server.ErrListen)
}
