package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/postcache/pkg/health"
)

func ok(context.Context) error { return nil }

func failing(context.Context) error { return errors.New("connection refused") }

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("no checks is healthy", func(t *testing.T) {
		t.Parallel()

		resp := health.Run(context.Background(), nil)
		assert.Equal(t, health.StatusHealthy, resp.Status)
		assert.NoError(t, resp.Err())
	})

	t.Run("all passing", func(t *testing.T) {
		t.Parallel()

		resp := health.Run(context.Background(), health.Checks{"store": ok, "cache": ok})
		assert.Equal(t, health.StatusHealthy, resp.Status)
		assert.Len(t, resp.Checks, 2)
	})

	t.Run("required failure is unhealthy", func(t *testing.T) {
		t.Parallel()

		resp := health.Run(context.Background(), health.Checks{"store": failing, "cache": ok})
		assert.Equal(t, health.StatusUnhealthy, resp.Status)
		assert.Equal(t, "connection refused", resp.Checks["store"].Error)
		assert.ErrorIs(t, resp.Err(), health.ErrCheckFailed)
	})

	t.Run("optional failure is degraded", func(t *testing.T) {
		t.Parallel()

		resp := health.Run(context.Background(),
			health.Checks{"store": ok, "cache": failing},
			health.WithOptional("cache"),
		)
		assert.Equal(t, health.StatusDegraded, resp.Status)
		assert.True(t, resp.Checks["cache"].Optional)
		assert.NoError(t, resp.Err())
	})

	t.Run("timeout is reported", func(t *testing.T) {
		t.Parallel()

		slow := func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}
		resp := health.Run(context.Background(), health.Checks{"store": slow},
			health.WithTimeout(10*time.Millisecond),
		)
		assert.Equal(t, health.StatusUnhealthy, resp.Status)
		assert.Contains(t, resp.Checks["store"].Error, health.ErrCheckTimeout.Error())
	})
}

func TestLivenessHandler(t *testing.T) {
	t.Parallel()

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		health.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
	})

	t.Run("text", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		health.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live?format=text", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK", rec.Body.String())
	})
}

func TestReadinessHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		checks   health.Checks
		opts     []health.Option
		code     int
		status   string
		textBody string
	}{
		{
			name:     "healthy",
			checks:   health.Checks{"store": ok},
			code:     http.StatusOK,
			status:   health.StatusHealthy,
			textBody: "OK",
		},
		{
			name:     "degraded",
			checks:   health.Checks{"store": ok, "cache": failing},
			opts:     []health.Option{health.WithOptional("cache")},
			code:     http.StatusOK,
			status:   health.StatusDegraded,
			textBody: "OK",
		},
		{
			name:     "unhealthy",
			checks:   health.Checks{"store": failing},
			code:     http.StatusServiceUnavailable,
			status:   health.StatusUnhealthy,
			textBody: "Service Unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := health.ReadinessHandler(tt.checks, tt.opts...)

			rec := httptest.NewRecorder()
			h(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
			require.Equal(t, tt.code, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var resp health.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.status, resp.Status)

			req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
			req.Header.Set("Accept", "text/plain")
			rec = httptest.NewRecorder()
			h(rec, req)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.textBody, rec.Body.String())
		})
	}
}
