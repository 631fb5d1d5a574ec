package server_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/postcache/internal/server"
)

func TestWriteError(t *testing.T) {
	t.Parallel()

	t.Run("http error", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		server.WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil),
			server.ErrBadRequest("invalid input", server.WithDetails(map[string]string{"content": "required"})),
		)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.JSONEq(t,
			`{"status_code":400,"error":"Bad Request","message":"invalid input","details":{"content":"required"}}`,
			rec.Body.String(),
		)
	})

	t.Run("wrapped http error", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		err := errors.Join(errors.New("context"), server.ErrNotFound("post not found"))
		server.WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), err)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), `"message":"post not found"`)
	})

	t.Run("plain error hides details", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		server.WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("pq: secret"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "secret")
	})
}

func TestHTTPError(t *testing.T) {
	t.Parallel()

	cause := errors.New("cause")
	e := server.NewHTTPError(http.StatusTeapot, "tea", server.WithError(cause))

	assert.Equal(t, "tea", e.Error())
	assert.Equal(t, http.StatusTeapot, e.StatusCode())
	assert.Equal(t, "I'm a teapot", e.StatusText())
	require.ErrorIs(t, e, cause)
	assert.Same(t, e, server.AsHTTPError(e))
	assert.Nil(t, server.AsHTTPError(cause))
	assert.Nil(t, server.AsHTTPError(nil))
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	type payload struct {
		Content string `json:"content"`
	}

	tests := []struct {
		name    string
		body    string
		code    int
		message string
	}{
		{name: "valid", body: `{"content":"hi"}`},
		{name: "empty", body: ``, code: http.StatusBadRequest, message: "request body is empty"},
		{name: "malformed", body: `{"content":`, code: http.StatusBadRequest, message: "request body is not valid JSON"},
		{name: "wrong type", body: `{"content":1}`, code: http.StatusBadRequest, message: "request body is not valid JSON"},
		{name: "trailing value", body: `{"content":"a"}{"content":"b"}`, code: http.StatusBadRequest, message: "request body must contain a single JSON object"},
		{name: "too large", body: `{"content":"` + strings.Repeat("a", server.MaxBodyBytes) + `"}`, code: http.StatusRequestEntityTooLarge, message: "request body is too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			err := server.DecodeJSON(httptest.NewRecorder(), req, &p)

			if tt.code == 0 {
				require.NoError(t, err)
				assert.Equal(t, "hi", p.Content)
				return
			}

			httpErr := server.AsHTTPError(err)
			require.NotNil(t, httpErr)
			assert.Equal(t, tt.code, httpErr.Code)
			assert.Equal(t, tt.message, httpErr.Message)
		})
	}
}
