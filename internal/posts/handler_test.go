package posts_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/postcache/internal/posts"
	"github.com/dmitrymomot/postcache/internal/server"
)

type api struct {
	f   *fixture
	app *server.App
}

func newAPI(t *testing.T) *api {
	t.Helper()
	f := newMemoryFixture()
	return &api{
		f:   f,
		app: server.New(server.WithHandlers(posts.NewHandler(f.svc, nil))),
	}
}

func (a *api) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	rec := httptest.NewRecorder()
	a.app.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHandler_Posts(t *testing.T) {
	t.Parallel()

	a := newAPI(t)
	userID := uuid.New()

	rec := a.do(t, http.MethodPost, "/posts", map[string]string{"content": "hi", "user_id": userID.String()})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[posts.Post](t, rec)
	assert.Equal(t, "hi", created.Content)
	assert.Equal(t, userID, created.UserID)
	assert.NotEqual(t, uuid.Nil, created.ID)

	rec = a.do(t, http.MethodGet, "/posts/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created, decode[posts.Post](t, rec))

	rec = a.do(t, http.MethodGet, "/posts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []posts.Post{created}, decode[[]posts.Post](t, rec))

	rec = a.do(t, http.MethodPut, "/posts/"+created.ID.String(), map[string]string{"content": "new"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "new", decode[posts.Post](t, rec).Content)

	rec = a.do(t, http.MethodGet, "/posts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "new", decode[[]posts.Post](t, rec)[0].Content)

	rec = a.do(t, http.MethodDelete, "/posts/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decode[posts.Post](t, rec).ID)

	rec = a.do(t, http.MethodGet, "/posts/"+created.ID.String(), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "post not found", decode[server.ErrorBody](t, rec).Message)
}

func TestHandler_Comments(t *testing.T) {
	t.Parallel()

	a := newAPI(t)
	rec := a.do(t, http.MethodPost, "/posts", map[string]string{"content": "post", "user_id": uuid.NewString()})
	require.Equal(t, http.StatusCreated, rec.Code)
	p := decode[posts.Post](t, rec)
	base := "/posts/" + p.ID.String() + "/comments"

	rec = a.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())

	rec = a.do(t, http.MethodPost, base, map[string]string{"content": "first", "user_id": uuid.NewString()})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	c := decode[posts.Comment](t, rec)
	assert.Equal(t, p.ID, c.PostID)

	rec = a.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []posts.Comment{c}, decode[[]posts.Comment](t, rec))

	rec = a.do(t, http.MethodGet, "/comments/"+c.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, c, decode[posts.Comment](t, rec))

	rec = a.do(t, http.MethodPut, "/comments/"+c.ID.String(), map[string]string{"content": "edited"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "edited", decode[posts.Comment](t, rec).Content)

	rec = a.do(t, http.MethodDelete, "/comments/"+c.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, c.ID, decode[posts.Comment](t, rec).ID)

	rec = a.do(t, http.MethodGet, "/comments/"+c.ID.String(), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "comment not found", decode[server.ErrorBody](t, rec).Message)
}

func TestHandler_Errors(t *testing.T) {
	t.Parallel()

	a := newAPI(t)
	unknown := uuid.NewString()

	tests := []struct {
		name    string
		method  string
		path    string
		body    any
		code    int
		details map[string]string
	}{
		{
			name:    "bad post id",
			method:  http.MethodGet,
			path:    "/posts/not-a-uuid",
			code:    http.StatusBadRequest,
			details: map[string]string{"id": "must be a valid UUID"},
		},
		{
			name:    "bad comment id",
			method:  http.MethodDelete,
			path:    "/comments/123",
			code:    http.StatusBadRequest,
			details: map[string]string{"id": "must be a valid UUID"},
		},
		{
			name:    "bad parent id",
			method:  http.MethodGet,
			path:    "/posts/xyz/comments",
			code:    http.StatusBadRequest,
			details: map[string]string{"post_id": "must be a valid UUID"},
		},
		{
			name:   "malformed json",
			method: http.MethodPost,
			path:   "/posts",
			body:   `{"content":`,
			code:   http.StatusBadRequest,
		},
		{
			name:    "missing fields",
			method:  http.MethodPost,
			path:    "/posts",
			body:    map[string]string{},
			code:    http.StatusBadRequest,
			details: map[string]string{"content": "is required", "user_id": "is required"},
		},
		{
			name:    "invalid user id",
			method:  http.MethodPost,
			path:    "/posts",
			body:    map[string]string{"content": "x", "user_id": "nope"},
			code:    http.StatusBadRequest,
			details: map[string]string{"user_id": "must be a valid UUID"},
		},
		{
			name:    "post content too long",
			method:  http.MethodPost,
			path:    "/posts",
			body:    map[string]string{"content": strings.Repeat("a", posts.PostContentMax+1), "user_id": unknown},
			code:    http.StatusBadRequest,
			details: map[string]string{"content": "must be at most 50000 characters"},
		},
		{
			name:    "comment content too long",
			method:  http.MethodPost,
			path:    "/posts/" + unknown + "/comments",
			body:    map[string]string{"content": strings.Repeat("a", posts.CommentContentMax+1), "user_id": unknown},
			code:    http.StatusBadRequest,
			details: map[string]string{"content": "must be at most 10000 characters"},
		},
		{
			name:    "empty content",
			method:  http.MethodPost,
			path:    "/posts",
			body:    map[string]string{"content": "", "user_id": unknown},
			code:    http.StatusBadRequest,
			details: map[string]string{"content": "is required"},
		},
		{
			name:   "update unknown post",
			method: http.MethodPut,
			path:   "/posts/" + unknown,
			body:   map[string]string{"content": "x"},
			code:   http.StatusNotFound,
		},
		{
			name:   "delete unknown post",
			method: http.MethodDelete,
			path:   "/posts/" + unknown,
			code:   http.StatusNotFound,
		},
		{
			name:   "comment on unknown post",
			method: http.MethodPost,
			path:   "/posts/" + unknown + "/comments",
			body:   map[string]string{"content": "x", "user_id": unknown},
			code:   http.StatusNotFound,
		},
		{
			name:   "comments of unknown post",
			method: http.MethodGet,
			path:   "/posts/" + unknown + "/comments",
			code:   http.StatusNotFound,
		},
		{
			name:   "update unknown comment",
			method: http.MethodPut,
			path:   "/comments/" + unknown,
			body:   map[string]string{"content": "x"},
			code:   http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := a.do(t, tt.method, tt.path, tt.body)
			require.Equal(t, tt.code, rec.Code, rec.Body.String())

			body := decode[server.ErrorBody](t, rec)
			assert.Equal(t, tt.code, body.StatusCode)
			if tt.details != nil {
				assert.Equal(t, tt.details, body.Details)
			}
		})
	}
}

func TestHandler_ContentBoundaries(t *testing.T) {
	t.Parallel()

	a := newAPI(t)
	userID := uuid.NewString()

	t.Run("multibyte content at the limit", func(t *testing.T) {
		t.Parallel()
		rec := a.do(t, http.MethodPost, "/posts", map[string]string{
			"content": strings.Repeat("é", posts.PostContentMax),
			"user_id": userID,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})

	t.Run("markup characters near the limit", func(t *testing.T) {
		t.Parallel()
		content := "<" + strings.Repeat("&", posts.PostContentMax-1)
		rec := a.do(t, http.MethodPost, "/posts", map[string]string{"content": content, "user_id": userID})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, content, decode[posts.Post](t, rec).Content)
	})

	t.Run("comment at the limit", func(t *testing.T) {
		t.Parallel()
		rec := a.do(t, http.MethodPost, "/posts", map[string]string{"content": "parent", "user_id": userID})
		require.Equal(t, http.StatusCreated, rec.Code)
		post := decode[posts.Post](t, rec)

		content := strings.Repeat(">", posts.CommentContentMax)
		rec = a.do(t, http.MethodPost, "/posts/"+post.ID.String()+"/comments", map[string]string{"content": content, "user_id": userID})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, content, decode[posts.Comment](t, rec).Content)
	})

	tests := []struct {
		name    string
		content string
	}{
		{name: "comparison operators", content: "1 < 2 & 3 > 2"},
		{name: "emoticon", content: "I <3 Go"},
		{name: "markup", content: "<em>hi</em> <script>x()</script>"},
		{name: "quotes and apostrophes", content: `she said "it's fine"`},
		{name: "surrounding whitespace", content: "  padded \n"},
		{name: "whitespace only", content: "   "},
	}

	for _, tt := range tests {
		t.Run("stored as submitted: "+tt.name, func(t *testing.T) {
			t.Parallel()

			rec := a.do(t, http.MethodPost, "/posts", map[string]string{"content": tt.content, "user_id": userID})
			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
			created := decode[posts.Post](t, rec)
			assert.Equal(t, tt.content, created.Content)

			rec = a.do(t, http.MethodGet, "/posts/"+created.ID.String(), nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.content, decode[posts.Post](t, rec).Content)
		})
	}
}

func TestHandler_PersistenceFailure(t *testing.T) {
	t.Parallel()

	a := newAPI(t)
	a.f.db.FailWith(posts.ErrPersistence)

	rec := a.do(t, http.MethodGet, "/posts", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode[server.ErrorBody](t, rec)
	assert.Equal(t, "internal server error", body.Message)
}
