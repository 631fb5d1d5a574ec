package posts

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/postcache/internal/server"
)

// Handler exposes the Service over HTTP.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler creates a Handler. A nil logger discards output.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{svc: svc, logger: logger}
}

// Routes implements server.Handler.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/posts", func(r chi.Router) {
		r.Post("/", h.createPost)
		r.Get("/", h.getAllPosts)
		r.Get("/{id}", h.getPost)
		r.Put("/{id}", h.updatePost)
		r.Delete("/{id}", h.deletePost)
		r.Post("/{id}/comments", h.addComment)
		r.Get("/{id}/comments", h.getPostComments)
	})
	r.Route("/comments", func(r chi.Router) {
		r.Get("/{id}", h.getComment)
		r.Put("/{id}", h.updateComment)
		r.Delete("/{id}", h.deleteComment)
	})
}

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := h.bind(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	p, err := h.svc.CreatePost(r.Context(), req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	server.JSON(w, http.StatusCreated, p)
}

func (h *Handler) getAllPosts(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.GetAllPosts(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	server.JSON(w, http.StatusOK, list)
}

func (h *Handler) getPost(w http.ResponseWriter, r *http.Request) {
	id, err := parseID("id", chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	p, err := h.svc.GetPost(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	server.JSON(w, http.StatusOK, p)
}

func (h *Handler) updatePost(w http.ResponseWriter, r *http.Request) {
	id, err := parseID("id", chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req updatePostRequest
	if err := h.bind(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	p, err := h.svc.UpdatePost(r.Context(), id, UpdatePostInput{Content: req.Content})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	server.JSON(w, http.StatusOK, p)
}

func (h *Handler) deletePost(w http.ResponseWriter, r *http.Request) {
	id, err := parseID("id", chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	p, err := h.svc.DeletePost(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	server.JSON(w, http.StatusOK, p)
}

func (h *Handler) addComment(w http.ResponseWriter, r *http.Request) {
	postID, err := parseID("post_id", chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req addCommentRequest
	if err := h.bind(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	c, err := h.svc.AddComment(r.Context(), postID, req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	server.JSON(w, http.StatusCreated, c)
}

func (h *Handler) getPostComments(w http.ResponseWriter, r *http.Request) {
	postID, err := parseID("post_id", chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	list, err := h.svc.GetPostComments(r.Context(), postID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	server.JSON(w, http.StatusOK, list)
}

func (h *Handler) getComment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID("id", chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	c, err := h.svc.GetComment(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	server.JSON(w, http.StatusOK, c)
}

func (h *Handler) updateComment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID("id", chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req updateCommentRequest
	if err := h.bind(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	c, err := h.svc.UpdateComment(r.Context(), id, UpdateCommentInput{Content: req.Content})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	server.JSON(w, http.StatusOK, c)
}

func (h *Handler) deleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID("id", chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	c, err := h.svc.DeleteComment(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	server.JSON(w, http.StatusOK, c)
}

// bind decodes and validates a request body.
func (h *Handler) bind(w http.ResponseWriter, r *http.Request, req any) error {
	if err := server.DecodeJSON(w, r, req); err != nil {
		return err
	}
	return validateRequest(req)
}

// fail maps domain errors to HTTP errors and renders them.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrs ValidationErrors

	switch {
	case server.AsHTTPError(err) != nil:
		server.WriteError(w, r, err)
	case errors.As(err, &validationErrs):
		server.WriteError(w, r, server.ErrBadRequest("validation failed",
			server.WithDetails(validationErrs),
			server.WithError(err),
		))
	case errors.Is(err, ErrPostNotFound):
		server.WriteError(w, r, server.ErrNotFound("post not found", server.WithError(err)))
	case errors.Is(err, ErrCommentNotFound):
		server.WriteError(w, r, server.ErrNotFound("comment not found", server.WithError(err)))
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		server.WriteError(w, r, err)
	}
}
