package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrymomot/postcache/middlewares"
)

// MaxBodyBytes limits request bodies accepted by DecodeJSON.
const MaxBodyBytes = 1 << 20

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Details    map[string]string `json:"details,omitempty"`
	Error      string            `json:"error"`
	Message    string            `json:"message"`
	RequestID  string            `json:"request_id,omitempty"`
	StatusCode int               `json:"status_code"`
}

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError renders err as an ErrorBody.
// Errors that are not an HTTPError render as a generic 500 so internal
// details never reach the client.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	httpErr := AsHTTPError(err)
	if httpErr == nil {
		httpErr = ErrInternal("internal server error", WithError(err))
	}

	JSON(w, httpErr.Code, ErrorBody{
		StatusCode: httpErr.Code,
		Error:      httpErr.StatusText(),
		Message:    httpErr.Message,
		Details:    httpErr.Details,
		RequestID:  middlewares.GetRequestID(r.Context()),
	})
}

// WritePanic is a middlewares.PanicHandler that renders a 500 ErrorBody.
func WritePanic(w http.ResponseWriter, r *http.Request, pe *middlewares.PanicError) {
	WriteError(w, r, pe)
}

// DecodeJSON reads a single JSON value from the request body into v.
// Failures are returned as 400 or 413 HTTPErrors.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))

	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return ErrBadRequest("request body is empty", WithError(err))
		case errors.As(err, &maxErr):
			return ErrRequestTooLarge("request body is too large", WithError(err))
		default:
			return ErrBadRequest("request body is not valid JSON", WithError(err))
		}
	}

	if dec.More() {
		return ErrBadRequest("request body must contain a single JSON object")
	}
	return nil
}
