package posts

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type createPostRequest struct {
	Content string `json:"content" validate:"required,min=1,max=50000"`
	UserID  string `json:"user_id" validate:"required,uuid"`
}

type updatePostRequest struct {
	Content string `json:"content" validate:"required,min=1,max=50000"`
}

type addCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=10000"`
	UserID  string `json:"user_id" validate:"required,uuid"`
}

type updateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=10000"`
}

func (r createPostRequest) input() CreatePostInput {
	return CreatePostInput{Content: r.Content, UserID: uuid.MustParse(r.UserID)}
}

func (r addCommentRequest) input() AddCommentInput {
	return AddCommentInput{Content: r.Content, UserID: uuid.MustParse(r.UserID)}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report fields by their JSON names.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// validateRequest validates a decoded request body. Content is checked and
// stored exactly as submitted; lengths count characters, not bytes.
func validateRequest(req any) error {
	err := getValidator().Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(ValidationErrors, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "uuid":
		return "must be a valid UUID"
	default:
		return "is invalid"
	}
}

// parseID parses a path parameter as a UUID.
func parseID(name, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ValidationErrors{name: "must be a valid UUID"}
	}
	return id, nil
}
