package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"TodoAPI/internal/apperr"
	"TodoAPI/internal/dto"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var tagNamesOnce sync.Once

// UseRequestFieldNames makes binding errors report the json (or form) name of
// a field instead of the Go one.
func UseRequestFieldNames() {
	tagNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return f.Name
		})
	})
}

func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as the error envelope and attaches it to the gin
// context for the request logger.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	ae, ok := apperr.As(err)
	if !ok {
		ae = &apperr.Error{Kind: apperr.KindInternal, Message: "internal server error", Err: err}
	}
	status := statusOf(ae.Kind)
	msg := ae.Message
	if status >= http.StatusInternalServerError && ae.Kind != apperr.KindStorage {
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: dto.ErrorBody{
		StatusCode: status,
		Name:       ae.Kind.Name(),
		Message:    msg,
		Code:       string(ae.Kind),
		Details:    ae.Details,
	}})
}

// bindError turns a gin binding failure into a validation error.
func bindError(err error) error {
	var (
		verrs     validator.ValidationErrors
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
	)
	switch {
	case errors.As(err, &verrs) && len(verrs) > 0:
		fe := verrs[0]
		return apperr.Validation(fieldMessage(fe), map[string]any{
			"field": fieldPath(fe),
			"rule":  fe.Tag(),
		}).WithCause(err)
	case errors.As(err, &typeErr):
		return apperr.Validation("invalid value type",
			map[string]any{"field": typeErr.Field, "expected": typeErr.Type.String()}).WithCause(err)
	case errors.As(err, &syntaxErr):
		return apperr.Validation("malformed JSON body", map[string]any{"offset": syntaxErr.Offset}).WithCause(err)
	default:
		return apperr.Validation("invalid request: "+err.Error(), nil).WithCause(err)
	}
}

// fieldPath drops the top-level struct name from the validator namespace,
// e.g. "BulkCompletionRequest.ids[0]" -> "ids[0]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + fe.Param()
	case "max":
		return field + " must be at most " + fe.Param()
	case "gt":
		return field + " must be greater than " + fe.Param()
	default:
		return field + " is invalid"
	}
}

// Recover is the gin recovery handler: a panic becomes an INTERNAL_ERROR envelope.
func Recover(c *gin.Context, recovered any) {
	writeError(c, fmt.Errorf("panic: %v", recovered))
}
