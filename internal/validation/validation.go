// Package validation contains the logic for decoding and validating
// request data.
//
// It uses the `validator` library to enforce rules (like required
// fields or enumerations) defined in struct tags, and turns every
// failure into an *errs.HTTPError the client can understand.
package validation

import (
	"encoding/json"
	"io"
	"reflect"
	"strings"

	"github.com/deppfellow/tat-relay/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// validate is shared: validator caches struct metadata per type and is
// safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name ("taskId", not "TaskID").
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// Validatable is implemented by request payload types that know how to validate themselves.
//
// Typical pattern:
// - Define a request struct with validator tags (`validate:"required"`)
// - Implement Validate() error that runs validation.Struct(req)
// - Return an *errs.HTTPError carrying the caller-facing message
type Validatable interface {
	Validate() error
}

// Struct validates v against its `validate` tags.
func Struct(v any) error {
	return validate.Struct(v)
}

// BindAndValidate decodes the JSON body into payload and validates it.
//
// Flow:
//  1. The whole body is decoded as JSON whatever the Content-Type says.
//     An empty or malformed body, or anything after the first JSON value,
//     is a parse error (500), not a validation error.
//  2. payload.Validate() applies validation rules. An *errs.HTTPError is
//     returned as is; anything else becomes a 400.
//
// payload must be a pointer so decoding can populate it.
func BindAndValidate(c echo.Context, payload Validatable) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return errs.NewRequestParseError(errors.Wrap(err, "read request body"))
	}

	// json.Unmarshal, unlike a streaming decoder, rejects trailing data.
	if err := json.Unmarshal(body, payload); err != nil {
		return errs.NewRequestParseError(err)
	}

	if err := payload.Validate(); err != nil {
		var httpErr *errs.HTTPError
		if errors.As(err, &httpErr) {
			return httpErr
		}
		return errs.NewValidationError(err.Error()).WithCause(err)
	}

	return nil
}
