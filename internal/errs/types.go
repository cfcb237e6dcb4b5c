package errs

import "strings"

// Kind is a machine-friendly error category (e.g. "VALIDATION_ERROR").
type Kind string

const (
	KindMethodNotAllowed Kind = "METHOD_NOT_ALLOWED"
	KindValidation       Kind = "VALIDATION_ERROR"
	KindConfig           Kind = "CONFIG_ERROR"
	KindRemote           Kind = "REMOTE_ERROR"
	KindParse            Kind = "PARSE_ERROR"
	KindNetwork          Kind = "NETWORK_ERROR"
	KindNotFound         Kind = "NOT_FOUND"
	KindInternal         Kind = "INTERNAL_ERROR"
)

// HTTPError is the main custom error type for API responses.
//
// It implements the `error` interface via Error().
// Only Message and Details are serialized; they form the body
//
//	{ "error": "Airtable API error", "details": "<upstream body>" }
//
// Fields:
//   - Kind: machine-friendly category, used by errors.Is and in logs.
//   - Message: human-friendly, stable message sent as "error".
//   - Details: optional extra text (raw upstream body for REMOTE_ERROR).
//   - Status: HTTP status code.
//   - Err: underlying cause, logged but never sent to the client.
type HTTPError struct {
	Kind    Kind    `json:"-"`
	Message string  `json:"error"`
	Details *string `json:"details,omitempty"`
	Status  int     `json:"-"`
	Err     error   `json:"-"`
}

// Error makes *HTTPError satisfy the built-in `error` interface.
//
// It returns the Message, so printing/logging the error shows the message.
// The cause is reachable through Unwrap.
func (e *HTTPError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *HTTPError) Unwrap() error {
	return e.Err
}

// Is customizes how errors.Is(...) treats HTTPError.
//
// A target with an empty Kind matches any *HTTPError. Otherwise the
// kinds must be equal, so the sentinels below can be used as
//
//	errors.Is(err, errs.ErrConfig)
func (e *HTTPError) Is(target error) bool {
	t, ok := target.(*HTTPError)
	if !ok {
		return false
	}

	return t.Kind == "" || t.Kind == e.Kind
}

// WithMessage returns a *copy* of this HTTPError with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	cp := *e
	cp.Message = message
	return &cp
}

// WithCause returns a *copy* of this HTTPError carrying err as its cause.
func (e *HTTPError) WithCause(err error) *HTTPError {
	cp := *e
	cp.Err = err
	return &cp
}

// MakeUpperCaseWithUnderscores converts a string into an UPPER_CASE_WITH_UNDERSCORES format.
//
// Example:
//
//	"Method Not Allowed" -> "METHOD_NOT_ALLOWED"
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
