package errs

import (
	"net/http"
)

// Caller-facing messages. They are part of the API contract and must
// stay stable.
const (
	MsgMethodNotAllowed   = "Method not allowed"
	MsgMissingFields      = "Missing taskId or status"
	MsgInvalidStatus      = "Invalid status value"
	MsgAPIKeyMissing      = "Airtable API key not configured"
	MsgRemote             = "Airtable API error"
	MsgInvalidRequestBody = "Invalid JSON in request body"
	MsgInvalidRemoteBody  = "Invalid JSON in Airtable response"
	MsgNetwork            = "Failed to reach Airtable API"
	MsgRouteNotFound      = "Route not found"
	MsgInternal           = "Internal server error"
)

// Sentinels for errors.Is. Only Kind is compared.
var (
	ErrMethodNotAllowed = &HTTPError{Kind: KindMethodNotAllowed}
	ErrValidation       = &HTTPError{Kind: KindValidation}
	ErrConfig           = &HTTPError{Kind: KindConfig}
	ErrRemote           = &HTTPError{Kind: KindRemote}
	ErrParse            = &HTTPError{Kind: KindParse}
	ErrNetwork          = &HTTPError{Kind: KindNetwork}
	ErrNotFound         = &HTTPError{Kind: KindNotFound}
	ErrInternal         = &HTTPError{Kind: KindInternal}
)

// NewMethodNotAllowedError creates a 405 HTTPError.
func NewMethodNotAllowedError() *HTTPError {
	return &HTTPError{
		Kind:    KindMethodNotAllowed,
		Message: MsgMethodNotAllowed,
		Status:  http.StatusMethodNotAllowed,
	}
}

// NewValidationError creates a 400 Bad Request HTTPError.
//
// message is one of MsgMissingFields or MsgInvalidStatus.
func NewValidationError(message string) *HTTPError {
	return &HTTPError{
		Kind:    KindValidation,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewConfigError creates the 500 returned when the Airtable credential is absent.
func NewConfigError() *HTTPError {
	return &HTTPError{
		Kind:    KindConfig,
		Message: MsgAPIKeyMissing,
		Status:  http.StatusInternalServerError,
	}
}

// NewRemoteError creates the 500 returned when Airtable answers non-2xx.
//
// body is the raw upstream response text and is passed through as "details".
func NewRemoteError(body string, cause error) *HTTPError {
	return &HTTPError{
		Kind:    KindRemote,
		Message: MsgRemote,
		Details: &body,
		Status:  http.StatusInternalServerError,
		Err:     cause,
	}
}

// NewRequestParseError creates the 500 returned when the inbound body is not JSON.
func NewRequestParseError(cause error) *HTTPError {
	return &HTTPError{
		Kind:    KindParse,
		Message: MsgInvalidRequestBody,
		Status:  http.StatusInternalServerError,
		Err:     cause,
	}
}

// NewRemoteParseError creates the 500 returned when Airtable answers 2xx
// with a body that is not JSON.
func NewRemoteParseError(cause error) *HTTPError {
	return &HTTPError{
		Kind:    KindParse,
		Message: MsgInvalidRemoteBody,
		Status:  http.StatusInternalServerError,
		Err:     cause,
	}
}

// NewNetworkError creates the 500 returned when Airtable cannot be reached.
func NewNetworkError(cause error) *HTTPError {
	return &HTTPError{
		Kind:    KindNetwork,
		Message: MsgNetwork,
		Status:  http.StatusInternalServerError,
		Err:     cause,
	}
}

// NewNotFoundError creates a 404 Not Found HTTPError.
func NewNotFoundError() *HTTPError {
	return &HTTPError{
		Kind:    KindNotFound,
		Message: MsgRouteNotFound,
		Status:  http.StatusNotFound,
	}
}

// NewInternalServerError creates a 500 Internal Server Error HTTPError.
//
// The message is generic on purpose: the cause is logged, not returned.
func NewInternalServerError(cause error) *HTTPError {
	return &HTTPError{
		Kind:    KindInternal,
		Message: MsgInternal,
		Status:  http.StatusInternalServerError,
		Err:     cause,
	}
}
