package graphql

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/c360/persistgraphql/errors"
	"github.com/c360/persistgraphql/persisted"
)

// MessageInvalidExtensions is returned when a string-typed extensions value
// holds invalid JSON
const MessageInvalidExtensions = "Extensions are invalid JSON."

// MessageMissingQuery is returned when a request carries neither query text
// nor a persisted query hash
const MessageMissingQuery = "Must provide query string."

// requestError is an error answered before any query executes
type requestError struct {
	status int
	kind   string
	err    *gqlerror.Error
}

// mapTransformError converts an error from Transform to an HTTP status and a
// GraphQL error code. Invalid input is the client's fault, fatal errors are
// misconfiguration, and anything else is reported as retryable.
func mapTransformError(err error) requestError {
	var tooLarge *http.MaxBytesError
	switch {
	case stderrors.As(err, &tooLarge):
		return requestError{
			status: http.StatusRequestEntityTooLarge,
			kind:   "too_large",
			err: &gqlerror.Error{
				Message:    fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit),
				Extensions: map[string]interface{}{"code": "PAYLOAD_TOO_LARGE"},
			},
		}

	case stderrors.Is(err, context.DeadlineExceeded):
		return requestError{
			status: http.StatusGatewayTimeout,
			kind:   "timeout",
			err: &gqlerror.Error{
				Message:    "Query timeout exceeded",
				Extensions: map[string]interface{}{"code": "DEADLINE_EXCEEDED"},
			},
		}
	}

	switch errors.Classify(err) {
	case errors.ErrorInvalid:
		return requestError{
			status: http.StatusBadRequest,
			kind:   "invalid",
			err: &gqlerror.Error{
				Message:    "Invalid request body",
				Extensions: map[string]interface{}{"code": "INVALID_INPUT"},
			},
		}

	case errors.ErrorFatal:
		return requestError{
			status: http.StatusInternalServerError,
			kind:   "configuration",
			err: &gqlerror.Error{
				Message:    "Internal server error",
				Extensions: map[string]interface{}{"code": "INTERNAL_ERROR"},
			},
		}
	}

	return requestError{
		status: http.StatusServiceUnavailable,
		kind:   "unavailable",
		err: &gqlerror.Error{
			Message:    "Service temporarily unavailable",
			Extensions: map[string]interface{}{"code": "UNAVAILABLE"},
		},
	}
}

// invalidExtensions is the error for requests whose extensions fail to decode
func invalidExtensions() requestError {
	return requestError{
		status: http.StatusBadRequest,
		kind:   "invalid_extensions",
		err:    &gqlerror.Error{Message: MessageInvalidExtensions},
	}
}

// missingQuery is the error for requests that resolve to no query text
func missingQuery() requestError {
	return requestError{
		status: http.StatusBadRequest,
		kind:   "missing_query",
		err:    &gqlerror.Error{Message: MessageMissingQuery},
	}
}

// response wraps the error in a response envelope
func (e requestError) response() *persisted.Response {
	return &persisted.Response{Errors: gqlerror.List{e.err}}
}
