package persisted

import (
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// Response is one GraphQL response as written to the client
type Response struct {
	Data       interface{}            `json:"data,omitempty"`
	Errors     gqlerror.List          `json:"errors,omitempty"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}

// FormatFunc post-processes a response before it is written
type FormatFunc func(*Response) *Response

// FromResult converts an execution result into a Response
func FromResult(result *graphql.Result) *Response {
	if result == nil {
		return &Response{}
	}
	resp := &Response{
		Data:       result.Data,
		Extensions: result.Extensions,
	}
	for _, formatted := range result.Errors {
		resp.Errors = append(resp.Errors, fromFormattedError(formatted))
	}
	return resp
}

func fromFormattedError(formatted gqlerrors.FormattedError) *gqlerror.Error {
	err := &gqlerror.Error{
		Message:    formatted.Message,
		Extensions: formatted.Extensions,
	}
	for _, loc := range formatted.Locations {
		err.Locations = append(err.Locations, gqlerror.Location{Line: loc.Line, Column: loc.Column})
	}
	for _, elem := range formatted.Path {
		switch v := elem.(type) {
		case string:
			err.Path = append(err.Path, ast.PathName(v))
		case int:
			err.Path = append(err.Path, ast.PathIndex(v))
		}
	}
	return err
}

// FormatResponse wraps next with the error interceptor. A response whose
// data holds a non-empty string under the error field becomes an error
// envelope carrying that string; anything else goes to next, or is returned
// as is when next is nil.
func (e *Engine) FormatResponse(next FormatFunc) FormatFunc {
	return interceptErrors(e.errorType, next)
}

func interceptErrors(errorType string, next FormatFunc) FormatFunc {
	return func(resp *Response) *Response {
		if code := sentinelCode(resp, errorType); code != "" {
			return &Response{
				Errors: gqlerror.List{{Message: code}},
			}
		}
		if next != nil {
			return next(resp)
		}
		return resp
	}
}

func sentinelCode(resp *Response, errorType string) string {
	if resp == nil {
		return ""
	}
	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		return ""
	}
	code, _ := data[errorType].(string)
	return code
}
