package persisted

import (
	"bytes"
	"encoding/json"
	"net/url"

	"github.com/c360/persistgraphql/errors"
)

// Request is one GraphQL request as sent by a client.
//
// Extensions stays raw until resolution: clients send it either as an object
// or as a JSON-encoded string, and the two shapes resolve differently.
type Request struct {
	Query         string                 `json:"query,omitempty"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
	Extensions    json.RawMessage        `json:"extensions,omitempty"`
}

// Body is a single request or an ordered batch of requests.
// Batch records whether the client sent an array, so the response can be
// shaped the same way.
type Body struct {
	Requests []Request
	Batch    bool
}

// ParseBody decodes a JSON request body holding one request object or an
// array of them.
func ParseBody(data []byte) (Body, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Body{}, errors.WrapInvalid(errors.ErrInvalidData, "Engine", "ParseBody", "read empty body")
	}

	if trimmed[0] == '[' {
		var batch []Request
		if err := json.Unmarshal(trimmed, &batch); err != nil {
			return Body{}, errors.WrapInvalid(errors.ErrInvalidData, "Engine", "ParseBody", "decode batch: "+err.Error())
		}
		return Body{Requests: batch, Batch: true}, nil
	}

	var req Request
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return Body{}, errors.WrapInvalid(errors.ErrInvalidData, "Engine", "ParseBody", "decode request: "+err.Error())
	}
	return Body{Requests: []Request{req}}, nil
}

// ParseQueryParams builds a single request from URL query parameters.
// variables is JSON; extensions is kept as a JSON string so it resolves the
// way a string-typed extensions value does in a POST body.
func ParseQueryParams(values url.Values) (Body, error) {
	req := Request{
		Query:         values.Get("query"),
		OperationName: values.Get("operationName"),
	}

	if raw := values.Get("variables"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
			return Body{}, errors.WrapInvalid(errors.ErrInvalidData, "Engine", "ParseQueryParams", "decode variables: "+err.Error())
		}
	}

	if raw := values.Get("extensions"); raw != "" {
		encoded, err := json.Marshal(raw)
		if err != nil {
			return Body{}, errors.WrapInvalid(errors.ErrInvalidData, "Engine", "ParseQueryParams", "encode extensions")
		}
		req.Extensions = encoded
	}

	return Body{Requests: []Request{req}}, nil
}

// extensionState is what a request's extensions say about persisted queries
type extensionState int

const (
	extensionsAbsent extensionState = iota
	extensionsMalformed
	extensionsPresent
)

// persistedQuery is the decoded extensions.persistedQuery value. Hash is empty
// when the client sent no usable sha256Hash.
type persistedQuery struct {
	Hash string
}

// decodeExtensions reports the extensions state of a request and, when
// present, its persistedQuery entry (nil when there is none).
func decodeExtensions(raw json.RawMessage) (extensionState, *persistedQuery) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return extensionsAbsent, nil
	}

	if trimmed[0] == '"' {
		var encoded string
		if err := json.Unmarshal(trimmed, &encoded); err != nil {
			return extensionsMalformed, nil
		}
		if encoded == "" {
			return extensionsAbsent, nil
		}
		var value interface{}
		if err := json.Unmarshal([]byte(encoded), &value); err != nil {
			return extensionsMalformed, nil
		}
		return extensionsPresent, persistedQueryFrom(value)
	}

	var value interface{}
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return extensionsMalformed, nil
	}
	return extensionsPresent, persistedQueryFrom(value)
}

func persistedQueryFrom(value interface{}) *persistedQuery {
	ext, ok := value.(map[string]interface{})
	if !ok {
		return nil
	}
	entry := ext["persistedQuery"]
	if !truthy(entry) {
		return nil
	}
	// Any other truthy value counts as a persisted query without a hash.
	pq, _ := entry.(map[string]interface{})
	hash, _ := pq["sha256Hash"].(string)
	return &persistedQuery{Hash: hash}
}

// truthy reports whether a decoded JSON value is set: null, false, zero and
// the empty string are not.
func truthy(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return v != ""
	default:
		return true
	}
}

// ExtensionsMalformed reports whether raw is a JSON string whose content is
// not valid JSON.
func ExtensionsMalformed(raw json.RawMessage) bool {
	state, _ := decodeExtensions(raw)
	return state == extensionsMalformed
}
