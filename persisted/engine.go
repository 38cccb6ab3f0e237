package persisted

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"

	"github.com/c360/persistgraphql/errors"
)

// Engine resolves persisted queries for one schema.
//
// An Engine owns its registry. The augmented schema is built once, either at
// construction or lazily on the first Transform, and replaced only through
// UpdateSchema.
type Engine struct {
	registry  *Registry
	errorType string
	logger    *slog.Logger

	mu     sync.RWMutex
	schema *graphql.Schema
}

// Option configures an Engine
type Option func(*Engine)

// WithErrorType sets the name of the root field used to carry protocol errors
func WithErrorType(name string) Option {
	return func(e *Engine) {
		e.errorType = name
	}
}

// WithLogger sets the engine logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRegistry makes the engine resolve against an existing registry
func WithRegistry(registry *Registry) Option {
	return func(e *Engine) {
		if registry != nil {
			e.registry = registry
		}
	}
}

// New creates an engine. schema may be nil, in which case the schema passed
// to the first Transform is augmented and kept.
func New(schema *graphql.Schema, opts ...Option) (*Engine, error) {
	e := &Engine{
		registry:  NewRegistry(),
		errorType: DefaultErrorType,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "persisted")

	if err := validateErrorType(e.errorType); err != nil {
		return nil, err
	}

	if schema != nil {
		if err := e.UpdateSchema(schema); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// UpdateSchema augments schema and replaces the engine's schema with it
func (e *Engine) UpdateSchema(schema *graphql.Schema) error {
	augmented, err := Augment(schema, e.errorType)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.schema = augmented
	e.mu.Unlock()

	e.logger.Debug("Schema augmented", "error_type", e.errorType)
	return nil
}

// Schema returns the augmented schema, or nil before one has been set
func (e *Engine) Schema() *graphql.Schema {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.schema
}

// ErrorType returns the name of the error field
func (e *Engine) ErrorType() string {
	return e.errorType
}

// Registry returns the engine's registry
func (e *Engine) Registry() *Registry {
	return e.registry
}

// AddQueryFiles registers every query found under path
func (e *Engine) AddQueryFiles(path string) error {
	count, err := LoadQueryFiles(e.registry, path)
	if err != nil {
		return err
	}
	e.logger.Info("Loaded persisted queries", "path", path, "count", count, "total", e.registry.Len())
	return nil
}

// Options are the execution options the caller has configured for its server
type Options struct {
	Schema         *graphql.Schema
	RootObject     map[string]interface{}
	FormatResponse FormatFunc
}

// TransformOptions carries the incoming request. Exactly one of Request and
// Gin must be set.
type TransformOptions struct {
	Request       *http.Request
	Gin           *gin.Context
	OnlyWhiteList bool
}

// Transformed is the outcome of Transform: options to execute with, the body
// as sent, and one resolution per request in the body.
type Transformed struct {
	Options     Options
	Body        Body
	Resolutions []Resolution
}

// Transform reads the incoming request, resolves its persisted queries and
// returns execution options that run against the augmented schema and
// intercept protocol errors before opts.FormatResponse.
func (e *Engine) Transform(opts Options, tctx TransformOptions) (*Transformed, error) {
	if (tctx.Request == nil) == (tctx.Gin == nil) {
		return nil, errors.WrapFatal(errors.ErrServerInstance, "Engine", "Transform", "resolve server context")
	}

	schema := e.Schema()
	if schema == nil {
		if err := e.UpdateSchema(opts.Schema); err != nil {
			return nil, err
		}
		schema = e.Schema()
	}

	var (
		body Body
		err  error
	)
	if tctx.Gin != nil {
		body, err = ginBody(tctx.Gin)
	} else {
		body, err = httpBody(tctx.Request)
	}
	if err != nil {
		return nil, err
	}

	resolved := opts
	resolved.Schema = schema
	resolved.FormatResponse = e.FormatResponse(opts.FormatResponse)

	return &Transformed{
		Options:     resolved,
		Body:        body,
		Resolutions: e.Resolve(body, tctx.OnlyWhiteList),
	}, nil
}

func httpBody(r *http.Request) (Body, error) {
	if r.Method != http.MethodPost {
		return ParseQueryParams(r.URL.Query())
	}
	if r.Body == nil {
		return Body{}, errors.WrapInvalid(errors.ErrInvalidData, "Engine", "Transform", "read body")
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return Body{}, errors.WrapInvalid(fmt.Errorf("%w: %w", errors.ErrInvalidData, err), "Engine", "Transform", "read body")
	}
	return ParseBody(data)
}

func ginBody(c *gin.Context) (Body, error) {
	if c.Request == nil {
		return Body{}, errors.WrapFatal(errors.ErrServerInstance, "Engine", "Transform", "resolve gin request")
	}
	if c.Request.Method != http.MethodPost {
		return ParseQueryParams(c.Request.URL.Query())
	}
	data, err := c.GetRawData()
	if err != nil {
		return Body{}, errors.WrapInvalid(fmt.Errorf("%w: %w", errors.ErrInvalidData, err), "Engine", "Transform", "read body")
	}
	return ParseBody(data)
}
