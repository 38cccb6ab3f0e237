package graphql

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/c360/persistgraphql/errors"
	"github.com/c360/persistgraphql/metric"
	"github.com/c360/persistgraphql/persisted"
)

// RequestIDHeader carries the request id on every response
const RequestIDHeader = "X-Request-ID"

// Transport labels used in logs and metrics
const (
	TransportHTTP = "http"
	TransportGin  = "gin"
)

// HandlerOptions are optional collaborators of a Handler
type HandlerOptions struct {
	// Options are passed to every Transform; Schema is used when the engine
	// has none yet
	Options persisted.Options

	// Metrics records request and resolution metrics when set
	Metrics *metric.Metrics

	Logger *slog.Logger
}

// Handler serves persisted GraphQL queries over net/http and gin
type Handler struct {
	engine        *persisted.Engine
	options       persisted.Options
	onlyWhiteList bool
	maxBodyBytes  int64
	metrics       *metric.Metrics
	logger        *slog.Logger
}

// NewHandler creates a handler executing requests resolved by engine
func NewHandler(engine *persisted.Engine, config Config, opts HandlerOptions) (*Handler, error) {
	if engine == nil {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "Handler", "NewHandler",
			"engine is required")
	}
	if err := config.Validate(); err != nil {
		return nil, errors.WrapInvalid(err, "Handler", "NewHandler", "config validation")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		engine:        engine,
		options:       opts.Options,
		onlyWhiteList: config.OnlyWhiteList,
		maxBodyBytes:  config.MaxBodyBytes,
		metrics:       opts.Metrics,
		logger:        logger.With("component", "graphql-handler"),
	}, nil
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r)
	w.Header().Set(RequestIDHeader, requestID)

	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	status, payload := h.handle(r.Context(), TransportHTTP, requestID, persisted.TransformOptions{
		Request:       r,
		OnlyWhiteList: h.onlyWhiteList,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Failed to write response", "request_id", requestID, "error", err)
	}
}

// Gin returns a gin handler serving the same endpoint
func (h *Handler) Gin() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := requestIDFrom(c.Request)
		c.Header(RequestIDHeader, requestID)

		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodPost {
			c.Header("Allow", "GET, POST")
			c.AbortWithStatus(http.StatusMethodNotAllowed)
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
		}

		status, payload := h.handle(c.Request.Context(), TransportGin, requestID, persisted.TransformOptions{
			Gin:           c,
			OnlyWhiteList: h.onlyWhiteList,
		})
		c.JSON(status, payload)
	}
}

// handle transforms, executes and formats one HTTP request. The payload is a
// single response, or an array when the client sent a batch.
func (h *Handler) handle(ctx context.Context, transport, requestID string, tctx persisted.TransformOptions) (int, interface{}) {
	start := time.Now()

	status, payload := h.run(ctx, transport, requestID, tctx)

	if h.metrics != nil {
		h.metrics.RecordRequest(transport, strconv.Itoa(status))
		h.metrics.RecordRequestDuration(transport, time.Since(start))
		h.metrics.RecordRegistrySize(h.engine.Registry().Len())
	}
	return status, payload
}

func (h *Handler) run(ctx context.Context, transport, requestID string, tctx persisted.TransformOptions) (int, interface{}) {
	transformed, err := h.engine.Transform(h.options, tctx)
	if err != nil {
		reqErr := mapTransformError(err)
		h.fail(transport, requestID, reqErr, err)
		return reqErr.status, reqErr.response()
	}

	for _, res := range transformed.Resolutions {
		if h.metrics != nil {
			h.metrics.RecordResolution(string(res.Outcome))
		}
		h.logger.Debug("Resolved request",
			"request_id", requestID,
			"transport", transport,
			"outcome", res.Outcome,
			"hash", res.Hash)
	}

	if reqErr := checkResolutions(transformed.Resolutions); reqErr != nil {
		h.fail(transport, requestID, *reqErr, nil)
		return reqErr.status, reqErr.response()
	}

	responses := execute(ctx, transformed)
	if transformed.Body.Batch {
		return http.StatusOK, responses
	}
	return http.StatusOK, responses[0]
}

func (h *Handler) fail(transport, requestID string, reqErr requestError, cause error) {
	if h.metrics != nil {
		h.metrics.RecordError(reqErr.kind)
	}
	attrs := []any{
		"request_id", requestID,
		"transport", transport,
		"status", reqErr.status,
		"kind", reqErr.kind,
	}
	if cause != nil {
		attrs = append(attrs, "error", cause)
	}
	if reqErr.status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", attrs...)
		return
	}
	h.logger.Debug("Request rejected", attrs...)
}

func requestIDFrom(r *http.Request) string {
	if r != nil {
		if id := r.Header.Get(RequestIDHeader); id != "" {
			return id
		}
	}
	return uuid.NewString()
}
