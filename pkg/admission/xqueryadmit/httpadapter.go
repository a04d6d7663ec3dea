package xqueryadmit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/omeyang/queryadmit/pkg/observability/xlog"
	"github.com/omeyang/queryadmit/pkg/streaming/xkeepalive"
	"github.com/omeyang/queryadmit/pkg/streaming/xstreambody"
)

// ErrNoWorkerConfigured is returned to every request that carries a valid
// database id if Handler is built without WithWorker; a request whose
// database id cannot be extracted gets 400 Bad Request first.
var ErrNoWorkerConfigured = errors.New("xqueryadmit: no worker configured")

// DatabaseIDOf extracts the target database id from a request's parsed
// query values. The default implementation reads an integer "db_id"
// parameter.
type DatabaseIDOf func(query url.Values) (int64, error)

// QueryWorker runs the admitted work for one request, given its parsed
// query values.
type QueryWorker func(ctx context.Context, query url.Values) (any, error)

// HandlerOption configures Handler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	heartbeatInterval time.Duration
	databaseIDOf      DatabaseIDOf
	worker            QueryWorker
	errorEnvelope     xstreambody.ErrorEnvelope
	logger            xlog.Logger
}

func defaultHandlerConfig() *handlerConfig {
	return &handlerConfig{
		heartbeatInterval: xkeepalive.DefaultInterval,
		databaseIDOf:      defaultDatabaseIDOf,
	}
}

func defaultDatabaseIDOf(query url.Values) (int64, error) {
	raw := query.Get("db_id")
	if raw == "" {
		return 0, fmt.Errorf("%w: missing db_id parameter", ErrSubmissionRejected)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid db_id: %w", ErrSubmissionRejected, err)
	}
	return id, nil
}

// WithHeartbeatInterval overrides xkeepalive.DefaultInterval.
func WithHeartbeatInterval(d time.Duration) HandlerOption {
	return func(c *handlerConfig) {
		if d > 0 {
			c.heartbeatInterval = d
		}
	}
}

// WithDatabaseIDOf overrides how the database id is extracted from a
// request's query values.
func WithDatabaseIDOf(fn DatabaseIDOf) HandlerOption {
	return func(c *handlerConfig) {
		c.databaseIDOf = fn
	}
}

// WithWorker sets the function invoked for each admitted request. Without
// it, Handler responds with ErrNoWorkerConfigured to every request that
// carries a valid database id.
func WithWorker(fn QueryWorker) HandlerOption {
	return func(c *handlerConfig) {
		c.worker = fn
	}
}

// WithErrorEnvelope overrides the default {"error": msg} envelope shape.
func WithErrorEnvelope(fn xstreambody.ErrorEnvelope) HandlerOption {
	return func(c *handlerConfig) {
		c.errorEnvelope = fn
	}
}

// WithHandlerLogger sets the logger used by the streaming stage.
func WithHandlerLogger(logger xlog.Logger) HandlerOption {
	return func(c *handlerConfig) {
		c.logger = logger
	}
}

// Handler builds an http.Handler that admits one Core.Submit invocation
// per request and streams the outcome as zero or more bare newline
// heartbeats followed by exactly one JSON document.
func Handler(core *Core, opts ...HandlerOption) http.Handler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		dbID, err := cfg.databaseIDOf(query)
		if err != nil {
			http.Error(rw, err.Error(), http.StatusBadRequest)
			return
		}
		if cfg.worker == nil {
			http.Error(rw, ErrNoWorkerConfigured.Error(), http.StatusInternalServerError)
			return
		}

		rw.Header().Set("Content-Type", "application/json")
		rw.WriteHeader(http.StatusOK)

		handle := core.Submit(r.Context(), dbID, func(ctx context.Context) (any, error) {
			return cfg.worker(ctx, query)
		})

		relay := xkeepalive.New(xkeepalive.WithInterval(cfg.heartbeatInterval))
		consumerDone := make(chan struct{})
		items := relay.Run(r.Context(), handle, consumerDone)

		writer := xstreambody.New(rw, http.NewResponseController(rw), cfg.errorEnvelope, cfg.logger)
		defer close(consumerDone)
		writer.Run(r.Context(), items, handle.Close)
	})
}
