package xstreambody

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/omeyang/queryadmit/pkg/observability/xlog"
	"github.com/omeyang/queryadmit/pkg/streaming/xkeepalive"
	"github.com/omeyang/queryadmit/pkg/util/xjson"
)

// Flusher flushes buffered bytes to the underlying connection.
// *http.ResponseController satisfies this directly.
type Flusher interface {
	Flush() error
}

// ErrorEnvelope formats a worker or protocol error into the
// JSON-serializable shape written as the body for an error outcome.
type ErrorEnvelope func(err error) any

// BodyWriter drains a [xkeepalive.Relay]'s item stream to an io.Writer:
// heartbeats become a bare newline plus flush, the terminal payload
// becomes one JSON document. The sink is closed (if it implements
// io.Closer) exactly once, on every exit path.
type BodyWriter struct {
	sink     io.Writer
	flusher  Flusher
	envelope ErrorEnvelope
	logger   xlog.Logger
}

// New builds a BodyWriter. envelope and logger may be nil; a nil envelope
// falls back to a JSON object of the form {"error": "<message>"}.
func New(sink io.Writer, flusher Flusher, envelope ErrorEnvelope, logger xlog.Logger) *BodyWriter {
	if envelope == nil {
		envelope = defaultEnvelope
	}
	return &BodyWriter{sink: sink, flusher: flusher, envelope: envelope, logger: logger}
}

func defaultEnvelope(err error) any {
	return map[string]string{"error": err.Error()}
}

// Run consumes items until the terminal one arrives or the channel closes,
// calling closeHandle if a heartbeat write fault reveals the peer is gone
// (propagating cancellation back to the worker that's still running).
func (w *BodyWriter) Run(ctx context.Context, items <-chan xkeepalive.Item, closeHandle func()) {
	if closer, ok := w.sink.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	for item := range items {
		switch item.Kind {
		case xkeepalive.ItemHeartbeat:
			if !w.writeHeartbeat(ctx, closeHandle) {
				return
			}
		case xkeepalive.ItemValue:
			w.writeJSON(item.Value)
			return
		case xkeepalive.ItemError:
			w.writeJSON(w.envelope(item.Err))
			return
		}
	}
}

func (w *BodyWriter) writeHeartbeat(ctx context.Context, closeHandle func()) bool {
	if _, err := w.sink.Write([]byte("\n")); err != nil {
		w.handleWriteFault(ctx, err, closeHandle)
		return false
	}
	if w.flusher != nil {
		if err := w.flusher.Flush(); err != nil {
			w.handleWriteFault(ctx, err, closeHandle)
			return false
		}
	}
	return true
}

func (w *BodyWriter) handleWriteFault(ctx context.Context, err error, closeHandle func()) {
	classified := classifyWriteFault(err)
	if w.logger != nil {
		if errors.Is(classified, ErrPeerGone) {
			w.logger.Info(ctx, "xstreambody: peer gone, canceling worker", slog.String("error", err.Error()))
		} else {
			w.logger.Error(ctx, "xstreambody: sink write fault, canceling worker", slog.String("error", err.Error()))
		}
	}
	closeHandle()
}

func (w *BodyWriter) writeJSON(v any) {
	data := xjson.Marshal(v)
	if _, err := w.sink.Write(data); err != nil && w.logger != nil {
		w.logger.Error(context.Background(), "xstreambody: failed writing terminal payload",
			slog.String("error", err.Error()))
		return
	}
	if w.flusher != nil {
		_ = w.flusher.Flush()
	}
}
