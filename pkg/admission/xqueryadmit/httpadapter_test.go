package xqueryadmit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/queryadmit/pkg/distributed/xbrokerreg"
)

func newTestCore(t *testing.T, capacity int) *Core {
	t.Helper()
	registry, err := xbrokerreg.New(fixedCapacity(capacity))
	require.NoError(t, err)
	core, err := NewCore(registry)
	require.NoError(t, err)
	return core
}

func TestHandler_StreamsSuccessPayload(t *testing.T) {
	core := newTestCore(t, 2)
	handler := Handler(core, WithWorker(func(ctx context.Context, query url.Values) (any, error) {
		return map[string]string{"rows": "1"}, nil
	}), WithHeartbeatInterval(time.Hour))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/?db_id=1", nil)
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"rows":"1"`)
}

func TestHandler_MissingDBIDReturnsBadRequest(t *testing.T) {
	core := newTestCore(t, 2)
	handler := Handler(core, WithWorker(func(ctx context.Context, query url.Values) (any, error) {
		return "unused", nil
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_NoWorkerConfiguredReturnsInternalError(t *testing.T) {
	core := newTestCore(t, 2)
	handler := Handler(core)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/?db_id=1", nil)
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), ErrNoWorkerConfigured.Error()))
}

func TestHandler_WorkerErrorStreamsErrorEnvelope(t *testing.T) {
	core := newTestCore(t, 2)
	handler := Handler(core,
		WithWorker(func(ctx context.Context, query url.Values) (any, error) {
			return nil, assertBoom
		}),
		WithHeartbeatInterval(time.Hour),
	)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/?db_id=1", nil)
	handler.ServeHTTP(rec, req)

	assert.Contains(t, rec.Body.String(), "boom")
}

var assertBoom = &stubError{"boom"}

type stubError struct{ msg string }

func (e *stubError) Error() string { return e.msg }
