package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/lexis/internal/api/middleware"
	"github.com/phrazzld/lexis/internal/api/shared"
	"github.com/phrazzld/lexis/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceMiddleware(t *testing.T) {
	t.Parallel()
	log, buf := logger.GetTestLogger(t)

	var seenTrace string
	handler := middleware.NewTraceMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenTrace = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/words", nil))

	require.Len(t, seenTrace, 32)
	assert.Equal(t, seenTrace, w.Header().Get(middleware.TraceIDHeader))
	logger.AssertLogContains(t, buf, "request started")
	logger.AssertLogContains(t, buf, "inside handler")
	logger.AssertLogField(t, buf, "trace_id", seenTrace)
}
