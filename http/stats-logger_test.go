package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsLoggerGroupsByRoutePattern(t *testing.T) {
	sl := newStatsLogger(slog.New(slog.NewTextHandler(io.Discard, nil)), time.Minute)
	r := chi.NewRouter()
	r.Use(sl.middleware)
	r.Get("/assignments/{assignmentId}/report", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, path := range []string{"/assignments/1/report", "/assignments/2/report"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	s, ok := sl.snapshot("GET /assignments/{assignmentId}/report")
	require.True(t, ok)
	assert.Equal(t, 2, s.count)
	assert.GreaterOrEqual(t, s.totalTime, s.maxTime)

	sl.flushStats()
	_, ok = sl.snapshot("GET /assignments/{assignmentId}/report")
	assert.False(t, ok)
}
