package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

type endpointStats struct {
	count     int
	totalTime time.Duration
	maxTime   time.Duration
}

// statsLogger aggregates request durations per route pattern.
type statsLogger struct {
	logger        *slog.Logger
	stats         map[string]*endpointStats
	mu            sync.Mutex
	flushInterval time.Duration
}

func newStatsLogger(logger *slog.Logger, flushInterval time.Duration) *statsLogger {
	return &statsLogger{
		logger:        logger,
		stats:         make(map[string]*endpointStats),
		flushInterval: flushInterval,
	}
}

func (sl *statsLogger) run(ctx context.Context) {
	ticker := time.NewTicker(sl.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			sl.flushStats()
			return
		case <-ticker.C:
			sl.flushStats()
		}
	}
}

func (sl *statsLogger) flushStats() {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	for endpoint, stats := range sl.stats {
		if stats.count == 0 {
			continue
		}
		avgTimeMs := float64(stats.totalTime.Microseconds()) / float64(stats.count) / 1000.0
		sl.logger.Info("endpoint stats",
			"endpoint", endpoint,
			"count", stats.count,
			"avg_time_ms", fmt.Sprintf("%.2f", avgTimeMs),
			"max_time_ms", stats.maxTime.Milliseconds(),
			"period", sl.flushInterval,
		)
		delete(sl.stats, endpoint)
	}
}

func (sl *statsLogger) snapshot(endpoint string) (endpointStats, bool) {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	s, ok := sl.stats[endpoint]
	if !ok {
		return endpointStats{}, false
	}
	return *s, true
}

func (sl *statsLogger) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		duration := time.Since(start)

		// the pattern is only known once routing is done, ids are not part of it
		pattern := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			pattern = rctx.RoutePattern()
		}
		endpoint := r.Method + " " + pattern

		sl.mu.Lock()
		s, exists := sl.stats[endpoint]
		if !exists {
			s = &endpointStats{}
			sl.stats[endpoint] = s
		}
		s.count++
		s.totalTime += duration
		s.maxTime = max(s.maxTime, duration)
		sl.mu.Unlock()
	})
}
