package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/openshelf/library-system/internal/api/metrics"
	"github.com/openshelf/library-system/internal/api/wire"
)

// RouteLabel names the route a request resolves to. It must return a bounded
// set of values since the result is used as a metric label.
type RouteLabel func(req *wire.Request) string

// Logging writes one access log line per request.
func Logging(log zerolog.Logger, label RouteLabel) wire.Middleware {
	return func(next wire.HandlerFunc) wire.HandlerFunc {
		return func(ctx context.Context, req *wire.Request) (*wire.Response, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			ev := log.Info()
			if resp != nil && resp.Status >= 500 {
				ev = log.Warn()
			}
			ev.Str("method", req.Method).
				Str("path", req.Path).
				Str("route", label(req)).
				Int("status", statusOf(resp)).
				Dur("duration", time.Since(start)).
				Msg("request")
			return resp, err
		}
	}
}

// Metrics records request counts and latency.
func Metrics(label RouteLabel) wire.Middleware {
	return func(next wire.HandlerFunc) wire.HandlerFunc {
		return func(ctx context.Context, req *wire.Request) (*wire.Response, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			route := label(req)
			metrics.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
			metrics.RequestsTotal.WithLabelValues(methodLabel(req.Method), route, strconv.Itoa(statusOf(resp))).Inc()
			return resp, err
		}
	}
}

func statusOf(resp *wire.Response) int {
	if resp == nil {
		return 0
	}
	return resp.Status
}

// methodLabel keeps arbitrary request-line tokens out of the label set.
func methodLabel(m string) string {
	switch m {
	case wire.MethodGet, wire.MethodPost, wire.MethodPut, wire.MethodDelete:
		return m
	default:
		return "other"
	}
}
