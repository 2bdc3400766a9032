// Package metrics holds the shared helpers that turn service events into StatsD series.
package metrics

import (
	"time"

	obserrors "github.com/estatehub/estate-api/internal/observability/errors"
	"github.com/estatehub/estate-api/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// Auth operations.
const (
	OpLogin   = "login"
	OpLogout  = "logout"
	OpRefresh = "refresh"
	OpRevoke  = "revoke"
	OpResolve = "resolve"
)

// AuthMetric captures one session-lifecycle event.
type AuthMetric struct {
	Operation string
	Result    string
	Duration  time.Duration
	Err       error
}

// EmitAuthEvent emits auth.<operation> counters and timings.
func EmitAuthEvent(sink statsd.Sink, in AuthMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"operation": in.Operation,
		"result":    in.Result,
	}

	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("auth.event", 1, tags)

	if in.Duration > 0 {
		sink.Timing("auth.duration", in.Duration, CloneTags(tags))
	}
}

// ResultFor maps an error to ResultSuccess or ResultError.
func ResultFor(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// EmitLiveSessions reports the number of sessions currently held in the store.
func EmitLiveSessions(sink statsd.Sink, count int) {
	if sink == nil {
		return
	}
	sink.Gauge("auth.sessions.live", float64(count), nil)
}
