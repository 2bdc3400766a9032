package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/estatehub/estate-api/internal/domain/auth"
	apperrors "github.com/estatehub/estate-api/internal/errors"
)

type recordedMetric struct {
	kind  string
	name  string
	value any
	tags  map[string]string
}

type recordingSink struct {
	mu   sync.Mutex
	recs []recordedMetric
}

func (s *recordingSink) Count(name string, value int64, tags map[string]string) {
	s.add("count", name, value, tags)
}

func (s *recordingSink) Gauge(name string, value float64, tags map[string]string) {
	s.add("gauge", name, value, tags)
}

func (s *recordingSink) Timing(name string, value time.Duration, tags map[string]string) {
	s.add("timing", name, value, tags)
}

func (s *recordingSink) add(kind, name string, value any, tags map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, recordedMetric{kind: kind, name: name, value: value, tags: tags})
}

func TestEmitAuthEvent_Success(t *testing.T) {
	sink := &recordingSink{}
	EmitAuthEvent(sink, AuthMetric{Operation: OpLogin, Result: ResultSuccess, Duration: 5 * time.Millisecond})

	require.Len(t, sink.recs, 2)
	assert.Equal(t, "auth.event", sink.recs[0].name)
	assert.Equal(t, map[string]string{"operation": "login", "result": "success"}, sink.recs[0].tags)
	assert.Equal(t, "timing", sink.recs[1].kind)
	assert.Equal(t, 5*time.Millisecond, sink.recs[1].value)
}

func TestEmitAuthEvent_ErrorClass(t *testing.T) {
	sink := &recordingSink{}
	EmitAuthEvent(sink, AuthMetric{
		Operation: OpRefresh,
		Result:    ResultError,
		Err:       apperrors.RefreshFailed(domainauth.ErrTokenExpired),
	})

	require.Len(t, sink.recs, 1)
	assert.Equal(t, "token_expired", sink.recs[0].tags["error_class"])
}

func TestEmitAuthEvent_NilSink(t *testing.T) {
	assert.NotPanics(t, func() {
		EmitAuthEvent(nil, AuthMetric{Operation: OpLogout, Result: ResultNoop})
	})
}

func TestResultFor(t *testing.T) {
	assert.Equal(t, ResultSuccess, ResultFor(nil))
	assert.Equal(t, ResultError, ResultFor(apperrors.InvalidCredentials()))
}
