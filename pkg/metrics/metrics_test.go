package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(AuthAttempts.WithLabelValues("login", "success"))
	IncrementAuthAttempt("login", "success")
	assert.Equal(t, before+1, testutil.ToFloat64(AuthAttempts.WithLabelValues("login", "success")))

	before = testutil.ToFloat64(TaskMutations.WithLabelValues("create"))
	IncrementTaskMutation("create")
	assert.Equal(t, before+1, testutil.ToFloat64(TaskMutations.WithLabelValues("create")))

	before = testutil.ToFloat64(SlowQueryCount)
	IncrementSlowQuery()
	assert.Equal(t, before+1, testutil.ToFloat64(SlowQueryCount))
}

func TestHistograms(t *testing.T) {
	RecordHTTPRequestDuration("GET", "/api/health", "200", 3*time.Millisecond)
	RecordDBQueryDuration("select", "tasks", time.Millisecond)

	assert.Positive(t, testutil.CollectAndCount(HTTPRequestDuration))
	assert.Positive(t, testutil.CollectAndCount(DBQueryDuration))
}
