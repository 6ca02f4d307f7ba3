package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordExport(t *testing.T) {
	before := testutil.ToFloat64(ExportCount.WithLabelValues("csv", "success"))
	RecordExport("csv", "success", 1024)
	RecordExport("csv", "failed", 0)
	assert.Equal(t, before+1, testutil.ToFloat64(ExportCount.WithLabelValues("csv", "success")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(ExportCount.WithLabelValues("csv", "failed")), 1.0)
}

func TestCounters(t *testing.T) {
	IncrementStepUpdate("completed")
	IncrementRecommendation("architecture")
	IncrementInsightCache("hit")
	IncrementOutboxPublish("sent")
	IncrementSlowQuery("SELECT 1", 250*time.Millisecond)

	assert.GreaterOrEqual(t, testutil.ToFloat64(StepUpdateCount.WithLabelValues("completed")), 1.0)
	assert.GreaterOrEqual(t, testutil.ToFloat64(SlowQueryCount.WithLabelValues("SELECT 1")), 1.0)
}
