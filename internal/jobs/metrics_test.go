package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTrackerRecordsStatus(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	assert.NoError(t, m.Track("loans:due_reminder").End(nil))
	failure := errors.New("boom")
	assert.ErrorIs(t, m.Track("loans:due_reminder").End(failure), failure)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("loans:due_reminder", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("loans:due_reminder", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("loans:due_reminder")))
}

func TestAddRemindersIgnoresEmptyBatches(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.AddReminders("overdue", 0)
	m.AddReminders("overdue", 2)
	m.AddReminders("due_soon", 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.emails.WithLabelValues("overdue")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.emails.WithLabelValues("due_soon")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.AddReminders("overdue", 3)
	assert.NoError(t, m.Track("mail:send").End(nil))
}
