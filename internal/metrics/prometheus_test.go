package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordAssessment("Moderate")
	r.RecordAssessment("Moderate")
	r.RecordSimulation("ok", 0.5)
	r.RecordSimulation("insufficient_data", 0.1)
	r.RecordError("fetch")
	r.RecordCommand("assess")
	r.RecordFetch(0.2)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.assessments.WithLabelValues("Moderate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.simulations.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("fetch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.commands.WithLabelValues("assess")))

	n, err := testutil.GatherAndCount(reg, "risk_simulation_duration_seconds", "risk_price_fetch_duration_seconds")
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.RecordAssessment("x")
		r.RecordSimulation("ok", 1)
		r.RecordFetch(1)
		r.RecordError("x")
		r.RecordCommand("x")
	})
}

func TestSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
