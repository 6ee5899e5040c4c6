package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_ObserveUnit(t *testing.T) {
	c := New()

	c.ObserveUnit("attribute_cardinality", OutcomeOK, 2*time.Millisecond)
	c.ObserveUnit("attribute_cardinality", OutcomeOK, time.Millisecond)
	c.ObserveUnit("attribute_cardinality", OutcomePanic, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.executions.WithLabelValues("attribute_cardinality", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.executions.WithLabelValues("attribute_cardinality", OutcomePanic)))
	assert.Equal(t, 1, testutil.CollectAndCount(c.duration))
}

func TestCollector_ObserveProcess(t *testing.T) {
	c := New()

	c.ObserveProcess("VALIDATE", "Attribute")

	assert.Equal(t, 1.0, testutil.ToFloat64(c.processes.WithLabelValues("VALIDATE", "Attribute")))
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.ObserveUnit("u", OutcomeOK, time.Second)
		c.ObserveProcess("VALIDATE", "Attribute")
	})
}

func TestCollector_Handler(t *testing.T) {
	c := New()
	c.ObserveProcess("VALIDATE", "TypeProfile")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `rulegrid_process_total{task="VALIDATE",variant="TypeProfile"} 1`)
}
