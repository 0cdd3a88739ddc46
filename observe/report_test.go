package observe

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/criteria/lang"
)

func TestRecorder_Collect(t *testing.T) {
	rec := NewRecorder()
	t.Cleanup(func() { _ = rec.Shutdown(t.Context()) })

	rep, err := rec.Collect(t.Context())
	require.NoError(t, err)
	assert.Zero(t, rep)
	assert.Zero(t, rep.Mean())

	in := Instrument(lang.New(), WithMeterProvider(rec.MeterProvider()))

	for _, expr := range []string{"1 + 2", "3 > 2", "1 +"} {
		_, _ = in.Evaluate(t.Context(), expr)
	}

	rep, err = rec.Collect(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(3), rep.Evaluations)
	assert.Equal(t, int64(1), rep.Errors)
	assert.Equal(t, uint64(3), rep.Count)
	assert.GreaterOrEqual(t, rep.LatencyMS, 0.0)
	assert.True(t, strings.HasPrefix(rep.String(), MetricEvaluations+"=3 "+MetricErrors+"=1 "))
}

func TestRecorder_CollectAfterShutdown(t *testing.T) {
	rec := NewRecorder()
	require.NoError(t, rec.Shutdown(t.Context()))

	_, err := rec.Collect(t.Context())
	assert.Error(t, err)
}
