package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nauticalab/propbind/pkg/problems"
)

func TestRecordValidation(t *testing.T) {
	m := New(true, "propbind")

	var clean problems.Problems
	clean.Add(problems.Deprecated("C", "old"))
	m.RecordValidation("server", &clean)

	var failed problems.Problems
	failed.Add(problems.Defunct("C", "gone"))
	failed.Add(problems.Defunct("C", "gone-too"))
	m.RecordValidation("server", &failed)

	assert.InDelta(t, 1, testutil.ToFloat64(m.validations.WithLabelValues("server", "valid")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.validations.WithLabelValues("server", "invalid")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.messages.WithLabelValues(string(problems.KindDefunct), "error")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.messages.WithLabelValues(string(problems.KindDeprecated), "warning")), 0)
}

func TestHandler(t *testing.T) {
	m := New(true, "propbind")
	m.RecordValidation("server", &problems.Problems{})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `propbind_validations_total{module="server",result="valid"} 1`)
}

func TestDisabled(t *testing.T) {
	m := New(false, "propbind")
	m.RecordValidation("server", &problems.Problems{})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var nilMetrics *Metrics
	nilMetrics.RecordValidation("server", &problems.Problems{})
}
