package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/codewithboateng/diguard/internal/model"
)

func TestObserveRun(t *testing.T) {
	m := New()
	run := &model.Run{
		Classes: make([]model.Class, 3),
		Report: model.Report{Violations: []model.Violation{
			{RuleID: "A", Severity: model.SeverityBlocking},
			{RuleID: "A", Severity: model.SeverityBlocking},
			{RuleID: "B", Severity: model.SeverityInfo},
		}},
	}
	m.ObserveRun(run, 20*time.Millisecond)
	m.ObserveRun(&model.Run{}, time.Millisecond)
	m.ObserveError()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues(StatusFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues(StatusPassed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues(StatusError)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ViolationsTotal.WithLabelValues("A", "BLOCKING")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ClassesAnalyzed))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "diguard_run_duration_seconds_count 2")
}
