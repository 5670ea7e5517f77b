package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/khanhnv2901/srvdiag/internal/checker"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorObserve(t *testing.T) {
	c := NewCollector()

	c.ObserveResult(checker.CheckResult{Name: checker.NameService, Status: checker.StatusFail, DurationMs: 12})
	c.ObserveResult(checker.CheckResult{Name: checker.NameLocalHTTP, Status: checker.StatusWarn, DurationMs: 40})
	c.ObserveRun()
	c.ObserveRun()

	assert.Equal(t, float64(2), testutil.ToFloat64(c.runs))
	assert.Equal(t, float64(0), testutil.ToFloat64(c.status.WithLabelValues(checker.NameService)))
	assert.Equal(t, 0.5, testutil.ToFloat64(c.status.WithLabelValues(checker.NameLocalHTTP)))
}

func TestCollectorHandler(t *testing.T) {
	c := NewCollector()
	c.ObserveResult(checker.CheckResult{Name: checker.NameFirewall, Status: checker.StatusPass})
	c.ObserveRun()

	rr := httptest.NewRecorder()
	c.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `srvdiag_check_status{check="firewall"} 1`)
	assert.Contains(t, rr.Body.String(), "srvdiag_runs_total 1")
}

func TestStatusValue(t *testing.T) {
	assert.Equal(t, 1.0, StatusValue(checker.StatusPass))
	assert.Equal(t, 0.5, StatusValue(checker.StatusWarn))
	assert.Equal(t, 0.0, StatusValue(checker.StatusFail))
}
