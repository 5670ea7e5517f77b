package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/khanhnv2901/srvdiag/cmd/testutil"
	"github.com/khanhnv2901/srvdiag/internal/api"
	"github.com/khanhnv2901/srvdiag/internal/checker"
	"github.com/khanhnv2901/srvdiag/internal/metrics"
	"go.uber.org/zap/zaptest"
)

func newTestDiagnosticsService(t *testing.T, runner *testutil.FakeRunner) (*diagnosticsService, *metrics.Collector) {
	t.Helper()
	collector := metrics.NewCollector()
	return &diagnosticsService{
		checks:  checker.Default(runner, checker.DefaultOptions()),
		logger:  zaptest.NewLogger(t).Sugar(),
		metrics: collector,
	}, collector
}

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics returned %d", rr.Code)
	}
	return rr.Body.String()
}

func TestDiagnosticsService_FeedsMetrics(t *testing.T) {
	runner := testutil.NewFakeRunner(testutil.HealthyServer())
	svc, collector := newTestDiagnosticsService(t, runner)

	rep := svc.Run(context.Background())
	if rep.Failed() || len(rep.Results) != 5 {
		t.Fatalf("unexpected report: %+v", rep)
	}

	body := scrape(t, collector.Handler())
	for _, want := range []string{
		"srvdiag_runs_total 1",
		`srvdiag_check_status{check="service"} 1`,
		`srvdiag_check_status{check="firewall"} 1`,
		`srvdiag_check_duration_seconds_count{check="host_ip"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in metrics:\n%s", want, body)
		}
	}
}

func TestDiagnosticsService_FailuresRecorded(t *testing.T) {
	runner := testutil.NewFakeRunner(nil)
	svc, collector := newTestDiagnosticsService(t, runner)

	svc.Run(context.Background())
	svc.Run(context.Background())

	body := scrape(t, collector.Handler())
	for _, want := range []string{
		"srvdiag_runs_total 2",
		`srvdiag_check_status{check="listening_port"} 0`,
		`srvdiag_check_status{check="firewall"} 0.5`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in metrics:\n%s", want, body)
		}
	}
}

func TestServeAPI_EndToEnd(t *testing.T) {
	runner := testutil.NewFakeRunner(testutil.HealthyServer())
	svc, collector := newTestDiagnosticsService(t, runner)

	server := api.NewServer(api.Config{
		Diagnostics: svc,
		Metrics:     collector.Handler(),
		CacheTTL:    time.Minute,
		Logger:      zaptest.NewLogger(t),
	})
	defer server.Close()
	ts := httptest.NewServer(server)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/diagnostics")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		HostIP  string `json:"host_ip"`
		Summary struct {
			Pass int `json:"pass"`
		} `json:"summary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.HostIP != "10.0.0.5" || body.Summary.Pass != 5 {
		t.Fatalf("unexpected response: %+v", body)
	}

	// Served from cache: no new commands.
	calls := runner.CallCount()
	resp2, err := http.Get(ts.URL + "/api/v1/diagnostics")
	if err != nil {
		t.Fatalf("second request failed: %v", err)
	}
	resp2.Body.Close()
	if runner.CallCount() != calls {
		t.Fatalf("expected cached report, commands went from %d to %d", calls, runner.CallCount())
	}
}
