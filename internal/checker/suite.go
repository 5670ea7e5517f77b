package checker

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/khanhnv2901/srvdiag/internal/command"
	"go.uber.org/zap"
)

// Report is the outcome of one diagnostic run.
type Report struct {
	ID          string        `json:"id"`
	Hostname    string        `json:"hostname,omitempty"`
	HostIP      string        `json:"host_ip,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at"`
	Results     []CheckResult `json:"results"`
}

// Counts tallies results by status.
func (r Report) Counts() (pass, warn, fail int) {
	for _, res := range r.Results {
		switch res.Status {
		case StatusPass:
			pass++
		case StatusWarn:
			warn++
		default:
			fail++
		}
	}
	return pass, warn, fail
}

// Failed reports whether any check failed. Warnings do not count.
func (r Report) Failed() bool {
	_, _, fail := r.Counts()
	return fail > 0
}

// Duration is the wall time of the run.
func (r Report) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

// ResultFunc is invoked after each check completes.
type ResultFunc func(result CheckResult)

// Suite runs checkers one after another in order.
type Suite struct {
	Checkers []Checker
	Logger   *zap.SugaredLogger
	OnResult ResultFunc
}

// Default builds the standard checks in their fixed print order.
func Default(runner command.Runner, opts Options) []Checker {
	opts = opts.withDefaults()
	checks := []Checker{
		NewHostIPCheck(runner, opts),
		NewListeningPortCheck(runner, opts),
		NewServiceCheck(runner, opts),
		NewLocalHTTPCheck(runner, opts),
		NewFirewallCheck(runner, opts),
	}
	if opts.EnableTCPProbe {
		checks = append(checks, NewTCPProbeCheck(opts))
	}
	return checks
}

// Run executes every checker once. A failing check never stops the run.
func (s *Suite) Run(ctx context.Context) Report {
	report := Report{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Results:   make([]CheckResult, 0, len(s.Checkers)),
	}
	if hostname, err := os.Hostname(); err == nil {
		report.Hostname = hostname
	}

	for _, c := range s.Checkers {
		start := time.Now()
		result := c.Check(ctx)
		if result.Name == "" {
			result.Name = c.Name()
		}
		if result.CheckedAt.IsZero() {
			result.CheckedAt = start.UTC()
		}
		result.DurationMs = float64(time.Since(start).Microseconds()) / 1000

		if result.Name == NameHostIP && result.Status == StatusPass {
			report.HostIP = result.Value
		}

		if s.Logger != nil {
			s.Logger.Debugw("check complete",
				"run_id", report.ID,
				"check", result.Name,
				"status", result.Status,
				"duration_ms", result.DurationMs)
		}

		report.Results = append(report.Results, result)
		if s.OnResult != nil {
			s.OnResult(result)
		}
	}

	report.CompletedAt = time.Now().UTC()
	return report
}
