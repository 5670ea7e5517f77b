package checker

import (
	"context"
	"fmt"
	"strings"

	"github.com/khanhnv2901/srvdiag/internal/command"
)

// LocalHTTPCheck requests the service over loopback and classifies the
// status code: 2xx/3xx pass, anything else warns, a curl failure fails.
type LocalHTTPCheck struct {
	runner command.Runner
	opts   Options
}

func NewLocalHTTPCheck(runner command.Runner, opts Options) *LocalHTTPCheck {
	return &LocalHTTPCheck{runner: runner, opts: opts.withDefaults()}
}

func (c *LocalHTTPCheck) Name() string {
	return NameLocalHTTP
}

func (c *LocalHTTPCheck) Check(ctx context.Context) CheckResult {
	result := newResult(NameLocalHTTP, fmt.Sprintf("Testing local access to port %d...", c.opts.Port))

	res := c.runner.Run(ctx, c.opts.LocalHTTPCommand())
	if !res.OK() {
		result.Summary = "Local access failed"
		result.Error = res.Stderr
		return result
	}

	code := strings.TrimSpace(res.Stdout)
	result.Value = code
	if successfulHTTPCode(code) {
		result.Status = StatusPass
		result.Summary = fmt.Sprintf("Local access successful (HTTP %s)", code)
		return result
	}

	result.Status = StatusWarn
	result.Summary = fmt.Sprintf("Local access returned HTTP %s", code)
	return result
}

func successfulHTTPCode(code string) bool {
	return strings.HasPrefix(code, "2") || strings.HasPrefix(code, "3")
}
