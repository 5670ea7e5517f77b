package checker

import (
	"context"
	"strings"

	"github.com/khanhnv2901/srvdiag/internal/command"
)

// ServiceCheck reports whether the reverse proxy unit is active. When it is
// not, the head of `systemctl status` is attached as details.
type ServiceCheck struct {
	runner command.Runner
	opts   Options
}

func NewServiceCheck(runner command.Runner, opts Options) *ServiceCheck {
	return &ServiceCheck{runner: runner, opts: opts.withDefaults()}
}

func (c *ServiceCheck) Name() string {
	return NameService
}

func (c *ServiceCheck) Check(ctx context.Context) CheckResult {
	display := c.opts.ServiceDisplayName()
	result := newResult(NameService, "Checking "+display+" status...")

	res := c.runner.Run(ctx, c.opts.ServiceActiveCommand())
	state := strings.TrimSpace(res.Stdout)
	result.Value = state
	if res.OK() && state == "active" {
		result.Status = StatusPass
		result.Summary = display + " is running"
		return result
	}

	result.Summary = display + " is NOT running"

	status := c.runner.Run(ctx, c.opts.ServiceStatusCommand())
	if status.OK() {
		result.Details = &Details{
			Label: display + " status details:",
			Body:  status.Stdout,
		}
	}
	return result
}
