package checker

import (
	"context"
	"strings"

	"github.com/khanhnv2901/srvdiag/internal/command"
)

// HostIPCheck resolves the primary address of this host.
type HostIPCheck struct {
	runner command.Runner
	opts   Options
}

func NewHostIPCheck(runner command.Runner, opts Options) *HostIPCheck {
	return &HostIPCheck{runner: runner, opts: opts.withDefaults()}
}

func (c *HostIPCheck) Name() string {
	return NameHostIP
}

func (c *HostIPCheck) Check(ctx context.Context) CheckResult {
	result := newResult(NameHostIP, "")
	result.Plain = true

	res := c.runner.Run(ctx, c.opts.HostIPCommand())
	fields := strings.Fields(res.Stdout)
	if !res.OK() || len(fields) == 0 {
		result.Summary = "Could not determine server IP"
		return result
	}

	result.Status = StatusPass
	result.Value = fields[0]
	result.Summary = "Server IP: " + fields[0]
	return result
}
