package checker

import (
	"context"

	"github.com/khanhnv2901/srvdiag/internal/command"
)

// FirewallCheck echoes the ufw rule table when ufw is installed and answers.
// A missing or silent firewall only warns.
type FirewallCheck struct {
	runner command.Runner
	opts   Options
}

func NewFirewallCheck(runner command.Runner, opts Options) *FirewallCheck {
	return &FirewallCheck{runner: runner, opts: opts.withDefaults()}
}

func (c *FirewallCheck) Name() string {
	return NameFirewall
}

func (c *FirewallCheck) Check(ctx context.Context) CheckResult {
	result := newResult(NameFirewall, "Checking firewall status...")
	result.Plain = true

	res := c.runner.Run(ctx, c.opts.FirewallCommand())
	if res.OK() && res.Stdout != "" {
		result.Status = StatusPass
		result.Summary = "Firewall status:"
		result.Output = res.Stdout
		return result
	}

	result.Status = StatusWarn
	result.Summary = "UFW firewall not found or not active"
	return result
}
