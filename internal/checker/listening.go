package checker

import (
	"context"
	"fmt"

	"github.com/khanhnv2901/srvdiag/internal/command"
)

// ListeningPortCheck looks for the port in the socket table.
type ListeningPortCheck struct {
	runner command.Runner
	opts   Options
}

func NewListeningPortCheck(runner command.Runner, opts Options) *ListeningPortCheck {
	return &ListeningPortCheck{runner: runner, opts: opts.withDefaults()}
}

func (c *ListeningPortCheck) Name() string {
	return NameListeningPort
}

func (c *ListeningPortCheck) Check(ctx context.Context) CheckResult {
	port := c.opts.Port
	result := newResult(NameListeningPort, fmt.Sprintf("Checking if port %d is listening locally...", port))

	res := c.runner.Run(ctx, c.opts.ListeningPortCommand())
	if res.OK() && res.Stdout != "" {
		result.Status = StatusPass
		result.Summary = fmt.Sprintf("Port %d is listening:", port)
		result.Output = res.Stdout
		return result
	}

	result.Summary = fmt.Sprintf("Port %d is NOT listening", port)
	result.Error = res.Stderr
	return result
}
