package checker

import (
	"context"
	"time"
)

// Status is the outcome class of a single check.
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Check names, stable across text, JSON, and metrics output.
const (
	NameHostIP        = "host_ip"
	NameListeningPort = "listening_port"
	NameService       = "service"
	NameLocalHTTP     = "local_http"
	NameFirewall      = "firewall"
	NameTCPProbe      = "tcp_probe"
)

// Details is a labelled block printed after the summary, e.g. the output of
// `systemctl status` when the service is down.
type Details struct {
	Label string `json:"label"`
	Body  string `json:"body"`
}

// CheckResult represents the result of a single diagnostic check
type CheckResult struct {
	Name       string    `json:"name"`
	Title      string    `json:"title,omitempty"`
	Status     Status    `json:"status"`
	Summary    string    `json:"summary"`
	Plain      bool      `json:"-"` // summary is printed without a status marker
	Output     string    `json:"output,omitempty"`
	Details    *Details  `json:"details,omitempty"`
	Error      string    `json:"error,omitempty"`
	Value      string    `json:"value,omitempty"`
	CheckedAt  time.Time `json:"checked_at"`
	DurationMs float64   `json:"duration_ms"`
}

// Checker is the interface that all check implementations must satisfy
type Checker interface {
	// Check runs the underlying utility and interprets its output
	Check(ctx context.Context) CheckResult

	// Name returns the stable check name (e.g., "listening_port")
	Name() string
}

func newResult(name, title string) CheckResult {
	return CheckResult{
		Name:      name,
		Title:     title,
		Status:    StatusFail,
		CheckedAt: time.Now().UTC(),
	}
}
