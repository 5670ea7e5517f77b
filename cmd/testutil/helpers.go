package testutil

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/khanhnv2901/srvdiag/internal/command"
	consts "github.com/khanhnv2901/srvdiag/internal/shared/constants"
)

// TestEnv holds test environment configuration and cleanup functions.
type TestEnv struct {
	TmpDir       string
	ResultsDir   string
	cleanupFuncs []func()
	t            *testing.T
}

// NewTestEnv creates a new test environment with automatic cleanup.
// Usage:
//
//	env := testutil.NewTestEnv(t)
//	defer env.Cleanup()
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	tmpDir := t.TempDir()
	return &TestEnv{
		TmpDir:     tmpDir,
		ResultsDir: filepath.Join(tmpDir, "results"),
		t:          t,
	}
}

// WithResultsDir creates the results directory up front.
func (e *TestEnv) WithResultsDir() *TestEnv {
	e.t.Helper()
	if err := os.MkdirAll(e.ResultsDir, consts.DefaultDirPerm); err != nil {
		e.t.Fatalf("Failed to create test results directory: %v", err)
	}
	return e
}

// WriteFile writes content relative to TmpDir and returns the full path.
func (e *TestEnv) WriteFile(name, content string) string {
	e.t.Helper()
	path := filepath.Join(e.TmpDir, name)
	if err := os.WriteFile(path, []byte(content), consts.DefaultFilePerm); err != nil {
		e.t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// AddCleanup registers a function to run on Cleanup.
func (e *TestEnv) AddCleanup(fn func()) {
	e.cleanupFuncs = append(e.cleanupFuncs, fn)
}

// Cleanup runs registered cleanup functions in reverse order.
func (e *TestEnv) Cleanup() {
	for i := len(e.cleanupFuncs) - 1; i >= 0; i-- {
		e.cleanupFuncs[i]()
	}
	e.cleanupFuncs = nil
}

// FakeRunner answers command lines from a fixed table and records every call.
// Unknown commands behave like a missing utility.
type FakeRunner struct {
	mu        sync.Mutex
	Responses map[string]command.Result
	Calls     []string
}

// NewFakeRunner returns a FakeRunner serving responses.
func NewFakeRunner(responses map[string]command.Result) *FakeRunner {
	if responses == nil {
		responses = map[string]command.Result{}
	}
	return &FakeRunner{Responses: responses}
}

// Run implements command.Runner.
func (f *FakeRunner) Run(_ context.Context, cmd string) command.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, cmd)
	if res, ok := f.Responses[cmd]; ok {
		return res
	}
	return command.Result{Stderr: "sh: 1: not found", ExitCode: 127}
}

// CallCount returns how many commands were run.
func (f *FakeRunner) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}

// HealthyServer returns responses for a host where every check passes with
// default options.
func HealthyServer() map[string]command.Result {
	return map[string]command.Result{
		"hostname -I":                     {Stdout: "10.0.0.5"},
		"sudo netstat -tlnp | grep :5200": {Stdout: "tcp        0      0 0.0.0.0:5200            0.0.0.0:*               LISTEN      812/node"},
		"sudo systemctl is-active nginx":  {Stdout: "active"},
		"curl -s -o /dev/null -w '%{http_code}' http://localhost:5200": {Stdout: "200"},
		"command -v ufw && sudo ufw status":                            {Stdout: "/usr/sbin/ufw\nStatus: active"},
	}
}
