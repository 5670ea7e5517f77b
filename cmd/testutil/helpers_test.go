package testutil

import (
	"context"
	"os"
	"testing"
)

func TestNewTestEnv(t *testing.T) {
	env := NewTestEnv(t)
	defer env.Cleanup()

	if _, err := os.Stat(env.ResultsDir); !os.IsNotExist(err) {
		t.Fatalf("results dir should not exist before WithResultsDir, got %v", err)
	}

	env.WithResultsDir()
	if info, err := os.Stat(env.ResultsDir); err != nil || !info.IsDir() {
		t.Fatalf("expected results dir to exist: %v", err)
	}
}

func TestTestEnvCleanupOrder(t *testing.T) {
	env := NewTestEnv(t)

	var order []int
	env.AddCleanup(func() { order = append(order, 1) })
	env.AddCleanup(func() { order = append(order, 2) })
	env.Cleanup()

	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Fatalf("expected reverse cleanup order, got %v", order)
	}
}

func TestFakeRunner(t *testing.T) {
	runner := NewFakeRunner(HealthyServer())

	res := runner.Run(context.Background(), "hostname -I")
	if res.Stdout != "10.0.0.5" || !res.OK() {
		t.Fatalf("unexpected result: %+v", res)
	}

	res = runner.Run(context.Background(), "unknown-tool")
	if res.ExitCode != 127 {
		t.Fatalf("expected 127 for unknown command, got %d", res.ExitCode)
	}

	if runner.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", runner.CallCount())
	}
}
