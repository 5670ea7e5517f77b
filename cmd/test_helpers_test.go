package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/khanhnv2901/srvdiag/cmd/testutil"
	"github.com/khanhnv2901/srvdiag/internal/command"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

type testHarness struct {
	env    *testutil.TestEnv
	runner *testutil.FakeRunner
	appCtx *AppContext
}

// setupTestAppContext installs a fresh config, a fake command runner, and an
// AppContext rooted in a temp dir. Everything is restored on cleanup.
func setupTestAppContext(t *testing.T, responses map[string]command.Result) *testHarness {
	t.Helper()

	originalCtx := globalAppContext
	originalCfg := *cliConfig
	originalRunner := newCommandRunner
	originalLookup := lookupUtility
	originalNoColor := color.NoColor
	originalCfgFile := cfgFile
	originalVerbose := verbose

	env := testutil.NewTestEnv(t)
	runner := testutil.NewFakeRunner(responses)

	*cliConfig = *newCLIConfig()
	newCommandRunner = func(time.Duration, *zap.SugaredLogger) command.Runner { return runner }
	color.NoColor = true
	viper.Reset()

	appCtx := &AppContext{
		Logger:     zaptest.NewLogger(t).Sugar(),
		ResultsDir: env.ResultsDir,
		Config:     cliConfig,
	}
	globalAppContext = appCtx

	t.Cleanup(func() {
		globalAppContext = originalCtx
		*cliConfig = originalCfg
		newCommandRunner = originalRunner
		lookupUtility = originalLookup
		color.NoColor = originalNoColor
		cfgFile = originalCfgFile
		verbose = originalVerbose
		viper.Reset()
	})

	return &testHarness{env: env, runner: runner, appCtx: appCtx}
}

// newTestCommand returns a bare command writing to buf, so tests never touch
// the shared command tree's context or output.
func newTestCommand(name string) (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	c := &cobra.Command{Use: name}
	c.SetOut(&buf)
	c.SetErr(&buf)
	return c, &buf
}
