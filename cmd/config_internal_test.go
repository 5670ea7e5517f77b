package cmd

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func TestApplyIntDefault(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 0, "")

	var applied int
	applyIntDefault(flags, "port", 8080, func(v int) {
		applied = v
	})
	if applied != 8080 {
		t.Fatalf("expected setter to receive 8080, got %d", applied)
	}

	// When flag already set, setter should not run.
	if err := flags.Set("port", "7"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}
	applied = 0
	applyIntDefault(flags, "port", 9090, func(v int) {
		applied = v
	})
	if applied != 0 {
		t.Fatalf("setter should not run when flag overridden, got %d", applied)
	}
}

func TestApplyBoolDefault(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Bool("telemetry", false, "")

	applied := false
	applyBoolDefault(flags, "telemetry", true, func(v bool) {
		applied = v
	})
	if !applied {
		t.Fatal("expected setter to run with true")
	}

	if err := flags.Set("telemetry", "false"); err != nil {
		t.Fatalf("failed to set bool flag: %v", err)
	}
	applied = true
	applyBoolDefault(flags, "telemetry", true, func(v bool) {
		applied = v
	})
	if !applied {
		t.Fatalf("setter should not change value when flag already set")
	}
}

func TestApplyStringDefault_MissingFlagStillApplies(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)

	var applied string
	applyStringDefault(flags, "addr", "0.0.0.0:9191", func(v string) {
		applied = v
	})
	if applied != "0.0.0.0:9191" {
		t.Fatalf("expected setter to run for an unregistered flag, got %q", applied)
	}

	applyStringDefault(nil, "addr", "ignored", func(v string) {
		applied = v
	})
	if applied != "0.0.0.0:9191" {
		t.Fatal("nil flag set must be a no-op")
	}
}

func TestSetStringFlagIfUnset(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output", "text", "")

	setStringFlagIfUnset(flags, "output", "json")
	if got := flags.Lookup("output").Value.String(); got != "json" {
		t.Fatalf("expected output to be json, got %s", got)
	}

	if err := flags.Set("output", "text"); err != nil {
		t.Fatalf("failed to set output: %v", err)
	}
	setStringFlagIfUnset(flags, "output", "json")
	if got := flags.Lookup("output").Value.String(); got != "text" {
		t.Fatalf("expected output to remain user-provided, got %s", got)
	}
}

func TestNewCLIConfigDefaults(t *testing.T) {
	cfg := newCLIConfig()

	opts := cfg.Check.Options()
	if opts.Port != 5200 || opts.Service != "nginx" || opts.HTTPHost != "localhost" {
		t.Fatalf("unexpected default target: %+v", opts)
	}
	if !opts.UseSudo {
		t.Fatal("sudo should be used by default")
	}
	if opts.EnableTCPProbe {
		t.Fatal("tcp probe should be opt-in")
	}
	if opts.ProbeTimeout != 5*time.Second {
		t.Fatalf("unexpected probe timeout: %v", opts.ProbeTimeout)
	}
	if cfg.Check.CommandTimeout() != 0 {
		t.Fatalf("commands should be unbounded by default, got %v", cfg.Check.CommandTimeout())
	}
	if cfg.Check.Output != "text" || cfg.Check.Strict || cfg.Check.TelemetryEnabled {
		t.Fatalf("unexpected output defaults: %+v", cfg.Check)
	}
	if cfg.ResultsDir != "./results" {
		t.Fatalf("unexpected results dir: %s", cfg.ResultsDir)
	}
}

func TestCommandTimeout(t *testing.T) {
	cfg := CheckRuntimeConfig{CommandTimeoutSecs: 3}
	if cfg.CommandTimeout() != 3*time.Second {
		t.Fatalf("expected 3s, got %v", cfg.CommandTimeout())
	}
	cfg.CommandTimeoutSecs = -1
	if cfg.CommandTimeout() != 0 {
		t.Fatalf("negative timeout should mean unbounded, got %v", cfg.CommandTimeout())
	}
}

func TestApplyConfigDefaults_FromConfigFile(t *testing.T) {
	h := setupTestAppContext(t, nil)
	cfgFile = h.env.WriteFile("srvdiag.yaml", `port: 8080
service: caddy
use_sudo: false
output: json
telemetry: true
results_dir: /var/tmp/srvdiag
serve:
  rate_limit: 3
  cache_ttl_secs: 30
`)

	if err := loadConfigFile(); err != nil {
		t.Fatalf("loadConfigFile returned error: %v", err)
	}

	c := &cobra.Command{Use: "diagnose"}
	addCheckFlags(c.Flags())
	addOutputFlags(c.Flags())
	if err := c.Flags().Set("service", "apache2"); err != nil {
		t.Fatalf("failed to set service: %v", err)
	}

	applyConfigDefaults(c)

	check := cliConfig.Check
	if check.Port != 8080 {
		t.Errorf("expected port from config, got %d", check.Port)
	}
	if check.Service != "apache2" {
		t.Errorf("explicit flag should win over config, got %s", check.Service)
	}
	if !check.NoSudo {
		t.Error("use_sudo: false should enable no-sudo")
	}
	if check.Output != "json" {
		t.Errorf("expected output from config, got %s", check.Output)
	}
	if !check.TelemetryEnabled {
		t.Error("expected telemetry from config")
	}
	if cliConfig.ResultsDir != "/var/tmp/srvdiag" {
		t.Errorf("unexpected results dir: %s", cliConfig.ResultsDir)
	}
	if cliConfig.Serve.RateLimit != 3 || cliConfig.Serve.CacheTTLSecs != 30 {
		t.Errorf("unexpected serve config: %+v", cliConfig.Serve)
	}
}

func TestApplyConfigDefaults_FromEnvironment(t *testing.T) {
	h := setupTestAppContext(t, nil)
	t.Setenv("HOME", h.env.TmpDir)
	t.Setenv("SRVDIAG_PORT", "9000")
	t.Setenv("SRVDIAG_SERVE_RATE_BURST", "11")

	if err := loadConfigFile(); err != nil {
		t.Fatalf("loadConfigFile returned error: %v", err)
	}

	c := &cobra.Command{Use: "serve"}
	applyConfigDefaults(c)

	if cliConfig.Check.Port != 9000 {
		t.Errorf("expected port from env, got %d", cliConfig.Check.Port)
	}
	if cliConfig.Serve.RateBurst != 11 {
		t.Errorf("expected rate burst from env, got %d", cliConfig.Serve.RateBurst)
	}
	if cliConfig.Check.Service != "nginx" {
		t.Errorf("unset keys keep defaults, got %s", cliConfig.Check.Service)
	}
}

func TestLoadConfigFile_MissingExplicitFile(t *testing.T) {
	h := setupTestAppContext(t, nil)
	cfgFile = h.env.TmpDir + "/missing.yaml"

	if err := loadConfigFile(); err == nil {
		t.Fatal("expected error for a missing --config file")
	}
}
