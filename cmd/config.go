package cmd

import (
	"fmt"
	"time"

	"github.com/khanhnv2901/srvdiag/internal/checker"
	consts "github.com/khanhnv2901/srvdiag/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/srvdiag/internal/shared/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultProbeTimeoutSecs   = 5
	defaultCommandTimeoutSecs = 0
	defaultCacheTTLSecs       = 10
	defaultServeRateLimit     = 1
	defaultServeRateBurst     = 5
	defaultShutdownTimeout    = 10 * time.Second
)

// CLIConfig captures runtime configuration shared across commands.
type CLIConfig struct {
	ResultsDir string
	Check      CheckRuntimeConfig
	Serve      ServeRuntimeConfig
}

// CheckRuntimeConfig consolidates flag-driven settings for the diagnostic run.
type CheckRuntimeConfig struct {
	Port               int
	Service            string
	HTTPHost           string
	NoSudo             bool
	TCPProbe           bool
	ProbeHost          string
	ProbeTimeoutSecs   int
	CommandTimeoutSecs int
	Output             string
	Strict             bool
	TelemetryEnabled   bool
}

// ServeRuntimeConfig holds settings for the API server.
type ServeRuntimeConfig struct {
	Addr            string
	CacheTTLSecs    int
	RateLimit       int
	RateBurst       int
	ShutdownTimeout time.Duration
}

type configOverrides struct {
	Port               *int
	Service            *string
	HTTPHost           *string
	UseSudo            *bool
	ProbeHost          *string
	ProbeTimeoutSecs   *int
	CommandTimeoutSecs *int
	Telemetry          *bool
	Output             string
	ResultsDir         string
	ServeAddr          *string
	CacheTTLSecs       *int
	RateLimit          *int
	RateBurst          *int
}

var cliConfig = newCLIConfig()

func newCLIConfig() *CLIConfig {
	return &CLIConfig{
		ResultsDir: consts.DefaultResultsDir,
		Check: CheckRuntimeConfig{
			Port:               consts.DefaultPort,
			Service:            consts.DefaultService,
			HTTPHost:           consts.DefaultHTTPHost,
			ProbeHost:          consts.DefaultProbeHost,
			ProbeTimeoutSecs:   defaultProbeTimeoutSecs,
			CommandTimeoutSecs: defaultCommandTimeoutSecs,
			Output:             string(outputText),
		},
		Serve: ServeRuntimeConfig{
			Addr:            consts.DefaultServeAddr,
			CacheTTLSecs:    defaultCacheTTLSecs,
			RateLimit:       defaultServeRateLimit,
			RateBurst:       defaultServeRateBurst,
			ShutdownTimeout: defaultShutdownTimeout,
		},
	}
}

// Options converts the runtime config into checker options.
func (c CheckRuntimeConfig) Options() checker.Options {
	return checker.Options{
		Port:           c.Port,
		Service:        c.Service,
		HTTPHost:       c.HTTPHost,
		UseSudo:        !c.NoSudo,
		ProbeHost:      c.ProbeHost,
		ProbeTimeout:   time.Duration(c.ProbeTimeoutSecs) * time.Second,
		EnableTCPProbe: c.TCPProbe,
	}
}

// ValidOptions converts the runtime config and rejects values the checks
// cannot use. The flag default is never zero, so a zero port was typed.
func (c CheckRuntimeConfig) ValidOptions() (checker.Options, error) {
	opts := c.Options()
	if c.Port == 0 {
		return opts, fmt.Errorf("invalid options: %w: 0", sharedErrors.ErrInvalidPort)
	}
	if err := opts.Validate(); err != nil {
		return opts, fmt.Errorf("invalid options: %w", err)
	}
	return opts, nil
}

// CommandTimeout is the per-command bound; zero waits for the command to exit.
func (c CheckRuntimeConfig) CommandTimeout() time.Duration {
	if c.CommandTimeoutSecs <= 0 {
		return 0
	}
	return time.Duration(c.CommandTimeoutSecs) * time.Second
}

// addCheckFlags registers the flags that shape what gets inspected.
func addCheckFlags(flags *pflag.FlagSet) {
	flags.IntVar(&cliConfig.Check.Port, "port", cliConfig.Check.Port, "port the web application listens on")
	flags.StringVar(&cliConfig.Check.Service, "service", cliConfig.Check.Service, "systemd unit of the reverse proxy")
	flags.StringVar(&cliConfig.Check.HTTPHost, "http-host", cliConfig.Check.HTTPHost, "host used for the local HTTP request")
	flags.BoolVar(&cliConfig.Check.NoSudo, "no-sudo", cliConfig.Check.NoSudo, "run privileged commands without sudo")
	flags.BoolVar(&cliConfig.Check.TCPProbe, "tcp-probe", cliConfig.Check.TCPProbe, "also attempt a direct TCP connect to the port")
	flags.StringVar(&cliConfig.Check.ProbeHost, "probe-host", cliConfig.Check.ProbeHost, "host dialed by the TCP probe")
	flags.IntVar(&cliConfig.Check.ProbeTimeoutSecs, "probe-timeout", cliConfig.Check.ProbeTimeoutSecs, "TCP probe timeout in seconds")
	flags.IntVar(&cliConfig.Check.CommandTimeoutSecs, "command-timeout", cliConfig.Check.CommandTimeoutSecs, "per-command timeout in seconds (0 = wait indefinitely)")
}

// addOutputFlags registers the flags that shape how a local run reports.
func addOutputFlags(flags *pflag.FlagSet) {
	flags.StringVar(&cliConfig.Check.Output, "output", cliConfig.Check.Output, "output format: text or json")
	flags.BoolVar(&cliConfig.Check.Strict, "strict", cliConfig.Check.Strict, "exit with status 1 when any check fails")
	flags.BoolVar(&cliConfig.Check.TelemetryEnabled, "telemetry", cliConfig.Check.TelemetryEnabled, "append a run summary to the telemetry log")
}

func loadConfigOverrides() configOverrides {
	overrides := configOverrides{}

	overrides.Port = viperInt("port")
	overrides.Service = viperString("service")
	overrides.HTTPHost = viperString("http_host")
	overrides.UseSudo = viperBool("use_sudo")
	overrides.ProbeHost = viperString("probe_host")
	overrides.ProbeTimeoutSecs = viperInt("probe_timeout_secs")
	overrides.CommandTimeoutSecs = viperInt("command_timeout_secs")
	overrides.Telemetry = viperBool("telemetry")
	if viper.IsSet("output") {
		overrides.Output = viper.GetString("output")
	}
	if viper.IsSet("results_dir") {
		overrides.ResultsDir = viper.GetString("results_dir")
	}
	overrides.ServeAddr = viperString("serve.addr")
	overrides.CacheTTLSecs = viperInt("serve.cache_ttl_secs")
	overrides.RateLimit = viperInt("serve.rate_limit")
	overrides.RateBurst = viperInt("serve.rate_burst")

	return overrides
}

// applyConfigDefaults merges config file and environment values into the runtime
// config when the user did not explicitly override the corresponding flag.
func applyConfigDefaults(cmd *cobra.Command) {
	overrides := loadConfigOverrides()
	flags := cmd.Flags()

	if overrides.Port != nil {
		applyIntDefault(flags, "port", *overrides.Port, func(v int) { cliConfig.Check.Port = v })
	}
	if overrides.Service != nil {
		applyStringDefault(flags, "service", *overrides.Service, func(v string) { cliConfig.Check.Service = v })
	}
	if overrides.HTTPHost != nil {
		applyStringDefault(flags, "http-host", *overrides.HTTPHost, func(v string) { cliConfig.Check.HTTPHost = v })
	}
	if overrides.UseSudo != nil {
		applyBoolDefault(flags, "no-sudo", !*overrides.UseSudo, func(v bool) { cliConfig.Check.NoSudo = v })
	}
	if overrides.ProbeHost != nil {
		applyStringDefault(flags, "probe-host", *overrides.ProbeHost, func(v string) { cliConfig.Check.ProbeHost = v })
	}
	if overrides.ProbeTimeoutSecs != nil {
		applyIntDefault(flags, "probe-timeout", *overrides.ProbeTimeoutSecs, func(v int) { cliConfig.Check.ProbeTimeoutSecs = v })
	}
	if overrides.CommandTimeoutSecs != nil {
		applyIntDefault(flags, "command-timeout", *overrides.CommandTimeoutSecs, func(v int) { cliConfig.Check.CommandTimeoutSecs = v })
	}
	if overrides.Telemetry != nil {
		applyBoolDefault(flags, "telemetry", *overrides.Telemetry, func(v bool) { cliConfig.Check.TelemetryEnabled = v })
	}
	if overrides.Output != "" {
		setStringFlagIfUnset(flags, "output", overrides.Output)
	}
	if overrides.ResultsDir != "" {
		cliConfig.ResultsDir = overrides.ResultsDir
	}
	if overrides.ServeAddr != nil {
		applyStringDefault(flags, "addr", *overrides.ServeAddr, func(v string) { cliConfig.Serve.Addr = v })
	}
	if overrides.CacheTTLSecs != nil {
		applyIntDefault(flags, "cache-ttl", *overrides.CacheTTLSecs, func(v int) { cliConfig.Serve.CacheTTLSecs = v })
	}
	if overrides.RateLimit != nil {
		applyIntDefault(flags, "rate-limit", *overrides.RateLimit, func(v int) { cliConfig.Serve.RateLimit = v })
	}
	if overrides.RateBurst != nil {
		applyIntDefault(flags, "rate-burst", *overrides.RateBurst, func(v int) { cliConfig.Serve.RateBurst = v })
	}
}

func viperInt(key string) *int {
	if !viper.IsSet(key) {
		return nil
	}
	v := viper.GetInt(key)
	return &v
}

func viperBool(key string) *bool {
	if !viper.IsSet(key) {
		return nil
	}
	v := viper.GetBool(key)
	return &v
}

func viperString(key string) *string {
	if !viper.IsSet(key) {
		return nil
	}
	v := viper.GetString(key)
	return &v
}

func applyIntDefault(flags *pflag.FlagSet, name string, value int, setter func(int)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func applyBoolDefault(flags *pflag.FlagSet, name string, value bool, setter func(bool)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func applyStringDefault(flags *pflag.FlagSet, name, value string, setter func(string)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func setStringFlagIfUnset(flags *pflag.FlagSet, name, value string) {
	if flags == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag == nil || flag.Changed {
		return
	}
	_ = flag.Value.Set(value)
}
