package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/khanhnv2901/srvdiag/internal/checker"
	"github.com/khanhnv2901/srvdiag/internal/command"
	"github.com/khanhnv2901/srvdiag/internal/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type outputFormat string

const (
	outputText outputFormat = "text"
	outputJSON outputFormat = "json"
)

func parseOutputFormat(value string) (outputFormat, error) {
	switch outputFormat(strings.ToLower(strings.TrimSpace(value))) {
	case "", outputText:
		return outputText, nil
	case outputJSON:
		return outputJSON, nil
	}
	return "", &OutputFormatError{Value: value}
}

// newCommandRunner is swapped out in tests.
var newCommandRunner = func(timeout time.Duration, logger *zap.SugaredLogger) command.Runner {
	return command.NewShellRunner(timeout, logger)
}

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Run the diagnostic checks and print the transcript",
	Long: `Run the checks in order: host IP, listening port, reverse proxy service,
local HTTP access, and firewall status. Every check runs even when an
earlier one fails. The exit status is 0 unless --strict is given.`,
	Args: cobra.NoArgs,
	RunE: runDiagnose,
}

func init() {
	addCheckFlags(diagnoseCmd.Flags())
	addOutputFlags(diagnoseCmd.Flags())
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	appCtx := getAppContext(cmd)
	cfg := appCtx.Config.Check

	format, err := parseOutputFormat(cfg.Output)
	if err != nil {
		return err
	}

	opts, err := cfg.ValidOptions()
	if err != nil {
		return err
	}

	runner := newCommandRunner(cfg.CommandTimeout(), appCtx.Logger)
	suite := &checker.Suite{
		Checkers: checker.Default(runner, opts),
		Logger:   appCtx.Logger,
	}

	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()
	var rep checker.Report

	switch format {
	case outputJSON:
		rep = suite.Run(ctx)
		if err := report.WriteJSON(out, rep); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	default:
		// Stream each check as it completes.
		tw := report.NewTextWriter(out)
		tw.Header()
		suite.OnResult = tw.Result
		rep = suite.Run(ctx)
		tw.Footer()
		if err := tw.Err(); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	appCtx.Logger.Debugw("diagnostic complete",
		"run_id", rep.ID,
		"duration", rep.Duration(),
		"failed", rep.Failed())

	if cfg.TelemetryEnabled {
		if err := recordTelemetry(appCtx, cmd.Name(), rep); err != nil {
			appCtx.Logger.Warnf("failed to record telemetry: %v", err)
		}
	}

	if cfg.Strict && rep.Failed() {
		_, _, fail := rep.Counts()
		return &ChecksFailedError{Failed: fail, Total: len(rep.Results)}
	}
	return nil
}
