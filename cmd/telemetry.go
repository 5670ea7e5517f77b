package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/khanhnv2901/srvdiag/internal/checker"
	consts "github.com/khanhnv2901/srvdiag/internal/shared/constants"
)

type telemetryRecord struct {
	Timestamp       time.Time `json:"timestamp"`
	RunID           string    `json:"run_id"`
	Command         string    `json:"command"`
	Hostname        string    `json:"hostname,omitempty"`
	CheckCount      int       `json:"check_count"`
	PassCount       int       `json:"pass_count"`
	WarnCount       int       `json:"warn_count"`
	FailCount       int       `json:"fail_count"`
	SuccessRate     float64   `json:"success_rate"`
	DurationSeconds float64   `json:"duration_seconds"`
}

func newTelemetryRecord(command string, rep checker.Report) telemetryRecord {
	pass, warn, fail := rep.Counts()
	total := len(rep.Results)

	successRate := 0.0
	if total > 0 {
		successRate = (float64(pass) / float64(total)) * 100
	}

	return telemetryRecord{
		Timestamp:       time.Now().UTC(),
		RunID:           rep.ID,
		Command:         command,
		Hostname:        rep.Hostname,
		CheckCount:      total,
		PassCount:       pass,
		WarnCount:       warn,
		FailCount:       fail,
		SuccessRate:     successRate,
		DurationSeconds: rep.Duration().Seconds(),
	}
}

// recordTelemetry appends one JSON line per run to the results directory.
func recordTelemetry(appCtx *AppContext, command string, rep checker.Report) error {
	data, err := json.Marshal(newTelemetryRecord(command, rep))
	if err != nil {
		return fmt.Errorf("marshal telemetry: %w", err)
	}

	if err := os.MkdirAll(appCtx.ResultsDir, consts.DefaultDirPerm); err != nil {
		return fmt.Errorf("create results directory: %w", err)
	}

	telemetryPath := filepath.Join(appCtx.ResultsDir, consts.TelemetryFilename)
	f, err := os.OpenFile(telemetryPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, consts.DefaultFilePerm)
	if err != nil {
		return fmt.Errorf("open telemetry file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write telemetry: %w", err)
	}

	return nil
}
