package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/khanhnv2901/srvdiag/internal/checker"
)

// Summary condenses a report for machine consumers.
type Summary struct {
	Pass   int  `json:"pass"`
	Warn   int  `json:"warn"`
	Fail   int  `json:"fail"`
	Failed bool `json:"failed"`
}

type jsonReport struct {
	checker.Report
	Summary Summary `json:"summary"`
}

// Summarize tallies a report.
func Summarize(rep checker.Report) Summary {
	pass, warn, fail := rep.Counts()
	return Summary{Pass: pass, Warn: warn, Fail: fail, Failed: fail > 0}
}

// WriteJSON renders the report as indented JSON.
func WriteJSON(w io.Writer, rep checker.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jsonReport{Report: rep, Summary: Summarize(rep)}); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
