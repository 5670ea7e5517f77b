package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/khanhnv2901/srvdiag/internal/checker"
)

const (
	headerLine = "=== Server Diagnostic Tool ==="
	footerLine = "=== End Diagnostic ==="

	markerPass = "✅ "
	markerWarn = "⚠️  "
	markerFail = "❌ "
)

var (
	colorSuccess = color.New(color.FgGreen).SprintFunc()
	colorWarn    = color.New(color.FgYellow).SprintFunc()
	colorError   = color.New(color.FgRed).SprintFunc()
	colorHeading = color.New(color.Bold).SprintFunc()
)

// TextWriter streams the console transcript one section at a time so the
// operator sees each check as soon as it finishes.
type TextWriter struct {
	w     io.Writer
	plain bool
	err   error
}

// NewTextWriter colours markers unless color.NoColor is set.
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: w}
}

// NewPlainTextWriter never emits colour escapes, e.g. for HTTP responses.
func NewPlainTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: w, plain: true}
}

// Header prints the banner followed by a blank line.
func (t *TextWriter) Header() {
	t.println(t.paint(colorHeading, headerLine))
	t.println("")
}

// Result prints one check section followed by a blank line.
func (t *TextWriter) Result(r checker.CheckResult) {
	if r.Title != "" {
		t.println(r.Title)
	}
	t.println(t.paintSummary(r))
	if r.Output != "" {
		t.println(r.Output)
	}
	if r.Details != nil {
		t.println(r.Details.Label)
		t.println(r.Details.Body)
	}
	if r.Error != "" {
		t.println("Error: " + r.Error)
	}
	t.println("")
}

// Footer prints the closing banner.
func (t *TextWriter) Footer() {
	t.println(t.paint(colorHeading, footerLine))
}

// Err returns the first write error, if any.
func (t *TextWriter) Err() error {
	return t.err
}

func (t *TextWriter) paintSummary(r checker.CheckResult) string {
	line := SummaryLine(r)
	if r.Plain {
		return line
	}
	switch r.Status {
	case checker.StatusPass:
		return t.paint(colorSuccess, line)
	case checker.StatusWarn:
		return t.paint(colorWarn, line)
	default:
		return t.paint(colorError, line)
	}
}

func (t *TextWriter) paint(fn func(a ...interface{}) string, s string) string {
	if t.plain {
		return s
	}
	return fn(s)
}

func (t *TextWriter) println(s string) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintln(t.w, s)
}

// SummaryLine returns the outcome line with its status marker, uncoloured.
func SummaryLine(r checker.CheckResult) string {
	if r.Plain {
		return r.Summary
	}
	switch r.Status {
	case checker.StatusPass:
		return markerPass + r.Summary
	case checker.StatusWarn:
		return markerWarn + r.Summary
	default:
		return markerFail + r.Summary
	}
}

// WriteText renders a finished report in one go.
func WriteText(w io.Writer, rep checker.Report) error {
	return writeAll(NewTextWriter(w), rep)
}

// WritePlainText renders a finished report without colour escapes.
func WritePlainText(w io.Writer, rep checker.Report) error {
	return writeAll(NewPlainTextWriter(w), rep)
}

func writeAll(t *TextWriter, rep checker.Report) error {
	t.Header()
	for _, r := range rep.Results {
		t.Result(r)
	}
	t.Footer()
	return t.Err()
}
