package cmd

import "github.com/fatih/color"

var (
	colorSuccess = color.New(color.FgGreen).SprintFunc()
	colorInfo    = color.New(color.FgCyan).SprintFunc()
	colorError   = color.New(color.FgRed).SprintFunc()
)

func formatAvailability(found bool) string {
	if found {
		return colorSuccess("✓ (found)")
	}
	return colorError("✗ (not on PATH)")
}
