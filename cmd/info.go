package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/khanhnv2901/srvdiag/internal/command"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// diagnosticUtilities are the external programs the checks shell out to.
var diagnosticUtilities = []string{"hostname", "netstat", "systemctl", "curl", "ufw", "sudo"}

// lookupUtility is swapped out in tests.
var lookupUtility = command.Available

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show configuration and which diagnostic utilities are installed",
	Long: `Display srvdiag configuration information including:
  - Platform information
  - Configuration file and results directory
  - Effective diagnostic settings
  - Availability of each utility the checks rely on`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appCtx := getAppContext(cmd)
		cfg := appCtx.Config.Check

		resultsExists := "✗ (not created yet)"
		if _, err := os.Stat(appCtx.ResultsDir); err == nil {
			resultsExists = "✓ (exists)"
		}

		configFile := viper.ConfigFileUsed()
		configExists := "✗ (using defaults)"
		if configFile == "" {
			homeDir, _ := os.UserHomeDir()
			configFile = filepath.Join(homeDir, ".srvdiag.yaml")
		}
		if _, err := os.Stat(configFile); err == nil {
			configExists = "✓ (exists)"
		}

		out := cmd.OutOrStdout()

		fmt.Fprintln(out, "srvdiag System Information")
		fmt.Fprintln(out, "==========================")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Platform:           %s/%s\n", runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(out, "Configuration File: %s %s\n", configFile, configExists)
		fmt.Fprintf(out, "Results Directory:  %s %s\n", appCtx.ResultsDir, resultsExists)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Diagnostic Settings:")
		fmt.Fprintf(out, "  Port:             %d\n", cfg.Port)
		fmt.Fprintf(out, "  Service:          %s\n", cfg.Service)
		fmt.Fprintf(out, "  HTTP Host:        %s\n", cfg.HTTPHost)
		fmt.Fprintf(out, "  Use sudo:         %t\n", !cfg.NoSudo)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Utilities:")
		for _, name := range diagnosticUtilities {
			fmt.Fprintf(out, "  %-17s %s\n", name+":", formatAvailability(lookupUtility(name)))
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, "To change defaults, create ~/.srvdiag.yaml with e.g.:")
		fmt.Fprintln(out, "  port: 8080")
		fmt.Fprintln(out, "  service: caddy")

		return nil
	},
}
