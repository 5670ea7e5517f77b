package constants

import (
	"io/fs"
	"time"
)

const (
	// DefaultDirPerm is the default permission used when creating directories.
	DefaultDirPerm fs.FileMode = 0o755
	// DefaultFilePerm is the default permission used when creating files.
	DefaultFilePerm fs.FileMode = 0o644
)

const (
	// DefaultPort is the web service port the diagnostic inspects.
	DefaultPort = 5200
	// DefaultService is the reverse proxy unit queried through systemctl.
	DefaultService = "nginx"
	// DefaultHTTPHost is the host curl targets for the local access test.
	DefaultHTTPHost = "localhost"
	// DefaultProbeHost is the host dialed by the TCP probe.
	DefaultProbeHost = "localhost"
	// DefaultProbeTimeout bounds the TCP connect of the port probe.
	DefaultProbeTimeout = 5 * time.Second
	// StatusDetailLines caps how much of `systemctl status` is echoed.
	StatusDetailLines = 10
)

const (
	// DefaultServeAddr is where `srvdiag serve` listens.
	DefaultServeAddr = "127.0.0.1:9191"
	// DefaultCacheTTL is how long the API reuses the last report.
	DefaultCacheTTL = 10 * time.Second
	// DefaultResultsDir holds telemetry output.
	DefaultResultsDir = "./results"
	// TelemetryFilename is appended to on every run with telemetry enabled.
	TelemetryFilename = "telemetry.jsonl"
)
