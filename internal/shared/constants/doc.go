// Package constants centralizes defaults shared across the CLI: the diagnosed
// port and service, probe timeouts, API server defaults, and file permissions.
package constants
