// Package checker defines the srvdiag diagnostic framework.
//
// Architecture overview:
//
//   - Checkers implement the Checker interface (Check + Name). Each one runs a
//     single OS utility through a command.Runner and folds the captured
//     stdout/stderr/exit code into a CheckResult.
//   - Suite runs the checkers sequentially in a fixed order and invokes an
//     OnResult callback per check so callers can stream output or record
//     metrics while the run is still in progress.
//   - Options carries the diagnosed port, service name, and hosts; it also
//     builds the exact command lines handed to the shell.
//
// Checks never return errors. A missing utility, a permission problem, and a
// stopped service all surface the same way: a fail or warn status with the
// utility's stderr attached where it is useful to the operator.
//
// Built-in checks, in run order:
//
//	host_ip         hostname -I
//	listening_port  netstat -tlnp | grep :<port>
//	service         systemctl is-active <service> (+ status details)
//	local_http      curl -w '%{http_code}' http://<host>:<port>
//	firewall        ufw status
//	tcp_probe       TCP connect with a 5s timeout (opt-in)
package checker
