package checker

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	consts "github.com/khanhnv2901/srvdiag/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/srvdiag/internal/shared/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// shellSafe limits values interpolated into command lines.
var shellSafe = regexp.MustCompile(`^[A-Za-z0-9@._:\-\[\]]+$`)

// Options selects what the diagnostic inspects and how commands are built.
type Options struct {
	Port           int // zero selects the default port
	Service        string
	HTTPHost       string
	UseSudo        bool
	ProbeHost      string
	ProbeTimeout   time.Duration
	EnableTCPProbe bool
}

// DefaultOptions mirrors the behaviour of running the tool with no flags.
func DefaultOptions() Options {
	return Options{
		Port:         consts.DefaultPort,
		Service:      consts.DefaultService,
		HTTPHost:     consts.DefaultHTTPHost,
		UseSudo:      true,
		ProbeHost:    consts.DefaultProbeHost,
		ProbeTimeout: consts.DefaultProbeTimeout,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Port == 0 {
		o.Port = def.Port
	}
	if o.Service == "" {
		o.Service = def.Service
	}
	if o.HTTPHost == "" {
		o.HTTPHost = def.HTTPHost
	}
	// The dialer adds its own brackets around IPv6 literals.
	o.ProbeHost = strings.TrimSuffix(strings.TrimPrefix(o.ProbeHost, "["), "]")
	if o.ProbeHost == "" {
		o.ProbeHost = def.ProbeHost
	}
	if o.ProbeTimeout <= 0 {
		o.ProbeTimeout = def.ProbeTimeout
	}
	return o
}

// Validate rejects values that are out of range or unsafe to hand to a shell.
func (o Options) Validate() error {
	o = o.withDefaults()
	if o.Port < 1 || o.Port > 65535 {
		return fmt.Errorf("%w: %d", sharedErrors.ErrInvalidPort, o.Port)
	}
	if strings.TrimSpace(o.Service) == "" {
		return sharedErrors.ErrEmptyService
	}
	for _, f := range []struct{ field, value string }{
		{"service", o.Service},
		{"http host", o.HTTPHost},
		{"probe host", o.ProbeHost},
	} {
		if !shellSafe.MatchString(f.value) {
			return fmt.Errorf("invalid %s %q", f.field, f.value)
		}
	}
	return nil
}

// ServiceDisplayName returns the service name as printed, e.g. "Nginx".
// Only the first letter changes so unit names like wg-quick@wg0 stay readable.
func (o Options) ServiceDisplayName() string {
	name := o.withDefaults().Service
	r, size := utf8.DecodeRuneInString(name)
	return cases.Upper(language.English).String(string(r)) + name[size:]
}

func (o Options) privileged(cmd string) string {
	if o.UseSudo {
		return "sudo " + cmd
	}
	return cmd
}

// HostIPCommand lists the host's addresses.
func (o Options) HostIPCommand() string {
	return "hostname -I"
}

// ListeningPortCommand filters the socket table for the configured port.
func (o Options) ListeningPortCommand() string {
	o = o.withDefaults()
	return fmt.Sprintf("%s | grep :%d", o.privileged("netstat -tlnp"), o.Port)
}

// ServiceActiveCommand asks systemd whether the service is active.
func (o Options) ServiceActiveCommand() string {
	o = o.withDefaults()
	return o.privileged("systemctl is-active " + o.Service)
}

// ServiceStatusCommand fetches the head of the service status page.
func (o Options) ServiceStatusCommand() string {
	o = o.withDefaults()
	return fmt.Sprintf("%s --no-pager | head -%d", o.privileged("systemctl status "+o.Service), consts.StatusDetailLines)
}

// LocalHTTPCommand prints only the HTTP status code of a local request.
func (o Options) LocalHTTPCommand() string {
	o = o.withDefaults()
	return fmt.Sprintf("curl -s -o /dev/null -w '%%{http_code}' http://%s:%d", o.HTTPHost, o.Port)
}

// FirewallCommand queries ufw only when it is installed.
func (o Options) FirewallCommand() string {
	return "command -v ufw && " + o.privileged("ufw status")
}
