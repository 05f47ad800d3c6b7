package doctor

import (
	"fmt"
	"net"
	"strconv"

	"github.com/sshfwd/sshfwd/internal/config"
)

// LocalPortCheck verifies a rule's local bind address is actually
// bindable. A port that is already taken makes ssh exit immediately with
// "Address already in use", and the worker would retry against the same
// wall until someone notices.
type LocalPortCheck struct {
	Rule config.Rule
}

func (c *LocalPortCheck) Name() string     { return "local_port:" + c.Rule.Label() }
func (c *LocalPortCheck) Category() string { return "PORTS" }

func (c *LocalPortCheck) Run() CheckResult {
	addr := net.JoinHostPort(c.Rule.LocalBind, strconv.Itoa(c.Rule.LocalPort))
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("%s: cannot bind %s: %v", c.Rule.Label(), addr, err),
			Suggestion: "Free the port or change local_port in the config",
		}
	}
	l.Close() //nolint:errcheck // Probe listener, nothing to report

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("%s: %s is free", c.Rule.Label(), addr),
	}
}

func (c *LocalPortCheck) Fix() error { return nil }
