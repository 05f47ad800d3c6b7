package doctor

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// KnownHostsCheck verifies a target host already has an entry in
// known_hosts. An unknown host makes ssh print a trust prompt, which
// the supervisor treats as a terminal stop for that rule, so it is far
// better to find out before launching.
type KnownHostsCheck struct {
	Host string
	Port int

	// Path overrides the default ~/.ssh/known_hosts. Used in tests.
	Path string
}

func (c *KnownHostsCheck) Name() string     { return "known_hosts:" + c.Host }
func (c *KnownHostsCheck) Category() string { return "SSH" }

func (c *KnownHostsCheck) Run() CheckResult {
	path := c.Path
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return CheckResult{Name: c.Name(), Status: StatusPass, Message: "Cannot locate home directory, skipping"}
		}
		path = filepath.Join(home, ".ssh", "known_hosts")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("%s: no known_hosts file", c.Host),
			Suggestion: c.scanHint(),
		}
	}

	want := knownhosts.Normalize(net.JoinHostPort(c.Host, strconv.Itoa(c.Port)))
	hashed := false

	rest := data
	for len(rest) > 0 {
		_, hosts, _, _, next, err := ssh.ParseKnownHosts(rest)
		if err != nil {
			// io.EOF or a malformed trailing line; either way we are done.
			break
		}
		rest = next

		for _, h := range hosts {
			if strings.HasPrefix(h, "|1|") {
				hashed = true
				continue
			}
			if h == want {
				return CheckResult{
					Name:    c.Name(),
					Status:  StatusPass,
					Message: fmt.Sprintf("%s: host key on file", c.Host),
				}
			}
		}
	}

	if hashed {
		// Hashed entries cannot be matched without connecting; do not
		// raise a false alarm.
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: fmt.Sprintf("%s: known_hosts is hashed, cannot verify coverage", c.Host),
		}
	}

	return CheckResult{
		Name:       c.Name(),
		Status:     StatusWarn,
		Message:    fmt.Sprintf("%s: no host key on file", c.Host),
		Suggestion: c.scanHint(),
	}
}

func (c *KnownHostsCheck) scanHint() string {
	if c.Port != 22 {
		return fmt.Sprintf("Trust the host first: ssh-keyscan -p %d %s >> ~/.ssh/known_hosts", c.Port, c.Host)
	}
	return fmt.Sprintf("Trust the host first: ssh-keyscan %s >> ~/.ssh/known_hosts", c.Host)
}

func (c *KnownHostsCheck) Fix() error { return nil }
