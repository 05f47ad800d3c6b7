package session

import (
	"fmt"
	"os"
	"strconv"

	"github.com/sshfwd/sshfwd/internal/config"
	"github.com/sshfwd/sshfwd/internal/errors"
)

// Invocation is a fully built child command line.
type Invocation struct {
	Program string
	Args    []string
}

// BuildInvocation constructs the ssh command for a rule. The produced
// argument vector is deterministic:
//
//	ssh -N -L bind:lport:remote_address -p port
//	    <keepalive and failure options> [-g] [-i key] extra... user@host
//
// remote_address is passed through unmodified as the third -L component,
// bracketed IPv6 included; ssh_extra_args are appended verbatim in order.
func BuildInvocation(rule config.Rule) (Invocation, error) {
	// The remote address was validated at load time, but a malformed one
	// spliced into -L would make ssh bind garbage, so reject it here too.
	if _, _, err := config.ParseHostPort(rule.RemoteAddress); err != nil {
		return Invocation{}, errors.WrapWithCode(err, errors.ErrSpawn,
			fmt.Sprintf("Remote address '%s' is not host:port", rule.RemoteAddress),
			"Use host:port, or [addr]:port for IPv6")
	}

	args := []string{
		// Forward only; no remote command, stay in the foreground.
		"-N",
		"-L", fmt.Sprintf("%s:%d:%s", rule.LocalBind, rule.LocalPort, rule.RemoteAddress),
		"-p", strconv.Itoa(rule.SSHPort),
		// Exit immediately if the forwarding setup fails so the worker
		// can classify and retry instead of holding a half-dead session.
		"-o", "ExitOnForwardFailure=yes",
		// Keepalives make silent disconnects surface as process exits.
		"-o", "ServerAliveInterval=30",
		"-o", "ServerAliveCountMax=3",
		"-o", "TCPKeepAlive=yes",
		"-o", "ConnectTimeout=10",
	}

	if rule.SSHPassword != "" {
		// One prompt only; a re-prompt means the password is wrong and
		// retyping it would loop forever.
		args = append(args, "-o", "NumberOfPasswordPrompts=1")
	}

	if rule.LocalBind != "127.0.0.1" && rule.LocalBind != "localhost" {
		// Non-loopback binds are only useful if remote hosts may connect.
		args = append(args, "-g")
	}

	if rule.SSHKeyPath != "" {
		keyPath := config.ExpandTilde(rule.SSHKeyPath)
		if _, err := os.Stat(keyPath); err != nil {
			return Invocation{}, errors.WrapWithCode(err, errors.ErrSpawn,
				fmt.Sprintf("SSH key not found: %s", keyPath),
				"Check ssh_key_path, or remove it to use agent/default keys")
		}
		args = append(args, "-i", keyPath)
	}

	args = append(args, rule.SSHExtraArgs...)
	args = append(args, fmt.Sprintf("%s@%s", rule.SSHUser, rule.SSHHost))

	return Invocation{Program: "ssh", Args: args}, nil
}
