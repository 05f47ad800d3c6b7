package worker

// Status is the state of one forwarding rule's supervision loop.
type Status int

const (
	// StatusLaunching means the ssh child is being started or has not yet
	// survived the grace period.
	StatusLaunching Status = iota
	// StatusConnected means the session outlived the grace period with no
	// classified failure. ssh -N emits no success banner, so this is the
	// best available signal.
	StatusConnected
	// StatusBackoffWaiting means the last exit was transient and the
	// worker is waiting out the retry delay.
	StatusBackoffWaiting
	// StatusStoppedAuth is terminal: the remote rejected our credentials.
	StatusStoppedAuth
	// StatusStoppedHostKey is terminal: an untrusted host key needs
	// operator action before this rule can work.
	StatusStoppedHostKey
	// StatusStoppedCancelled is terminal: shutdown was requested.
	StatusStoppedCancelled
	// StatusStoppedSpawnError is terminal: the ssh child could not be
	// started at all.
	StatusStoppedSpawnError
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusLaunching:
		return "launching"
	case StatusConnected:
		return "connected"
	case StatusBackoffWaiting:
		return "waiting"
	case StatusStoppedAuth:
		return "stopped: auth failed"
	case StatusStoppedHostKey:
		return "stopped: host key not trusted"
	case StatusStoppedCancelled:
		return "stopped: cancelled"
	case StatusStoppedSpawnError:
		return "stopped: spawn error"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status is final. A terminal rule never
// spawns another session.
func (s Status) Terminal() bool {
	switch s {
	case StatusStoppedAuth, StatusStoppedHostKey, StatusStoppedCancelled, StatusStoppedSpawnError:
		return true
	default:
		return false
	}
}

// HardFailure reports whether the status should fail the whole process
// exit code. Auth/host-key/cancelled stops are orderly (if partial)
// outcomes; a spawn error means the tool cannot do its job at all.
func (s Status) HardFailure() bool {
	return s == StatusStoppedSpawnError
}
