// Package session runs one ssh child process on a pseudo-terminal and
// turns its output into a stream of classified events.
//
// The pty is load-bearing: ssh only emits password, passphrase, and
// host-key prompts when it believes it is talking to a terminal. The pty
// read path is genuinely blocking, so each session owns a dedicated reader
// goroutine that feeds a channel; nothing else in the process ever blocks
// on terminal I/O.
package session

import (
	"bytes"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/creack/pty"
	"github.com/sshfwd/sshfwd/internal/classify"
	"github.com/sshfwd/sshfwd/internal/config"
	"github.com/sshfwd/sshfwd/internal/errors"
	"github.com/sshfwd/sshfwd/internal/logger"
)

// ptySize matches a typical wide terminal so ssh does not wrap prompts.
var ptySize = &pty.Winsize{Rows: 24, Cols: 120}

// eventBuffer is the capacity of the classified-event channel. The flags
// that drive retry decisions are recorded before an event is queued, so a
// slow consumer can only ever lose log lines, never classifications.
const eventBuffer = 256

// ExitResult is the final outcome of one session, folded from the
// classified output stream rather than the exit code alone: ssh's exit
// codes do not reliably distinguish auth failures from network faults.
type ExitResult struct {
	// Code is the child's exit code, or -1 when it was killed.
	Code int

	// AuthFailure is set when the output stream contained an
	// authentication rejection, or a password was demanded that we could
	// not supply.
	AuthFailure bool

	// HostKeyPrompt is set when the interactive host-key confirmation
	// appeared. The child is terminated as soon as it is detected.
	HostKeyPrompt bool
}

// Session owns one ssh child process attached to a pty. All exported
// methods are safe to call from the owning worker goroutine; Terminate may
// additionally be called from the reader goroutine.
type Session struct {
	cmd    *exec.Cmd
	ptmx   *os.File
	events chan classify.Event
	log    logger.Logger

	password string

	authFailure   atomic.Bool
	hostKeyPrompt atomic.Bool

	terminateOnce sync.Once
	waitOnce      sync.Once
	waitResult    ExitResult
}

// Launch builds the ssh invocation for rule and starts it on a fresh pty.
// A failure to build or spawn is terminal for the rule: it never enters
// the retry loop.
func Launch(rule config.Rule, log logger.Logger) (*Session, error) {
	inv, err := BuildInvocation(rule)
	if err != nil {
		return nil, err
	}
	return start(inv, rule.SSHPassword, log)
}

// start spawns the invocation on a pty. Split from Launch so tests can run
// arbitrary programs through the same plumbing.
func start(inv Invocation, password string, log logger.Logger) (*Session, error) {
	cmd := exec.Command(inv.Program, inv.Args...)

	ptmx, err := pty.StartWithSize(cmd, ptySize)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSpawn,
			"Could not start "+inv.Program,
			"Check that the ssh client is installed and on PATH")
	}

	s := &Session{
		cmd:      cmd,
		ptmx:     ptmx,
		events:   make(chan classify.Event, eventBuffer),
		log:      log,
		password: password,
	}

	go s.readLoop()
	return s, nil
}

// Events returns the stream of classified output lines. The channel is
// closed when the pty reaches EOF (child exited or was killed). Per-rule
// FIFO order is preserved.
func (s *Session) Events() <-chan classify.Event {
	return s.events
}

// Terminate kills the child process. Idempotent; the process is reaped by
// Wait. Used for host-key prompts and cancellation.
func (s *Session) Terminate() {
	s.terminateOnce.Do(func() {
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
	})
}

// Wait reaps the child and returns the folded outcome. It closes the pty
// so the reader goroutine always unblocks; every exit path through Wait
// releases both the process and the terminal handle.
func (s *Session) Wait() ExitResult {
	s.waitOnce.Do(func() {
		err := s.cmd.Wait()
		_ = s.ptmx.Close()

		code := 0
		if err != nil {
			code = -1
			if exitErr, ok := err.(*exec.ExitError); ok {
				code = exitErr.ExitCode()
			}
		}
		s.waitResult = ExitResult{
			Code:          code,
			AuthFailure:   s.authFailure.Load(),
			HostKeyPrompt: s.hostKeyPrompt.Load(),
		}
	})
	return s.waitResult
}

// readLoop drains the pty until EOF, splitting output into lines and
// feeding them through the classifier. Runs on its own goroutine because
// pty reads have no non-blocking variant.
func (s *Session) readLoop() {
	defer close(s.events)

	buf := make([]byte, 4096)
	var pending []byte
	for {
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			pending = s.drainLines(pending)
		}
		if err != nil {
			// EOF, or EIO after the child exited. Flush whatever is left
			// so a final unterminated line still gets classified.
			if line := strings.TrimRight(string(pending), "\r\n"); strings.TrimSpace(line) != "" {
				s.handleLine(line)
			}
			return
		}
	}
}

// drainLines emits every complete line in pending and returns the
// remainder. A partial line that looks like a prompt (ends with a colon)
// is flushed too: prompts arrive without a trailing newline and would
// otherwise sit in the buffer until the session died.
func (s *Session) drainLines(pending []byte) []byte {
	for {
		idx := bytes.IndexAny(pending, "\r\n")
		if idx < 0 {
			break
		}
		line := string(pending[:idx])
		// Swallow the \n of a \r\n pair.
		next := idx + 1
		if pending[idx] == '\r' && next < len(pending) && pending[next] == '\n' {
			next++
		}
		pending = pending[next:]
		if strings.TrimSpace(line) != "" {
			s.handleLine(line)
		}
	}

	if tail := strings.TrimSpace(string(pending)); strings.HasSuffix(tail, ":") {
		s.handleLine(string(pending))
		return nil
	}
	return pending
}

// handleLine classifies one line, records the outcome flags, reacts to
// prompts, and queues the event for the worker.
func (s *Session) handleLine(line string) {
	ev := classify.NewEvent(line)

	switch ev.Kind {
	case classify.AuthFailure:
		s.authFailure.Store(true)

	case classify.HostKeyPrompt:
		// Never answered, under any configuration. Kill the child so it
		// cannot sit waiting on an unanswerable question.
		s.hostKeyPrompt.Store(true)
		s.Terminate()

	case classify.PasswordPrompt:
		s.answerPrompt()
	}

	select {
	case s.events <- ev:
	default:
		s.log.Debug("event buffer full, dropping line: %s", ev.Line)
	}
}

// answerPrompt types the configured password into the pty, once per prompt
// occurrence. A prompt with no password configured can never be answered;
// the child would otherwise block on it forever, so it is killed on the
// spot and the outcome folds to an auth failure.
func (s *Session) answerPrompt() {
	if s.password == "" {
		s.log.Debug("password prompt with no ssh_password configured, terminating child")
		s.authFailure.Store(true)
		s.Terminate()
		return
	}

	if _, err := s.ptmx.Write([]byte(s.password + "\n")); err != nil {
		s.log.Warn("failed to write password to pty: %v", err)
	}
}
