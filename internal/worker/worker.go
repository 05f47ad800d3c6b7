// Package worker implements the per-rule supervision loop: launch the ssh
// session, watch its classified output, and decide between retrying with
// backoff and stopping for good. Auth failures and host-key prompts are
// never retried; transient exits are.
package worker

import (
	"context"
	"time"

	"github.com/sshfwd/sshfwd/internal/backoff"
	"github.com/sshfwd/sshfwd/internal/classify"
	"github.com/sshfwd/sshfwd/internal/config"
	"github.com/sshfwd/sshfwd/internal/logger"
	"github.com/sshfwd/sshfwd/internal/session"
)

// Session is the subset of session.Session the worker drives. An
// interface so tests can script sessions without real processes.
type Session interface {
	Events() <-chan classify.Event
	Terminate()
	Wait() session.ExitResult
}

// LaunchFunc starts a session for a rule. Production code uses
// session.Launch; tests substitute fakes.
type LaunchFunc func(rule config.Rule, log logger.Logger) (Session, error)

// DefaultLaunch adapts session.Launch to the LaunchFunc signature.
func DefaultLaunch(rule config.Rule, log logger.Logger) (Session, error) {
	return session.Launch(rule, log)
}

// StatusSink receives rule lifecycle notifications. Implementations must
// be safe for concurrent use: every worker calls in from its own
// goroutine. The console reporter and the dashboard both implement this.
type StatusSink interface {
	RuleStatus(rule string, attempt int, status Status)
	RuleOutput(rule string, line string)
	RuleBackoff(rule string, delay time.Duration)
}

// NoopSink discards all notifications.
type NoopSink struct{}

func (NoopSink) RuleStatus(string, int, Status)    {}
func (NoopSink) RuleOutput(string, string)         {}
func (NoopSink) RuleBackoff(string, time.Duration) {}

// State is the mutable per-rule record. Owned exclusively by the worker
// goroutine; the final snapshot is returned from Run.
type State struct {
	Attempts     int
	CurrentDelay time.Duration
	Status       Status
}

// Options tunes the supervision loop.
type Options struct {
	// GracePeriod is how long a session must survive without a classified
	// failure before the rule counts as connected.
	GracePeriod time.Duration

	// StabilityThreshold is how long a connection must hold for the retry
	// delay to reset to base on the next transient failure.
	StabilityThreshold time.Duration

	// Policy computes the retry delay sequence.
	Policy backoff.Policy

	// Launch starts sessions. Defaults to DefaultLaunch.
	Launch LaunchFunc

	// Sink receives status notifications. Defaults to NoopSink.
	Sink StatusSink
}

// Worker supervises a single forwarding rule.
type Worker struct {
	rule  config.Rule
	opts  Options
	log   logger.Logger
	state State
}

// New creates a worker for one rule.
func New(rule config.Rule, opts Options, log logger.Logger) *Worker {
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = config.DefaultGracePeriod
	}
	if opts.StabilityThreshold <= 0 {
		opts.StabilityThreshold = config.DefaultStabilityThreshold
	}
	if opts.Policy == (backoff.Policy{}) {
		opts.Policy = backoff.Default()
	}
	if opts.Launch == nil {
		opts.Launch = DefaultLaunch
	}
	if opts.Sink == nil {
		opts.Sink = NoopSink{}
	}
	return &Worker{rule: rule, opts: opts, log: log}
}

// State returns a snapshot of the worker's retry state. Only meaningful
// after Run has returned; during Run the state belongs to the worker
// goroutine alone.
func (w *Worker) State() State {
	return w.state
}

// Run drives the rule until a terminal status is reached or ctx is
// cancelled. It always returns a terminal status, and it never leaves a
// child process or pty handle behind.
func (w *Worker) Run(ctx context.Context) Status {
	for {
		if ctx.Err() != nil {
			return w.stop(StatusStoppedCancelled)
		}

		w.state.Attempts++
		w.setStatus(StatusLaunching)
		w.log.Info("starting ssh forward: %s (attempt %d)", w.rule.Describe(), w.state.Attempts)

		sess, err := w.opts.Launch(w.rule, w.log)
		if err != nil {
			w.log.Error("cannot start ssh: %v", err)
			return w.stop(StatusStoppedSpawnError)
		}

		res, sustained, cancelled := w.superviseSession(ctx, sess)

		switch {
		case cancelled:
			return w.stop(StatusStoppedCancelled)
		case res.HostKeyPrompt:
			w.log.Error("host key for %s is not trusted; add -o StrictHostKeyChecking=accept-new to ssh_extra_args or update known_hosts, then restart", w.rule.SSHHost)
			return w.stop(StatusStoppedHostKey)
		case res.AuthFailure:
			w.log.Error("authentication failed for %s; not retrying", w.rule.Describe())
			return w.stop(StatusStoppedAuth)
		}

		// Transient failure: schedule the next attempt.
		if sustained {
			w.state.CurrentDelay = w.opts.Policy.Reset()
		} else {
			w.state.CurrentDelay = w.opts.Policy.Next(w.state.CurrentDelay)
		}

		w.setStatus(StatusBackoffWaiting)
		w.opts.Sink.RuleBackoff(w.rule.Label(), w.state.CurrentDelay)
		w.log.Warn("ssh exited (code %d); restarting in %s", res.Code, w.state.CurrentDelay)

		if !w.sleep(ctx, w.state.CurrentDelay) {
			return w.stop(StatusStoppedCancelled)
		}
	}
}

// superviseSession consumes the session's event stream until the child
// exits or cancellation is requested. It reports the exit outcome, whether
// the connection held past the stability threshold, and whether the loop
// ended because of cancellation.
func (w *Worker) superviseSession(ctx context.Context, sess Session) (res session.ExitResult, sustained, cancelled bool) {
	grace := time.NewTimer(w.opts.GracePeriod)
	defer grace.Stop()

	var connectedAt time.Time
	var fatalSeen bool

	finish := func() (session.ExitResult, bool) {
		r := sess.Wait()
		held := !connectedAt.IsZero() && time.Since(connectedAt) >= w.opts.StabilityThreshold
		return r, held
	}

	for {
		select {
		case <-ctx.Done():
			sess.Terminate()
			w.drain(sess)
			res, sustained = finish()
			return res, sustained, true

		case <-grace.C:
			// A surviving child only counts as connected if the stream has
			// stayed clean of auth failures and host-key prompts.
			if fatalSeen {
				continue
			}
			connectedAt = time.Now()
			w.setStatus(StatusConnected)
			w.log.Info("tunnel established: %s", w.rule.Describe())

		case ev, ok := <-sess.Events():
			if !ok {
				res, sustained = finish()
				return res, sustained, false
			}
			if w.handleEvent(sess, ev) {
				fatalSeen = true
			}
		}
	}
}

// handleEvent reacts to one classified output line. It reports whether
// the event dooms the session: auth failures and host-key prompts both
// terminate the child immediately rather than waiting for ssh to give up
// on its own, so the fold resolves without the rule ever showing as
// connected.
func (w *Worker) handleEvent(sess Session, ev classify.Event) bool {
	w.opts.Sink.RuleOutput(w.rule.Label(), ev.Line)

	switch ev.Kind {
	case classify.AuthFailure:
		w.log.Debug("auth failure observed, terminating child: %s", ev.Line)
		sess.Terminate()
		return true
	case classify.HostKeyPrompt:
		w.log.Debug("host key prompt observed, terminating child")
		sess.Terminate()
		return true
	case classify.PasswordPrompt:
		w.log.Debug("password prompt observed")
	default:
		w.log.Debug("ssh: %s", ev.Line)
	}
	return false
}

// drain consumes remaining events after a terminate so the session's
// reader goroutine can finish.
func (w *Worker) drain(sess Session) {
	for range sess.Events() {
	}
}

// sleep waits for the backoff delay, returning false if cancellation
// arrived first.
func (w *Worker) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (w *Worker) setStatus(s Status) {
	w.state.Status = s
	w.opts.Sink.RuleStatus(w.rule.Label(), w.state.Attempts, s)
}

func (w *Worker) stop(s Status) Status {
	w.setStatus(s)
	return s
}
