// Package supervisor runs one worker per forwarding rule and aggregates
// their final statuses. Restart policy lives entirely inside the workers;
// the supervisor only starts them, waits, and reports.
package supervisor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sshfwd/sshfwd/internal/config"
	"github.com/sshfwd/sshfwd/internal/logger"
	"github.com/sshfwd/sshfwd/internal/worker"
)

// RuleResult is the final outcome of one rule.
type RuleResult struct {
	Rule     config.Rule
	Status   worker.Status
	Attempts int

	// Panicked records a recovered worker panic. Isolation is mandatory:
	// one rule blowing up must not take down the others.
	Panicked error
}

// Result aggregates every rule's final state.
type Result struct {
	Rules    []RuleResult
	Duration time.Duration
}

// HardFailure reports whether the process should exit non-zero: any rule
// that could not even spawn its child, or a worker that panicked.
func (r *Result) HardFailure() bool {
	for _, rr := range r.Rules {
		if rr.Status.HardFailure() || rr.Panicked != nil {
			return true
		}
	}
	return false
}

// Supervisor owns the full set of workers for one run.
type Supervisor struct {
	rules []config.Rule
	opts  worker.Options
	log   logger.Logger
}

// New creates a supervisor for the given rules. The worker options are
// shared; each worker still tracks its own retry state.
func New(rules []config.Rule, opts worker.Options, log logger.Logger) *Supervisor {
	return &Supervisor{rules: rules, opts: opts, log: log}
}

// Run spawns one worker goroutine per rule and blocks until every worker
// has reached a terminal state. Cancelling ctx asks all workers to shut
// down; Run still waits for their terminal transitions so no child
// process or pty handle is left behind.
func (s *Supervisor) Run(ctx context.Context) *Result {
	start := time.Now()
	results := make([]RuleResult, len(s.rules))

	var wg sync.WaitGroup
	for i, rule := range s.rules {
		wg.Add(1)
		go func(i int, rule config.Rule) {
			defer wg.Done()
			results[i] = s.runWorker(ctx, rule)
		}(i, rule)
	}
	wg.Wait()

	return &Result{Rules: results, Duration: time.Since(start)}
}

// runWorker runs one rule to completion, converting a panic into a
// recorded failure instead of letting it unwind the process.
func (s *Supervisor) runWorker(ctx context.Context, rule config.Rule) (result RuleResult) {
	result.Rule = rule

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("worker for %s panicked: %v", rule.Label(), r)
			result.Status = worker.StatusStoppedSpawnError
			result.Panicked = fmt.Errorf("worker panic: %v", r)
		}
	}()

	w := worker.New(rule, s.opts, logger.Tagged(s.log, rule.Label()))
	result.Status = w.Run(ctx)
	result.Attempts = w.State().Attempts
	return result
}
