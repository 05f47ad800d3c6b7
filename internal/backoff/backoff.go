// Package backoff computes the retry delay sequence used between
// reconnect attempts of a forwarding rule.
package backoff

import "time"

// Default policy values. Overridable via the backoff section of the config.
const (
	DefaultBase       = 1 * time.Second
	DefaultMultiplier = 2.0
	DefaultCap        = 30 * time.Second
)

// Policy is a pure exponential backoff: the first delay is Base, every
// following delay is the previous one times Multiplier, capped at Cap.
// Policy values are immutable; callers track the current delay themselves.
type Policy struct {
	Base       time.Duration
	Multiplier float64
	Cap        time.Duration
}

// NewPolicy returns a Policy with any zero field replaced by its default.
func NewPolicy(base time.Duration, multiplier float64, cap time.Duration) Policy {
	p := Policy{Base: base, Multiplier: multiplier, Cap: cap}
	if p.Base <= 0 {
		p.Base = DefaultBase
	}
	if p.Multiplier < 1 {
		p.Multiplier = DefaultMultiplier
	}
	if p.Cap <= 0 {
		p.Cap = DefaultCap
	}
	return p
}

// Default returns the policy with all default values.
func Default() Policy {
	return NewPolicy(0, 0, 0)
}

// Next computes the delay that follows previous. A zero or negative
// previous delay yields Base, so the first retry always waits the base
// delay. The result never exceeds Cap and never shrinks below previous.
func (p Policy) Next(previous time.Duration) time.Duration {
	if previous <= 0 {
		return p.Base
	}
	next := time.Duration(float64(previous) * p.Multiplier)
	if next > p.Cap {
		next = p.Cap
	}
	if next < previous {
		// Multiplier of exactly 1, or cap below previous.
		next = previous
	}
	return next
}

// Reset returns the base delay. Workers call this after a connection has
// stayed up past the stability threshold.
func (p Policy) Reset() time.Duration {
	return p.Base
}
