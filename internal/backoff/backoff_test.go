package backoff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNext_FirstDelayIsBase(t *testing.T) {
	p := Default()
	assert.Equal(t, DefaultBase, p.Next(0))
}

func TestNext_Sequence(t *testing.T) {
	p := NewPolicy(1*time.Second, 2.0, 30*time.Second)

	tests := []struct {
		name     string
		previous time.Duration
		want     time.Duration
	}{
		{"from zero", 0, 1 * time.Second},
		{"doubles", 1 * time.Second, 2 * time.Second},
		{"doubles again", 4 * time.Second, 8 * time.Second},
		{"hits cap", 16 * time.Second, 30 * time.Second},
		{"stays at cap", 30 * time.Second, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Next(tt.previous))
		})
	}
}

func TestNext_NonDecreasingAndBounded(t *testing.T) {
	p := NewPolicy(500*time.Millisecond, 2.0, 20*time.Second)

	var prev time.Duration
	for i := 0; i < 50; i++ {
		next := p.Next(prev)
		assert.GreaterOrEqual(t, next, prev, "delay must never shrink")
		assert.LessOrEqual(t, next, p.Cap, "delay must never exceed cap")
		prev = next
	}
	assert.Equal(t, p.Cap, prev)
}

func TestNext_MultiplierOfOne(t *testing.T) {
	p := NewPolicy(2*time.Second, 1.0, 10*time.Second)
	assert.Equal(t, 2*time.Second, p.Next(2*time.Second))
}

func TestReset(t *testing.T) {
	p := NewPolicy(3*time.Second, 2.0, 30*time.Second)
	assert.Equal(t, 3*time.Second, p.Reset())
}

func TestNewPolicy_Defaults(t *testing.T) {
	p := NewPolicy(0, 0, 0)
	assert.Equal(t, DefaultBase, p.Base)
	assert.Equal(t, DefaultMultiplier, p.Multiplier)
	assert.Equal(t, DefaultCap, p.Cap)
}
