package retry

import (
	"math"
	"math/rand"
	"time"

	"github.com/vvka-141/flrload/pkg/flrload"
)

// Backoff doubles the delay after each failed attempt, capped at a maximum,
// with optional multiplicative jitter.
type Backoff struct {
	initial     time.Duration
	max         time.Duration
	factor      float64
	maxAttempts int
	jitter      float64
	random      func() float64
}

// BackoffOption configures a Backoff.
type BackoffOption func(*Backoff)

func WithInitialDelay(d time.Duration) BackoffOption { return func(b *Backoff) { b.initial = d } }

func WithMaxDelay(d time.Duration) BackoffOption { return func(b *Backoff) { b.max = d } }

func WithFactor(f float64) BackoffOption { return func(b *Backoff) { b.factor = f } }

// WithMaxAttempts sets how many retries follow the first attempt.
// A negative value retries until the context ends.
func WithMaxAttempts(n int) BackoffOption { return func(b *Backoff) { b.maxAttempts = n } }

// WithJitter spreads each delay by up to ±j of its value. j=0 is deterministic.
func WithJitter(j float64) BackoffOption { return func(b *Backoff) { b.jitter = j } }

// WithRandom replaces the [0,1) source used for jitter.
func WithRandom(f func() float64) BackoffOption { return func(b *Backoff) { b.random = f } }

// NewBackoff returns the connection backoff: 100ms doubling to at most one
// minute, three retries, 10% jitter.
func NewBackoff(opts ...BackoffOption) *Backoff {
	b := &Backoff{
		initial:     flrload.DefaultRetryInitialDelay,
		max:         flrload.DefaultRetryMaxDelay,
		factor:      2.0,
		maxAttempts: flrload.DefaultRetryMaxAttempts,
		jitter:      0.1,
		random:      rand.Float64,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NextDelay returns the wait before retry number attempt, counting from 0.
func (b *Backoff) NextDelay(attempt int) time.Duration {
	d := float64(b.initial) * math.Pow(b.factor, float64(attempt))
	if d > float64(b.max) || math.IsInf(d, 0) {
		d = float64(b.max)
	}
	if b.jitter > 0 {
		d *= 1 + b.jitter*(b.random()*2-1)
	}
	return time.Duration(d)
}

func (b *Backoff) MaxAttempts() int { return b.maxAttempts }
