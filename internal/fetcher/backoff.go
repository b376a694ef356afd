package fetcher

import (
	"time"

	"github.com/patientrisk/patientrisk/internal/config"
)

// backoff implements truncated exponential backoff without jitter.
type backoff struct {
	initial    time.Duration
	max        time.Duration
	multiplier float64
	current    time.Duration
}

func newBackoff(rl config.RateLimitConfig) *backoff {
	b := &backoff{initial: rl.Initial, max: rl.Max, multiplier: rl.Multiplier}
	if b.multiplier < 1 {
		b.multiplier = 1
	}
	b.reset()
	return b
}

// next returns the current backoff duration and advances the internal state.
func (b *backoff) next() time.Duration {
	d := b.current
	b.current = time.Duration(float64(b.current) * b.multiplier)
	if b.current > b.max {
		b.current = b.max
	}
	return d
}

// limit caps d at the policy maximum.
func (b *backoff) limit(d time.Duration) time.Duration {
	if d > b.max {
		return b.max
	}
	return d
}

func (b *backoff) reset() {
	b.current = b.initial
}
