package session

import (
	"math"
	"math/rand"
	"time"

	"github.com/playrummi/rummilink/conf"
)

/*
 * backoff calculator, pure
 * - exponential growth avoids hammering a recovering server
 * - jitter desynchronizes retry storms after a shared outage
 * - the floor guarantees minimum spacing even when jitter is negative
 */

//face info
type Backoff struct {
	base       time.Duration
	multiplier float64
	max        time.Duration
	jitter     float64
	rnd        *rand.Rand
}

//construct
func NewBackoff(cfg conf.ReconnectConf, rnd *rand.Rand) *Backoff {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	//self init
	this := &Backoff{
		base:       cfg.Base,
		multiplier: cfg.Multiplier,
		max:        cfg.Max,
		jitter:     cfg.Jitter,
		rnd:        rnd,
	}
	return this
}

//exponential term before jitter, clamped to [base, max]
func (f *Backoff) Exponential(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := float64(f.base) * math.Pow(f.multiplier, float64(attempt-1))
	if delay < float64(f.base) {
		delay = float64(f.base)
	}
	if delay > float64(f.max) {
		delay = float64(f.max)
	}
	return time.Duration(delay)
}

//next delay for the given attempt, jitter applied
func (f *Backoff) Next(attempt int) time.Duration {
	delay := float64(f.Exponential(attempt))

	//uniform(-1, 1) scaled by jitter factor
	delay += delay * f.jitter * (f.rnd.Float64()*2 - 1)

	//floor at base
	if delay < float64(f.base) {
		delay = float64(f.base)
	}
	return time.Duration(delay)
}
