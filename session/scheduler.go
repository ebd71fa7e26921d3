package session

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/playrummi/rummilink/define"
)

/*
 * reconnection scheduler
 * - at most one pending attempt, arming supersedes the previous one
 * - the counter increments before the dial so a crash mid-attempt
 *   cannot cause an unbounded retry loop
 * - driven entirely from the session loop, no goroutine of its own
 */

//one armed retry, immutable once created
type ReconnectionAttempt struct {
	AttemptNumber uint
	ScheduledAt   time.Time
	Delay         time.Duration
	Reason        string
}

//face info
type Scheduler struct {
	calc        *Backoff
	clock       clock.Clock
	maxAttempts int
	attempt     int
	pending     *ReconnectionAttempt
	timer       *clock.Timer
}

//construct
func NewScheduler(calc *Backoff, maxAttempts int, clk clock.Clock) *Scheduler {
	//self init
	this := &Scheduler{
		calc:        calc,
		clock:       clk,
		maxAttempts: maxAttempts,
	}
	return this
}

//arm the next attempt, returns its fire channel
//any pending attempt is cancelled first
func (f *Scheduler) Arm(reason string) (*ReconnectionAttempt, <-chan time.Time, error) {
	f.Cancel()

	//cap check before arming
	if f.attempt >= f.maxAttempts {
		return nil, nil, define.ErrAttemptsExhausted
	}

	//count before the network call
	f.attempt++
	delay := f.calc.Next(f.attempt)

	f.pending = &ReconnectionAttempt{
		AttemptNumber: uint(f.attempt),
		ScheduledAt:   f.clock.Now(),
		Delay:         delay,
		Reason:        reason,
	}
	f.timer = f.clock.Timer(delay)
	return f.pending, f.timer.C, nil
}

//cancel any pending attempt
func (f *Scheduler) Cancel() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.pending = nil
}

//confirm success, counter resets only after the machine
//confirms the connected transition, not on socket-open
func (f *Scheduler) Confirm() {
	f.Cancel()
	f.attempt = 0
}

//current attempt count
func (f *Scheduler) Attempt() int {
	return f.attempt
}

//pending attempt, nil if none
func (f *Scheduler) Pending() *ReconnectionAttempt {
	return f.pending
}

//cap reached
func (f *Scheduler) Exhausted() bool {
	return f.attempt >= f.maxAttempts
}
