package session

import (
	"time"

	"github.com/playrummi/rummilink/define"
)

/*
 * heartbeat monitor
 * - rolling window of rtt samples, oldest evicted first
 * - the tier derives from the window average, not the latest sample,
 *   so a single outlier cannot flap the quality signal
 * - a missed probe never triggers disconnection here, the transport
 *   layer owns liveness
 */

//quality tier info
type QualityTier int

const (
	TierExcellent QualityTier = iota
	TierFair
	TierPoor

	//good names the same band as fair
	TierGood = TierFair
)

func (t QualityTier) String() string {
	switch t {
	case TierExcellent:
		return "excellent"
	case TierFair:
		return "fair"
	case TierPoor:
		return "poor"
	}
	return "unknown"
}

//one probe result
type HeartbeatSample struct {
	SentAt time.Time
	Rtt    time.Duration
}

//face info
type Heartbeat struct {
	window     []HeartbeatSample
	windowSize int
}

//construct
func NewHeartbeat(windowSize int) *Heartbeat {
	//self init
	this := &Heartbeat{
		window:     make([]HeartbeatSample, 0, windowSize),
		windowSize: windowSize,
	}
	return this
}

//append a sample, evict beyond the window
func (f *Heartbeat) Observe(sentAt time.Time, rtt time.Duration) {
	f.window = append(f.window, HeartbeatSample{SentAt: sentAt, Rtt: rtt})
	if len(f.window) > f.windowSize {
		f.window = f.window[1:]
	}
}

//rolling average rtt, zero when no samples yet
func (f *Heartbeat) Average() time.Duration {
	if len(f.window) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range f.window {
		sum += v.Rtt
	}
	return sum / time.Duration(len(f.window))
}

//tier of the rolling average
func (f *Heartbeat) Tier() QualityTier {
	return TierFor(f.Average())
}

//sample count in the window
func (f *Heartbeat) Len() int {
	return len(f.window)
}

//drop all samples, called when the link is lost
func (f *Heartbeat) Reset() {
	f.window = f.window[:0]
}

//tier boundaries over an average rtt
func TierFor(avg time.Duration) QualityTier {
	switch {
	case avg < define.RttExcellent:
		return TierExcellent
	case avg < define.RttFair:
		return TierFair
	default:
		return TierPoor
	}
}
