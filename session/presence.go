package session

import (
	"time"

	"github.com/benbjohnson/clock"
)

/*
 * peer presence coordinator
 * - per-peer status map plus a derived session stability
 * - a server aggregate report always wins over individual events
 *   received moments earlier, to avoid racing near-simultaneous drops
 * - the single-player wait window takes no default action on elapse,
 *   the game layer owns that decision
 */

//peer status
type PeerStatus int

const (
	PeerConnected PeerStatus = iota
	PeerDisconnected
)

func (s PeerStatus) String() string {
	if s == PeerDisconnected {
		return "disconnected"
	}
	return "connected"
}

//one peer in the session
type PeerPresence struct {
	PeerId        uint64
	PeerName      string
	Status        PeerStatus
	LastChangedAt time.Time
}

//derived stability of the whole session
type Stability int

const (
	StabilityStable Stability = iota
	StabilityDegraded
	StabilityUnstable
)

func (s Stability) String() string {
	switch s {
	case StabilityDegraded:
		return "degraded"
	case StabilityUnstable:
		return "unstable"
	}
	return "stable"
}

//bounded wait opened by a singlePlayerRemaining event
type WaitWindow struct {
	Message  string
	Options  []string
	deadline time.Time
	timer    *clock.Timer
}

//face info
type Presence struct {
	clock     clock.Clock
	peers     map[uint64]*PeerPresence
	stability Stability
	window    *WaitWindow
}

//construct
func NewPresence(clk clock.Clock) *Presence {
	//self init
	this := &Presence{
		clock: clk,
		peers: make(map[uint64]*PeerPresence),
	}
	return this
}

//register a known peer as connected
func (f *Presence) Track(peerId uint64, name string) {
	if _, ok := f.peers[peerId]; ok {
		return
	}
	f.peers[peerId] = &PeerPresence{
		PeerId:        peerId,
		PeerName:      name,
		Status:        PeerConnected,
		LastChangedAt: f.clock.Now(),
	}
	f.recompute()
}

//individual disconnect event
func (f *Presence) MarkDisconnected(peerId uint64, name string) Stability {
	f.mark(peerId, name, PeerDisconnected)
	f.recompute()
	return f.stability
}

//individual reconnect event
func (f *Presence) MarkReconnected(peerId uint64, name string) Stability {
	f.mark(peerId, name, PeerConnected)
	f.recompute()
	return f.stability
}

//batched server report, adopted directly instead of re-derived
//resets local per-peer marks to match the reported counts
func (f *Presence) ApplyAggregate(disconnected, remaining int) Stability {
	now := f.clock.Now()
	if remaining == 0 {
		//everyone is gone, marks are unambiguous
		for _, p := range f.peers {
			if p.Status != PeerDisconnected {
				p.Status = PeerDisconnected
				p.LastChangedAt = now
			}
		}
	} else if disconnected == 0 {
		for _, p := range f.peers {
			if p.Status != PeerConnected {
				p.Status = PeerConnected
				p.LastChangedAt = now
			}
		}
	}

	//stability comes from the reported counts, not the local marks
	total := disconnected + remaining
	switch {
	case total > 0 && disconnected == total:
		f.stability = StabilityUnstable
	case total > 0 && 2*disconnected >= total:
		f.stability = StabilityDegraded
	default:
		f.stability = StabilityStable
	}
	return f.stability
}

//current stability
func (f *Presence) Stability() Stability {
	return f.stability
}

//snapshot of all peers
func (f *Presence) Peers() []PeerPresence {
	out := make([]PeerPresence, 0, len(f.peers))
	for _, p := range f.peers {
		out = append(out, *p)
	}
	return out
}

//count of disconnected peers
func (f *Presence) DisconnectedCount() int {
	count := 0
	for _, p := range f.peers {
		if p.Status == PeerDisconnected {
			count++
		}
	}
	return count
}

//open the single-player wait window, returns its expiry channel
//an already open window is superseded
func (f *Presence) OpenWindow(
	message string,
	wait time.Duration,
	options []string,
) <-chan time.Time {
	f.CloseWindow()
	f.window = &WaitWindow{
		Message:  message,
		Options:  options,
		deadline: f.clock.Now().Add(wait),
		timer:    f.clock.Timer(wait),
	}
	return f.window.timer.C
}

//remaining time of the open window, zero when none
func (f *Presence) WindowRemaining() time.Duration {
	if f.window == nil {
		return 0
	}
	left := f.window.deadline.Sub(f.clock.Now())
	if left < 0 {
		return 0
	}
	return left
}

//caller-selectable options of the open window
func (f *Presence) WindowOptions() []string {
	if f.window == nil {
		return nil
	}
	return f.window.Options
}

//close the window, idempotent
func (f *Presence) CloseWindow() {
	if f.window != nil && f.window.timer != nil {
		f.window.timer.Stop()
	}
	f.window = nil
}

///////////////
//private func
///////////////

func (f *Presence) mark(peerId uint64, name string, status PeerStatus) {
	p, ok := f.peers[peerId]
	if !ok {
		p = &PeerPresence{PeerId: peerId, PeerName: name}
		f.peers[peerId] = p
	}
	if name != "" {
		p.PeerName = name
	}
	p.Status = status
	p.LastChangedAt = f.clock.Now()
}

//unstable iff every peer is disconnected
//degraded when at least half are disconnected
//stable iff fewer than half are disconnected
func (f *Presence) recompute() {
	total := len(f.peers)
	if total == 0 {
		f.stability = StabilityStable
		return
	}
	disconnected := f.DisconnectedCount()
	switch {
	case disconnected == total:
		f.stability = StabilityUnstable
	case 2*disconnected >= total:
		f.stability = StabilityDegraded
	default:
		f.stability = StabilityStable
	}
}
