package session

import (
	"encoding/json"
	"time"
)

/*
 * listener of session events
 * - the game and ui layers implement this, every method is invoked
 *   from the session loop, so implementations must not block
 */

type Listener interface {
	//state machine transition, fired only at transition boundaries
	OnStateChanged(from, to ConnectionState, reason string)

	//server restored the game, state is the authoritative blob
	OnStateRestored(gameId uint64, state json.RawMessage, message string)

	//restoration was rejected, the menu holds the manual recourse
	OnRestoreFailed(reason string, fallbacks []Fallback)

	//one replayed action was rejected, the rest of the drain continued
	OnActionRejected(action QueuedAction, err error)

	//a peer changed presence, stability already recomputed
	OnPeerChanged(peer PeerPresence, stability Stability)

	//batched server presence report was adopted
	OnStabilityChanged(stability Stability)

	//single player left, bounded wait window opened
	OnSinglePlayerRemaining(message string, wait time.Duration, options []string)

	//the wait window elapsed without a local choice
	OnWaitWindowElapsed()

	//server guidance text for the user
	OnGuidance(guidance string, actions []string)

	//link quality recomputed from the heartbeat window
	OnQuality(tier QualityTier, avgRtt time.Duration)
}

//no-op listener so callers may embed and override selectively
type NopListener struct{}

func (NopListener) OnStateChanged(_, _ ConnectionState, _ string)                  {}
func (NopListener) OnStateRestored(_ uint64, _ json.RawMessage, _ string)          {}
func (NopListener) OnRestoreFailed(_ string, _ []Fallback)                         {}
func (NopListener) OnActionRejected(_ QueuedAction, _ error)                       {}
func (NopListener) OnPeerChanged(_ PeerPresence, _ Stability)                      {}
func (NopListener) OnStabilityChanged(_ Stability)                                 {}
func (NopListener) OnSinglePlayerRemaining(_ string, _ time.Duration, _ []string)  {}
func (NopListener) OnWaitWindowElapsed()                                           {}
func (NopListener) OnGuidance(_ string, _ []string)                                {}
func (NopListener) OnQuality(_ QualityTier, _ time.Duration)                       {}
