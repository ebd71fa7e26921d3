package session

import (
	"encoding/json"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/playrummi/rummilink/iface"
)

/*
 * state preserver
 * - captures session identity plus the last known game state
 * - one in-memory slot and one durable slot per installation
 * - last write wins, the server stays authoritative either way
 */

//preserved snapshot, persisted layout
type PreservedSession struct {
	SessionId  string          `json:"sessionId"`
	GameId     uint64          `json:"gameId"`
	PlayerId   uint64          `json:"playerId"`
	PlayerName string          `json:"playerName"`
	GameState  json.RawMessage `json:"gameState"`
	CapturedAt time.Time       `json:"preservedAt"`
}

//face info
type Preserver struct {
	store  iface.IStore
	clock  clock.Clock
	maxAge time.Duration
	mem    *PreservedSession
}

//construct
func NewPreserver(store iface.IStore, maxAge time.Duration, clk clock.Clock) *Preserver {
	//self init
	this := &Preserver{
		store:  store,
		clock:  clk,
		maxAge: maxAge,
	}
	return this
}

//write both slots, overwrites any prior snapshot
func (f *Preserver) Preserve(ps *PreservedSession) error {
	if ps == nil {
		return nil
	}
	f.mem = ps

	record, err := json.Marshal(ps)
	if err != nil {
		return err
	}
	return f.store.Put(record)
}

//return the durable snapshot if fresh enough
//a stale snapshot is deleted and reported as none, not an error,
//because the server may have already removed the player from the game
func (f *Preserver) Restore() (*PreservedSession, error) {
	record, ok, err := f.store.Get()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var ps PreservedSession
	if err := json.Unmarshal(record, &ps); err != nil {
		//unreadable slot, treat as stale
		f.store.Delete()
		return nil, nil
	}

	//expiry check
	if f.clock.Now().Sub(ps.CapturedAt) > f.maxAge {
		f.store.Delete()
		f.mem = nil
		return nil, nil
	}
	return &ps, nil
}

//in-memory slot without touching the durable store
func (f *Preserver) Current() *PreservedSession {
	return f.mem
}

//clear both slots, idempotent
func (f *Preserver) Clear() error {
	f.mem = nil
	return f.store.Delete()
}
