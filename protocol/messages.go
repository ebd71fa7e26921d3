package protocol

import "encoding/json"

/*
 * typed wire messages, json encoded into packet body
 * - payload blobs stay opaque to this layer
 */

///////////////////
//client -> server
///////////////////

type ConnectMsg struct {
	GameId   uint64 `json:"gameId"`
	PlayerId uint64 `json:"playerId"`
	Name     string `json:"playerName"`
	Token    string `json:"token"`
}

type RequestReconnectionMsg struct {
	GameId         uint64          `json:"gameId"`
	PlayerId       uint64          `json:"playerId"`
	Name           string          `json:"playerName"`
	Token          string          `json:"token"`
	PreservedState json.RawMessage `json:"preservedState,omitempty"`
	PreservedAt    int64           `json:"preservedAt,omitempty"` //unix milli
}

type PingMsg struct {
	Timestamp int64 `json:"timestamp"` //unix milli of sender
}

type PongMsg struct {
	Timestamp int64 `json:"timestamp"` //echo of the ping timestamp
}

type ActionMsg struct {
	ActionName string          `json:"actionName"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	EnqueuedAt int64           `json:"enqueuedAt,omitempty"` //unix milli, set for replayed actions
}

type ReportConnectionErrorMsg struct {
	Error     string `json:"error"`
	Timestamp int64  `json:"timestamp"`
}

type ReportReconnectionFailureMsg struct {
	PlayerId      uint64 `json:"playerId"`
	AttemptNumber uint   `json:"attemptNumber"`
	Error         string `json:"error"`
}

///////////////////
//server -> client
///////////////////

type ConnectAckMsg struct {
	GameId   uint64 `json:"gameId"`
	PlayerId uint64 `json:"playerId"`
	Ok       bool   `json:"ok"`
	Reason   string `json:"reason,omitempty"`
}

type ConnectionInfo struct {
	Attempts      uint  `json:"attempts"`
	ReconnectedAt int64 `json:"reconnectedAt"` //unix milli
}

type ReconnectionSuccessfulMsg struct {
	GameId         uint64          `json:"gameId"`
	GameState      json.RawMessage `json:"gameState"`
	ConnectionInfo ConnectionInfo  `json:"connectionInfo"`
}

type FallbackOption struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Action      string `json:"action"`
	Available   bool   `json:"available"`
}

type ReconnectionFailedMsg struct {
	Reason    string           `json:"reason"`
	Message   string           `json:"message"`
	Fallbacks []FallbackOption `json:"fallbacks"`
}

type GuidanceAction struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

type ReconnectionGuidanceMsg struct {
	Guidance string           `json:"guidance"`
	Actions  []GuidanceAction `json:"actions"`
}

type GameStateRestoredMsg struct {
	GameId    uint64          `json:"gameId"`
	GameState json.RawMessage `json:"gameState"`
	Message   string          `json:"message,omitempty"`
}

type PlayerDisconnectedMsg struct {
	PlayerName string `json:"playerName"`
	PlayerId   uint64 `json:"playerId"`
	GameId     uint64 `json:"gameId"`
	Reason     string `json:"reason,omitempty"`
}

type PlayerReconnectedMsg struct {
	PlayerName string `json:"playerName"`
	PlayerId   uint64 `json:"playerId"`
	GameId     uint64 `json:"gameId"`
}

type ConcurrentDisconnectionsMsg struct {
	DisconnectedCount int    `json:"disconnectedCount"`
	RemainingCount    int    `json:"remainingCount"`
	StabilityStatus   string `json:"stabilityStatus"`
}

type WaitOption struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

type SinglePlayerRemainingMsg struct {
	Message  string       `json:"message"`
	WaitTime int64        `json:"waitTime"` //milliseconds
	Options  []WaitOption `json:"options"`
}
