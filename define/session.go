package define

import "time"

/*
 * session tunable defaults
 */

//reconnect backoff
const (
	BackoffBase       = time.Second
	BackoffMultiplier = 2.0
	BackoffMax        = 30 * time.Second
	BackoffJitter     = 0.1
	MaxAttempts       = 10
)

//heartbeat
const (
	HeartbeatInterval   = 30 * time.Second
	HeartbeatWindowSize = 10
)

//quality tier boundaries, rolling average rtt
const (
	RttExcellent = 100 * time.Millisecond
	RttFair      = 500 * time.Millisecond
)

//preserved snapshot
const (
	SnapshotMaxAge = 10 * time.Minute
)

//room
const (
	RoomSweepInterval = time.Second
	InOutChanSize     = 1024
	MessageChanSize   = 2048
)

//fallback strategy names
const (
	StrategyRefreshConnection = "refresh_connection"
	StrategyRestoreLocalState = "restore_local_state"
	StrategySwitchTransport   = "switch_transport"
	StrategyCreateNewGame     = "create_new_game"
)

//single-player wait options
const (
	OptionWait    = "wait"
	OptionAddBots = "add_bots"
	OptionEndGame = "end_game"
)

//transport kinds
const (
	TransportKcp = "kcp"
	TransportTcp = "tcp"
)
