package define

import "errors"

/*
 * errors declare
 */

var (
	ErrorOfInvalidPara = errors.New("invalid input parameter")

	//for network
	ErrConnClosing   = errors.New("use of closed network connection")
	ErrWriteBlocking = errors.New("write packet was blocking")
	ErrNoTransport   = errors.New("no usable transport")

	//for session core
	ErrSessionClosed       = errors.New("session is closed")
	ErrNotConnected        = errors.New("session is not connected")
	ErrAttemptsExhausted   = errors.New("reconnection attempts exhausted")
	ErrRestoreRejected     = errors.New("server rejected state restoration")
	ErrNoSnapshot          = errors.New("no preserved snapshot")
	ErrStrategyUnavailable = errors.New("fallback strategy unavailable")
	ErrActionRejected      = errors.New("queued action rejected by server")

	//for room
	ErrNoRoom     = errors.New("no such room")
	ErrRoomClosed = errors.New("room already closed")
	ErrNoPlayer   = errors.New("no such player in room")
	ErrBadToken   = errors.New("room token verify failed")
)
