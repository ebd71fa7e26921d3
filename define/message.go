package define

/*
 * wire message ids
 * one byte on the wire, client and server share the table
 */

//c -> s
const (
	MsgConnect uint8 = iota + 1
	MsgRequestReconnection
	MsgPing
	MsgPong
	MsgAction
	MsgReportConnectionError
	MsgReportReconnectionFailure
)

//s -> c
const (
	MsgConnectAck uint8 = iota + 30
	MsgReconnectionSuccessful
	MsgReconnectionFailed
	MsgReconnectionGuidance
	MsgGameStateRestored
	MsgPlayerDisconnected
	MsgPlayerReconnected
	MsgConcurrentDisconnections
	MsgSinglePlayerRemaining
)
