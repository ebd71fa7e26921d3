package session

/*
 * connection state, owned exclusively by the session loop
 */

//state info
type ConnectionState int32

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateFailed
	StateOffline
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateFailed:
		return "failed"
	case StateOffline:
		return "offline"
	}
	return "unknown"
}

//legal transitions, one table so the machine is auditable in one place
var transitions = map[ConnectionState][]ConnectionState{
	StateDisconnected: {StateConnecting, StateOffline},
	StateConnecting:   {StateConnected, StateReconnecting, StateDisconnected, StateFailed, StateOffline},
	StateConnected:    {StateReconnecting, StateDisconnected, StateOffline},
	StateReconnecting: {StateConnected, StateFailed, StateDisconnected, StateOffline},
	StateFailed:       {StateConnecting, StateDisconnected, StateOffline},
	StateOffline:      {StateConnecting, StateDisconnected},
}

//check a transition is legal
func CanTransition(from, to ConnectionState) bool {
	for _, v := range transitions[from] {
		if v == to {
			return true
		}
	}
	return false
}
