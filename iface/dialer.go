package iface

/*
 * interface of transport dialer
 * - a dialer may carry several transports in preferred order
 */

type IDialer interface {
	Dial() (IConn, error)
	Preferred() string
	ToggleOrder() string //swap preferred transport, returns new preferred
	CanToggle() bool
}
