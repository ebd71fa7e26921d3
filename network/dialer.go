package network

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/playrummi/rummilink/define"
	"github.com/playrummi/rummilink/iface"
	"github.com/playrummi/rummilink/protocol"
	"github.com/rs/zerolog"
	"github.com/xtaci/kcp-go"
)

/*
 * dialer face, implement of IDialer
 * - tries transports in preferred order, kcp first by default
 * - toggling the order serves environments where udp is blocked
 */

//inter macro define
const (
	TcpDialTimeout = 5 * time.Second
)

//face info
type Dialer struct {
	address  string //host:port
	protocol iface.IProtocol
	config   *protocol.Config
	block    kcp.BlockCrypt
	log      zerolog.Logger
	order    []string //transport preference
	sync.RWMutex
}

//construct
func NewDialer(
	host string,
	port int,
	password, salt string,
	logger zerolog.Logger,
) (*Dialer, error) {
	//init AES key
	block, err := NewBlockCrypt(password, salt)
	if err != nil {
		return nil, err
	}

	//self init
	this := &Dialer{
		address:  fmt.Sprintf("%v:%v", host, port),
		protocol: protocol.NewProtocol(),
		config:   protocol.NewDefaultConfig(),
		block:    block,
		log:      logger,
		order:    []string{define.TransportKcp, define.TransportTcp},
	}
	return this, nil
}

//dial server, first transport that answers wins
func (f *Dialer) Dial() (iface.IConn, error) {
	f.RLock()
	order := make([]string, len(f.order))
	copy(order, f.order)
	f.RUnlock()

	var lastErr error
	for _, transport := range order {
		raw, err := f.dialTransport(transport)
		if err != nil {
			f.log.Debug().
				Err(err).
				Str("transport", transport).
				Msg("dial failed")
			lastErr = err
			continue
		}
		f.log.Debug().
			Str("transport", transport).
			Str("address", f.address).
			Msg("dial ok")
		return NewConn(raw, f.protocol, f.config, f.log), nil
	}

	if lastErr == nil {
		lastErr = define.ErrNoTransport
	}
	return nil, lastErr
}

//get current preferred transport
func (f *Dialer) Preferred() string {
	f.RLock()
	defer f.RUnlock()
	return f.order[0]
}

//swap transport preference, returns new preferred
func (f *Dialer) ToggleOrder() string {
	f.Lock()
	defer f.Unlock()
	if len(f.order) >= 2 {
		f.order[0], f.order[1] = f.order[1], f.order[0]
	}
	return f.order[0]
}

//more than one transport available
func (f *Dialer) CanToggle() bool {
	f.RLock()
	defer f.RUnlock()
	return len(f.order) >= 2
}

///////////////
//private func
///////////////

//dial one transport kind
func (f *Dialer) dialTransport(transport string) (net.Conn, error) {
	switch transport {
	case define.TransportKcp:
		sess, err := kcp.DialWithOptions(f.address, f.block, 10, 3)
		if err != nil {
			return nil, err
		}
		SetUdpMode(sess)
		return sess, nil
	case define.TransportTcp:
		return net.DialTimeout("tcp", f.address, TcpDialTimeout)
	default:
		return nil, define.ErrNoTransport
	}
}
