package network

import (
	"net"
	"sync"

	"github.com/playrummi/rummilink/define"
	"github.com/playrummi/rummilink/iface"
	"github.com/playrummi/rummilink/protocol"
	"github.com/rs/zerolog"
	"github.com/xtaci/kcp-go"
)

/*
 * listen server face
 * - accepts kcp and tcp transports on the same address
 * - both transports speak the same packet protocol
 */

//face info
type Server struct {
	address     string //like ':10086'
	password    string
	salt        string
	protocol    iface.IProtocol
	config      *protocol.Config
	cb          iface.IConnCallBack
	log         zerolog.Logger
	kcpListener *kcp.Listener
	tcpListener net.Listener
	closeOnce   sync.Once
	closeChan   chan bool
}

//construct
func NewServer(
	address, password, salt string,
	logger zerolog.Logger,
) (*Server, error) {
	//self init
	this := &Server{
		address:   address,
		password:  password,
		salt:      salt,
		protocol:  protocol.NewProtocol(),
		config:    protocol.NewDefaultConfig(),
		log:       logger,
		closeChan: make(chan bool),
	}

	//inter init
	err := this.interInit()
	if err != nil {
		return nil, err
	}
	return this, nil
}

//stop
func (f *Server) Quit() {
	f.closeOnce.Do(func() {
		close(f.closeChan)
		if f.kcpListener != nil {
			f.kcpListener.Close()
		}
		if f.tcpListener != nil {
			f.tcpListener.Close()
		}
	})
}

//set call back for accepted conns
func (f *Server) SetCallback(cb iface.IConnCallBack) error {
	if cb == nil {
		return define.ErrorOfInvalidPara
	}
	f.cb = cb
	return nil
}

//get protocol
func (f *Server) GetProtocol() iface.IProtocol {
	return f.protocol
}

//start accept loops
func (f *Server) Start() {
	go f.runKcpAcceptProcess()
	go f.runTcpAcceptProcess()
}

//////////////////
//private func
//////////////////

//accept loop for kcp transport
func (f *Server) runKcpAcceptProcess() {
	f.log.Info().Str("address", f.address).Msg("kcp listener running")

	//loop
	for {
		sess, err := f.kcpListener.AcceptKCP()
		if err != nil {
			select {
			case <-f.closeChan:
				return
			default:
			}
			f.log.Warn().Err(err).Msg("kcp accept failed")
			continue
		}

		//set udp mode
		SetUdpMode(sess)

		//new conn process
		f.serveConn(sess, define.TransportKcp)
	}
}

//accept loop for tcp fallback transport
func (f *Server) runTcpAcceptProcess() {
	f.log.Info().Str("address", f.address).Msg("tcp listener running")

	//loop
	for {
		conn, err := f.tcpListener.Accept()
		if err != nil {
			select {
			case <-f.closeChan:
				return
			default:
			}
			f.log.Warn().Err(err).Msg("tcp accept failed")
			continue
		}
		f.serveConn(conn, define.TransportTcp)
	}
}

//wrap raw conn and start its loops
func (f *Server) serveConn(raw net.Conn, transport string) {
	conn := NewConn(raw, f.protocol, f.config, f.log)
	if f.cb != nil {
		conn.SetCallBack(f.cb)
	}
	f.log.Debug().
		Str("transport", transport).
		Str("remote", raw.RemoteAddr().String()).
		Msg("accepted conn")
	conn.Do()
}

//inter init
func (f *Server) interInit() error {
	//init AES key
	block, err := NewBlockCrypt(f.password, f.salt)
	if err != nil {
		return err
	}

	//init kcp listener
	f.kcpListener, err = kcp.ListenWithOptions(f.address, block, 10, 3)
	if err != nil {
		return err
	}

	//init tcp listener on same address
	f.tcpListener, err = net.Listen("tcp", f.address)
	if err != nil {
		f.kcpListener.Close()
		return err
	}
	return nil
}
