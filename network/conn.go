package network

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/playrummi/rummilink/define"
	"github.com/playrummi/rummilink/iface"
	"github.com/playrummi/rummilink/protocol"
	"github.com/rs/zerolog"
)

/*
 * conn face, implement of IConn
 * - one duplex connect process
 * - read, write loops plus a handle loop feeding the callback
 */

//face info
type Conn struct {
	conn              net.Conn //raw connection, kcp session or tcp
	config            *protocol.Config
	protocol          iface.IProtocol
	callback          iface.IConnCallBack //cb interface for out side
	log               zerolog.Logger
	extraData         interface{}
	activeTime        int64 //unix time of last inbound packet
	closeOnce         sync.Once
	closeFlag         int32
	packetSendChan    chan iface.IPacket
	packetReceiveChan chan iface.IPacket
	closeChan         chan bool
	wg                *sync.WaitGroup
}

//construct
func NewConn(
	raw net.Conn,
	proto iface.IProtocol,
	cfg *protocol.Config,
	logger zerolog.Logger,
) *Conn {
	if cfg == nil {
		cfg = protocol.NewDefaultConfig()
	}

	//self init
	this := &Conn{
		conn:              raw,
		config:            cfg,
		protocol:          proto,
		log:               logger,
		packetSendChan:    make(chan iface.IPacket, cfg.GetPacketSendChanLimit()),
		packetReceiveChan: make(chan iface.IPacket, cfg.GetPacketReceiveChanLimit()),
		closeChan:         make(chan bool),
		wg:                new(sync.WaitGroup),
	}
	return this
}

//close
func (f *Conn) Close() {
	f.closeOnce.Do(func() {
		atomic.StoreInt32(&f.closeFlag, 1)
		close(f.closeChan)
		f.conn.Close()
		if f.callback != nil {
			f.callback.OnClose(f)
		}
	})
}

//check is closed
func (f *Conn) IsClosed() bool {
	return atomic.LoadInt32(&f.closeFlag) == 1
}

//do it
func (f *Conn) Do() {
	if f.callback != nil {
		f.callback.OnConnect(f)
	}

	//spawn three process
	f.asyncDo(f.handleLoop, f.wg)
	f.asyncDo(f.readLoop, f.wg)
	f.asyncDo(f.writeLoop, f.wg)
}

//get unix time of last inbound packet
func (f *Conn) GetActiveTime() int64 {
	return atomic.LoadInt64(&f.activeTime)
}

//get extra data
func (f *Conn) GetExtraData() interface{} {
	return f.extraData
}

//set extra data
func (f *Conn) SetExtraData(data interface{}) bool {
	if data == nil {
		return false
	}
	f.extraData = data
	return true
}

//get raw connect
func (f *Conn) GetRawConn() net.Conn {
	return f.conn
}

//set call back
func (f *Conn) SetCallBack(cb iface.IConnCallBack) {
	f.callback = cb
}

//async send packet
func (f *Conn) AsyncWritePacket(
	packet iface.IPacket,
	timeout time.Duration,
) error {
	//basic check
	if packet == nil || f.IsClosed() {
		return define.ErrConnClosing
	}

	defer func() {
		recover()
	}()

	if timeout == 0 {
		select {
		case f.packetSendChan <- packet:
			return nil
		default:
			return define.ErrWriteBlocking
		}
	}

	select {
	case f.packetSendChan <- packet:
		return nil
	case <-f.closeChan:
		return define.ErrConnClosing
	case <-time.After(timeout):
		return define.ErrWriteBlocking
	}
}

///////////////
//private func
///////////////

//write loop
func (f *Conn) writeLoop() {
	defer func() {
		recover()
		f.Close()
	}()

	//loop
	for {
		select {
		case <-f.closeChan:
			return
		case p, ok := <-f.packetSendChan:
			if ok {
				if f.IsClosed() {
					return
				}
				if timeout := f.config.GetConnWriteTimeout(); timeout > 0 {
					f.conn.SetWriteDeadline(time.Now().Add(timeout))
				}
				_, err := f.conn.Write(p.Pack())
				if err != nil {
					f.log.Debug().Err(err).Msg("conn write failed")
					return
				}
			}
		}
	}
}

//read loop
func (f *Conn) readLoop() {
	defer func() {
		recover()
		f.Close()
	}()

	//loop
	for {
		if f.IsClosed() {
			return
		}
		if timeout := f.config.GetConnReadTimeout(); timeout > 0 {
			f.conn.SetReadDeadline(time.Now().Add(timeout))
		}
		//read packet
		packet, err := f.protocol.ReadPacket(f.conn)
		if err != nil {
			f.log.Debug().Err(err).Msg("conn read failed")
			return
		}
		atomic.StoreInt64(&f.activeTime, time.Now().Unix())

		//send to receive chan
		select {
		case f.packetReceiveChan <- packet:
		case <-f.closeChan:
			return
		}
	}
}

//handle loop
func (f *Conn) handleLoop() {
	defer func() {
		recover()
		f.Close()
	}()

	//loop
	for {
		select {
		case <-f.closeChan:
			return
		case p, ok := <-f.packetReceiveChan:
			if ok {
				if f.IsClosed() {
					return
				}
				//callback
				if f.callback != nil {
					f.callback.OnMessage(f, p)
				}
			}
		}
	}
}

func (f *Conn) asyncDo(fun func(), wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		fun()
		wg.Done()
	}()
}
