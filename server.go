package rummilink

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/playrummi/rummilink/conf"
	"github.com/playrummi/rummilink/define"
	"github.com/playrummi/rummilink/iface"
	"github.com/playrummi/rummilink/network"
	"github.com/playrummi/rummilink/room"
	"github.com/rs/zerolog"
)

/*
 * server api face
 */

//face info
type Server struct {
	conf    *ServerConf
	log     zerolog.Logger
	address string //host:port
	net     *network.Server
	manager iface.IManager
	router  *room.Router
	wg      *sync.WaitGroup
	wgVal   int32
}

//construct, step-1
func NewServer(cfg *ServerConf, logger zerolog.Logger) (*Server, error) {
	//self init
	this := &Server{
		conf:    cfg,
		log:     logger,
		address: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		wg:      new(sync.WaitGroup),
	}

	//inter init
	err := this.interInit()
	if err != nil {
		return nil, err
	}
	return this, nil
}

///////////////
//service api
///////////////

//stop
func (f *Server) Stop() {
	if f.net != nil {
		f.net.Quit()
		f.net = nil
	}
	if f.manager != nil {
		f.manager.Close()
	}
	f.syncGroupDone()
}

//start and block, step-3
func (f *Server) Start() {
	if atomic.LoadInt32(&f.wgVal) > 0 {
		return
	}
	f.wg.Add(1)
	atomic.AddInt32(&f.wgVal, 1)
	f.net.Start()
	f.log.Info().Str("address", f.address).Msg("server listening")
	f.wg.Wait()
}

//create room, step-2
func (f *Server) CreateRoom(cfg *conf.RoomConf, listener room.Listener) (iface.IRoom, error) {
	//basic check
	if cfg == nil {
		return nil, define.ErrorOfInvalidPara
	}
	if cfg.RoomId <= 0 {
		return nil, define.ErrorOfInvalidPara
	}

	//try check room
	roomObj := f.GetRoom(cfg.RoomId)
	if roomObj != nil {
		return roomObj, nil
	}

	//init new room
	roomObj = room.NewRoom(cfg, listener, f.log)

	//add into manager
	f.manager.AddRoom(roomObj)
	return roomObj, nil
}

//get room
func (f *Server) GetRoom(roomId uint64) iface.IRoom {
	//basic check
	if roomId <= 0 {
		return nil
	}
	return f.manager.GetRoom(roomId)
}

//close room
func (f *Server) CloseRoom(roomId uint64) bool {
	//stop-then-delete lives in the manager
	return f.manager.CloseRoom(roomId)
}

///////////////
//private func
///////////////

//sync group done
func (f *Server) syncGroupDone() {
	if atomic.LoadInt32(&f.wgVal) > 0 {
		atomic.AddInt32(&f.wgVal, -1)
		f.wg.Done()
	}
}

//signal catch
func (f *Server) signalCatch() {
	//init signal
	sig := make(chan os.Signal, 1)
	signal.Notify(
		sig,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGHUP,
	)

	//watch signal
	go func() {
		s, ok := <-sig
		if ok {
			f.log.Info().Str("signal", s.String()).Msg("signal caught, stopping")
			f.syncGroupDone()
		}
	}()
}

//inter init
func (f *Server) interInit() error {
	//signal catch
	f.signalCatch()

	//init room manager and router
	f.manager = room.NewManager()
	f.router = room.NewRouter(f.manager, f.log)

	//init listen server
	net, err := network.NewServer(f.address, f.conf.Password, f.conf.Salt, f.log)
	if err != nil {
		return err
	}
	net.SetCallback(f.router)
	f.net = net

	//set wait group value
	atomic.StoreInt32(&f.wgVal, 0)
	return nil
}
