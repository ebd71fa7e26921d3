package room

import (
	"time"

	"github.com/playrummi/rummilink/iface"
)

/*
 * player face, implement of IPlayer
 */

//face info
type Player struct {
	id                uint64 //player id
	name              string
	isOnline          bool
	lastHeartBeatTime int64
	client            iface.IConn
}

//construct
func NewPlayer(id uint64, name string) *Player {
	//self init
	this := &Player{
		id:   id,
		name: name,
	}
	return this
}

func (f *Player) CleanUp() {
	if f.client != nil {
		f.client.Close()
	}
	f.client = nil
	f.isOnline = false
}

func (f *Player) GetConn() iface.IConn {
	return f.client
}

func (f *Player) GetId() uint64 {
	return f.id
}

func (f *Player) GetName() string {
	return f.name
}

func (f *Player) SetName(name string) {
	f.name = name
}

func (f *Player) Connect(conn iface.IConn) {
	f.client = conn
	f.isOnline = true
	f.lastHeartBeatTime = time.Now().Unix()
}

func (f *Player) IsOnline() bool {
	return f.client != nil && f.isOnline
}

func (f *Player) MarkOffline() {
	f.client = nil
	f.isOnline = false
}

func (f *Player) RefreshHeartbeatTime() {
	f.lastHeartBeatTime = time.Now().Unix()
}

func (f *Player) GetLastHeartbeatTime() int64 {
	return f.lastHeartBeatTime
}

func (f *Player) SendMessage(packet iface.IPacket) {
	if packet == nil || !f.IsOnline() {
		return
	}
	if nil != f.client.AsyncWritePacket(packet, 0) {
		f.client.Close()
	}
}
