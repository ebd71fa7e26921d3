package iface

/*
 * interface of server side player
 */

type IPlayer interface {
	CleanUp()
	GetConn() IConn
	GetId() uint64
	GetName() string
	SetName(name string)
	Connect(conn IConn)
	IsOnline() bool
	MarkOffline()
	RefreshHeartbeatTime()
	GetLastHeartbeatTime() int64
	SendMessage(packet IPacket)
}
