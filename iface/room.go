package iface

/*
 * interface of room
 */

type IRoom interface {
	Stop()
	GetId() uint64
	GetSecretKey() string
	IsOver() bool
	HasPlayer(playerId uint64) bool
	VerifyToken(token string) bool
	UpdateGameState(state []byte)
	OnConnect(conn IConn) bool
	OnMessage(conn IConn, packet IPacket) bool
	OnClose(conn IConn)
}

//manager of rooms
type IManager interface {
	Close()
	GetRooms() int32
	CloseRoom(id uint64) bool
	GetRoom(id uint64) IRoom
	AddRoom(room IRoom) bool
}
