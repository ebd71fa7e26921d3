package room

import (
	"sync/atomic"
	"time"

	"github.com/playrummi/rummilink/define"
	"github.com/playrummi/rummilink/iface"
	"github.com/playrummi/rummilink/protocol"
	"github.com/rs/zerolog"
)

/*
 * router face, implement of IConnCallBack
 * - first stop for every accepted conn
 * - connect and reconnection requests are validated here, everything
 *   else routes into the player's room by the conn's extra data
 */

//face info
type Router struct {
	manager   iface.IManager
	log       zerolog.Logger
	totalConn int64
}

//construct
func NewRouter(manager iface.IManager, logger zerolog.Logger) *Router {
	//self init
	this := &Router{
		manager: manager,
		log:     logger,
	}
	return this
}

//cb for connected
func (f *Router) OnConnect(conn iface.IConn) bool {
	atomic.AddInt64(&f.totalConn, 1)
	return true
}

//cb for received packet
func (f *Router) OnMessage(conn iface.IConn, packet iface.IPacket) bool {
	switch packet.GetMessageId() {
	case define.MsgConnect:
		var msg protocol.ConnectMsg
		if err := packet.DecodeJson(&msg); err != nil {
			f.log.Warn().Err(err).Msg("bad connect message")
			return false
		}
		return f.admit(conn, &joinRequest{
			conn:     conn,
			playerId: msg.PlayerId,
			name:     msg.Name,
		}, msg.GameId, msg.Token)

	case define.MsgRequestReconnection:
		var msg protocol.RequestReconnectionMsg
		if err := packet.DecodeJson(&msg); err != nil {
			f.log.Warn().Err(err).Msg("bad reconnection request")
			return false
		}
		return f.admit(conn, &joinRequest{
			conn:           conn,
			playerId:       msg.PlayerId,
			name:           msg.Name,
			isReconnect:    true,
			preservedState: msg.PreservedState,
			preservedAt:    msg.PreservedAt,
		}, msg.GameId, msg.Token)
	}

	//already admitted conns route into their room
	tag, ok := conn.GetExtraData().(connTag)
	if !ok || tag.playerId == 0 {
		return false
	}
	room := f.manager.GetRoom(tag.roomId)
	if room == nil {
		return false
	}
	return room.OnMessage(conn, packet)
}

//cb for closed conn
func (f *Router) OnClose(conn iface.IConn) {
	atomic.AddInt64(&f.totalConn, -1)
	tag, ok := conn.GetExtraData().(connTag)
	if !ok {
		return
	}
	room := f.manager.GetRoom(tag.roomId)
	if room == nil {
		return
	}
	room.OnClose(conn)
}

//total live conns
func (f *Router) TotalConn() int64 {
	return atomic.LoadInt64(&f.totalConn)
}

///////////////
//private func
///////////////

//validate and hand the conn to its room
func (f *Router) admit(
	conn iface.IConn,
	req *joinRequest,
	roomId uint64,
	token string,
) bool {
	reject := func(reason, message string) bool {
		conn.AsyncWritePacket(protocol.NewPacketWithPara(define.MsgReconnectionFailed,
			&protocol.ReconnectionFailedMsg{
				Reason:    reason,
				Message:   message,
				Fallbacks: fallbackMenu(false),
			}), time.Millisecond)
		f.log.Warn().
			Uint64("player", req.playerId).
			Uint64("room", roomId).
			Str("reason", reason).
			Msg("admission rejected")
		return false
	}

	room := f.manager.GetRoom(roomId)
	if room == nil {
		return reject("no_room", "no such game")
	}
	if room.IsOver() {
		return reject("game_over", "the game has already finished")
	}
	if !room.HasPlayer(req.playerId) {
		return reject("no_player", "player is not part of this game")
	}
	if !room.VerifyToken(token) {
		return reject("bad_token", "token verify failed")
	}

	//remember the routing keys on the conn
	conn.SetExtraData(connTag{playerId: req.playerId, roomId: roomId})

	concrete, ok := room.(*Room)
	if !ok {
		return false
	}
	return concrete.Join(req)
}
