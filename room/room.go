package room

import (
	"encoding/json"
	"strings"
	"sync/atomic"
	"time"

	"github.com/playrummi/rummilink/conf"
	"github.com/playrummi/rummilink/define"
	"github.com/playrummi/rummilink/iface"
	"github.com/playrummi/rummilink/protocol"
	"github.com/rs/zerolog"
)

/*
 * room face, implement of IRoom
 * - one loop goroutine owns the players map and the authoritative
 *   game state blob, fed by channels
 * - the server is the only party that can observe all peers at once,
 *   so drops seen within one sweep are folded into a single
 *   concurrentDisconnections aggregate
 */

//inter macro define
const (
	DefaultWaitWindow   = time.Minute
	HeartbeatStaleAfter = 2 //missed intervals before a conn is presumed dead
)

//events for the external game layer
type Listener interface {
	OnJoin(roomId, playerId uint64)
	OnLeave(roomId, playerId uint64)
	OnAction(roomId, playerId uint64, name string, payload json.RawMessage)
	OnWaitOption(roomId, playerId uint64, option string)
	OnRoomOver(roomId uint64)
}

//no-op listener
type NopListener struct{}

func (NopListener) OnJoin(_, _ uint64)                                {}
func (NopListener) OnLeave(_, _ uint64)                               {}
func (NopListener) OnAction(_, _ uint64, _ string, _ json.RawMessage) {}
func (NopListener) OnWaitOption(_, _ uint64, _ string)                {}
func (NopListener) OnRoomOver(_ uint64)                               {}

//routing keys the router pins on an admitted conn
type connTag struct {
	playerId uint64
	roomId   uint64
}

//join request routed in by the router
type joinRequest struct {
	conn           iface.IConn
	playerId       uint64
	name           string
	isReconnect    bool
	preservedState json.RawMessage
	preservedAt    int64
}

//packet routed in by the router
type playerPacket struct {
	playerId uint64
	packet   iface.IPacket
}

//face info
type Room struct {
	conf       *conf.RoomConf
	log        zerolog.Logger
	listener   Listener
	closeFlag  int32
	players    map[uint64]iface.IPlayer
	gameState  json.RawMessage //authoritative blob
	startTime  time.Time
	windowOpen bool
	//drops observed since the last sweep
	pendingDrops map[uint64]bool
	//players seen online at least once, a later join is a return
	everOnline map[uint64]bool
	//reconnect attempt counts per player, reported in connectionInfo
	reconnects map[uint64]uint

	joinChan   chan *joinRequest
	outChan    chan iface.IConn
	packetChan chan *playerPacket
	stateChan  chan json.RawMessage
	closeChan  chan bool
}

//construct
func NewRoom(cfg *conf.RoomConf, listener Listener, logger zerolog.Logger) *Room {
	if listener == nil {
		listener = NopListener{}
	}
	if cfg.WaitWindow <= 0 {
		cfg.WaitWindow = DefaultWaitWindow
	}

	//self init
	this := &Room{
		conf:         cfg,
		log:          logger.With().Uint64("room", cfg.RoomId).Logger(),
		listener:     listener,
		players:      make(map[uint64]iface.IPlayer),
		startTime:    time.Now(),
		pendingDrops: make(map[uint64]bool),
		everOnline:   make(map[uint64]bool),
		reconnects:   make(map[uint64]uint),
		joinChan:     make(chan *joinRequest, define.InOutChanSize),
		outChan:      make(chan iface.IConn, define.InOutChanSize),
		packetChan:   make(chan *playerPacket, define.MessageChanSize),
		stateChan:    make(chan json.RawMessage, 8),
		closeChan:    make(chan bool, 1),
	}

	//init players
	for idx, id := range cfg.Players {
		name := ""
		if idx < len(cfg.PlayerNames) {
			name = cfg.PlayerNames[idx]
		}
		this.players[id] = NewPlayer(id, name)
	}

	//spawn main process
	go this.runMainProcess()

	return this
}

func (f *Room) Stop() {
	select {
	case f.closeChan <- true:
	default:
	}
}

func (f *Room) GetId() uint64 {
	return f.conf.RoomId
}

func (f *Room) GetSecretKey() string {
	return f.conf.SecretKey
}

func (f *Room) IsOver() bool {
	return atomic.LoadInt32(&f.closeFlag) != 0
}

func (f *Room) HasPlayer(playerId uint64) bool {
	if playerId <= 0 {
		return false
	}
	for _, id := range f.conf.Players {
		if id == playerId {
			return true
		}
	}
	return false
}

func (f *Room) VerifyToken(token string) bool {
	return token == f.conf.SecretKey
}

//game layer pushes the authoritative state blob
func (f *Room) UpdateGameState(state []byte) {
	select {
	case f.stateChan <- state:
	default:
	}
}

//////////////////
//cb from router
//////////////////

//join or rejoin, already validated by the router
func (f *Room) Join(req *joinRequest) bool {
	select {
	case f.joinChan <- req:
		return true
	default:
		return false
	}
}

//cb for OnConnect
func (f *Room) OnConnect(conn iface.IConn) bool {
	return true
}

//cb for OnMessage, conn carries its routing tag as extra data
func (f *Room) OnMessage(conn iface.IConn, packet iface.IPacket) bool {
	tag, ok := conn.GetExtraData().(connTag)
	if !ok {
		return false
	}
	select {
	case f.packetChan <- &playerPacket{playerId: tag.playerId, packet: packet}:
		return true
	default:
		return false
	}
}

//cb for OnClose
func (f *Room) OnClose(conn iface.IConn) {
	select {
	case f.outChan <- conn:
	default:
	}
}

//////////////
//private func
//////////////

//main process
func (f *Room) runMainProcess() {
	sweep := time.NewTicker(define.RoomSweepInterval)
	hbTicker := time.NewTicker(define.HeartbeatInterval)

	defer func() {
		sweep.Stop()
		hbTicker.Stop()
		atomic.StoreInt32(&f.closeFlag, 1)
		for _, p := range f.players {
			p.CleanUp()
		}
		f.listener.OnRoomOver(f.conf.RoomId)
	}()

	f.log.Info().Int("players", len(f.players)).Msg("room running")

	//loop
	for {
		select {
		case <-f.closeChan:
			return

		case req := <-f.joinChan:
			f.handleJoin(req)

		case pp := <-f.packetChan:
			f.handlePacket(pp)

		case conn := <-f.outChan:
			f.handleClose(conn)

		case state := <-f.stateChan:
			f.gameState = state

		case <-sweep.C:
			f.sweepDrops()
			if f.roomExpired() {
				f.log.Info().Msg("room time limit reached")
				return
			}

		case <-hbTicker.C:
			f.pingPlayers()
			f.dropStalePlayers()
		}
	}
}

//join or reconnect of a validated player
func (f *Room) handleJoin(req *joinRequest) {
	p, ok := f.players[req.playerId]
	if !ok {
		req.conn.Close()
		return
	}

	//the client-supplied name wins over a pre-seeded one
	if req.name != "" {
		p.SetName(req.name)
	}

	//replace a lingering conn
	if old := p.GetConn(); old != nil && old != req.conn {
		old.SetExtraData(connTag{})
		old.Close()
		f.log.Info().Uint64("player", req.playerId).Msg("player conn replaced")
	}

	returning := req.isReconnect || f.everOnline[req.playerId]
	p.Connect(req.conn)
	f.everOnline[req.playerId] = true
	delete(f.pendingDrops, req.playerId)

	if req.isReconnect {
		f.handleReconnect(p, req)
	} else {
		p.SendMessage(protocol.NewPacketWithPara(define.MsgConnectAck, &protocol.ConnectAckMsg{
			GameId:   f.conf.RoomId,
			PlayerId: req.playerId,
			Ok:       true,
		}))
	}

	//a first-time join is not a return, peers only hear about comebacks
	if returning {
		f.broadcastExclude(protocol.NewPacketWithPara(define.MsgPlayerReconnected, &protocol.PlayerReconnectedMsg{
			PlayerId:   p.GetId(),
			PlayerName: p.GetName(),
			GameId:     f.conf.RoomId,
		}), p.GetId())
	}

	//window no longer applies once a second player is online
	if f.windowOpen && f.onlineCount() > 1 {
		f.windowOpen = false
	}

	f.listener.OnJoin(f.conf.RoomId, req.playerId)
}

//reconnection with a preserved-state hint
//the server answer is the source of truth, the hint only fills a
//gap when the room itself holds no state yet
func (f *Room) handleReconnect(p iface.IPlayer, req *joinRequest) {
	f.reconnects[req.playerId]++

	if f.IsOver() {
		p.SendMessage(protocol.NewPacketWithPara(define.MsgReconnectionFailed, &protocol.ReconnectionFailedMsg{
			Reason:    "game_over",
			Message:   "the game has already finished",
			Fallbacks: fallbackMenu(false),
		}))
		return
	}

	//validate the hint age, stale hints are ignored not rejected
	if f.gameState == nil && req.preservedState != nil {
		age := time.Since(time.UnixMilli(req.preservedAt))
		if age <= define.SnapshotMaxAge {
			f.gameState = req.preservedState
			f.log.Info().Uint64("player", req.playerId).Msg("adopted preserved-state hint")
		}
	}

	p.SendMessage(protocol.NewPacketWithPara(define.MsgReconnectionSuccessful, &protocol.ReconnectionSuccessfulMsg{
		GameId:    f.conf.RoomId,
		GameState: f.gameState,
		ConnectionInfo: protocol.ConnectionInfo{
			Attempts:      f.reconnects[req.playerId],
			ReconnectedAt: time.Now().UnixMilli(),
		},
	}))
	p.SendMessage(protocol.NewPacketWithPara(define.MsgGameStateRestored, &protocol.GameStateRestoredMsg{
		GameId:    f.conf.RoomId,
		GameState: f.gameState,
		Message:   "game state restored",
	}))

	f.log.Info().
		Uint64("player", req.playerId).
		Uint("attempts", f.reconnects[req.playerId]).
		Msg("player reconnected")
}

//process one inbound packet
func (f *Room) handlePacket(pp *playerPacket) {
	p, ok := f.players[pp.playerId]
	if !ok {
		return
	}
	p.RefreshHeartbeatTime()

	switch pp.packet.GetMessageId() {
	case define.MsgPing:
		var msg protocol.PingMsg
		if err := pp.packet.DecodeJson(&msg); err != nil {
			return
		}
		p.SendMessage(protocol.NewPacketWithPara(define.MsgPong, &protocol.PongMsg{
			Timestamp: msg.Timestamp,
		}))

	case define.MsgPong:
		//reply to our own probe, activity time already refreshed

	case define.MsgAction:
		var msg protocol.ActionMsg
		if err := pp.packet.DecodeJson(&msg); err != nil {
			return
		}
		if option, ok := strings.CutPrefix(msg.ActionName, "wait_option:"); ok {
			f.windowOpen = false
			f.listener.OnWaitOption(f.conf.RoomId, pp.playerId, option)
			return
		}
		f.listener.OnAction(f.conf.RoomId, pp.playerId, msg.ActionName, msg.Payload)

	case define.MsgReportConnectionError:
		var msg protocol.ReportConnectionErrorMsg
		if err := pp.packet.DecodeJson(&msg); err != nil {
			return
		}
		f.log.Warn().
			Uint64("player", pp.playerId).
			Str("error", msg.Error).
			Msg("client reported connection error")

	case define.MsgReportReconnectionFailure:
		var msg protocol.ReportReconnectionFailureMsg
		if err := pp.packet.DecodeJson(&msg); err != nil {
			return
		}
		f.log.Warn().
			Uint64("player", msg.PlayerId).
			Uint("attempt", msg.AttemptNumber).
			Str("error", msg.Error).
			Msg("client reported reconnection failure")

	default:
		f.log.Debug().
			Uint64("player", pp.playerId).
			Uint8("id", pp.packet.GetMessageId()).
			Msg("unhandled message id")
	}
}

//one conn dropped
func (f *Room) handleClose(conn iface.IConn) {
	tag, ok := conn.GetExtraData().(connTag)
	if !ok || tag.playerId == 0 {
		return
	}
	playerId := tag.playerId
	p, ok := f.players[playerId]
	if !ok || p.GetConn() != conn {
		return
	}

	p.MarkOffline()
	f.pendingDrops[playerId] = true
	f.log.Info().Uint64("player", playerId).Msg("player disconnected")

	//individual event goes out right away
	f.broadcastExclude(protocol.NewPacketWithPara(define.MsgPlayerDisconnected, &protocol.PlayerDisconnectedMsg{
		PlayerId:   p.GetId(),
		PlayerName: p.GetName(),
		GameId:     f.conf.RoomId,
		Reason:     "connection lost",
	}), playerId)

	f.listener.OnLeave(f.conf.RoomId, playerId)
}

//fold near-simultaneous drops into one aggregate report
func (f *Room) sweepDrops() {
	dropped := len(f.pendingDrops)
	if dropped >= 2 {
		offline := f.offlineCount()
		online := f.onlineCount()
		f.broadcast(protocol.NewPacketWithPara(define.MsgConcurrentDisconnections, &protocol.ConcurrentDisconnectionsMsg{
			DisconnectedCount: offline,
			RemainingCount:    online,
			StabilityStatus:   stabilityStatus(offline, len(f.players)),
		}))
		f.log.Info().
			Int("disconnected", offline).
			Int("remaining", online).
			Msg("concurrent disconnections broadcast")
	}
	for id := range f.pendingDrops {
		delete(f.pendingDrops, id)
	}

	//a lone survivor gets the bounded wait window
	if !f.windowOpen && len(f.players) > 1 && f.onlineCount() == 1 {
		f.windowOpen = true
		f.broadcast(protocol.NewPacketWithPara(define.MsgSinglePlayerRemaining, &protocol.SinglePlayerRemainingMsg{
			Message:  "all other players lost their connection",
			WaitTime: f.conf.WaitWindow.Milliseconds(),
			Options: []protocol.WaitOption{
				{Type: define.OptionWait, Description: "wait for the other players to return"},
				{Type: define.OptionAddBots, Description: "replace missing players with bots"},
				{Type: define.OptionEndGame, Description: "end the game now"},
			},
		}))
	}
}

//server side probes
func (f *Room) pingPlayers() {
	packet := protocol.NewPacketWithPara(define.MsgPing, &protocol.PingMsg{
		Timestamp: time.Now().UnixMilli(),
	})
	f.broadcast(packet)
}

//close conns with no traffic for several intervals, the close
//cascades into the normal disconnect path
func (f *Room) dropStalePlayers() {
	deadline := time.Now().Unix() - int64(define.HeartbeatInterval.Seconds())*HeartbeatStaleAfter
	for _, p := range f.players {
		if !p.IsOnline() {
			continue
		}
		if p.GetLastHeartbeatTime() < deadline {
			f.log.Warn().Uint64("player", p.GetId()).Msg("player heartbeat stale, closing conn")
			p.GetConn().Close()
		}
	}
}

func (f *Room) roomExpired() bool {
	if f.conf.TimeLimit <= 0 {
		return false
	}
	return time.Since(f.startTime) > f.conf.TimeLimit
}

func (f *Room) onlineCount() int {
	count := 0
	for _, p := range f.players {
		if p.IsOnline() {
			count++
		}
	}
	return count
}

func (f *Room) offlineCount() int {
	return len(f.players) - f.onlineCount()
}

func (f *Room) broadcast(packet iface.IPacket) {
	if packet == nil {
		return
	}
	for _, p := range f.players {
		p.SendMessage(packet)
	}
}

func (f *Room) broadcastExclude(packet iface.IPacket, playerId uint64) {
	if packet == nil {
		return
	}
	for _, p := range f.players {
		if p.GetId() == playerId {
			continue
		}
		p.SendMessage(packet)
	}
}

//derived stability the aggregate report carries
func stabilityStatus(disconnected, total int) string {
	switch {
	case total > 0 && disconnected == total:
		return "unstable"
	case total > 0 && 2*disconnected >= total:
		return "degraded"
	default:
		return "stable"
	}
}

//the manual recovery menu the server offers on rejection
func fallbackMenu(restorable bool) []protocol.FallbackOption {
	return []protocol.FallbackOption{
		{
			Type:        "refresh",
			Description: "force a fresh connect cycle",
			Action:      define.StrategyRefreshConnection,
			Available:   true,
		},
		{
			Type:        "restore",
			Description: "re-attempt restoration from the saved snapshot",
			Action:      define.StrategyRestoreLocalState,
			Available:   restorable,
		},
		{
			Type:        "transport",
			Description: "toggle the preferred transport ordering",
			Action:      define.StrategySwitchTransport,
			Available:   true,
		},
		{
			Type:        "new_game",
			Description: "abandon recovery and start a new game",
			Action:      define.StrategyCreateNewGame,
			Available:   true,
		},
	}
}
