package session

import (
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/playrummi/rummilink/conf"
	"github.com/playrummi/rummilink/define"
	"github.com/playrummi/rummilink/iface"
	"github.com/playrummi/rummilink/metrics"
	"github.com/playrummi/rummilink/protocol"
	"github.com/rs/zerolog"
)

/*
 * session face, the connection state machine
 * - one instance per active game session, passed by reference,
 *   no ambient global state
 * - a single loop goroutine is the only writer of ConnectionState
 *   and the preserved snapshot, all other components are invoked
 *   from inside that loop
 * - inbound server messages dispatch through one table keyed by
 *   message id
 */

//inter macro define
const (
	sessionChanSize  = 256
	writeSendTimeout = time.Millisecond * 100
)

//dial outcome posted back into the loop
type dialResult struct {
	gen  int
	conn iface.IConn
	err  error
}

//face info
type Session struct {
	conf     *conf.SessionConf
	log      zerolog.Logger
	clock    clock.Clock
	dialer   iface.IDialer
	listener Listener
	metrics  *metrics.Collector

	backoff   *Backoff
	scheduler *Scheduler
	preserver *Preserver
	heartbeat *Heartbeat
	queue     *ActionQueue
	presence  *Presence

	sessionId     string
	state         ConnectionState
	stateMirror   int32 //atomic copy for cross-goroutine reads
	conn          iface.IConn
	lastGameState json.RawMessage
	netAvailable  bool

	//loop channels
	reqChan    chan func()
	packetChan chan iface.IPacket
	lossChan   chan iface.IConn
	dialChan   chan dialResult
	closeChan  chan bool
	closeOnce  sync.Once

	//loop-local timer channels, nil while inactive
	retryC   <-chan time.Time
	hbTicker *clock.Ticker
	hbC      <-chan time.Time
	windowC  <-chan time.Time

	dialGen          int
	intentionalClose bool
}

//construct
func NewSession(
	cfg *conf.SessionConf,
	dialer iface.IDialer,
	store iface.IStore,
	listener Listener,
	logger zerolog.Logger,
	clk clock.Clock,
	collector *metrics.Collector,
) *Session {
	//apply defaults
	cfg.SetDefaults()
	if listener == nil {
		listener = NopListener{}
	}
	if clk == nil {
		clk = clock.New()
	}

	//self init
	this := &Session{
		conf:         cfg,
		log:          logger.With().Uint64("game", cfg.GameId).Uint64("player", cfg.PlayerId).Logger(),
		clock:        clk,
		dialer:       dialer,
		listener:     listener,
		metrics:      collector,
		sessionId:    uuid.NewString(),
		state:        StateDisconnected,
		netAvailable: true,
		reqChan:      make(chan func(), sessionChanSize),
		packetChan:   make(chan iface.IPacket, sessionChanSize),
		lossChan:     make(chan iface.IConn, 8),
		dialChan:     make(chan dialResult, 8),
		closeChan:    make(chan bool),
	}

	//inter init
	this.backoff = NewBackoff(cfg.Reconnect, nil)
	this.scheduler = NewScheduler(this.backoff, cfg.Reconnect.MaxAttempts, clk)
	this.preserver = NewPreserver(store, cfg.SnapshotAge, clk)
	this.heartbeat = NewHeartbeat(cfg.Heartbeat.WindowSize)
	this.queue = NewActionQueue()
	this.presence = NewPresence(clk)

	//spawn main process
	go this.runMainProcess()

	return this
}

///////////////
//service api
///////////////

//session id
func (f *Session) GetId() string {
	return f.sessionId
}

//current state, safe from any goroutine
func (f *Session) State() ConnectionState {
	return ConnectionState(atomic.LoadInt32(&f.stateMirror))
}

//begin the initial connect cycle, also the manual retry from failed
func (f *Session) Connect() error {
	return f.call(func() {
		switch f.state {
		case StateDisconnected, StateFailed:
			f.scheduler.Confirm()
			f.transition(StateConnecting, "connect requested")
			f.startDial()
		}
	})
}

//intentional local close, no state preserved, queues cleared
func (f *Session) Close() error {
	return f.call(func() {
		f.intentionalClose = true
		f.stopHeartbeat()
		f.cancelRetry()
		f.presence.CloseWindow()
		f.windowC = nil
		if f.conn != nil {
			f.conn.Close()
			f.conn = nil
		}
		f.queue.Clear()
		f.metrics.SetQueueDepth(0)
		f.preserver.Clear()
		if f.state != StateDisconnected {
			f.transition(StateDisconnected, "closed by local side")
		}
	})
}

//stop the session loop entirely
func (f *Session) Quit() {
	f.closeOnce.Do(func() {
		close(f.closeChan)
	})
}

//send a game action, buffered in order while not connected
func (f *Session) SendAction(name string, payload json.RawMessage) error {
	return f.call(func() {
		action := QueuedAction{
			ActionName: name,
			Payload:    payload,
			EnqueuedAt: f.clock.Now(),
		}
		if f.state == StateConnected && f.conn != nil {
			err := f.writeAction(action)
			if err == nil {
				return
			}
			if !errors.Is(err, define.ErrConnClosing) {
				f.log.Warn().Err(err).Str("action", action.ActionName).Msg("action write failed")
				f.listener.OnActionRejected(action, err)
				return
			}
			//the conn is going down, the drain after the reconnect replays it
		}
		f.queue.Enqueue(action)
		f.metrics.SetQueueDepth(f.queue.Len())
	})
}

//game layer feeds the latest opaque state blob
func (f *Session) UpdateGameState(state json.RawMessage) error {
	return f.call(func() {
		f.lastGameState = state
	})
}

//underlying network connectivity changed, distinct from a failed handshake
func (f *Session) SetNetworkAvailable(available bool) error {
	return f.call(func() {
		f.netAvailable = available
		if !available {
			if f.state == StateOffline {
				return
			}
			//no attempts are scheduled while offline
			f.cancelRetry()
			f.stopHeartbeat()
			if f.state == StateConnected {
				f.preserveNow()
			}
			if f.conn != nil {
				f.conn.Close()
				f.conn = nil
			}
			f.transition(StateOffline, "network unavailable")
			return
		}
		if f.state == StateOffline {
			f.transition(StateConnecting, "network returned")
			f.startDial()
		}
	})
}

//menu of manual recovery strategies for the current context
func (f *Session) Fallbacks() ([]Fallback, error) {
	var menu []Fallback
	err := f.call(func() {
		menu = f.currentMenu()
	})
	return menu, err
}

//execute exactly one strategy, clears any pending automatic attempt
func (f *Session) ExecuteFallback(action string) error {
	var execErr error
	err := f.call(func() {
		execErr = f.executeFallback(action)
	})
	if err != nil {
		return err
	}
	return execErr
}

//pick an option of the open single-player wait window
func (f *Session) ChooseWaitOption(option string) error {
	var execErr error
	err := f.call(func() {
		found := false
		for _, v := range f.presence.WindowOptions() {
			if v == option {
				found = true
				break
			}
		}
		if !found {
			execErr = define.ErrorOfInvalidPara
			return
		}
		f.presence.CloseWindow()
		f.windowC = nil
		if f.state == StateConnected && f.conn != nil {
			execErr = f.writeAction(QueuedAction{
				ActionName: "wait_option:" + option,
				EnqueuedAt: f.clock.Now(),
			})
		}
	})
	if err != nil {
		return err
	}
	return execErr
}

//remaining time of the single-player wait window
func (f *Session) WaitWindowRemaining() (time.Duration, error) {
	var left time.Duration
	err := f.call(func() {
		left = f.presence.WindowRemaining()
	})
	return left, err
}

//peer snapshot with derived stability
func (f *Session) Peers() ([]PeerPresence, Stability, error) {
	var (
		peers []PeerPresence
		st    Stability
	)
	err := f.call(func() {
		peers = f.presence.Peers()
		st = f.presence.Stability()
	})
	return peers, st, err
}

//quality of the link from the heartbeat window
func (f *Session) Quality() (QualityTier, time.Duration, error) {
	var (
		tier QualityTier
		avg  time.Duration
	)
	err := f.call(func() {
		tier = f.heartbeat.Tier()
		avg = f.heartbeat.Average()
	})
	return tier, avg, err
}

//////////////////
//cb for IConn
//////////////////

//cb for connected transport
func (f *Session) OnConnect(conn iface.IConn) bool {
	return true
}

//cb for received packet
func (f *Session) OnMessage(conn iface.IConn, packet iface.IPacket) bool {
	select {
	case f.packetChan <- packet:
		return true
	case <-f.closeChan:
		return false
	}
}

//cb for closed transport
func (f *Session) OnClose(conn iface.IConn) {
	select {
	case f.lossChan <- conn:
	case <-f.closeChan:
	}
}

//////////////
//private func
//////////////

//marshal an api call into the loop and wait for it
func (f *Session) call(fn func()) error {
	done := make(chan struct{})
	select {
	case f.reqChan <- func() {
		fn()
		close(done)
	}:
	case <-f.closeChan:
		return define.ErrSessionClosed
	}
	select {
	case <-done:
		return nil
	case <-f.closeChan:
		return define.ErrSessionClosed
	}
}

//main process, the only writer of session state
func (f *Session) runMainProcess() {
	defer func() {
		f.stopHeartbeat()
		f.cancelRetry()
		f.presence.CloseWindow()
		if f.conn != nil {
			f.conn.Close()
		}
	}()

	//loop
	for {
		select {
		case <-f.closeChan:
			return

		case fn := <-f.reqChan:
			fn()

		case packet := <-f.packetChan:
			f.dispatch(packet)

		case conn := <-f.lossChan:
			f.handleLoss(conn)

		case res := <-f.dialChan:
			f.handleDialResult(res)

		case <-f.retryC:
			f.retryC = nil
			if f.state == StateReconnecting {
				f.startDial()
			}

		case <-f.hbC:
			f.sendPing()

		case <-f.windowC:
			f.windowC = nil
			f.presence.CloseWindow()
			f.log.Info().Msg("single-player wait window elapsed, no local action taken")
			f.listener.OnWaitWindowElapsed()
		}
	}
}

//state transition, observable side effects only at the boundary
func (f *Session) transition(to ConnectionState, reason string) {
	from := f.state
	if from == to {
		return
	}
	if !CanTransition(from, to) {
		f.log.Error().
			Str("from", from.String()).
			Str("to", to.String()).
			Msg("illegal state transition dropped")
		return
	}
	f.state = to
	atomic.StoreInt32(&f.stateMirror, int32(to))
	f.metrics.ObserveTransition(from.String(), to.String())
	f.log.Info().
		Str("from", from.String()).
		Str("to", to.String()).
		Str("reason", reason).
		Msg("connection state changed")
	f.listener.OnStateChanged(from, to, reason)
}

//spawn one dial, result posted back into the loop
func (f *Session) startDial() {
	f.dialGen++
	gen := f.dialGen
	go func() {
		conn, err := f.dialer.Dial()
		select {
		case f.dialChan <- dialResult{gen: gen, conn: conn, err: err}:
		case <-f.closeChan:
			if conn != nil {
				conn.Close()
			}
		}
	}()
}

//dial outcome
func (f *Session) handleDialResult(res dialResult) {
	//stale result after a supersede or cancel
	if res.gen != f.dialGen {
		if res.conn != nil {
			res.conn.Close()
		}
		return
	}
	if f.state != StateConnecting && f.state != StateReconnecting {
		if res.conn != nil {
			res.conn.Close()
		}
		return
	}

	if res.err != nil {
		f.log.Warn().Err(res.err).Int("attempt", f.scheduler.Attempt()).Msg("dial failed")
		f.metrics.IncReconnectFailure()
		if f.state == StateConnecting {
			f.transition(StateReconnecting, "dial failed")
		}
		f.armRetry("dial failed")
		return
	}

	//handshake ok
	wasReconnecting := f.state == StateReconnecting
	f.conn = res.conn
	f.conn.SetCallBack(f)
	f.conn.Do()
	f.intentionalClose = false
	f.transition(StateConnected, "transport connected")

	//restoration is attempted before anything else
	f.sendHello()

	//drain buffered actions strictly in enqueue order
	if f.queue.Len() > 0 {
		f.drainQueue()
	}

	//counter resets only after connected is confirmed
	if wasReconnecting {
		f.scheduler.Confirm()
	}

	//heartbeat runs while connected
	f.startHeartbeat()
}

//transport loss
func (f *Session) handleLoss(conn iface.IConn) {
	//stale conn
	if conn != f.conn || f.conn == nil {
		return
	}
	f.conn = nil

	if f.intentionalClose {
		//already handled by Close
		return
	}
	if f.state != StateConnected {
		return
	}

	//snapshot before anything else
	f.preserveNow()
	f.stopHeartbeat()
	f.transition(StateReconnecting, "connection lost")
	f.armRetry("connection lost")
}

//arm the next scheduled attempt, or give up at the cap
func (f *Session) armRetry(reason string) {
	if !f.netAvailable {
		//park until connectivity returns, SetNetworkAvailable resumes from here
		f.cancelRetry()
		f.transition(StateOffline, "network unavailable")
		return
	}
	attempt, c, err := f.scheduler.Arm(reason)
	if err != nil {
		//exhaustion is fatal for the automatic path,
		//always resolvable via the manual fallback menu
		f.transition(StateFailed, "reconnection attempts exhausted")
		f.listener.OnRestoreFailed("reconnection attempts exhausted", f.currentMenu())
		return
	}
	f.metrics.IncReconnectAttempt()
	f.retryC = c
	f.log.Info().
		Uint("attempt", attempt.AttemptNumber).
		Dur("delay", attempt.Delay).
		Str("reason", attempt.Reason).
		Msg("reconnection attempt armed")
}

//clear any pending automatic attempt
func (f *Session) cancelRetry() {
	f.scheduler.Cancel()
	f.retryC = nil
}

//write the preserved snapshot, both slots
func (f *Session) preserveNow() {
	ps := &PreservedSession{
		SessionId:  f.sessionId,
		GameId:     f.conf.GameId,
		PlayerId:   f.conf.PlayerId,
		PlayerName: f.conf.PlayerName,
		GameState:  f.lastGameState,
		CapturedAt: f.clock.Now(),
	}
	if err := f.preserver.Preserve(ps); err != nil {
		f.log.Warn().Err(err).Msg("preserve snapshot failed")
	}
}

//first message on a fresh transport
//a fresh snapshot turns the hello into a reconnection request
func (f *Session) sendHello() {
	snap, err := f.preserver.Restore()
	if err != nil {
		f.log.Warn().Err(err).Msg("restore snapshot failed")
	}
	if snap != nil {
		msg := &protocol.RequestReconnectionMsg{
			GameId:         f.conf.GameId,
			PlayerId:       f.conf.PlayerId,
			Name:           f.conf.PlayerName,
			Token:          f.conf.Token,
			PreservedState: snap.GameState,
			PreservedAt:    snap.CapturedAt.UnixMilli(),
		}
		f.write(define.MsgRequestReconnection, msg)
		return
	}
	f.write(define.MsgConnect, &protocol.ConnectMsg{
		GameId:   f.conf.GameId,
		PlayerId: f.conf.PlayerId,
		Name:     f.conf.PlayerName,
		Token:    f.conf.Token,
	})
}

//drain the offline queue over the fresh connection
func (f *Session) drainQueue() {
	sent := f.queue.Drain(
		func(action QueuedAction) error {
			return f.writeAction(action)
		},
		func(action QueuedAction, err error) {
			f.log.Warn().
				Err(err).
				Str("action", action.ActionName).
				Msg("queued action rejected")
			f.listener.OnActionRejected(action, err)
		},
	)
	f.metrics.SetQueueDepth(0)
	f.log.Info().Int("sent", sent).Msg("offline queue drained")
}

//send one action message
func (f *Session) writeAction(action QueuedAction) error {
	return f.write(define.MsgAction, &protocol.ActionMsg{
		ActionName: action.ActionName,
		Payload:    action.Payload,
		EnqueuedAt: action.EnqueuedAt.UnixMilli(),
	})
}

//write a typed message to the transport
func (f *Session) write(id uint8, msg interface{}) error {
	if f.conn == nil {
		return define.ErrNotConnected
	}
	packet := protocol.NewPacketWithPara(id, msg)
	if packet == nil {
		return define.ErrorOfInvalidPara
	}
	return f.conn.AsyncWritePacket(packet, writeSendTimeout)
}

//////////////////
//heartbeat
//////////////////

func (f *Session) startHeartbeat() {
	f.stopHeartbeat()
	f.hbTicker = f.clock.Ticker(f.conf.Heartbeat.Interval)
	f.hbC = f.hbTicker.C
}

func (f *Session) stopHeartbeat() {
	if f.hbTicker != nil {
		f.hbTicker.Stop()
		f.hbTicker = nil
	}
	f.hbC = nil
	f.heartbeat.Reset()
}

func (f *Session) sendPing() {
	if f.state != StateConnected {
		return
	}
	f.write(define.MsgPing, &protocol.PingMsg{
		Timestamp: f.clock.Now().UnixMilli(),
	})
}

//////////////////
//message dispatch
//////////////////

//one handler per message id, the table is the audit surface
var handlers = map[uint8]func(*Session, iface.IPacket){
	define.MsgConnectAck:               (*Session).handleConnectAck,
	define.MsgReconnectionSuccessful:   (*Session).handleReconnectionSuccessful,
	define.MsgReconnectionFailed:       (*Session).handleReconnectionFailed,
	define.MsgReconnectionGuidance:     (*Session).handleGuidance,
	define.MsgGameStateRestored:        (*Session).handleGameStateRestored,
	define.MsgPing:                     (*Session).handleServerPing,
	define.MsgPong:                     (*Session).handlePong,
	define.MsgPlayerDisconnected:       (*Session).handlePlayerDisconnected,
	define.MsgPlayerReconnected:        (*Session).handlePlayerReconnected,
	define.MsgConcurrentDisconnections: (*Session).handleConcurrentDisconnections,
	define.MsgSinglePlayerRemaining:    (*Session).handleSinglePlayerRemaining,
}

func (f *Session) dispatch(packet iface.IPacket) {
	handler, ok := handlers[packet.GetMessageId()]
	if !ok {
		f.log.Debug().Uint8("id", packet.GetMessageId()).Msg("unknown message id")
		return
	}
	handler(f, packet)
}

func (f *Session) handleConnectAck(packet iface.IPacket) {
	var msg protocol.ConnectAckMsg
	if err := packet.DecodeJson(&msg); err != nil {
		f.log.Warn().Err(err).Msg("bad connect ack")
		return
	}
	if !msg.Ok {
		f.log.Warn().Str("reason", msg.Reason).Msg("server declined connect")
		f.write(define.MsgReportConnectionError, &protocol.ReportConnectionErrorMsg{
			Error:     msg.Reason,
			Timestamp: f.clock.Now().UnixMilli(),
		})
	}
}

//server accepted the reconnection, its state is authoritative
func (f *Session) handleReconnectionSuccessful(packet iface.IPacket) {
	var msg protocol.ReconnectionSuccessfulMsg
	if err := packet.DecodeJson(&msg); err != nil {
		f.log.Warn().Err(err).Msg("bad reconnectionSuccessful")
		return
	}
	f.lastGameState = msg.GameState
	f.preserver.Clear()
	f.log.Info().
		Uint("attempts", msg.ConnectionInfo.Attempts).
		Msg("reconnection accepted by server")
}

//restoration rejected, reported once, never silently retried
func (f *Session) handleReconnectionFailed(packet iface.IPacket) {
	var msg protocol.ReconnectionFailedMsg
	if err := packet.DecodeJson(&msg); err != nil {
		f.log.Warn().Err(err).Msg("bad reconnectionFailed")
		return
	}
	menu := f.currentMenu()
	if len(msg.Fallbacks) > 0 {
		//server supplied its own availability view
		menu = menu[:0]
		for _, v := range msg.Fallbacks {
			menu = append(menu, Fallback{
				Action:      v.Action,
				Description: v.Description,
				Available:   v.Available,
			})
		}
	}
	f.write(define.MsgReportReconnectionFailure, &protocol.ReportReconnectionFailureMsg{
		PlayerId:      f.conf.PlayerId,
		AttemptNumber: uint(f.scheduler.Attempt()),
		Error:         msg.Reason,
	})
	f.log.Warn().Str("reason", msg.Reason).Msg("state restoration rejected")
	f.listener.OnRestoreFailed(msg.Reason, menu)
}

func (f *Session) handleGuidance(packet iface.IPacket) {
	var msg protocol.ReconnectionGuidanceMsg
	if err := packet.DecodeJson(&msg); err != nil {
		return
	}
	actions := make([]string, 0, len(msg.Actions))
	for _, v := range msg.Actions {
		actions = append(actions, v.Type)
	}
	f.listener.OnGuidance(msg.Guidance, actions)
}

func (f *Session) handleGameStateRestored(packet iface.IPacket) {
	var msg protocol.GameStateRestoredMsg
	if err := packet.DecodeJson(&msg); err != nil {
		f.log.Warn().Err(err).Msg("bad gameStateRestored")
		return
	}
	f.lastGameState = msg.GameState
	//snapshot served its purpose
	f.preserver.Clear()
	f.listener.OnStateRestored(msg.GameId, msg.GameState, msg.Message)
}

func (f *Session) handleServerPing(packet iface.IPacket) {
	var msg protocol.PingMsg
	if err := packet.DecodeJson(&msg); err != nil {
		return
	}
	f.write(define.MsgPong, &protocol.PongMsg{Timestamp: msg.Timestamp})
}

func (f *Session) handlePong(packet iface.IPacket) {
	var msg protocol.PongMsg
	if err := packet.DecodeJson(&msg); err != nil {
		return
	}
	sentAt := time.UnixMilli(msg.Timestamp)
	rtt := f.clock.Now().Sub(sentAt)
	if rtt < 0 {
		return
	}
	f.heartbeat.Observe(sentAt, rtt)
	f.metrics.ObserveHeartbeatRtt(rtt.Seconds())
	f.listener.OnQuality(f.heartbeat.Tier(), f.heartbeat.Average())
}

func (f *Session) handlePlayerDisconnected(packet iface.IPacket) {
	var msg protocol.PlayerDisconnectedMsg
	if err := packet.DecodeJson(&msg); err != nil {
		return
	}
	if msg.PlayerId == f.conf.PlayerId {
		return
	}
	st := f.presence.MarkDisconnected(msg.PlayerId, msg.PlayerName)
	f.log.Info().
		Uint64("peer", msg.PlayerId).
		Str("reason", msg.Reason).
		Str("stability", st.String()).
		Msg("peer disconnected")
	f.listener.OnPeerChanged(PeerPresence{
		PeerId:        msg.PlayerId,
		PeerName:      msg.PlayerName,
		Status:        PeerDisconnected,
		LastChangedAt: f.clock.Now(),
	}, st)
}

func (f *Session) handlePlayerReconnected(packet iface.IPacket) {
	var msg protocol.PlayerReconnectedMsg
	if err := packet.DecodeJson(&msg); err != nil {
		return
	}
	if msg.PlayerId == f.conf.PlayerId {
		return
	}
	st := f.presence.MarkReconnected(msg.PlayerId, msg.PlayerName)
	f.listener.OnPeerChanged(PeerPresence{
		PeerId:        msg.PlayerId,
		PeerName:      msg.PlayerName,
		Status:        PeerConnected,
		LastChangedAt: f.clock.Now(),
	}, st)
}

//the aggregate report always wins over stale individual events
func (f *Session) handleConcurrentDisconnections(packet iface.IPacket) {
	var msg protocol.ConcurrentDisconnectionsMsg
	if err := packet.DecodeJson(&msg); err != nil {
		return
	}
	st := f.presence.ApplyAggregate(msg.DisconnectedCount, msg.RemainingCount)
	f.log.Info().
		Int("disconnected", msg.DisconnectedCount).
		Int("remaining", msg.RemainingCount).
		Str("stability", st.String()).
		Msg("concurrent disconnections reported")
	f.listener.OnStabilityChanged(st)
}

func (f *Session) handleSinglePlayerRemaining(packet iface.IPacket) {
	var msg protocol.SinglePlayerRemainingMsg
	if err := packet.DecodeJson(&msg); err != nil {
		return
	}
	wait := time.Duration(msg.WaitTime) * time.Millisecond
	options := make([]string, 0, len(msg.Options))
	for _, v := range msg.Options {
		options = append(options, v.Type)
	}
	f.windowC = f.presence.OpenWindow(msg.Message, wait, options)
	f.listener.OnSinglePlayerRemaining(msg.Message, wait, options)
}

//////////////////
//fallback execute
//////////////////

func (f *Session) currentMenu() []Fallback {
	snap, _ := f.preserver.Restore()
	return resolveFallbacks(fallbackContext{
		state:         f.state,
		snapshotKnown: snap != nil,
		canToggle:     f.dialer.CanToggle(),
	})
}

func (f *Session) executeFallback(action string) error {
	fb, ok := pickFallback(f.currentMenu(), action)
	if !ok || !fb.Available {
		return define.ErrStrategyUnavailable
	}

	//a strategy never races a pending automatic attempt
	f.cancelRetry()

	switch action {
	case define.StrategyRefreshConnection:
		f.scheduler.Confirm()
		switch f.state {
		case StateConnected:
			f.preserveNow()
			f.intentionalClose = false
			old := f.conn
			f.conn = nil
			if old != nil {
				old.Close()
			}
			f.transition(StateReconnecting, "refresh requested")
			f.startDial()
		case StateReconnecting:
			f.startDial()
		default:
			f.transition(StateConnecting, "refresh requested")
			f.startDial()
		}
		return nil

	case define.StrategyRestoreLocalState:
		if f.state != StateConnected || f.conn == nil {
			return define.ErrNotConnected
		}
		snap, err := f.preserver.Restore()
		if err != nil {
			return err
		}
		if snap == nil {
			return define.ErrNoSnapshot
		}
		return f.write(define.MsgRequestReconnection, &protocol.RequestReconnectionMsg{
			GameId:         f.conf.GameId,
			PlayerId:       f.conf.PlayerId,
			Name:           f.conf.PlayerName,
			Token:          f.conf.Token,
			PreservedState: snap.GameState,
			PreservedAt:    snap.CapturedAt.UnixMilli(),
		})

	case define.StrategySwitchTransport:
		preferred := f.dialer.ToggleOrder()
		f.log.Info().Str("preferred", preferred).Msg("transport preference toggled")
		return nil

	case define.StrategyCreateNewGame:
		f.preserver.Clear()
		f.queue.Clear()
		f.metrics.SetQueueDepth(0)
		f.lastGameState = nil
		f.scheduler.Confirm()
		switch f.state {
		case StateDisconnected, StateFailed:
			f.transition(StateConnecting, "new game requested")
			f.startDial()
		}
		return nil
	}
	return define.ErrStrategyUnavailable
}
