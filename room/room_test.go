package room

import (
	"encoding/json"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/playrummi/rummilink/conf"
	"github.com/playrummi/rummilink/define"
	"github.com/playrummi/rummilink/iface"
	"github.com/playrummi/rummilink/protocol"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//////////////////
//test doubles
//////////////////

//client end of a conn, records what the room writes to it
type fakeConn struct {
	mu      sync.Mutex
	cb      iface.IConnCallBack
	closed  bool
	extra   interface{}
	packets []iface.IPacket
	once    sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{}
}

func (f *fakeConn) Close() {
	f.once.Do(func() {
		f.mu.Lock()
		f.closed = true
		cb := f.cb
		f.mu.Unlock()
		if cb != nil {
			cb.OnClose(f)
		}
	})
}

func (f *fakeConn) IsClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeConn) Do() {}

func (f *fakeConn) AsyncWritePacket(packet iface.IPacket, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return define.ErrConnClosing
	}
	f.packets = append(f.packets, packet)
	return nil
}

func (f *fakeConn) GetActiveTime() int64 { return 0 }
func (f *fakeConn) GetRawConn() net.Conn { return nil }

func (f *fakeConn) GetExtraData() interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.extra
}

func (f *fakeConn) SetExtraData(data interface{}) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.extra = data
	return true
}

func (f *fakeConn) SetCallBack(cb iface.IConnCallBack) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cb = cb
}

func (f *fakeConn) writesById(id uint8) []iface.IPacket {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []iface.IPacket
	for _, p := range f.packets {
		if p.GetMessageId() == id {
			out = append(out, p)
		}
	}
	return out
}

func (f *fakeConn) hasWrite(id uint8) bool {
	return len(f.writesById(id)) > 0
}

//listener that records game layer callbacks
type roomRec struct {
	mu          sync.Mutex
	joins       []uint64
	leaves      []uint64
	actions     []string
	waitOptions []string
	overs       int
}

func (r *roomRec) OnJoin(_, playerId uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.joins = append(r.joins, playerId)
}

func (r *roomRec) OnLeave(_, playerId uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaves = append(r.leaves, playerId)
}

func (r *roomRec) OnAction(_, _ uint64, name string, _ json.RawMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, name)
}

func (r *roomRec) OnWaitOption(_, _ uint64, option string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.waitOptions = append(r.waitOptions, option)
}

func (r *roomRec) OnRoomOver(_ uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overs++
}

//////////////////
//harness
//////////////////

const testSecret = "roomkey"

type roomHarness struct {
	manager *Manager
	router  *Router
	room    *Room
	rec     *roomRec
}

func newRoomHarness(t *testing.T, players ...uint64) *roomHarness {
	t.Helper()
	h := &roomHarness{
		manager: NewManager(),
		rec:     &roomRec{},
	}
	h.router = NewRouter(h.manager, zerolog.Nop())
	h.room = NewRoom(&conf.RoomConf{
		RoomId:     1,
		Players:    players,
		SecretKey:  testSecret,
		WaitWindow: time.Minute,
	}, h.rec, zerolog.Nop())
	h.manager.AddRoom(h.room)
	t.Cleanup(h.room.Stop)
	return h
}

//connect a player through the router, the way the accept loop would
func (h *roomHarness) connect(t *testing.T, playerId uint64, name string) *fakeConn {
	t.Helper()
	conn := newFakeConn()
	conn.SetCallBack(h.router)
	ok := h.router.OnMessage(conn, protocol.NewPacketWithPara(define.MsgConnect, &protocol.ConnectMsg{
		GameId:   1,
		PlayerId: playerId,
		Name:     name,
		Token:    testSecret,
	}))
	require.True(t, ok)
	require.Eventually(t, func() bool {
		return conn.hasWrite(define.MsgConnectAck)
	}, 2*time.Second, 2*time.Millisecond)
	return conn
}

//////////////////
//tests
//////////////////

func TestRouterAdmitsValidConnect(t *testing.T) {
	h := newRoomHarness(t, 1, 2)

	conn := h.connect(t, 1, "alice")

	acks := conn.writesById(define.MsgConnectAck)
	require.Len(t, acks, 1)
	var ack protocol.ConnectAckMsg
	require.NoError(t, acks[0].DecodeJson(&ack))
	assert.True(t, ack.Ok)
	assert.Equal(t, uint64(1), ack.PlayerId)

	//routing keys are pinned on the conn
	tag, ok := conn.GetExtraData().(connTag)
	require.True(t, ok)
	assert.Equal(t, uint64(1), tag.playerId)
	assert.Equal(t, uint64(1), tag.roomId)
}

func TestRouterRejectsBadToken(t *testing.T) {
	h := newRoomHarness(t, 1, 2)

	conn := newFakeConn()
	ok := h.router.OnMessage(conn, protocol.NewPacketWithPara(define.MsgConnect, &protocol.ConnectMsg{
		GameId:   1,
		PlayerId: 1,
		Token:    "wrong",
	}))
	assert.False(t, ok)

	fails := conn.writesById(define.MsgReconnectionFailed)
	require.Len(t, fails, 1)
	var msg protocol.ReconnectionFailedMsg
	require.NoError(t, fails[0].DecodeJson(&msg))
	assert.Equal(t, "bad_token", msg.Reason)
	assert.Len(t, msg.Fallbacks, 4)
}

func TestRouterRejectsUnknownRoomAndPlayer(t *testing.T) {
	h := newRoomHarness(t, 1, 2)

	conn := newFakeConn()
	ok := h.router.OnMessage(conn, protocol.NewPacketWithPara(define.MsgConnect, &protocol.ConnectMsg{
		GameId:   99,
		PlayerId: 1,
		Token:    testSecret,
	}))
	assert.False(t, ok)
	var msg protocol.ReconnectionFailedMsg
	fails := conn.writesById(define.MsgReconnectionFailed)
	require.Len(t, fails, 1)
	require.NoError(t, fails[0].DecodeJson(&msg))
	assert.Equal(t, "no_room", msg.Reason)

	conn = newFakeConn()
	ok = h.router.OnMessage(conn, protocol.NewPacketWithPara(define.MsgConnect, &protocol.ConnectMsg{
		GameId:   1,
		PlayerId: 42,
		Token:    testSecret,
	}))
	assert.False(t, ok)
	fails = conn.writesById(define.MsgReconnectionFailed)
	require.Len(t, fails, 1)
	require.NoError(t, fails[0].DecodeJson(&msg))
	assert.Equal(t, "no_player", msg.Reason)
}

func TestRoomReconnectionAdoptsFreshHint(t *testing.T) {
	h := newRoomHarness(t, 1, 2)
	peer := h.connect(t, 1, "alice")

	//player 2 rejoins with a preserved-state hint, the room holds
	//no state of its own yet so the hint fills the gap
	conn := newFakeConn()
	conn.SetCallBack(h.router)
	ok := h.router.OnMessage(conn, protocol.NewPacketWithPara(define.MsgRequestReconnection, &protocol.RequestReconnectionMsg{
		GameId:         1,
		PlayerId:       2,
		Name:           "bob",
		Token:          testSecret,
		PreservedState: json.RawMessage(`{"board":"hint"}`),
		PreservedAt:    time.Now().UnixMilli(),
	}))
	require.True(t, ok)

	require.Eventually(t, func() bool {
		return conn.hasWrite(define.MsgGameStateRestored)
	}, 2*time.Second, 2*time.Millisecond)

	oks := conn.writesById(define.MsgReconnectionSuccessful)
	require.Len(t, oks, 1)
	var success protocol.ReconnectionSuccessfulMsg
	require.NoError(t, oks[0].DecodeJson(&success))
	assert.JSONEq(t, `{"board":"hint"}`, string(success.GameState))
	assert.Equal(t, uint(1), success.ConnectionInfo.Attempts)

	restored := conn.writesById(define.MsgGameStateRestored)
	require.Len(t, restored, 1)
	var msg protocol.GameStateRestoredMsg
	require.NoError(t, restored[0].DecodeJson(&msg))
	assert.JSONEq(t, `{"board":"hint"}`, string(msg.GameState))

	//peers hear about the return
	require.Eventually(t, func() bool {
		return peer.hasWrite(define.MsgPlayerReconnected)
	}, 2*time.Second, 2*time.Millisecond)
}

func TestRoomReconnectionPrefersAuthoritativeState(t *testing.T) {
	h := newRoomHarness(t, 1, 2)

	//authoritative state already present, hints never override it
	h.room.UpdateGameState([]byte(`{"board":"authoritative"}`))
	time.Sleep(50 * time.Millisecond)

	conn := newFakeConn()
	conn.SetCallBack(h.router)
	ok := h.router.OnMessage(conn, protocol.NewPacketWithPara(define.MsgRequestReconnection, &protocol.RequestReconnectionMsg{
		GameId:         1,
		PlayerId:       1,
		Name:           "alice",
		Token:          testSecret,
		PreservedState: json.RawMessage(`{"board":"hint"}`),
		PreservedAt:    time.Now().UnixMilli(),
	}))
	require.True(t, ok)

	require.Eventually(t, func() bool {
		return conn.hasWrite(define.MsgReconnectionSuccessful)
	}, 2*time.Second, 2*time.Millisecond)

	oks := conn.writesById(define.MsgReconnectionSuccessful)
	var success protocol.ReconnectionSuccessfulMsg
	require.NoError(t, oks[0].DecodeJson(&success))
	assert.JSONEq(t, `{"board":"authoritative"}`, string(success.GameState))
}

func TestRoomDisconnectBroadcastAndWaitWindow(t *testing.T) {
	h := newRoomHarness(t, 1, 2)
	alice := h.connect(t, 1, "alice")
	bob := h.connect(t, 2, "bob")

	//server side sees bob's transport die
	bob.Close()

	require.Eventually(t, func() bool {
		return alice.hasWrite(define.MsgPlayerDisconnected)
	}, 2*time.Second, 2*time.Millisecond)

	var msg protocol.PlayerDisconnectedMsg
	events := alice.writesById(define.MsgPlayerDisconnected)
	require.NoError(t, events[0].DecodeJson(&msg))
	assert.Equal(t, uint64(2), msg.PlayerId)
	assert.Equal(t, "bob", msg.PlayerName)

	//the next sweep notices alice is the lone survivor
	require.Eventually(t, func() bool {
		return alice.hasWrite(define.MsgSinglePlayerRemaining)
	}, 3*time.Second, 5*time.Millisecond)

	var single protocol.SinglePlayerRemainingMsg
	singles := alice.writesById(define.MsgSinglePlayerRemaining)
	require.NoError(t, singles[0].DecodeJson(&single))
	assert.Equal(t, time.Minute.Milliseconds(), single.WaitTime)
	require.Len(t, single.Options, 3)

	h.rec.mu.Lock()
	leaves := append([]uint64(nil), h.rec.leaves...)
	h.rec.mu.Unlock()
	assert.Equal(t, []uint64{2}, leaves)
}

func TestRoomFirstJoinNotAnnouncedAsReturn(t *testing.T) {
	h := newRoomHarness(t, 1, 2)
	alice := h.connect(t, 1, "alice")

	//a first-time join is silent for the peers
	h.connect(t, 2, "bob")
	time.Sleep(50 * time.Millisecond)
	assert.False(t, alice.hasWrite(define.MsgPlayerReconnected))
}

func TestRoomPlainRejoinAnnouncedAsReturn(t *testing.T) {
	h := newRoomHarness(t, 1, 2)
	alice := h.connect(t, 1, "alice")
	bob := h.connect(t, 2, "bob")

	bob.Close()
	require.Eventually(t, func() bool {
		return alice.hasWrite(define.MsgPlayerDisconnected)
	}, 2*time.Second, 2*time.Millisecond)

	//a plain connect after a drop still reads as a comeback
	h.connect(t, 2, "bob")
	require.Eventually(t, func() bool {
		return alice.hasWrite(define.MsgPlayerReconnected)
	}, 2*time.Second, 2*time.Millisecond)

	var msg protocol.PlayerReconnectedMsg
	events := alice.writesById(define.MsgPlayerReconnected)
	require.NoError(t, events[0].DecodeJson(&msg))
	assert.Equal(t, uint64(2), msg.PlayerId)
	assert.Equal(t, "bob", msg.PlayerName)
}

func TestRoomConcurrentDropsAggregated(t *testing.T) {
	h := newRoomHarness(t, 1, 2, 3)
	alice := h.connect(t, 1, "alice")
	bob := h.connect(t, 2, "bob")
	carol := h.connect(t, 3, "carol")

	//two transports die within the same sweep
	bob.Close()
	carol.Close()

	require.Eventually(t, func() bool {
		return alice.hasWrite(define.MsgConcurrentDisconnections)
	}, 3*time.Second, 5*time.Millisecond)

	var msg protocol.ConcurrentDisconnectionsMsg
	events := alice.writesById(define.MsgConcurrentDisconnections)
	require.NoError(t, events[0].DecodeJson(&msg))
	assert.Equal(t, 2, msg.DisconnectedCount)
	assert.Equal(t, 1, msg.RemainingCount)
	assert.Equal(t, "degraded", msg.StabilityStatus)
}

func TestRoomWaitOptionRoutedToGameLayer(t *testing.T) {
	h := newRoomHarness(t, 1, 2)
	alice := h.connect(t, 1, "alice")

	ok := h.router.OnMessage(alice, protocol.NewPacketWithPara(define.MsgAction, &protocol.ActionMsg{
		ActionName: "wait_option:" + define.OptionAddBots,
	}))
	require.True(t, ok)

	require.Eventually(t, func() bool {
		h.rec.mu.Lock()
		defer h.rec.mu.Unlock()
		return len(h.rec.waitOptions) == 1
	}, 2*time.Second, 2*time.Millisecond)

	h.rec.mu.Lock()
	defer h.rec.mu.Unlock()
	assert.Equal(t, []string{define.OptionAddBots}, h.rec.waitOptions)
}

func TestRoomActionRoutedToGameLayer(t *testing.T) {
	h := newRoomHarness(t, 1, 2)
	alice := h.connect(t, 1, "alice")

	ok := h.router.OnMessage(alice, protocol.NewPacketWithPara(define.MsgAction, &protocol.ActionMsg{
		ActionName: "place_tile",
		Payload:    json.RawMessage(`{"tile":4}`),
	}))
	require.True(t, ok)

	require.Eventually(t, func() bool {
		h.rec.mu.Lock()
		defer h.rec.mu.Unlock()
		return len(h.rec.actions) == 1
	}, 2*time.Second, 2*time.Millisecond)

	h.rec.mu.Lock()
	defer h.rec.mu.Unlock()
	assert.Equal(t, []string{"place_tile"}, h.rec.actions)
}

func TestRoomPingAnswered(t *testing.T) {
	h := newRoomHarness(t, 1, 2)
	alice := h.connect(t, 1, "alice")

	ok := h.router.OnMessage(alice, protocol.NewPacketWithPara(define.MsgPing, &protocol.PingMsg{
		Timestamp: 777,
	}))
	require.True(t, ok)

	require.Eventually(t, func() bool {
		return alice.hasWrite(define.MsgPong)
	}, 2*time.Second, 2*time.Millisecond)

	var pong protocol.PongMsg
	pongs := alice.writesById(define.MsgPong)
	require.NoError(t, pongs[0].DecodeJson(&pong))
	assert.Equal(t, int64(777), pong.Timestamp)
}

func TestStabilityStatus(t *testing.T) {
	assert.Equal(t, "stable", stabilityStatus(0, 4))
	assert.Equal(t, "stable", stabilityStatus(1, 4))
	assert.Equal(t, "degraded", stabilityStatus(2, 4))
	assert.Equal(t, "degraded", stabilityStatus(3, 4))
	assert.Equal(t, "unstable", stabilityStatus(4, 4))
	assert.Equal(t, "stable", stabilityStatus(0, 0))
}

func TestFallbackMenuRestorableFlag(t *testing.T) {
	menu := fallbackMenu(false)
	require.Len(t, menu, 4)
	for _, v := range menu {
		if v.Action == define.StrategyRestoreLocalState {
			assert.False(t, v.Available)
		} else {
			assert.True(t, v.Available)
		}
	}
}

func TestManagerLifecycle(t *testing.T) {
	m := NewManager()
	assert.Nil(t, m.GetRoom(1))

	r := NewRoom(&conf.RoomConf{RoomId: 1, Players: []uint64{1}}, nil, zerolog.Nop())
	defer r.Stop()

	require.True(t, m.AddRoom(r))
	assert.Equal(t, int32(1), m.GetRooms())
	assert.Equal(t, r.GetId(), m.GetRoom(1).GetId())

	//re-registering the same id never double counts
	require.True(t, m.AddRoom(r))
	assert.Equal(t, int32(1), m.GetRooms())

	//unknown ids leave the count alone
	assert.False(t, m.CloseRoom(42))
	assert.Equal(t, int32(1), m.GetRooms())

	require.True(t, m.CloseRoom(1))
	assert.Nil(t, m.GetRoom(1))
	assert.Equal(t, int32(0), m.GetRooms())
}

func TestPlayerLifecycle(t *testing.T) {
	p := NewPlayer(5, "eve")
	assert.Equal(t, uint64(5), p.GetId())
	assert.Equal(t, "eve", p.GetName())
	assert.False(t, p.IsOnline())

	p.SetName("eva")
	assert.Equal(t, "eva", p.GetName())

	conn := newFakeConn()
	p.Connect(conn)
	assert.True(t, p.IsOnline())

	p.SendMessage(protocol.NewPacketWithPara(define.MsgPing, nil))
	assert.True(t, conn.hasWrite(define.MsgPing))

	p.MarkOffline()
	assert.False(t, p.IsOnline())

	//offline players are silently skipped
	p.SendMessage(protocol.NewPacketWithPara(define.MsgPong, nil))
}
