package protocol

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacketWireRoundtrip(t *testing.T) {
	p := NewPacketWithPara(7, &ActionMsg{
		ActionName: "place_tile",
	})
	require.NotNil(t, p)

	wire := p.Pack()
	got, err := NewProtocol().ReadPacket(bytes.NewReader(wire))
	require.NoError(t, err)

	assert.Equal(t, uint8(7), got.GetMessageId())
	var msg ActionMsg
	require.NoError(t, got.DecodeJson(&msg))
	assert.Equal(t, "place_tile", msg.ActionName)
}

func TestPacketEmptyBody(t *testing.T) {
	//heartbeat style frame, header only
	p := NewPacketWithPara(9, nil)
	require.NotNil(t, p)

	wire := p.Pack()
	require.Len(t, wire, PacketHeadSize)

	got, err := NewProtocol().ReadPacket(bytes.NewReader(wire))
	require.NoError(t, err)
	assert.Equal(t, uint8(9), got.GetMessageId())
	assert.Empty(t, got.GetData())
}

func TestPacketRawBytesPassthrough(t *testing.T) {
	raw := []byte{0x01, 0x02, 0x03}
	p := NewPacketWithPara(3, raw)
	require.NotNil(t, p)
	assert.Equal(t, raw, p.GetData())
}

func TestPacketOversizeRejected(t *testing.T) {
	head := make([]byte, PacketHeadSize)
	binary.BigEndian.PutUint16(head, uint16(PacketMaxSize+1))

	_, err := NewProtocol().ReadPacket(bytes.NewReader(head))
	assert.Error(t, err)
}

func TestPacketTruncatedBody(t *testing.T) {
	p := NewPacketWithPara(5, &PingMsg{Timestamp: 1})
	require.NotNil(t, p)

	wire := p.Pack()
	_, err := NewProtocol().ReadPacket(bytes.NewReader(wire[:len(wire)-2]))
	assert.Error(t, err)
}

func TestPacketTwoFramesInSequence(t *testing.T) {
	first := NewPacketWithPara(1, &PingMsg{Timestamp: 11})
	second := NewPacketWithPara(2, &PongMsg{Timestamp: 22})

	stream := bytes.NewReader(append(first.Pack(), second.Pack()...))
	proto := NewProtocol()

	got, err := proto.ReadPacket(stream)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), got.GetMessageId())

	got, err = proto.ReadPacket(stream)
	require.NoError(t, err)
	assert.Equal(t, uint8(2), got.GetMessageId())
}
