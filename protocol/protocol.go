package protocol

import (
	"io"

	"github.com/playrummi/rummilink/iface"
)

/*
 * protocol face, implement of IProtocol
 */

//face info
type Protocol struct {
}

//construct
func NewProtocol() *Protocol {
	//self init
	this := &Protocol{}
	return this
}

//read one packet from the reader
func (f *Protocol) ReadPacket(reader io.Reader) (iface.IPacket, error) {
	//init header
	header := make([]byte, PacketHeadSize)

	//read header
	_, err := io.ReadFull(reader, header)
	if err != nil {
		return nil, err
	}

	//unpack header
	packet := NewPacket()
	dataLen, err := packet.UnPackHead(header)
	if err != nil {
		return nil, err
	}

	//a packet may legally carry no body, heartbeat for example
	if dataLen == 0 {
		return packet, nil
	}

	//read real data
	data := make([]byte, dataLen)
	_, err = io.ReadFull(reader, data)
	if err != nil {
		return nil, err
	}
	packet.data = data

	return packet, nil
}
