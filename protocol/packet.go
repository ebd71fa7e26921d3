package protocol

import (
	"encoding/binary"
	"encoding/json"
	"errors"

	"github.com/golang/protobuf/proto"
)

/*
 * packet data face, implement of IPacket
 */

/*
wire frame, both directions
|--totalDataLen(uint16)--|--msgIDLen(uint8)--|--------------data--------------|
|-------------2----------|---------1---------|---------(totalDataLen)---------|
*/

//inter macro define
const (
	DataLenSize    = 2
	MessageIdSize  = 1
	PacketHeadSize = DataLenSize + MessageIdSize
	PacketMaxSize  = 4096 //4KB
)

//data info
type Packet struct {
	id   uint8 //message id
	data []byte
}

//construct
func NewPacket() *Packet {
	//self init
	this := &Packet{}
	return this
}

func NewPacketWithPara(id uint8, data interface{}) *Packet {
	//self init
	p := &Packet{
		id: id,
	}

	//process data
	switch v := data.(type) {
	case []byte:
		p.data = v
	case proto.Message:
		orgData, err := proto.Marshal(v)
		if err != nil {
			return nil
		}
		p.data = orgData
	case nil:
		//do nothing
	default:
		//json encode for typed messages
		orgData, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		p.data = orgData
	}

	return p
}

func (f *Packet) GetMessageId() uint8 {
	return f.id
}

func (f *Packet) GetData() []byte {
	return f.data
}

//decode json payload into the passed struct
func (f *Packet) DecodeJson(v interface{}) error {
	if f.data == nil {
		return errors.New("packet has no data")
	}
	return json.Unmarshal(f.data, v)
}

//pack data into wire format
func (f *Packet) Pack() []byte {
	dataLen := uint16(len(f.data))

	//init data buff
	buff := make([]byte, 0, PacketHeadSize+int(dataLen))
	head := make([]byte, DataLenSize)

	//pack header
	binary.BigEndian.PutUint16(head, dataLen)
	buff = append(buff, head...)
	buff = append(buff, f.id)

	//pack body
	buff = append(buff, f.data...)
	return buff
}

//unpack header, returns body length
func (f *Packet) UnPackHead(head []byte) (uint16, error) {
	//basic check
	if len(head) < PacketHeadSize {
		return 0, errors.New("packet head too short")
	}

	dataLen := binary.BigEndian.Uint16(head[0:DataLenSize])
	if int(dataLen) > PacketMaxSize {
		return 0, errors.New("packet size exceeds limit")
	}

	//set packet message id
	f.id = head[DataLenSize]
	return dataLen, nil
}
