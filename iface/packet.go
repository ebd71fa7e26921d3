package iface

/*
 * interface of packet
 */

type IPacket interface {
	GetMessageId() uint8
	GetData() []byte
	Pack() []byte
	DecodeJson(v interface{}) error
}
