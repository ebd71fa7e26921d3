package network

import (
	"crypto/sha1"

	"github.com/xtaci/kcp-go"
	"golang.org/x/crypto/pbkdf2"
)

/*
 * kcp block crypt helper
 * - shared by listener and dialer so both sides derive the same key
 */

//build AES block crypt from password and salt
func NewBlockCrypt(password, salt string) (kcp.BlockCrypt, error) {
	key := pbkdf2.Key(
		[]byte(password),
		[]byte(salt),
		1024,
		32,
		sha1.New,
	)
	return kcp.NewAESBlockCrypt(key)
}

//set tuned udp mode on a kcp session
func SetUdpMode(session *kcp.UDPSession) bool {
	if session == nil {
		return false
	}
	session.SetNoDelay(1, 10, 2, 1)
	session.SetStreamMode(true)
	session.SetWindowSize(4096, 4096)
	session.SetReadBuffer(4 * 1024 * 1024)
	session.SetWriteBuffer(4 * 1024 * 1024)
	session.SetACKNoDelay(true)
	return true
}
