package rummilink

import "github.com/playrummi/rummilink/conf"

/*
 * shared conf structs for the root api faces
 */

//server conf
type ServerConf struct {
	Host     string
	Port     int
	Password string
	Salt     string
}

//client conf
type ClientConf struct {
	Host     string
	Port     int
	Password string
	Salt     string
	StoreDir string //durable snapshot location, empty means in-memory only
	Metrics  bool
	Session  conf.SessionConf
}
