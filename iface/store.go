package iface

/*
 * interface of durable snapshot store
 * - single slot per local installation, overwritten not appended
 */

type IStore interface {
	Put(record []byte) error
	Get() ([]byte, bool, error)
	Delete() error
	Close() error
}
