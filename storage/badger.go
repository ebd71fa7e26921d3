package storage

import (
	"errors"

	"github.com/dgraph-io/badger/v4"
)

/*
 * durable snapshot store, implement of IStore
 * - badger backed, survives process restart
 * - single slot per local installation, overwritten not appended
 */

//slot key
var snapshotKey = []byte("preserved:session")

//face info
type BadgerStore struct {
	db *badger.DB
}

//construct, opens or creates the store at path
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	this := &BadgerStore{db: db}
	return this, nil
}

//construct without disk, for tests
func OpenMemoryBadgerStore() (*BadgerStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	this := &BadgerStore{db: db}
	return this, nil
}

//write the slot, last write wins
func (f *BadgerStore) Put(record []byte) error {
	if record == nil {
		return errors.New("nil record")
	}
	return f.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotKey, record)
	})
}

//read the slot
func (f *BadgerStore) Get() ([]byte, bool, error) {
	var out []byte
	err := f.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			out = append([]byte(nil), val...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

//clear the slot, idempotent
func (f *BadgerStore) Delete() error {
	return f.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(snapshotKey)
	})
}

//close underlying db
func (f *BadgerStore) Close() error {
	return f.db.Close()
}
