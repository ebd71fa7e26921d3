package storage

import "sync"

/*
 * in-memory snapshot store, implement of IStore
 * - for tests and environments without a writable disk
 */

//face info
type MemoryStore struct {
	record []byte
	has    bool
	sync.RWMutex
}

//construct
func NewMemoryStore() *MemoryStore {
	//self init
	this := &MemoryStore{}
	return this
}

func (f *MemoryStore) Put(record []byte) error {
	f.Lock()
	defer f.Unlock()
	f.record = append([]byte(nil), record...)
	f.has = true
	return nil
}

func (f *MemoryStore) Get() ([]byte, bool, error) {
	f.RLock()
	defer f.RUnlock()
	if !f.has {
		return nil, false, nil
	}
	return append([]byte(nil), f.record...), true, nil
}

func (f *MemoryStore) Delete() error {
	f.Lock()
	defer f.Unlock()
	f.record = nil
	f.has = false
	return nil
}

func (f *MemoryStore) Close() error {
	return nil
}
