package room

import (
	"sync"
	"sync/atomic"

	"github.com/playrummi/rummilink/iface"
)

/*
 * manager face, implement of IManager
 * - rooms keyed by id in a sync.Map, the count tracked separately
 *   so a size query never walks the map
 * - closing a room always stops its loop before the id is dropped
 */

//face info
type Manager struct {
	roomCount int32
	rooms     sync.Map //roomId -> iface.IRoom
}

//construct
func NewManager() *Manager {
	//self init
	this := &Manager{}
	return this
}

//stop every room, used on server teardown
func (f *Manager) Close() {
	f.rooms.Range(func(k, v interface{}) bool {
		if room, ok := v.(iface.IRoom); ok {
			room.Stop()
		}
		f.rooms.Delete(k)
		atomic.AddInt32(&f.roomCount, -1)
		return true
	})
}

//live room count
func (f *Manager) GetRooms() int32 {
	return atomic.LoadInt32(&f.roomCount)
}

//stop one room and drop it, false when the id is unknown
func (f *Manager) CloseRoom(id uint64) bool {
	v, ok := f.rooms.LoadAndDelete(id)
	if !ok {
		return false
	}
	if room, subOk := v.(iface.IRoom); subOk {
		room.Stop()
	}
	atomic.AddInt32(&f.roomCount, -1)
	return true
}

//get room
func (f *Manager) GetRoom(id uint64) iface.IRoom {
	v, ok := f.rooms.Load(id)
	if !ok {
		return nil
	}
	room, _ := v.(iface.IRoom)
	return room
}

//register a room, a duplicate id replaces the old instance
func (f *Manager) AddRoom(room iface.IRoom) bool {
	//basic check
	if room == nil {
		return false
	}
	if _, loaded := f.rooms.Swap(room.GetId(), room); !loaded {
		atomic.AddInt32(&f.roomCount, 1)
	}
	return true
}
