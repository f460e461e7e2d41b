// store holds the single authoritative snapshot pushed by the server.
package store

import (
	"sync"

	"github.com/sooswastaken/Avalon/protocol"
)

// Store 缓存最近一次下发的房间快照与私密信息包。
// Every push replaces the previous value wholesale; there is no diffing
// and no merge, which is what keeps rendering idempotent across
// reconnects. Only the connection event handler writes here.
type Store struct {
	mutex      sync.RWMutex
	snapshot   *protocol.RoomSnapshot
	private    *protocol.PrivateInfoPacket
	generation uint64
}

func New() *Store {
	return &Store{}
}

// ReplaceSnapshot swaps the cached snapshot atomically. Readers observe
// either the previous whole snapshot or this one, never a mix.
func (s *Store) ReplaceSnapshot(snap protocol.RoomSnapshot) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.snapshot = &snap
	s.generation++
}

// Snapshot returns a copy of the current snapshot, or false before the
// first push (and after Clear).
func (s *Store) Snapshot() (protocol.RoomSnapshot, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.snapshot == nil {
		return protocol.RoomSnapshot{}, false
	}
	return *s.snapshot, true
}

// ReplacePrivateInfo swaps the private packet. It arrives asynchronously
// relative to the snapshot that makes it relevant, so it has its own
// replace-on-arrival lifecycle.
func (s *Store) ReplacePrivateInfo(info protocol.PrivateInfoPacket) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.private = &info
}

func (s *Store) PrivateInfo() (protocol.PrivateInfoPacket, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.private == nil {
		return protocol.PrivateInfoPacket{}, false
	}
	return *s.private, true
}

// Generation increments on every snapshot replacement. Used by metrics
// and tests to observe that a push landed.
func (s *Store) Generation() uint64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.generation
}

// Clear drops both the snapshot and the private packet, e.g. when the
// user leaves the room.
func (s *Store) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.snapshot = nil
	s.private = nil
}
