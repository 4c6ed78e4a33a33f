package beam

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Store is the single source of truth for room state. All mutation happens
// through EnsureRoom, AppendMessage and Remove, driven one event at a time
// from the session dispatcher; the lock exists so UI goroutines can read
// snapshots concurrently.
type Store struct {
	mu     sync.RWMutex
	rooms  map[RoomKey]*Room
	active *RoomKey
}

func NewStore() *Store {
	return &Store{rooms: make(map[RoomKey]*Room)}
}

// EnsureRoom creates the room lazily on the first open connection for its
// key. For an existing group room it records the remote identity as a
// participant and bumps last-activity; repeat calls with identical
// arguments are no-ops beyond the first.
func (s *Store) EnsureRoom(key RoomKey, mode Mode, host bool, remote string) Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[key]
	if !ok {
		room = &Room{
			Key:          key,
			Name:         roomName(mode, host),
			Mode:         mode,
			Host:         host,
			LastActivity: time.Now(),
		}
		room.addParticipant(remote)
		s.rooms[key] = room
		return room.snapshot()
	}

	if mode == ModeGroup && room.addParticipant(remote) {
		room.LastActivity = time.Now()
	}
	return room.snapshot()
}

// AppendMessage appends to the room's log and bumps last-activity. A write
// to a missing room is dropped and logged: the connection may have closed
// between send and dispatch.
func (s *Store) AppendMessage(key RoomKey, msg Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[key]
	if !ok {
		slog.Warn("dropping message for missing room",
			"room", key.String(), "message", msg.ID, "error", ErrStaleRoomWrite)
		return false
	}

	room.Messages = append(room.Messages, msg)
	room.LastActivity = time.Now()
	return true
}

// Remove deletes the room. The caller is responsible for closing the
// underlying connections. If the removed room was active, the active-room
// pointer is cleared.
func (s *Store) Remove(key RoomKey) (Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[key]
	if !ok {
		return Room{}, false
	}
	delete(s.rooms, key)

	if s.active != nil && *s.active == key {
		s.active = nil
	}
	return room.snapshot(), true
}

// SetActive marks the room the UI is currently pointed at.
func (s *Store) SetActive(key RoomKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = &key
}

// Active returns the active room key, if any.
func (s *Store) Active() (RoomKey, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return RoomKey{}, false
	}
	return *s.active, true
}

// Room returns a snapshot of a single room.
func (s *Store) Room(key RoomKey) (Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[key]
	if !ok {
		return Room{}, false
	}
	return room.snapshot(), true
}

// Snapshot returns copies of all rooms, most recently active first.
func (s *Store) Snapshot() []Room {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room.snapshot())
	}
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].LastActivity.After(rooms[j].LastActivity)
	})
	return rooms
}
