package chat

import (
	"sync"

	"github.com/avolkov/parley/internal/domain"
)

const (
	// HistoryCap bounds a room's retained history; oldest entries go first.
	HistoryCap = 100
	// HistoryWindow is how much history a joining client receives.
	HistoryWindow = 50
)

type roomState struct {
	name    string
	members map[domain.ConnID]struct{}
	history []domain.Message
}

// RoomStat is the read-only per-room view for the health surface.
type RoomStat struct {
	Name     string `json:"name"`
	Users    int    `json:"users"`
	Messages int    `json:"messages"`
}

// RoomRegistry tracks membership and history for the fixed room set.
// Unknown room ids are tolerated everywhere and simply get no tracking,
// so clients may declare rooms the server has never heard of.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*roomState
}

// NewRoomRegistry builds the registry with the static room enumeration.
// Rooms are never created or destroyed at runtime.
func NewRoomRegistry() *RoomRegistry {
	mk := func(name string) *roomState {
		return &roomState{name: name, members: make(map[domain.ConnID]struct{})}
	}
	return &RoomRegistry{rooms: map[domain.RoomID]*roomState{
		"general": mk("General Chat"),
		"tech":    mk("Technology"),
		"gaming":  mk("Gaming"),
	}}
}

// DisplayName resolves a room id to its human name.
func (r *RoomRegistry) DisplayName(room domain.RoomID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.rooms[room]
	if !ok {
		return "", false
	}
	return st.name, true
}

func (r *RoomRegistry) Join(room domain.RoomID, sid domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.rooms[room]; ok {
		st.members[sid] = struct{}{}
	}
}

func (r *RoomRegistry) Leave(room domain.RoomID, sid domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.rooms[room]; ok {
		delete(st.members, sid)
	}
}

// Append adds msg to the room's history, evicting from the front once
// the cap is exceeded.
func (r *RoomRegistry) Append(room domain.RoomID, msg domain.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.rooms[room]
	if !ok {
		return
	}
	st.history = append(st.history, msg)
	if n := len(st.history); n > HistoryCap {
		st.history = append(st.history[:0:0], st.history[n-HistoryCap:]...)
	}
}

// RecentHistory returns up to limit most recent messages, oldest first.
func (r *RoomRegistry) RecentHistory(room domain.RoomID, limit int) []domain.Message {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.rooms[room]
	if !ok {
		return nil
	}
	h := st.history
	if len(h) > limit {
		h = h[len(h)-limit:]
	}
	out := make([]domain.Message, len(h))
	copy(out, h)
	return out
}

func (r *RoomRegistry) MemberCount(room domain.RoomID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if st, ok := r.rooms[room]; ok {
		return len(st.members)
	}
	return 0
}

// Members returns the tracked member set of a known room.
func (r *RoomRegistry) Members(room domain.RoomID) []domain.ConnID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.rooms[room]
	if !ok {
		return nil
	}
	out := make([]domain.ConnID, 0, len(st.members))
	for sid := range st.members {
		out = append(out, sid)
	}
	return out
}

func (r *RoomRegistry) Snapshot() []RoomStat {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RoomStat, 0, len(r.rooms))
	for _, st := range r.rooms {
		out = append(out, RoomStat{Name: st.name, Users: len(st.members), Messages: len(st.history)})
	}
	return out
}
