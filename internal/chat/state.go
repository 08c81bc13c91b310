// Package chat holds the in-memory state behind the session gateway:
// invites, rooms, presence and the typing set. Everything lives for the
// process lifetime only; a restart starts from scratch.
//
// The stores carry their own locks because the HTTP surface reads them
// from handler goroutines, but cross-store consistency (membership vs
// profile room fields) is the gateway dispatch loop's job: it is the
// only writer and applies each event's mutations back to back.
package chat

// State is the explicit container for all mutable server state,
// constructed once at process start and handed to the gateway. Tests
// build fresh instances instead of sharing globals.
type State struct {
	Invites  *InviteLedger
	Rooms    *RoomRegistry
	Presence *PresenceDirectory
	Typing   *TypingSet
}

func NewState() *State {
	return &State{
		Invites:  NewInviteLedger(),
		Rooms:    NewRoomRegistry(),
		Presence: NewPresenceDirectory(),
		Typing:   NewTypingSet(),
	}
}
