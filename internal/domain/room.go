package domain

type RoomID string

// DefaultRoom is where user_join lands when the client names no room.
const DefaultRoom RoomID = "general"

type Room struct {
	ID   RoomID
	Name string
}
