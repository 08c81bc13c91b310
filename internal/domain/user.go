// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"time"
)

const MaxUsernameLen = 36

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
)

// ConnID identifies one live connection. Assigned at upgrade time,
// never reused; a reconnect gets a fresh one.
type ConnID string

// Profile is what the server knows about a connected user.
// Owned by the presence directory; everything else reads copies.
type Profile struct {
	ID        ConnID    `json:"id"`
	Username  string    `json:"username"`
	Avatar    string    `json:"avatar"`
	Color     string    `json:"color"`
	Room      RoomID    `json:"room"`
	JoinedAt  time.Time `json:"joinedAt"`
	IsOnline  bool      `json:"isOnline"`
	JoinedVia string    `json:"joinedVia,omitempty"`
}

// NewProfile is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewProfile(id ConnID, username, avatar, color string, room RoomID) (*Profile, error) {
	if len(username) == 0 {
		return nil, ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return nil, ErrUsernameTooLong
	}
	return &Profile{
		ID:       id,
		Username: username,
		Avatar:   avatar,
		Color:    color,
		Room:     room,
		JoinedAt: time.Now(),
		IsOnline: true,
	}, nil
}
