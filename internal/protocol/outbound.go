package protocol

import (
	"time"

	"github.com/avolkov/parley/internal/domain"
)

// ServerEvent is one outbound frame. Constructors below are the only
// intended way to build one, which keeps the event-name set closed.
type ServerEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// UserJoinedData announces a new room member to everyone else.
type UserJoinedData struct {
	ID        domain.ConnID `json:"id"`
	Username  string        `json:"username"`
	Avatar    string        `json:"avatar"`
	Color     string        `json:"color"`
	Timestamp time.Time     `json:"timestamp"`
	Room      domain.RoomID `json:"room"`
	ViaInvite bool          `json:"viaInvite,omitempty"`
}

type UserLeftData struct {
	ID        domain.ConnID `json:"id"`
	Username  string        `json:"username"`
	Timestamp time.Time     `json:"timestamp"`
	Room      domain.RoomID `json:"room"`
}

type RoomHistoryData struct {
	Room     domain.RoomID    `json:"room"`
	Messages []domain.Message `json:"messages"`
}

type TypingData struct {
	UserID   domain.ConnID `json:"userId"`
	Username string        `json:"username"`
}

type RoomSwitchedData struct {
	OldRoom domain.RoomID `json:"oldRoom"`
	NewRoom domain.RoomID `json:"newRoom"`
}

// InviteLinkData is one token as shown to its issuer.
type InviteLinkData struct {
	Token     string        `json:"token"`
	URL       string        `json:"url"`
	Room      domain.RoomID `json:"room"`
	CreatedAt time.Time     `json:"createdAt"`
	ExpiresAt time.Time     `json:"expiresAt"`
	Uses      int           `json:"uses"`
	MaxUses   int           `json:"maxUses"`
}

type InviteRevokedData struct {
	Token string `json:"token"`
}

type InviteErrorData struct {
	Reason string `json:"reason"`
}

type FriendJoinedData struct {
	FriendName string    `json:"friendName"`
	Token      string    `json:"token"`
	Timestamp  time.Time `json:"timestamp"`
}

func UserJoined(d UserJoinedData) ServerEvent { return ServerEvent{Event: "user_joined", Data: d} }

func UserLeft(d UserLeftData) ServerEvent { return ServerEvent{Event: "user_left", Data: d} }

func UserList(users []domain.Profile) ServerEvent {
	return ServerEvent{Event: "user_list", Data: users}
}

func RoomHistory(d RoomHistoryData) ServerEvent {
	return ServerEvent{Event: "room_history", Data: d}
}

func ReceiveMessage(m domain.Message) ServerEvent {
	return ServerEvent{Event: "receive_message", Data: m}
}

func UserTyping(d TypingData) ServerEvent { return ServerEvent{Event: "user_typing", Data: d} }

func UserStoppedTyping(sid domain.ConnID) ServerEvent {
	return ServerEvent{Event: "user_stopped_typing", Data: sid}
}

func RoomSwitched(d RoomSwitchedData) ServerEvent {
	return ServerEvent{Event: "room_switched", Data: d}
}

func InviteLinkGenerated(d InviteLinkData) ServerEvent {
	return ServerEvent{Event: "invite_link_generated", Data: d}
}

func MyInviteLinks(links []InviteLinkData) ServerEvent {
	return ServerEvent{Event: "my_invite_links", Data: links}
}

func InviteLinkRevoked(d InviteRevokedData) ServerEvent {
	return ServerEvent{Event: "invite_link_revoked", Data: d}
}

func InviteError(reason string) ServerEvent {
	return ServerEvent{Event: "invite_error", Data: InviteErrorData{Reason: reason}}
}

func FriendJoinedViaInvite(d FriendJoinedData) ServerEvent {
	return ServerEvent{Event: "friend_joined_via_invite", Data: d}
}
