// Package protocol defines the wire contract: a closed set of inbound
// client events and outbound server events, each framed as
// {"event": <name>, "data": {...}}. Payloads are decoded and validated
// here, at the transport boundary, so malformed frames fail with a
// typed error before they reach any state mutation.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/avolkov/parley/internal/domain"
)

var (
	ErrUnknownEvent = errors.New("unknown event")
	ErrBadPayload   = errors.New("bad payload")
)

// ClientEvent is one decoded inbound event. The variant set is closed:
// only types in this package implement it.
type ClientEvent interface{ isClientEvent() }

// UserJoin is a plain join with self-declared identity.
type UserJoin struct {
	Username string        `json:"username"`
	Avatar   string        `json:"avatar"`
	Color    string        `json:"color"`
	Room     domain.RoomID `json:"room"`
}

// JoinViaInvite joins the token's room, consuming one use.
type JoinViaInvite struct {
	Token    string   `json:"token"`
	UserData UserJoin `json:"userData"`
}

// GenerateInviteLink requests a shareable token for a room.
type GenerateInviteLink struct {
	Room      domain.RoomID `json:"room"`
	ExpiresIn float64       `json:"expiresIn"` // hours
}

// GetMyInviteLinks requests the caller's live tokens.
type GetMyInviteLinks struct{}

// RevokeInviteLink deletes one of the caller's own tokens.
type RevokeInviteLink struct {
	Token string `json:"token"`
}

// SendMessage posts a text message to the sender's current room.
type SendMessage struct {
	Text string `json:"text"`
}

// SendFile shares a file by descriptor; the bytes live elsewhere.
type SendFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
	URL  string `json:"url"`
}

// TypingStart / TypingStop drive the room typing indicator.
type TypingStart struct{}
type TypingStop struct{}

// SwitchRoom moves the sender between rooms.
type SwitchRoom struct {
	OldRoom domain.RoomID `json:"oldRoom"`
	NewRoom domain.RoomID `json:"newRoom"`
}

func (UserJoin) isClientEvent()           {}
func (JoinViaInvite) isClientEvent()      {}
func (GenerateInviteLink) isClientEvent() {}
func (GetMyInviteLinks) isClientEvent()   {}
func (RevokeInviteLink) isClientEvent()   {}
func (SendMessage) isClientEvent()        {}
func (SendFile) isClientEvent()           {}
func (TypingStart) isClientEvent()        {}
func (TypingStop) isClientEvent()         {}
func (SwitchRoom) isClientEvent()         {}

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func unmarshalData(env envelope, v any) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("%w: %s: missing data", ErrBadPayload, env.Event)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBadPayload, env.Event, err)
	}
	return nil
}

// Decode parses one inbound frame into its typed variant.
func Decode(frame []byte) (ClientEvent, error) {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	switch env.Event {
	case "user_join":
		var p UserJoin
		if err := unmarshalData(env, &p); err != nil {
			return nil, err
		}
		if p.Username == "" {
			return nil, fmt.Errorf("%w: user_join: username required", ErrBadPayload)
		}
		if p.Room == "" {
			p.Room = domain.DefaultRoom
		}
		return p, nil
	case "join_via_invite":
		var p JoinViaInvite
		if err := unmarshalData(env, &p); err != nil {
			return nil, err
		}
		if p.Token == "" {
			return nil, fmt.Errorf("%w: join_via_invite: token required", ErrBadPayload)
		}
		if p.UserData.Username == "" {
			return nil, fmt.Errorf("%w: join_via_invite: username required", ErrBadPayload)
		}
		return p, nil
	case "generate_invite_link":
		var p GenerateInviteLink
		if err := unmarshalData(env, &p); err != nil {
			return nil, err
		}
		if p.Room == "" {
			p.Room = domain.DefaultRoom
		}
		if p.ExpiresIn <= 0 {
			p.ExpiresIn = 24
		}
		return p, nil
	case "get_my_invite_links":
		return GetMyInviteLinks{}, nil
	case "revoke_invite_link":
		var p RevokeInviteLink
		if err := unmarshalData(env, &p); err != nil {
			return nil, err
		}
		if p.Token == "" {
			return nil, fmt.Errorf("%w: revoke_invite_link: token required", ErrBadPayload)
		}
		return p, nil
	case "send_message":
		var p SendMessage
		if err := unmarshalData(env, &p); err != nil {
			return nil, err
		}
		if p.Text == "" {
			return nil, fmt.Errorf("%w: send_message: text required", ErrBadPayload)
		}
		return p, nil
	case "send_file":
		var p SendFile
		if err := unmarshalData(env, &p); err != nil {
			return nil, err
		}
		if p.Name == "" {
			return nil, fmt.Errorf("%w: send_file: name required", ErrBadPayload)
		}
		return p, nil
	case "typing_start":
		return TypingStart{}, nil
	case "typing_stop":
		return TypingStop{}, nil
	case "switch_room":
		var p SwitchRoom
		if err := unmarshalData(env, &p); err != nil {
			return nil, err
		}
		if p.NewRoom == "" {
			return nil, fmt.Errorf("%w: switch_room: newRoom required", ErrBadPayload)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
	}
}
