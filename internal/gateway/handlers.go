package gateway

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/avolkov/parley/internal/chat"
	"github.com/avolkov/parley/internal/domain"
	"github.com/avolkov/parley/internal/protocol"
)

func (g *Gateway) handleUserJoin(sid domain.ConnID, p protocol.UserJoin) {
	profile, err := domain.NewProfile(sid, p.Username, p.Avatar, p.Color, p.Room)
	if err != nil {
		log.Warn().Str("module", "gateway").Str("sid", string(sid)).Err(err).Msg("join rejected")
		return
	}
	g.state.Presence.Register(sid, profile)
	g.state.Rooms.Join(p.Room, sid)

	g.emitRoom(p.Room, protocol.UserJoined(protocol.UserJoinedData{
		ID:        sid,
		Username:  profile.Username,
		Avatar:    profile.Avatar,
		Color:     profile.Color,
		Timestamp: time.Now(),
		Room:      p.Room,
	}), sid)

	g.emit(sid, protocol.UserList(g.state.Presence.ListByRoom(p.Room)))
	if _, known := g.state.Rooms.DisplayName(p.Room); known {
		g.emit(sid, protocol.RoomHistory(protocol.RoomHistoryData{
			Room:     p.Room,
			Messages: g.state.Rooms.RecentHistory(p.Room, chat.HistoryWindow),
		}))
	}
	log.Info().Str("module", "gateway").Str("sid", string(sid)).Str("username", profile.Username).Str("room", string(p.Room)).Msg("user joined")
}

func (g *Gateway) handleJoinViaInvite(sid domain.ConnID, p protocol.JoinViaInvite) {
	inv, err := g.state.Invites.Validate(p.Token)
	if err != nil {
		g.collector.RecordInviteRejected(err.Error())
		g.emit(sid, protocol.InviteError(err.Error()))
		return
	}

	profile, perr := domain.NewProfile(sid, p.UserData.Username, p.UserData.Avatar, p.UserData.Color, inv.Room)
	if perr != nil {
		// The token keeps its use; nothing was joined.
		log.Warn().Str("module", "gateway").Str("sid", string(sid)).Err(perr).Msg("invite join rejected")
		g.emit(sid, protocol.InviteError(perr.Error()))
		return
	}
	profile.JoinedVia = p.Token

	// Deliberately a separate step from Validate; the dispatch loop
	// serializes both, so the counter can't pass MaxUses.
	g.state.Invites.Consume(p.Token)
	g.collector.RecordInviteConsumed()
	g.state.Presence.Register(sid, profile)
	g.state.Rooms.Join(inv.Room, sid)

	// The issuer learns a friend used their link, if still connected.
	if _, ok := g.conns[inv.Issuer]; ok {
		g.emit(inv.Issuer, protocol.FriendJoinedViaInvite(protocol.FriendJoinedData{
			FriendName: profile.Username,
			Token:      p.Token,
			Timestamp:  time.Now(),
		}))
	}

	g.emitRoom(inv.Room, protocol.UserJoined(protocol.UserJoinedData{
		ID:        sid,
		Username:  profile.Username,
		Avatar:    profile.Avatar,
		Color:     profile.Color,
		Timestamp: time.Now(),
		Room:      inv.Room,
		ViaInvite: true,
	}), sid)

	g.emit(sid, protocol.UserList(g.state.Presence.ListByRoom(inv.Room)))

	roomName, known := g.state.Rooms.DisplayName(inv.Room)
	if !known {
		roomName = string(inv.Room)
	}
	g.emit(sid, protocol.ReceiveMessage(domain.Message{
		ID:        uuid.NewString(),
		UserID:    "system",
		Username:  "System",
		Avatar:    "🤖",
		Color:     "#00a884",
		Text:      fmt.Sprintf("Welcome to %s! You joined via invite link.", roomName),
		Timestamp: time.Now(),
		Kind:      domain.MessageSystem,
		Room:      inv.Room,
	}))
	log.Info().Str("module", "gateway").Str("sid", string(sid)).Str("username", profile.Username).Str("room", string(inv.Room)).Msg("joined via invite")
}

func (g *Gateway) inviteURL(token string) string {
	return g.cfg.ClientURL + "/invite/" + token
}

func (g *Gateway) handleGenerateInvite(sid domain.ConnID, p protocol.GenerateInviteLink) {
	if _, ok := g.state.Presence.Get(sid); !ok {
		return
	}
	ttl := time.Duration(p.ExpiresIn * float64(time.Hour))
	inv := g.state.Invites.Create(sid, p.Room, ttl)
	g.collector.RecordInviteIssued()

	g.emit(sid, protocol.InviteLinkGenerated(protocol.InviteLinkData{
		Token:     inv.Token,
		URL:       g.inviteURL(inv.Token),
		Room:      inv.Room,
		CreatedAt: inv.CreatedAt,
		ExpiresAt: inv.ExpiresAt,
		Uses:      inv.Uses,
		MaxUses:   inv.MaxUses,
	}))
}

func (g *Gateway) handleListInvites(sid domain.ConnID) {
	if _, ok := g.state.Presence.Get(sid); !ok {
		return
	}
	invites := g.state.Invites.ListByIssuer(sid)
	sort.Slice(invites, func(i, j int) bool {
		return invites[i].CreatedAt.Before(invites[j].CreatedAt)
	})
	links := make([]protocol.InviteLinkData, 0, len(invites))
	for _, inv := range invites {
		links = append(links, protocol.InviteLinkData{
			Token:     inv.Token,
			URL:       g.inviteURL(inv.Token),
			Room:      inv.Room,
			CreatedAt: inv.CreatedAt,
			ExpiresAt: inv.ExpiresAt,
			Uses:      inv.Uses,
			MaxUses:   inv.MaxUses,
		})
	}
	g.emit(sid, protocol.MyInviteLinks(links))
}

func (g *Gateway) handleRevokeInvite(sid domain.ConnID, p protocol.RevokeInviteLink) {
	if _, ok := g.state.Presence.Get(sid); !ok {
		return
	}
	// Not the issuer: silent no-op, no confirmation either way.
	if g.state.Invites.Revoke(p.Token, sid) {
		g.emit(sid, protocol.InviteLinkRevoked(protocol.InviteRevokedData{Token: p.Token}))
	}
}

func (g *Gateway) handleSendMessage(sid domain.ConnID, p protocol.SendMessage) {
	profile, ok := g.state.Presence.Get(sid)
	if !ok {
		return
	}
	if !g.limiter.Allow(sid) {
		log.Debug().Str("module", "gateway").Str("sid", string(sid)).Msg("message rate limited")
		return
	}
	msg := domain.Message{
		ID:        uuid.NewString(),
		UserID:    string(sid),
		Username:  profile.Username,
		Avatar:    profile.Avatar,
		Color:     profile.Color,
		Text:      p.Text,
		Timestamp: time.Now(),
		Kind:      domain.MessageText,
		Room:      profile.Room,
		Status:    domain.StatusDelivered,
	}
	g.state.Rooms.Append(profile.Room, msg)
	g.collector.RecordMessage(string(domain.MessageText))
	// Self included: the sender reconciles its optimistic echo against
	// this authoritative copy.
	g.emitRoom(profile.Room, protocol.ReceiveMessage(msg))
}

func (g *Gateway) handleSendFile(sid domain.ConnID, p protocol.SendFile) {
	profile, ok := g.state.Presence.Get(sid)
	if !ok {
		return
	}
	if !g.limiter.Allow(sid) {
		log.Debug().Str("module", "gateway").Str("sid", string(sid)).Msg("file rate limited")
		return
	}
	msg := domain.Message{
		ID:        uuid.NewString(),
		UserID:    string(sid),
		Username:  profile.Username,
		Avatar:    profile.Avatar,
		Color:     profile.Color,
		FileName:  p.Name,
		FileSize:  p.Size,
		FileType:  p.Type,
		FileURL:   p.URL,
		Timestamp: time.Now(),
		Kind:      domain.MessageFile,
		Room:      profile.Room,
		Status:    domain.StatusDelivered,
	}
	g.state.Rooms.Append(profile.Room, msg)
	g.collector.RecordMessage(string(domain.MessageFile))
	g.emitRoom(profile.Room, protocol.ReceiveMessage(msg))
}

func (g *Gateway) handleTypingStart(sid domain.ConnID) {
	profile, ok := g.state.Presence.Get(sid)
	if !ok {
		return
	}
	g.state.Typing.Add(sid)
	g.emitRoom(profile.Room, protocol.UserTyping(protocol.TypingData{
		UserID:   sid,
		Username: profile.Username,
	}), sid)
}

func (g *Gateway) handleTypingStop(sid domain.ConnID) {
	profile, ok := g.state.Presence.Get(sid)
	if !ok {
		return
	}
	g.state.Typing.Remove(sid)
	g.emitRoom(profile.Room, protocol.UserStoppedTyping(sid), sid)
}

func (g *Gateway) handleSwitchRoom(sid domain.ConnID, p protocol.SwitchRoom) {
	profile, ok := g.state.Presence.Get(sid)
	if !ok {
		return
	}
	g.state.Rooms.Leave(p.OldRoom, sid)
	g.state.Rooms.Join(p.NewRoom, sid)
	g.state.Presence.SetRoom(sid, p.NewRoom)

	g.emitRoom(p.OldRoom, protocol.UserLeft(protocol.UserLeftData{
		ID:        sid,
		Username:  profile.Username,
		Timestamp: time.Now(),
		Room:      p.OldRoom,
	}), sid)
	g.emitRoom(p.NewRoom, protocol.UserJoined(protocol.UserJoinedData{
		ID:        sid,
		Username:  profile.Username,
		Avatar:    profile.Avatar,
		Color:     profile.Color,
		Timestamp: time.Now(),
		Room:      p.NewRoom,
	}), sid)

	g.emit(sid, protocol.UserList(g.state.Presence.ListByRoom(p.NewRoom)))
	if _, known := g.state.Rooms.DisplayName(p.NewRoom); known {
		g.emit(sid, protocol.RoomHistory(protocol.RoomHistoryData{
			Room:     p.NewRoom,
			Messages: g.state.Rooms.RecentHistory(p.NewRoom, chat.HistoryWindow),
		}))
	}
	g.emit(sid, protocol.RoomSwitched(protocol.RoomSwitchedData{
		OldRoom: p.OldRoom,
		NewRoom: p.NewRoom,
	}))
	log.Info().Str("module", "gateway").Str("sid", string(sid)).Str("from", string(p.OldRoom)).Str("to", string(p.NewRoom)).Msg("switched room")
}

// handleDisconnect runs before the connection record is dropped.
func (g *Gateway) handleDisconnect(sid domain.ConnID) {
	g.state.Typing.Remove(sid)
	profile, ok := g.state.Presence.Unregister(sid)
	if !ok {
		return
	}
	g.state.Rooms.Leave(profile.Room, sid)
	g.emitRoom(profile.Room, protocol.UserLeft(protocol.UserLeftData{
		ID:        sid,
		Username:  profile.Username,
		Timestamp: time.Now(),
		Room:      profile.Room,
	}))
}
