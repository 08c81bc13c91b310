// Package gateway is the connection-handling core. Every inbound
// event, from any connection, funnels into one dispatch loop that
// applies its state mutations and broadcasts before touching the next
// event, so handlers never interleave on shared state.
package gateway

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/avolkov/parley/internal/chat"
	"github.com/avolkov/parley/internal/config"
	"github.com/avolkov/parley/internal/domain"
	"github.com/avolkov/parley/internal/metrics"
	"github.com/avolkov/parley/internal/protocol"
)

type cmdKind int

const (
	cmdAttach cmdKind = iota
	cmdEvent
	cmdDetach
)

type command struct {
	kind cmdKind
	sid  domain.ConnID
	conn Conn                 // attach only
	ev   protocol.ClientEvent // event only
}

type Gateway struct {
	state     *chat.State
	collector *metrics.Collector
	limiter   *rateLimiter
	cfg       *config.Config

	cmds    chan command
	stopped chan struct{}
	live    atomic.Int64

	// conns is owned by the dispatch loop; nothing else touches it.
	conns map[domain.ConnID]Conn
}

func New(state *chat.State, collector *metrics.Collector, cfg *config.Config) *Gateway {
	return &Gateway{
		state:     state,
		collector: collector,
		limiter:   newRateLimiter(cfg.MsgRateLimit, cfg.MsgRateWindow),
		cfg:       cfg,
		cmds:      make(chan command, 256),
		stopped:   make(chan struct{}),
		conns:     make(map[domain.ConnID]Conn),
	}
}

// Run drains the command queue until ctx is canceled. It is the only
// goroutine that mutates chat state.
func (g *Gateway) Run(ctx context.Context) {
	defer close(g.stopped)
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "gateway").Msg("dispatch loop stopping")
			return
		case cmd := <-g.cmds:
			g.apply(cmd)
		}
	}
}

// Live reports the number of open connections.
func (g *Gateway) Live() int {
	return int(g.live.Load())
}

// Attach hands a fresh connection to the dispatch loop.
func (g *Gateway) Attach(sid domain.ConnID, conn Conn) {
	g.enqueue(command{kind: cmdAttach, sid: sid, conn: conn})
}

// Detach reports a transport-level close.
func (g *Gateway) Detach(sid domain.ConnID) {
	g.enqueue(command{kind: cmdDetach, sid: sid})
}

// Dispatch queues one decoded client event.
func (g *Gateway) Dispatch(sid domain.ConnID, ev protocol.ClientEvent) {
	g.enqueue(command{kind: cmdEvent, sid: sid, ev: ev})
}

func (g *Gateway) enqueue(cmd command) {
	select {
	case g.cmds <- cmd:
	case <-g.stopped:
	}
}

// apply runs one command to completion. A panicking handler is logged
// and swallowed; one bad event must not take the loop down.
func (g *Gateway) apply(cmd command) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("module", "gateway").Str("sid", string(cmd.sid)).Any("panic", r).Msg("handler panicked")
		}
	}()

	switch cmd.kind {
	case cmdAttach:
		g.conns[cmd.sid] = cmd.conn
		g.live.Add(1)
		g.collector.ConnOpened()
		log.Info().Str("module", "gateway").Str("sid", string(cmd.sid)).Msg("connection attached")
	case cmdDetach:
		g.handleDisconnect(cmd.sid)
		if conn, ok := g.conns[cmd.sid]; ok {
			delete(g.conns, cmd.sid)
			conn.Close()
			g.live.Add(-1)
			g.collector.ConnClosed()
		}
		g.limiter.Forget(cmd.sid)
		log.Info().Str("module", "gateway").Str("sid", string(cmd.sid)).Msg("connection detached")
	case cmdEvent:
		g.collector.RecordEvent(eventName(cmd.ev))
		g.handleEvent(cmd.sid, cmd.ev)
	}
}

func (g *Gateway) handleEvent(sid domain.ConnID, ev protocol.ClientEvent) {
	switch p := ev.(type) {
	case protocol.UserJoin:
		g.handleUserJoin(sid, p)
	case protocol.JoinViaInvite:
		g.handleJoinViaInvite(sid, p)
	case protocol.GenerateInviteLink:
		g.handleGenerateInvite(sid, p)
	case protocol.GetMyInviteLinks:
		g.handleListInvites(sid)
	case protocol.RevokeInviteLink:
		g.handleRevokeInvite(sid, p)
	case protocol.SendMessage:
		g.handleSendMessage(sid, p)
	case protocol.SendFile:
		g.handleSendFile(sid, p)
	case protocol.TypingStart:
		g.handleTypingStart(sid)
	case protocol.TypingStop:
		g.handleTypingStop(sid)
	case protocol.SwitchRoom:
		g.handleSwitchRoom(sid, p)
	}
}

func eventName(ev protocol.ClientEvent) string {
	switch ev.(type) {
	case protocol.UserJoin:
		return "user_join"
	case protocol.JoinViaInvite:
		return "join_via_invite"
	case protocol.GenerateInviteLink:
		return "generate_invite_link"
	case protocol.GetMyInviteLinks:
		return "get_my_invite_links"
	case protocol.RevokeInviteLink:
		return "revoke_invite_link"
	case protocol.SendMessage:
		return "send_message"
	case protocol.SendFile:
		return "send_file"
	case protocol.TypingStart:
		return "typing_start"
	case protocol.TypingStop:
		return "typing_stop"
	case protocol.SwitchRoom:
		return "switch_room"
	default:
		return "unknown"
	}
}

// send delivers a marshaled frame to one connection, if still open.
func (g *Gateway) send(sid domain.ConnID, frame []byte) {
	conn, ok := g.conns[sid]
	if !ok {
		return
	}
	if err := conn.TrySend(frame); err != nil {
		g.collector.RecordFrameDropped()
		log.Warn().Str("module", "gateway").Str("sid", string(sid)).Err(err).Msg("frame dropped")
	}
}

// emit sends one server event to a single connection.
func (g *Gateway) emit(sid domain.ConnID, ev protocol.ServerEvent) {
	frame, err := json.Marshal(ev)
	if err != nil {
		log.Error().Str("module", "gateway").Err(err).Str("event", ev.Event).Msg("marshal")
		return
	}
	g.send(sid, frame)
}

// emitRoom fans a server event out to every connection whose profile
// sits in room, minus any excluded ids. Fire-and-forget: slow
// consumers lose the frame, nothing is retried.
func (g *Gateway) emitRoom(room domain.RoomID, ev protocol.ServerEvent, except ...domain.ConnID) {
	frame, err := json.Marshal(ev)
	if err != nil {
		log.Error().Str("module", "gateway").Err(err).Str("event", ev.Event).Msg("marshal")
		return
	}
	for _, prof := range g.state.Presence.ListByRoom(room) {
		if excluded(prof.ID, except) {
			continue
		}
		g.send(prof.ID, frame)
	}
}

func excluded(sid domain.ConnID, except []domain.ConnID) bool {
	for _, e := range except {
		if e == sid {
			return true
		}
	}
	return false
}
