package gateway

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/avolkov/parley/internal/domain"
	"github.com/avolkov/parley/internal/protocol"
)

const writeWait = 5 * time.Second

// wsConn wraps a gorilla connection behind a buffered send channel so
// the dispatch loop never blocks on a slow client.
type wsConn struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(frame []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- frame:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

func (g *Gateway) upgrader() websocket.Upgrader {
	allowed := g.cfg.ClientURL
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origin == allowed
		},
	}
}

// HandleWS upgrades the request and hands the connection to the
// dispatch loop. Each upgrade mints a fresh connection id; ids are
// never reused across reconnects.
func (g *Gateway) HandleWS(c *gin.Context) {
	up := g.upgrader()
	ws, err := up.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Str("module", "gateway").Err(err).Msg("ws upgrade")
		return
	}

	sid := domain.ConnID(uuid.NewString())
	conn := &wsConn{
		conn: ws,
		send: make(chan []byte, g.cfg.SendBuffer),
	}
	log.Info().Str("module", "gateway").Str("sid", string(sid)).Msg("new WS connection")

	g.Attach(sid, conn)
	go g.writePump(conn)
	go g.readPump(sid, conn)
}

func (g *Gateway) writePump(c *wsConn) {
	ticker := time.NewTicker(g.cfg.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "gateway").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Error().Err(err).Str("module", "gateway").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (g *Gateway) readPump(sid domain.ConnID, c *wsConn) {
	defer func() {
		log.Info().Str("module", "gateway").Str("sid", string(sid)).Msg("readPump closing")
		g.Detach(sid)
	}()

	c.conn.SetReadLimit(g.cfg.ReadLimit)
	pongWait := g.cfg.PingPeriod + writeWait
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().Err(err).Str("module", "gateway").Str("sid", string(sid)).Msg("readPump read error")
			}
			return
		}
		ev, err := protocol.Decode(data)
		if err != nil {
			// Frame rejected at the boundary; the connection lives on.
			log.Warn().Err(err).Str("module", "gateway").Str("sid", string(sid)).Msg("bad frame")
			continue
		}
		g.Dispatch(sid, ev)
	}
}
