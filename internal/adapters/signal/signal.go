// Package signal is the WebSocket adapter of the presence/routing core.
// It owns the transport resources; the core only ever sees
// core.SignalConnection.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/anibaler123143423234321/backend-chat-sub000/internal/app"
	"github.com/anibaler123143423234321/backend-chat-sub000/internal/core"
	"github.com/anibaler123143423234321/backend-chat-sub000/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

const defaultPingPeriod = 54 * time.Second

type Controller struct {
	Hub     *app.Hub
	Auth    core.IdentityProvider
	limiter *RateLimiter

	readLimit  int64
	pingPeriod time.Duration
}

func NewController(hub *app.Hub, auth core.IdentityProvider, eventsPerSec int, interval time.Duration, readLimit int64, pingPeriod time.Duration) *Controller {
	if pingPeriod <= 0 {
		pingPeriod = defaultPingPeriod
	}
	return &Controller{
		Hub:        hub,
		Auth:       auth,
		limiter:    NewRateLimiter(eventsPerSec, interval),
		readLimit:  readLimit,
		pingPeriod: pingPeriod,
	}
}

// pongWait leaves one ping interval plus slack before a silent peer
// times out the read side.
func (ctl *Controller) pongWait() time.Duration {
	return ctl.pingPeriod * 10 / 9
}

// WsConn is one live WebSocket. identity stays empty until the register
// event binds it.
type WsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu       sync.RWMutex
	closed   bool
	identity domain.Identity
}

func (c *WsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsConn) Close() {
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

func (c *WsConn) bind(id domain.Identity) {
	c.mu.Lock()
	c.identity = id
	c.mu.Unlock()
}

func (c *WsConn) Identity() domain.Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	token := c.GetString("client_token")
	log.Info().Str("module", "signal").Str("ct", token).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade")
		return
	}
	if ctl.readLimit > 0 {
		ws.SetReadLimit(ctl.readLimit)
	}
	_ = ws.SetReadDeadline(time.Now().Add(ctl.pongWait()))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(ctl.pongWait()))
	})

	conn := &WsConn{
		conn: ws,
		send: make(chan core.Frame, 64),
	}

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go func() {
		defer cancel()
		ctl.readPump(ctx, conn)
	}()
}
