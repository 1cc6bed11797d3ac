package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 1 * time.Second
	maxInterval      = 10 * time.Second
	maxIntervalMilli = 10_000
)

// wsEnvelope is the frame written to WebSocket clients.
type wsEnvelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// statsStream pushes store statistics to one client. A frame is sent on
// connect and afterwards only when the stored log count has moved.
type statsStream struct {
	h         *Handler
	conn      *websocket.Conn
	lastTotal int
	sent      bool
}

// @Summary      Stream store statistics
// @Description  WebSocket. Sends {"type":"stats","data":LogStats} on connect and then whenever the stored log count changes, checked every interval.
// @Tags         logs
// @Param        interval     query  string  false  "Go duration, max 10s"  example(2s)
// @Param        interval_ms  query  int     false  "Milliseconds, max 10000"
// @Router       /ws/stats [get]
func (h *Handler) wsStats(c *gin.Context) {
	interval := h.parseInterval(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.wsLog("ws_upgrade_failed", err)
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go h.drainClient(conn, done)

	s := &statsStream{h: h, conn: conn}
	s.run(c.Request.Context(), interval, done)
}

func (s *statsStream) run(ctx context.Context, interval time.Duration, done <-chan struct{}) {
	if err := s.push(ctx); err != nil {
		s.h.wsLog("ws_initial_stats_failed", err)
		return
	}

	poll := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer poll.Stop()
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.h.wsLog("ws_ping_failed", err)
				return
			}
		case <-poll.C:
			if err := s.push(ctx); err != nil {
				s.h.wsLog("ws_stats_failed", err)
				return
			}
		}
	}
}

// push writes the current stats unless the total matches the last frame.
func (s *statsStream) push(ctx context.Context) error {
	st, err := s.h.services.GetStats(ctx)
	if err != nil {
		return err
	}
	if s.sent && st.Total == s.lastTotal {
		return nil
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(wsEnvelope{Type: "stats", Data: st}); err != nil {
		return err
	}
	s.lastTotal, s.sent = st.Total, true
	return nil
}

// parseInterval reads ?interval=2s or ?interval_ms=2000 with bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}
	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}
	return defaultInterval
}

// drainClient reads until the client goes away so control frames get handled.
func (h *Handler) drainClient(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.wsLog("ws_client_closed", err)
			return
		}
	}
}

func (h *Handler) wsLog(event string, err error) {
	if h.log != nil {
		h.log.Infow(event, "err", err)
	}
}
