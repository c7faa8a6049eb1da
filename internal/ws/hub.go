package ws

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vladimirvolkov/hoopshot/internal/middleware"
)

// readLimit caps incoming frames; pointer messages are well under 200 bytes.
const readLimit = 1024

// SessionCreator starts a game session for a freshly accepted connection.
type SessionCreator interface {
	CreateSession(conn *Conn)
}

// HubStats holds live server metrics.
type HubStats struct {
	ActiveSessions   int64  `json:"activeSessions"`
	TotalConnections uint64 `json:"totalConnections"`
}

type Hub struct {
	creator     SessionCreator
	limiter     *middleware.IPRateLimiter
	log         *zap.Logger
	maxSessions int64

	activeSessions   atomic.Int64
	totalConnections atomic.Uint64

	originPatterns []string
}

func NewHub(creator SessionCreator, limiter *middleware.IPRateLimiter, originPatterns []string, maxSessions int, log *zap.Logger) *Hub {
	return &Hub{
		creator:        creator,
		limiter:        limiter,
		log:            log,
		maxSessions:    int64(maxSessions),
		originPatterns: originPatterns,
	}
}

// Stats returns a snapshot of current server metrics.
func (h *Hub) Stats() HubStats {
	return HubStats{
		ActiveSessions:   h.activeSessions.Load(),
		TotalConnections: h.totalConnections.Load(),
	}
}

// SessionEnded decrements the active session counter. Call when a session goroutine exits.
func (h *Hub) SessionEnded() {
	h.activeSessions.Add(-1)
}

func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	ip := middleware.RealIP(r)
	if h.limiter != nil && !h.limiter.ConnectAllowed(ip) {
		http.Error(w, "too many connections", http.StatusTooManyRequests)
		return
	}

	acceptOpts := &websocket.AcceptOptions{}
	if len(h.originPatterns) > 0 {
		acceptOpts.OriginPatterns = h.originPatterns
	}

	c, err := websocket.Accept(w, r, acceptOpts)
	if err != nil {
		if h.limiter != nil {
			h.limiter.Disconnect(ip)
		}
		h.log.Warn("ws accept failed", zap.String("ip", ip), zap.Error(err))
		return
	}
	c.SetReadLimit(readLimit)

	h.totalConnections.Add(1)
	conn := NewConn(c, uuid.NewString(), ip, h.limiter, h.log)
	conn.log.Info("connection opened", zap.Uint64("total", h.totalConnections.Load()))

	// Background context so the connection outlives the HTTP handler
	go conn.WriteLoop(context.Background())

	go func() {
		<-conn.Done()
		if h.limiter != nil {
			h.limiter.Disconnect(ip)
		}
	}()

	if !h.admit() {
		conn.log.Warn("max sessions reached, rejecting")
		conn.CloseWith(websocket.StatusTryAgainLater, "server full")
		return
	}
	h.creator.CreateSession(conn)

	// Block until the connection is closed; returning would tear down the TCP connection
	<-conn.Done()
	conn.log.Info("connection closed")
}

// admit reserves a session slot.
func (h *Hub) admit() bool {
	for {
		n := h.activeSessions.Load()
		if h.maxSessions > 0 && n >= h.maxSessions {
			return false
		}
		if h.activeSessions.CompareAndSwap(n, n+1) {
			return true
		}
	}
}
