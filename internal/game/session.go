package game

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vladimirvolkov/hoopshot/internal/telemetry"
	"github.com/vladimirvolkov/hoopshot/internal/ws"
)

// Session runs one player's game over a single connection.
type Session struct {
	conn    *ws.Conn
	flight  *Flight
	log     *zap.Logger
	metrics *telemetry.Metrics

	tick     uint32
	score    uint32
	attempts uint32

	tickMu sync.Mutex // guards tick for readers outside the game loop
	inputs inputQueue

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewSession(conn *ws.Conn, course Course, log *zap.Logger, m *telemetry.Metrics) *Session {
	s := &Session{
		conn:    conn,
		log:     log.With(zap.String("session", conn.ID)),
		metrics: m,
	}
	s.flight = NewFlight(course, s.scored)
	return s
}

func (s *Session) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.metrics.SessionStarted(s.ctx)

	msg, err := ws.NewMessage(ws.MsgSessionStart, 0, ws.SessionStartPayload{
		SessionID: s.conn.ID,
		Course:    s.flight.Course(),
	})
	if err != nil {
		s.log.Error("encode session start", zap.Error(err))
	} else {
		s.conn.Send(msg)
	}

	go s.readLoop(s.ctx)

	// Closes done on exit
	go func() {
		s.gameLoop(s.ctx)
		s.metrics.SessionEnded(context.Background())
		close(s.done)
	}()
}

// Done returns a channel that closes when the session's game loop exits.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) readLoop(ctx context.Context) {
	msgs := s.conn.ReadLoop(ctx)
	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				s.log.Info("player disconnected")
				s.cancel()
				return
			}
			s.handleMessage(msg)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) handleMessage(msg ws.Message) {
	switch msg.Type {
	case ws.MsgPointerMove, ws.MsgPointerClick:
		p, err := ws.DecodePointer(msg)
		if err != nil {
			s.log.Debug("dropping pointer", zap.Error(err))
			return
		}
		s.inputs.push(PointerInput{
			Click:    msg.Type == ws.MsgPointerClick,
			X:        p.X,
			Y:        p.Y,
			Viewport: Viewport{Width: p.Width, Height: p.Height},
		})

	case ws.MsgPing:
		var ping ws.PingPayload
		if err := json.Unmarshal(msg.Payload, &ping); err != nil {
			return
		}
		pong, _ := ws.NewMessage(ws.MsgPong, s.currentTick(), ws.PongPayload{
			ClientTime: ping.ClientTime,
			ServerTime: uint64(time.Now().UnixMilli()),
		})
		s.conn.Send(pong)
	}
}

func (s *Session) currentTick() uint32 {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()
	return s.tick
}

func (s *Session) gameLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second / TickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.step(DT)
		case <-ctx.Done():
			return
		}
	}
}

// step runs one simulation tick: apply queued input, advance the flight, publish state.
func (s *Session) step(dt float64) {
	s.tickMu.Lock()
	s.tick++
	s.tickMu.Unlock()

	for _, in := range s.inputs.drain() {
		s.apply(in)
	}

	if s.flight.Tick(dt) == OutcomeMissed {
		s.metrics.Missed(s.ctx)
		s.log.Debug("missed", zap.Uint32("attempts", s.attempts))
	}

	s.broadcastState()
}

func (s *Session) apply(in PointerInput) {
	launched, l, err := in.Apply(s.flight, s.flight.Course().Camera)
	switch {
	case launched:
		s.attempts++
		s.metrics.Launched(s.ctx)
		s.log.Debug("launched",
			zap.Float64("vx", l.Velocity.X), zap.Float64("vy", l.Velocity.Y), zap.Float64("vz", l.Velocity.Z),
			zap.Float64("duration", l.Duration))
	case err == nil, errors.Is(err, ErrInFlight):
	case in.Click:
		s.log.Debug("launch rejected", zap.Error(err))
		s.reject(ws.MsgPointerClick, err)
	default:
		s.log.Debug("aim rejected", zap.Error(err))
	}
}

// scored is the flight's score callback.
func (s *Session) scored() {
	s.score++
	s.metrics.Scored(s.ctx)
	s.log.Info("scored", zap.Uint32("score", s.score), zap.Uint32("attempts", s.attempts))

	msg, err := ws.NewMessage(ws.MsgScored, s.tick, ws.ScoredPayload{
		Score:    s.score,
		Attempts: s.attempts,
	})
	if err != nil {
		s.log.Error("encode scored", zap.Error(err))
		return
	}
	s.conn.Send(msg)
}

func (s *Session) reject(input uint8, err error) {
	msg, encErr := ws.NewMessage(ws.MsgRejected, s.tick, ws.RejectedPayload{
		Input:  input,
		Reason: err.Error(),
	})
	if encErr != nil {
		return
	}
	s.conn.Send(msg)
}

// Snapshot returns the state a renderer needs for the current tick.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Tick:     s.tick,
		Ball:     s.flight.Ball(),
		Preview:  s.flight.Preview(),
		Score:    s.score,
		Attempts: s.attempts,
	}
}

func (s *Session) broadcastState() {
	msg, err := ws.NewMessage(ws.MsgSessionState, s.tick, s.Snapshot())
	if err != nil {
		s.log.Error("encode state", zap.Error(err))
		return
	}
	s.conn.Send(msg)
}
