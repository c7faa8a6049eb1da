package game

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vladimirvolkov/hoopshot/internal/telemetry"
	"github.com/vladimirvolkov/hoopshot/internal/ws"
)

type testCreator struct {
	ctx     context.Context
	course  Course
	metrics *telemetry.Metrics
}

func (c testCreator) CreateSession(conn *ws.Conn) {
	s := NewSession(conn, c.course, zap.NewNop(), c.metrics)
	s.Start(c.ctx)
	go func() {
		<-s.Done()
		conn.Close()
	}()
}

func dialSession(t *testing.T, course Course) (context.Context, *websocket.Conn) {
	t.Helper()
	return dialSessionWithMetrics(t, course, telemetry.Nop())
}

func dialSessionWithMetrics(t *testing.T, course Course, m *telemetry.Metrics) (context.Context, *websocket.Conn) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	hub := ws.NewHub(testCreator{ctx: ctx, course: course, metrics: m}, nil, nil, 0, zap.NewNop())
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	t.Cleanup(srv.Close)

	c, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.CloseNow() })
	return ctx, c
}

func send(t *testing.T, ctx context.Context, c *websocket.Conn, typ uint8, payload any) {
	t.Helper()
	msg, err := ws.NewMessage(typ, 0, payload)
	require.NoError(t, err)
	data, err := ws.Encode(msg)
	require.NoError(t, err)
	require.NoError(t, c.Write(ctx, websocket.MessageText, data))
}

// readUntil skips messages until one of type typ arrives and decodes its payload into v.
func readUntil(t *testing.T, ctx context.Context, c *websocket.Conn, typ uint8, v any) ws.Message {
	t.Helper()
	for {
		_, data, err := c.Read(ctx)
		require.NoError(t, err)
		msg, err := ws.Decode(data)
		require.NoError(t, err)
		if msg.Type == typ {
			require.NoError(t, json.Unmarshal(msg.Payload, v))
			return msg
		}
	}
}

func TestSessionAnnouncesCourse(t *testing.T) {
	ctx, c := dialSession(t, DefaultCourse())

	_, data, err := c.Read(ctx)
	require.NoError(t, err)
	msg, err := ws.Decode(data)
	require.NoError(t, err)
	require.Equal(t, ws.MsgSessionStart, msg.Type)

	var start struct {
		SessionID string `json:"sessionId"`
		Course    Course `json:"course"`
	}
	require.NoError(t, json.Unmarshal(msg.Payload, &start))
	assert.NotEmpty(t, start.SessionID)
	assert.Equal(t, DefaultCourse(), start.Course)
}

func TestSessionPointerMovePublishesPreview(t *testing.T) {
	ctx, c := dialSession(t, DefaultCourse())
	send(t, ctx, c, ws.MsgPointerMove, ws.PointerPayload{X: 200, Y: 150, Width: 800, Height: 600})

	for {
		var snap Snapshot
		readUntil(t, ctx, c, ws.MsgSessionState, &snap)
		if len(snap.Preview) > 0 {
			assert.Equal(t, LaunchPoint, snap.Preview[0])
			assert.Equal(t, PhaseIdle, snap.Ball.Phase)
			return
		}
	}
}

func TestSessionClickScores(t *testing.T) {
	course := DefaultCourse()
	course.AimAtHoopDepth = true
	rec := telemetry.NewRecorder()
	t.Cleanup(func() { _ = rec.Shutdown(context.Background()) })
	m, err := telemetry.New(rec.Meter("hoopshot"))
	require.NoError(t, err)
	ctx, c := dialSessionWithMetrics(t, course, m)

	sx, sy, visible := course.Camera.Project(scoringTarget, testViewport)
	require.True(t, visible)
	send(t, ctx, c, ws.MsgPointerClick, ws.PointerPayload{X: sx, Y: sy, Width: testViewport.Width, Height: testViewport.Height})

	var scored ws.ScoredPayload
	readUntil(t, ctx, c, ws.MsgScored, &scored)
	assert.Equal(t, uint32(1), scored.Score)
	assert.Equal(t, uint32(1), scored.Attempts)

	var snap Snapshot
	readUntil(t, ctx, c, ws.MsgSessionState, &snap)
	assert.Equal(t, PhaseIdle, snap.Ball.Phase)
	assert.Equal(t, LaunchPoint, snap.Ball.Position)
	assert.Equal(t, uint32(1), snap.Score)

	totals, err := rec.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), totals.Scores)
	assert.Equal(t, int64(1), totals.Launches)
	assert.Zero(t, totals.Misses)
	assert.Equal(t, int64(1), totals.Sessions)
}

func TestSessionRejectsUnprojectableClick(t *testing.T) {
	course := DefaultCourse()
	course.Camera.Target = course.Camera.Position.Add(V3(1, 0, 0))
	ctx, c := dialSession(t, course)

	send(t, ctx, c, ws.MsgPointerClick, ws.PointerPayload{X: 400, Y: 300, Width: 800, Height: 600})

	var rejected ws.RejectedPayload
	readUntil(t, ctx, c, ws.MsgRejected, &rejected)
	assert.Equal(t, ws.MsgPointerClick, rejected.Input)
	assert.Equal(t, ErrUnprojectableAim.Error(), rejected.Reason)
}

func TestSessionPong(t *testing.T) {
	ctx, c := dialSession(t, DefaultCourse())
	send(t, ctx, c, ws.MsgPing, ws.PingPayload{ClientTime: 1234})

	var pong ws.PongPayload
	readUntil(t, ctx, c, ws.MsgPong, &pong)
	assert.Equal(t, uint64(1234), pong.ClientTime)
	assert.NotZero(t, pong.ServerTime)
}

func TestSessionStepWithoutInputKeepsBallIdle(t *testing.T) {
	ctx, c := dialSession(t, DefaultCourse())

	var first, second Snapshot
	readUntil(t, ctx, c, ws.MsgSessionState, &first)
	readUntil(t, ctx, c, ws.MsgSessionState, &second)
	assert.Greater(t, second.Tick, first.Tick)
	assert.Equal(t, NewBall(LaunchPoint), second.Ball)
	assert.Zero(t, second.Attempts)
}
