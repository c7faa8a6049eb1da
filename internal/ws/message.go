package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Client -> Server message types
const (
	MsgPointerMove  uint8 = 0x01
	MsgPointerClick uint8 = 0x02
	MsgPing         uint8 = 0x04
)

// Server -> Client message types
const (
	MsgSessionState uint8 = 0x81
	MsgSessionStart uint8 = 0x82
	MsgScored       uint8 = 0x84
	MsgPong         uint8 = 0x86
	MsgRejected     uint8 = 0x88
)

// maxViewportDim bounds reported viewport sizes (pixels).
const maxViewportDim = 16384

var ErrBadPointer = errors.New("bad pointer payload")

type Message struct {
	Type    uint8           `json:"type"`
	Tick    uint32          `json:"tick"`
	Payload json.RawMessage `json:"payload"`
}

// PointerPayload is a pointer position in viewport pixels, origin top-left.
type PointerPayload struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Validate checks the pointer lies inside a sane viewport.
func (p PointerPayload) Validate() error {
	for _, v := range []float64{p.X, p.Y, p.Width, p.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite value", ErrBadPointer)
		}
	}
	if p.Width <= 0 || p.Height <= 0 || p.Width > maxViewportDim || p.Height > maxViewportDim {
		return fmt.Errorf("%w: viewport %vx%v", ErrBadPointer, p.Width, p.Height)
	}
	if p.X < 0 || p.Y < 0 || p.X > p.Width || p.Y > p.Height {
		return fmt.Errorf("%w: (%v,%v) outside viewport", ErrBadPointer, p.X, p.Y)
	}
	return nil
}

type PingPayload struct {
	ClientTime uint64 `json:"clientTime"`
}

type PongPayload struct {
	ClientTime uint64 `json:"clientTime"`
	ServerTime uint64 `json:"serverTime"`
}

// SessionStartPayload announces a session and the course it plays on.
type SessionStartPayload struct {
	SessionID string `json:"sessionId"`
	Course    any    `json:"course"`
}

type ScoredPayload struct {
	Score    uint32 `json:"score"`
	Attempts uint32 `json:"attempts"`
}

type RejectedPayload struct {
	Input  uint8  `json:"input"`
	Reason string `json:"reason"`
}

func Encode(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

func Decode(data []byte) (Message, error) {
	var msg Message
	err := json.Unmarshal(data, &msg)
	return msg, err
}

func NewMessage(typ uint8, tick uint32, payload any) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{
		Type:    typ,
		Tick:    tick,
		Payload: json.RawMessage(data),
	}, nil
}

// DecodePointer unmarshals and validates a pointer message payload.
func DecodePointer(msg Message) (PointerPayload, error) {
	var p PointerPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		return PointerPayload{}, fmt.Errorf("%w: %v", ErrBadPointer, err)
	}
	if err := p.Validate(); err != nil {
		return PointerPayload{}, err
	}
	return p, nil
}
