package game

import "sync"

// maxPendingInputs bounds the queue between the read loop and the game loop.
const maxPendingInputs = 32

// PointerInput is a pointer event in viewport pixels, origin top-left.
type PointerInput struct {
	Click    bool
	X, Y     float64
	Viewport Viewport
}

// inputQueue hands pointer events from the network goroutine to the game loop.
type inputQueue struct {
	mu     sync.Mutex
	events []PointerInput
}

// push keeps at most one trailing move: only the latest pointer position matters.
// Clicks are kept in order; overflow is dropped.
func (q *inputQueue) push(in PointerInput) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !in.Click {
		if n := len(q.events); n > 0 && !q.events[n-1].Click {
			q.events[n-1] = in
			return
		}
	}
	if len(q.events) >= maxPendingInputs {
		return
	}
	q.events = append(q.events, in)
}

func (q *inputQueue) drain() []PointerInput {
	q.mu.Lock()
	defer q.mu.Unlock()
	events := q.events
	q.events = nil
	return events
}

// Apply feeds one pointer event to the flight using cam for ray casting.
func (in PointerInput) Apply(f *Flight, cam Camera) (launched bool, l Launch, err error) {
	if !in.Click {
		return false, Launch{}, f.PointerMove(in.X, in.Y, in.Viewport, cam)
	}
	l, err = f.PointerClick(in.X, in.Y, in.Viewport, cam)
	return err == nil, l, err
}
