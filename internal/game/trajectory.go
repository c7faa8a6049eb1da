package game

import (
	"errors"
	"fmt"
	"iter"
	"math"
)

// ErrInvalidTarget is returned when no usable launch velocity exists for a target.
var ErrInvalidTarget = errors.New("invalid launch target")

const (
	// minFlightTime is the shortest flight the solver accepts.
	minFlightTime = 1e-9

	// maxPreviewSamples bounds a preview whatever the flight duration.
	maxPreviewSamples = 1024
)

// Launch is a solved shot: initial velocity and the (stretched) flight duration.
type Launch struct {
	Velocity Vec3    `json:"velocity"`
	Duration float64 `json:"duration"`
}

// Solve computes the launch velocity that carries a ball from start toward target.
//
// The arc rises to max(start.Y, target.Y)+arcMargin. Horizontal speed covers the distance
// in the ascent+descent time scaled by arcStretch; vertical speed only depends on the rise
// to the peak, so the ball is not guaranteed to be at target.Y when it reaches target's
// X/Z. Shots feel flatter and faster with arcStretch < 1.
func Solve(start, target Vec3, gravity, arcStretch, arcMargin float64) (Launch, error) {
	if !(gravity > 0) || !isFinite(gravity) {
		return Launch{}, fmt.Errorf("gravity %v: %w", gravity, ErrInvalidTarget)
	}
	if !start.IsFinite() || !target.IsFinite() {
		return Launch{}, fmt.Errorf("non-finite endpoints: %w", ErrInvalidTarget)
	}

	peak := math.Max(start.Y, target.Y) + arcMargin
	tUp := math.Sqrt(2 * (peak - start.Y) / gravity)
	tDown := math.Sqrt(2 * (peak - target.Y) / gravity)
	total := (tUp + tDown) * arcStretch
	if !(total >= minFlightTime) || !isFinite(total) {
		return Launch{}, fmt.Errorf("flight time %v: %w", total, ErrInvalidTarget)
	}

	v := Vec3{
		X: (target.X - start.X) / total,
		Y: math.Sqrt(2 * gravity * (peak - start.Y)),
		Z: (target.Z - start.Z) / total,
	}
	if !v.IsFinite() {
		return Launch{}, fmt.Errorf("velocity %+v: %w", v, ErrInvalidTarget)
	}
	return Launch{Velocity: v, Duration: total}, nil
}

// PositionAt evaluates the closed-form arc at time t.
func PositionAt(start Vec3, velocity Vec3, gravity, t float64) Vec3 {
	p := start.Add(velocity.Scale(t))
	p.Y -= 0.5 * gravity * t * t
	return p
}

// Preview samples the predicted arc every step seconds from launch to l.Duration, at most
// maxPreviewSamples points. The sequence is finite and can be ranged over any number of times.
func Preview(start Vec3, l Launch, gravity, step float64) iter.Seq[Vec3] {
	return func(yield func(Vec3) bool) {
		if !(step > 0) {
			yield(start)
			return
		}
		// Index the samples instead of accumulating t so rounding never drops the last one.
		for i := 0; i < maxPreviewSamples; i++ {
			t := float64(i) * step
			if t > l.Duration {
				return
			}
			if !yield(PositionAt(start, l.Velocity, gravity, t)) {
				return
			}
		}
	}
}
