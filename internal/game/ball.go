package game

// NewBall returns a ball resting at the launch point.
func NewBall(launch Vec3) BallState {
	return BallState{
		Position: launch,
		Phase:    PhaseIdle,
	}
}

// StepBall advances a ball in flight by dt with explicit Euler: position first, using the
// velocity from the start of the step, then gravity.
func StepBall(b *BallState, gravity, dt float64) {
	if b.Phase != PhaseInFlight || !(dt > 0) {
		return
	}

	// Integrate
	b.Position = b.Position.Add(b.Velocity.Scale(dt))

	// Gravity
	b.Velocity.Y -= gravity * dt
}

// resetBall puts the ball back on the launch point, idle and at rest.
func resetBall(b *BallState, launch Vec3) {
	*b = NewBall(launch)
}
