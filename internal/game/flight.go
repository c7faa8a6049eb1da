package game

import (
	"errors"
	"slices"
)

// ErrInFlight is returned for aim and launch input while a shot is in the air.
var ErrInFlight = errors.New("ball is in flight")

// Flight owns the single ball of a session and moves it between idle and in-flight.
// It is not safe for concurrent use; the owner applies input between ticks.
type Flight struct {
	course  Course
	ball    BallState
	preview []Vec3
	onScore func()
}

// NewFlight places the ball at the course launch point. onScore may be nil.
func NewFlight(course Course, onScore func()) *Flight {
	return &Flight{
		course:  course,
		ball:    NewBall(course.LaunchPoint),
		onScore: onScore,
	}
}

func (f *Flight) Course() Course {
	return f.course
}

func (f *Flight) Ball() BallState {
	return f.ball
}

// Preview returns a copy of the current aim preview, nil when there is none.
func (f *Flight) Preview() []Vec3 {
	return slices.Clone(f.preview)
}

func (f *Flight) solve(target Vec3) (Launch, error) {
	c := &f.course
	return Solve(f.ball.Position, target, c.Gravity, c.ArcStretch, c.ArcMargin)
}

// Aim recomputes the preview toward target. An unreachable target clears the preview.
func (f *Flight) Aim(target Vec3) error {
	if f.ball.Phase != PhaseIdle {
		return ErrInFlight
	}
	l, err := f.solve(target)
	if err != nil {
		f.preview = nil
		return err
	}
	f.preview = slices.AppendSeq(f.preview[:0], Preview(f.ball.Position, l, f.course.Gravity, f.course.PreviewStep))
	return nil
}

// Launch shoots the ball toward target. On error the ball stays idle and untouched.
func (f *Flight) Launch(target Vec3) (Launch, error) {
	if f.ball.Phase != PhaseIdle {
		return Launch{}, ErrInFlight
	}
	l, err := f.solve(target)
	if err != nil {
		return Launch{}, err
	}
	f.preview = nil
	f.ball.Velocity = l.Velocity
	f.ball.Phase = PhaseInFlight
	return l, nil
}

func (f *Flight) resolve(screenX, screenY float64, vp Viewport, cam Camera) (Vec3, error) {
	depthRef := f.ball.Position
	if f.course.AimAtHoopDepth {
		depthRef.Z = f.course.Hoop.Center.Z
	}
	return ResolveAimPoint(screenX, screenY, vp, cam, depthRef)
}

// PointerMove aims at the pointer. An unprojectable pointer keeps the previous preview.
func (f *Flight) PointerMove(screenX, screenY float64, vp Viewport, cam Camera) error {
	if f.ball.Phase != PhaseIdle {
		return ErrInFlight
	}
	target, err := f.resolve(screenX, screenY, vp, cam)
	if err != nil {
		return err
	}
	return f.Aim(target)
}

// PointerClick launches toward the pointer.
func (f *Flight) PointerClick(screenX, screenY float64, vp Viewport, cam Camera) (Launch, error) {
	if f.ball.Phase != PhaseIdle {
		return Launch{}, ErrInFlight
	}
	target, err := f.resolve(screenX, screenY, vp, cam)
	if err != nil {
		return Launch{}, err
	}
	return f.Launch(target)
}

// Tick advances a ball in flight by dt and ends the shot on a score or ground contact.
// The score check runs first, so a ball that reaches the hoop and the ground in the same
// tick counts as a score.
func (f *Flight) Tick(dt float64) Outcome {
	if f.ball.Phase != PhaseInFlight {
		return OutcomeIdle
	}

	StepBall(&f.ball, f.course.Gravity, dt)

	if CheckBallHoop(&f.ball, &f.course.Hoop) {
		f.reset()
		if f.onScore != nil {
			f.onScore()
		}
		return OutcomeScored
	}
	if CheckGround(&f.ball, f.course.GroundLevel) {
		f.reset()
		return OutcomeMissed
	}
	return OutcomeFlying
}

func (f *Flight) reset() {
	resetBall(&f.ball, f.course.LaunchPoint)
	f.preview = nil
}
