package game

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scoringTarget sits a meter under the rim center; the arc toward it comes down
// through the scoring sphere.
var scoringTarget = HoopCenter.Sub(V3(0, 1, 0))

func runShot(t *testing.T, f *Flight) (Outcome, int) {
	t.Helper()
	for tick := 1; tick <= 10*TickRate; tick++ {
		if o := f.Tick(DT); o != OutcomeFlying {
			return o, tick
		}
	}
	t.Fatal("shot never ended")
	return OutcomeFlying, 0
}

func requireIdleAtLaunch(t *testing.T, f *Flight) {
	t.Helper()
	b := f.Ball()
	require.Equal(t, PhaseIdle, b.Phase)
	require.Equal(t, f.Course().LaunchPoint, b.Position)
	require.Equal(t, Vec3{}, b.Velocity)
}

func TestNewFlightStartsIdle(t *testing.T) {
	f := NewFlight(DefaultCourse(), nil)
	requireIdleAtLaunch(t, f)
	assert.Nil(t, f.Preview())
	assert.Equal(t, OutcomeIdle, f.Tick(DT))
	requireIdleAtLaunch(t, f)
}

func TestAimBuildsPreview(t *testing.T) {
	f := NewFlight(DefaultCourse(), nil)
	require.NoError(t, f.Aim(HoopCenter))

	preview := f.Preview()
	require.NotEmpty(t, preview)
	assert.Equal(t, LaunchPoint, preview[0])
	requireIdleAtLaunch(t, f)

	// The returned slice is a copy.
	preview[0] = Vec3{}
	assert.Equal(t, LaunchPoint, f.Preview()[0])
}

func TestAimInvalidTargetClearsPreview(t *testing.T) {
	f := NewFlight(DefaultCourse(), nil)
	require.NoError(t, f.Aim(HoopCenter))

	err := f.Aim(V3(math.NaN(), 0, 0))
	require.ErrorIs(t, err, ErrInvalidTarget)
	assert.Nil(t, f.Preview())
	requireIdleAtLaunch(t, f)
}

func TestPointerMoveUnprojectableKeepsPreview(t *testing.T) {
	f := NewFlight(DefaultCourse(), nil)
	cam := f.Course().Camera
	require.NoError(t, f.PointerMove(100, 100, testViewport, cam))
	before := f.Preview()
	require.NotEmpty(t, before)

	err := f.PointerMove(100, 100, Viewport{}, cam)
	require.ErrorIs(t, err, ErrUnprojectableAim)
	assert.Equal(t, before, f.Preview())
}

func TestLaunchRejectedStaysIdle(t *testing.T) {
	f := NewFlight(DefaultCourse(), nil)
	_, err := f.Launch(V3(0, math.Inf(1), 0))
	require.ErrorIs(t, err, ErrInvalidTarget)
	requireIdleAtLaunch(t, f)

	_, err = f.PointerClick(10, 10, Viewport{}, f.Course().Camera)
	require.ErrorIs(t, err, ErrUnprojectableAim)
	requireIdleAtLaunch(t, f)
}

func TestLaunchSuppressesInputInFlight(t *testing.T) {
	f := NewFlight(DefaultCourse(), nil)
	require.NoError(t, f.Aim(scoringTarget))

	l, err := f.Launch(scoringTarget)
	require.NoError(t, err)

	b := f.Ball()
	assert.Equal(t, PhaseInFlight, b.Phase)
	assert.Equal(t, l.Velocity, b.Velocity)
	assert.Equal(t, LaunchPoint, b.Position)
	assert.Nil(t, f.Preview())

	assert.ErrorIs(t, f.Aim(HoopCenter), ErrInFlight)
	_, err = f.Launch(HoopCenter)
	assert.ErrorIs(t, err, ErrInFlight)
	assert.ErrorIs(t, f.PointerMove(1, 1, testViewport, f.Course().Camera), ErrInFlight)
	_, err = f.PointerClick(1, 1, testViewport, f.Course().Camera)
	assert.ErrorIs(t, err, ErrInFlight)

	assert.Equal(t, l.Velocity, f.Ball().Velocity)
	assert.Nil(t, f.Preview())
}

func TestShotScoresOnce(t *testing.T) {
	calls := 0
	f := NewFlight(DefaultCourse(), func() { calls++ })
	_, err := f.Launch(scoringTarget)
	require.NoError(t, err)

	outcome, tick := runShot(t, f)
	assert.Equal(t, OutcomeScored, outcome)
	assert.Less(t, tick, 2*TickRate)
	assert.Equal(t, 1, calls)
	requireIdleAtLaunch(t, f)
	assert.Nil(t, f.Preview())

	assert.Equal(t, OutcomeIdle, f.Tick(DT))
	assert.Equal(t, 1, calls)
}

func TestShotAtRimCenterPassesAboveAndMisses(t *testing.T) {
	// The ball reaches the rim center at the end of its flight, still above
	// it while inside the sphere, then falls back out under the hoop.
	calls := 0
	f := NewFlight(DefaultCourse(), func() { calls++ })
	_, err := f.Launch(HoopCenter)
	require.NoError(t, err)

	outcome, _ := runShot(t, f)
	assert.Equal(t, OutcomeMissed, outcome)
	assert.Zero(t, calls)
	requireIdleAtLaunch(t, f)
}

func TestScoreBeatsGroundInSameTick(t *testing.T) {
	course := DefaultCourse()
	course.Hoop = Hoop{Center: V3(0, 1, 0), Radius: 1}
	course.GroundLevel = 0.9

	calls := 0
	f := NewFlight(course, func() { calls++ })
	f.ball = BallState{Position: V3(0, 0.8, 0), Phase: PhaseInFlight}

	assert.Equal(t, OutcomeScored, f.Tick(DT))
	assert.Equal(t, 1, calls)
	requireIdleAtLaunch(t, f)
}

func TestGroundContactMisses(t *testing.T) {
	calls := 0
	f := NewFlight(DefaultCourse(), func() { calls++ })
	f.ball = BallState{Position: V3(20, GroundLevel+0.01, 0), Velocity: V3(0, -5, 0), Phase: PhaseInFlight}

	assert.Equal(t, OutcomeMissed, f.Tick(DT))
	assert.Zero(t, calls)
	requireIdleAtLaunch(t, f)
}

func TestPointerClickOnHoopDepthPlaneScores(t *testing.T) {
	course := DefaultCourse()
	course.AimAtHoopDepth = true
	f := NewFlight(course, nil)
	cam := course.Camera

	sx, sy, visible := cam.Project(scoringTarget, testViewport)
	require.True(t, visible)

	require.NoError(t, f.PointerMove(sx, sy, testViewport, cam))
	preview := f.Preview()
	require.NotEmpty(t, preview)

	_, err := f.PointerClick(sx, sy, testViewport, cam)
	require.NoError(t, err)

	outcome, _ := runShot(t, f)
	assert.Equal(t, OutcomeScored, outcome)
}

func TestPointerAimsOnLaunchPlaneByDefault(t *testing.T) {
	f := NewFlight(DefaultCourse(), nil)
	cam := f.Course().Camera

	// The viewport center resolves straight ahead of the camera on z = launch z.
	l, err := f.PointerClick(400, 300, testViewport, cam)
	require.NoError(t, err)

	want, err := Solve(LaunchPoint, V3(2.5, 3.5, LaunchPoint.Z), Gravity, ArcStretch, ArcMargin)
	require.NoError(t, err)
	assert.True(t, l.Velocity.ApproxEqual(want.Velocity, 1e-9))
	assert.InDelta(t, want.Duration, l.Duration, 1e-9)
}

func TestPointerInputApply(t *testing.T) {
	f := NewFlight(DefaultCourse(), nil)
	cam := f.Course().Camera

	launched, _, err := PointerInput{X: 400, Y: 300, Viewport: testViewport}.Apply(f, cam)
	require.NoError(t, err)
	assert.False(t, launched)
	assert.NotEmpty(t, f.Preview())

	launched, l, err := PointerInput{Click: true, X: 400, Y: 300, Viewport: testViewport}.Apply(f, cam)
	require.NoError(t, err)
	assert.True(t, launched)
	assert.Equal(t, l.Velocity, f.Ball().Velocity)

	launched, _, err = PointerInput{Click: true, X: 400, Y: 300, Viewport: testViewport}.Apply(f, cam)
	assert.ErrorIs(t, err, ErrInFlight)
	assert.False(t, launched)
}
