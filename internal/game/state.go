package game

// Simulation & court constants
const (
	TickRate = 60
	DT       = 1.0 / float64(TickRate)

	Gravity     = 9.8
	GroundLevel = 0.3

	HoopRadius = 1.0

	ArcStretch  = 0.85 // shortens the ballistic flight time for a flatter arc
	ArcMargin   = 0.7  // clearance of the arc peak above the higher endpoint
	PreviewStep = 0.05 // seconds between preview samples

	BallRadius = 0.2 // render only; scoring treats the ball as a point
)

var (
	LaunchPoint = Vec3{X: 5.5, Y: 3, Z: 2.0}
	HoopCenter  = Vec3{X: -2.82, Y: 7.83, Z: -5}
)

type FlightPhase uint8

const (
	PhaseIdle FlightPhase = iota
	PhaseInFlight
)

func (p FlightPhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseInFlight:
		return "in_flight"
	default:
		return "unknown"
	}
}

type BallState struct {
	Position Vec3        `json:"position"`
	Velocity Vec3        `json:"velocity"`
	Phase    FlightPhase `json:"phase"`
}

// Outcome is what a single tick did to the ball.
type Outcome uint8

const (
	OutcomeIdle Outcome = iota // nothing in flight
	OutcomeFlying
	OutcomeScored
	OutcomeMissed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIdle:
		return "idle"
	case OutcomeFlying:
		return "flying"
	case OutcomeScored:
		return "scored"
	case OutcomeMissed:
		return "missed"
	default:
		return "unknown"
	}
}

// Snapshot is the per-tick view sent to renderers.
type Snapshot struct {
	Tick     uint32    `json:"tick"`
	Ball     BallState `json:"ball"`
	Preview  []Vec3    `json:"preview,omitempty"`
	Score    uint32    `json:"score"`
	Attempts uint32    `json:"attempts"`
}
