package game

// Hoop is the scoring volume: a sphere around the rim center.
type Hoop struct {
	Center Vec3    `json:"center" yaml:"center"`
	Radius float64 `json:"radius" yaml:"radius"`
}

func DefaultHoop() Hoop {
	return Hoop{Center: HoopCenter, Radius: HoopRadius}
}

// Contains reports whether p is strictly inside the scoring sphere.
func (h Hoop) Contains(p Vec3) bool {
	return p.DistanceTo(h.Center) < h.Radius
}

// CheckBallHoop reports a score: the ball is inside the sphere and below the rim center,
// i.e. it has come down through the hoop rather than skimming over it.
func CheckBallHoop(b *BallState, h *Hoop) bool {
	if b.Phase != PhaseInFlight {
		return false
	}
	return h.Contains(b.Position) && b.Position.Y < h.Center.Y
}

// CheckGround reports contact with the ground plane.
func CheckGround(b *BallState, groundLevel float64) bool {
	return b.Phase == PhaseInFlight && b.Position.Y <= groundLevel
}
