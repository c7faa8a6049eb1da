package game

import "math"

// Mat4 is a column-major 4x4 matrix: element (row r, col c) lives at m[c*4+r].
type Mat4 [16]float64

func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

func (m Mat4) at(r, c int) float64 {
	return m[c*4+r]
}

// Mul returns m * n.
func (m Mat4) Mul(n Mat4) Mat4 {
	var out Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m.at(r, k) * n.at(k, c)
			}
			out[c*4+r] = sum
		}
	}
	return out
}

// TransformPoint applies m to (v, 1) and divides by w.
func (m Mat4) TransformPoint(v Vec3) (Vec3, float64) {
	x := m.at(0, 0)*v.X + m.at(0, 1)*v.Y + m.at(0, 2)*v.Z + m.at(0, 3)
	y := m.at(1, 0)*v.X + m.at(1, 1)*v.Y + m.at(1, 2)*v.Z + m.at(1, 3)
	z := m.at(2, 0)*v.X + m.at(2, 1)*v.Y + m.at(2, 2)*v.Z + m.at(2, 3)
	w := m.at(3, 0)*v.X + m.at(3, 1)*v.Y + m.at(3, 2)*v.Z + m.at(3, 3)
	if w == 0 {
		return Vec3{x, y, z}, 0
	}
	return Vec3{x / w, y / w, z / w}, w
}

// Inverse returns the inverse of m. ok is false when m is singular.
func (m Mat4) Inverse() (inv Mat4, ok bool) {
	// cofactor expansion
	inv[0] = m[5]*m[10]*m[15] - m[5]*m[11]*m[14] - m[9]*m[6]*m[15] + m[9]*m[7]*m[14] + m[13]*m[6]*m[11] - m[13]*m[7]*m[10]
	inv[4] = -m[4]*m[10]*m[15] + m[4]*m[11]*m[14] + m[8]*m[6]*m[15] - m[8]*m[7]*m[14] - m[12]*m[6]*m[11] + m[12]*m[7]*m[10]
	inv[8] = m[4]*m[9]*m[15] - m[4]*m[11]*m[13] - m[8]*m[5]*m[15] + m[8]*m[7]*m[13] + m[12]*m[5]*m[11] - m[12]*m[7]*m[9]
	inv[12] = -m[4]*m[9]*m[14] + m[4]*m[10]*m[13] + m[8]*m[5]*m[14] - m[8]*m[6]*m[13] - m[12]*m[5]*m[10] + m[12]*m[6]*m[9]
	inv[1] = -m[1]*m[10]*m[15] + m[1]*m[11]*m[14] + m[9]*m[2]*m[15] - m[9]*m[3]*m[14] - m[13]*m[2]*m[11] + m[13]*m[3]*m[10]
	inv[5] = m[0]*m[10]*m[15] - m[0]*m[11]*m[14] - m[8]*m[2]*m[15] + m[8]*m[3]*m[14] + m[12]*m[2]*m[11] - m[12]*m[3]*m[10]
	inv[9] = -m[0]*m[9]*m[15] + m[0]*m[11]*m[13] + m[8]*m[1]*m[15] - m[8]*m[3]*m[13] - m[12]*m[1]*m[11] + m[12]*m[3]*m[9]
	inv[13] = m[0]*m[9]*m[14] - m[0]*m[10]*m[13] - m[8]*m[1]*m[14] + m[8]*m[2]*m[13] + m[12]*m[1]*m[10] - m[12]*m[2]*m[9]
	inv[2] = m[1]*m[6]*m[15] - m[1]*m[7]*m[14] - m[5]*m[2]*m[15] + m[5]*m[3]*m[14] + m[13]*m[2]*m[7] - m[13]*m[3]*m[6]
	inv[6] = -m[0]*m[6]*m[15] + m[0]*m[7]*m[14] + m[4]*m[2]*m[15] - m[4]*m[3]*m[14] - m[12]*m[2]*m[7] + m[12]*m[3]*m[6]
	inv[10] = m[0]*m[5]*m[15] - m[0]*m[7]*m[13] - m[4]*m[1]*m[15] + m[4]*m[3]*m[13] + m[12]*m[1]*m[7] - m[12]*m[3]*m[5]
	inv[14] = -m[0]*m[5]*m[14] + m[0]*m[6]*m[13] + m[4]*m[1]*m[14] - m[4]*m[2]*m[13] - m[12]*m[1]*m[6] + m[12]*m[2]*m[5]
	inv[3] = -m[1]*m[6]*m[11] + m[1]*m[7]*m[10] + m[5]*m[2]*m[11] - m[5]*m[3]*m[10] - m[9]*m[2]*m[7] + m[9]*m[3]*m[6]
	inv[7] = m[0]*m[6]*m[11] - m[0]*m[7]*m[10] - m[4]*m[2]*m[11] + m[4]*m[3]*m[10] + m[8]*m[2]*m[7] - m[8]*m[3]*m[6]
	inv[11] = -m[0]*m[5]*m[11] + m[0]*m[7]*m[9] + m[4]*m[1]*m[11] - m[4]*m[3]*m[9] - m[8]*m[1]*m[7] + m[8]*m[3]*m[5]
	inv[15] = m[0]*m[5]*m[10] - m[0]*m[6]*m[9] - m[4]*m[1]*m[10] + m[4]*m[2]*m[9] + m[8]*m[1]*m[6] - m[8]*m[2]*m[5]

	det := m[0]*inv[0] + m[1]*inv[4] + m[2]*inv[8] + m[3]*inv[12]
	if det == 0 || !isFinite(det) {
		return Mat4{}, false
	}
	for i := range inv {
		inv[i] /= det
	}
	return inv, true
}

// Perspective builds an OpenGL-style projection (NDC z in [-1, 1]).
func Perspective(fovYDeg, aspect, near, far float64) Mat4 {
	f := 1 / math.Tan(fovYDeg*math.Pi/360)
	nf := 1 / (near - far)
	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) * nf, -1,
		0, 0, 2 * far * near * nf, 0,
	}
}

// LookAt builds a view matrix for an eye looking at target.
func LookAt(eye, target, up Vec3) Mat4 {
	f := target.Sub(eye).Normalize()
	s := f.Cross(up).Normalize()
	u := s.Cross(f)
	return Mat4{
		s.X, u.X, -f.X, 0,
		s.Y, u.Y, -f.Y, 0,
		s.Z, u.Z, -f.Z, 0,
		-s.Dot(eye), -u.Dot(eye), f.Dot(eye), 1,
	}
}

// Camera is a perspective camera in world space.
type Camera struct {
	Position Vec3    `json:"position" yaml:"position"`
	Target   Vec3    `json:"target" yaml:"target"`
	Up       Vec3    `json:"up" yaml:"up"`
	FovY     float64 `json:"fov" yaml:"fov"`
	Near     float64 `json:"near" yaml:"near"`
	Far      float64 `json:"far" yaml:"far"`
}

// DefaultCamera sits in front of the court looking straight down -Z.
func DefaultCamera() Camera {
	return Camera{
		Position: V3(2.5, 3.5, 8),
		Target:   V3(2.5, 3.5, 7),
		Up:       V3(0, 1, 0),
		FovY:     50,
		Near:     0.1,
		Far:      2000,
	}
}

func (c Camera) View() Mat4 {
	return LookAt(c.Position, c.Target, c.Up)
}

func (c Camera) Projection(aspect float64) Mat4 {
	return Perspective(c.FovY, aspect, c.Near, c.Far)
}

// Unproject maps a normalized device coordinate back into world space.
func (c Camera) Unproject(ndc Vec3, aspect float64) (Vec3, bool) {
	inv, ok := c.Projection(aspect).Mul(c.View()).Inverse()
	if !ok {
		return Vec3{}, false
	}
	p, w := inv.TransformPoint(ndc)
	if w == 0 || !p.IsFinite() {
		return Vec3{}, false
	}
	return p, true
}

// Project maps a world point to viewport pixels (top-left origin). visible is false for
// points at or behind the camera plane.
func (c Camera) Project(p Vec3, vp Viewport) (sx, sy float64, visible bool) {
	if vp.Empty() {
		return 0, 0, false
	}
	ndc, w := c.Projection(vp.Aspect()).Mul(c.View()).TransformPoint(p)
	if w <= 0 {
		return 0, 0, false
	}
	sx = (ndc.X + 1) / 2 * vp.Width
	sy = (1 - ndc.Y) / 2 * vp.Height
	return sx, sy, true
}
