package game

import (
	"errors"
	"math"
)

// ErrUnprojectableAim is returned when the pointer ray cannot meet the launch depth plane.
var ErrUnprojectableAim = errors.New("aim ray does not intersect the launch plane")

// parallelEps bounds |dir.z| below which the ray counts as parallel to the plane.
const parallelEps = 1e-9

// Viewport is the pixel size of the surface the pointer moves over.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (v Viewport) Empty() bool {
	return !(v.Width > 0 && v.Height > 0)
}

func (v Viewport) Aspect() float64 {
	return v.Width / v.Height
}

// NDC converts top-down pixel coordinates to normalized device coordinates.
func (v Viewport) NDC(screenX, screenY float64) (x, y float64) {
	x = screenX/v.Width*2 - 1
	y = -(screenY/v.Height)*2 + 1
	return x, y
}

// ResolveAimPoint casts a ray from the camera through the pointer and intersects it with
// the plane z = depthRef.Z.
func ResolveAimPoint(screenX, screenY float64, vp Viewport, cam Camera, depthRef Vec3) (Vec3, error) {
	if vp.Empty() {
		return Vec3{}, ErrUnprojectableAim
	}
	x, y := vp.NDC(screenX, screenY)
	p, ok := cam.Unproject(V3(x, y, 0.5), vp.Aspect())
	if !ok {
		return Vec3{}, ErrUnprojectableAim
	}

	dir := p.Sub(cam.Position).Normalize()
	if math.Abs(dir.Z) < parallelEps {
		return Vec3{}, ErrUnprojectableAim
	}

	distance := (depthRef.Z - cam.Position.Z) / dir.Z
	hit := cam.Position.Add(dir.Scale(distance))
	if !hit.IsFinite() {
		return Vec3{}, ErrUnprojectableAim
	}
	return hit, nil
}
