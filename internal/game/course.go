package game

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Course is the fixed configuration of a session. It is read-only once a Flight exists.
type Course struct {
	LaunchPoint Vec3    `json:"launchPoint" yaml:"launchPoint"`
	Hoop        Hoop    `json:"hoop" yaml:"hoop"`
	GroundLevel float64 `json:"groundLevel" yaml:"groundLevel"`
	Gravity     float64 `json:"gravity" yaml:"gravity"`
	ArcStretch  float64 `json:"arcStretch" yaml:"arcStretch"`
	ArcMargin   float64 `json:"arcMargin" yaml:"arcMargin"`
	PreviewStep float64 `json:"previewStep" yaml:"previewStep"`
	Camera      Camera  `json:"camera" yaml:"camera"`

	// AimAtHoopDepth casts pointer rays onto the hoop's depth plane instead of the
	// launch point's. With the default court the hoop sits off the launch plane, so
	// only this mode lets pointer-aimed shots reach it.
	AimAtHoopDepth bool `json:"aimAtHoopDepth" yaml:"aimAtHoopDepth"`
}

func DefaultCourse() Course {
	return Course{
		LaunchPoint: LaunchPoint,
		Hoop:        DefaultHoop(),
		GroundLevel: GroundLevel,
		Gravity:     Gravity,
		ArcStretch:  ArcStretch,
		ArcMargin:   ArcMargin,
		PreviewStep: PreviewStep,
		Camera:      DefaultCamera(),
	}
}

// Validate rejects courses the solver or the scoring checks cannot work with.
func (c Course) Validate() error {
	var errs []error
	if !(c.Gravity > 0) {
		errs = append(errs, fmt.Errorf("gravity must be positive, got %v", c.Gravity))
	}
	if !(c.ArcStretch > 0) {
		errs = append(errs, fmt.Errorf("arcStretch must be positive, got %v", c.ArcStretch))
	}
	if !(c.ArcMargin >= 0) {
		errs = append(errs, fmt.Errorf("arcMargin must not be negative, got %v", c.ArcMargin))
	}
	if !(c.PreviewStep > 0) {
		errs = append(errs, fmt.Errorf("previewStep must be positive, got %v", c.PreviewStep))
	}
	if !(c.Hoop.Radius > 0) {
		errs = append(errs, fmt.Errorf("hoop radius must be positive, got %v", c.Hoop.Radius))
	}
	if !c.LaunchPoint.IsFinite() || !c.Hoop.Center.IsFinite() {
		errs = append(errs, errors.New("launch point and hoop center must be finite"))
	}
	if c.LaunchPoint.Y <= c.GroundLevel {
		errs = append(errs, fmt.Errorf("launch point y %v is not above ground level %v", c.LaunchPoint.Y, c.GroundLevel))
	}
	if !(c.Camera.FovY > 0 && c.Camera.FovY < 180) || !(c.Camera.Near > 0) || !(c.Camera.Far > c.Camera.Near) {
		errs = append(errs, errors.New("camera needs 0 < fov < 180 and 0 < near < far"))
	}
	if c.Camera.Target.Sub(c.Camera.Position).Len() == 0 {
		errs = append(errs, errors.New("camera target must differ from its position"))
	}
	return errors.Join(errs...)
}

// LoadCourse decodes a YAML course over the fixed court of DefaultCourse. Fields missing
// from the document, and an empty document, keep the fixed court's values.
func LoadCourse(r io.Reader) (Course, error) {
	c := DefaultCourse()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Course{}, fmt.Errorf("decode course: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Course{}, fmt.Errorf("invalid course: %w", err)
	}
	return c, nil
}

// LoadCourseFile is LoadCourse for a path on disk.
func LoadCourseFile(path string) (Course, error) {
	f, err := os.Open(path)
	if err != nil {
		return Course{}, fmt.Errorf("open course: %w", err)
	}
	defer f.Close()
	return LoadCourse(f)
}
