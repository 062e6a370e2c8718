package space

import "math"

// Rotation increments.
const (
	AutoRotateX = 0.001 // radians per tick about X
	AutoRotateY = 0.002 // radians per tick about Y
	DragFactor  = 0.01  // radians per pixel of pointer movement
)

// RotationState tracks the view rotation between frames. Dragging and
// auto-rotation are mutually exclusive: starting a drag stops auto-rotation,
// and enabling auto-rotation ends any drag.
type RotationState struct {
	Rotation
	AutoRotate bool
	dragging   bool
}

// NewRotationState returns a state at zero angles.
func NewRotationState(autoRotate bool) *RotationState {
	return &RotationState{AutoRotate: autoRotate}
}

// Dragging reports whether a drag is in progress.
func (r *RotationState) Dragging() bool {
	return r.dragging
}

// Tick advances auto-rotation by one frame. It is a no-op while dragging or
// when auto-rotation is off.
func (r *RotationState) Tick() {
	if r.AutoRotate && !r.dragging {
		r.AngleX += AutoRotateX
		r.AngleY += AutoRotateY
	}
	r.normalize()
}

// BeginDrag starts a pointer drag and turns auto-rotation off.
func (r *RotationState) BeginDrag() {
	r.dragging = true
	r.AutoRotate = false
}

// Drag applies a pointer delta since the last frame. Deltas outside a drag
// are ignored.
func (r *RotationState) Drag(dx, dy float64) {
	if !r.dragging {
		return
	}
	if math.IsNaN(dx) || math.IsInf(dx, 0) || math.IsNaN(dy) || math.IsInf(dy, 0) {
		return
	}
	r.AngleX += dy * DragFactor
	r.AngleY += dx * DragFactor
	r.normalize()
}

// EndDrag finishes a drag. Auto-rotation stays off until re-enabled.
func (r *RotationState) EndDrag() {
	r.dragging = false
}

// SetAutoRotate toggles auto-rotation; enabling it ends any drag.
func (r *RotationState) SetAutoRotate(on bool) {
	r.AutoRotate = on
	if on {
		r.dragging = false
	}
}

// normalize resets non-finite angles and wraps the rest into (-2π, 2π).
func (r *RotationState) normalize() {
	r.AngleX = wrapAngle(r.AngleX)
	r.AngleY = wrapAngle(r.AngleY)
}

func wrapAngle(a float64) float64 {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return 0
	}
	return math.Mod(a, 2*math.Pi)
}
