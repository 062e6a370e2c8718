package space

import (
	"math"
	"sort"
)

// DefaultFocalLength is the perspective focal length.
const DefaultFocalLength = 800

// PointRadius is the on-screen radius of a point at scale 1.
const PointRadius = 6

// minDepthOffset keeps the perspective divisor positive when a point swings
// behind the camera.
const minDepthOffset = 1e-3

// Rotation holds the two view angles in radians.
type Rotation struct {
	AngleX float64 `json:"angle_x"`
	AngleY float64 `json:"angle_y"`
}

// Projected is a point drawn on the canvas.
type Projected struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Depth  float64 `json:"depth"` // rotated z before projection; larger is drawn first
	Scale  float64 `json:"scale"`
	Radius float64 `json:"radius"`
	Index  int     `json:"index"`
}

// Rotate applies the rotation about the X axis and then about the Y axis.
func Rotate(x, y, z float64, rot Rotation) (float64, float64, float64) {
	sinX, cosX := math.Sincos(rot.AngleX)
	y1 := y*cosX - z*sinX
	z1 := y*sinX + z*cosX

	sinY, cosY := math.Sincos(rot.AngleY)
	x2 := x*cosY + z1*sinY
	z2 := -x*sinY + z1*cosY

	return x2, y1, z2
}

// Project rotates p and applies the perspective divide
// scale = focal/(focal+z) around the canvas center (cx, cy). A non-positive
// focal length uses DefaultFocalLength.
func Project(p Point3D, rot Rotation, cx, cy, focal float64) Projected {
	if !(focal > 0) || math.IsInf(focal, 0) {
		focal = DefaultFocalLength
	}
	x, y, z := Rotate(p.X, p.Y, p.Z, rot)

	denom := focal + z
	if denom < minDepthOffset {
		denom = minDepthOffset
	}
	scale := focal / denom

	return Projected{
		X:      cx + x*scale,
		Y:      cy + y*scale,
		Depth:  z,
		Scale:  scale,
		Radius: PointRadius * scale,
		Index:  p.Index,
	}
}

// ProjectAll projects every point and returns them in draw order.
func ProjectAll(points []Point3D, rot Rotation, cx, cy, focal float64) []Projected {
	out := make([]Projected, len(points))
	for i, p := range points {
		out[i] = Project(p, rot, cx, cy, focal)
	}
	SortByDepth(out)
	return out
}

// SortByDepth orders points back to front: descending depth, so nearer
// points are drawn last and occlude farther ones. Equal depths keep their
// input order.
func SortByDepth(points []Projected) {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Depth > points[j].Depth
	})
}
