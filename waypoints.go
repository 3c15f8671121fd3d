package main

import "math"

// NumWaypoints is the size of the rolling waypoint window
const NumWaypoints = 4

// WaypointWindow is a fixed ring of four points. Slot 0 is the oldest point
// and slot 3 the newest; Push drops slot 0 and appends at slot 3.
type WaypointWindow struct {
	points [NumWaypoints]Vec3
	head   int
}

// NewWaypointWindow builds a window from four ordered points
func NewWaypointWindow(p0, p1, p2, p3 Vec3) WaypointWindow {
	return WaypointWindow{points: [NumWaypoints]Vec3{p0, p1, p2, p3}}
}

// At returns the point in logical slot i (0..3)
func (w *WaypointWindow) At(i int) Vec3 {
	return w.points[(w.head+i)%NumWaypoints]
}

// Last returns the newest point
func (w *WaypointWindow) Last() Vec3 {
	return w.At(NumWaypoints - 1)
}

// Push shifts every slot left by one and stores p in the last slot
func (w *WaypointWindow) Push(p Vec3) {
	w.points[w.head] = p
	w.head = (w.head + 1) % NumWaypoints
}

// Points returns the window in logical order
func (w *WaypointWindow) Points() [NumWaypoints]Vec3 {
	var out [NumWaypoints]Vec3
	for i := range out {
		out[i] = w.At(i)
	}
	return out
}

// Navigator generates swim targets inside the playable grid
type Navigator struct {
	rng    *RNG
	min    float64
	max    float64
	center Vec3
}

// NewNavigator creates a navigator for a square grid of the given size
// centered on the origin, keeping margin units away from the edge
func NewNavigator(rng *RNG, size, margin float64) *Navigator {
	half := size / 2
	return &Navigator{
		rng: rng,
		min: -half + margin,
		max: half - margin,
	}
}

// Bounds returns the inclusive grid limits on x and z
func (n *Navigator) Bounds() (min, max float64) {
	return n.min, n.max
}

// InBounds reports whether a point lies on the grid horizontally
func (n *Navigator) InBounds(p Vec3) bool {
	return p.X >= n.min && p.X <= n.max && p.Z >= n.min && p.Z <= n.max
}

// ClampToGrid pulls a point back onto the grid horizontally
func (n *Navigator) ClampToGrid(p Vec3) Vec3 {
	p.X = Clamp(p.X, n.min, n.max)
	p.Z = Clamp(p.Z, n.min, n.max)
	return p
}

// Nudge returns a point within radius of base on x and z, on the grid
func (n *Navigator) Nudge(base Vec3, radius float64) Vec3 {
	return n.ClampToGrid(Vec3{
		X: base.X + n.rng.Float(-radius, radius),
		Y: base.Y,
		Z: base.Z + n.rng.Float(-radius, radius),
	})
}

// PickPointNear returns a random swim target between MinMoveDistance and
// MaxMoveDistance from base. Candidates that leave the grid are re-aimed at
// the grid center with some angular noise; after PickPointAttempts tries the
// last candidate is clamped, so the result is always on the grid.
func (n *Navigator) PickPointNear(base Vec3) Vec3 {
	var candidate Vec3
	for attempt := 0; attempt < PickPointAttempts; attempt++ {
		distance := n.rng.Float(MinMoveDistance, MaxMoveDistance)
		candidate = n.project(base, n.rng.Angle(), distance)

		if !n.InBounds(candidate) {
			toCenter := n.center.Sub(base)
			toCenter.Y = 0
			if toCenter.Length() > HeadingEpsilon {
				angle := Heading(toCenter) + n.rng.Float(-CenterJitter, CenterJitter)
				candidate = n.project(base, angle, distance)
			}
		}

		if n.InBounds(candidate) {
			break
		}
	}
	return n.ClampToGrid(candidate)
}

func (n *Navigator) project(base Vec3, heading, distance float64) Vec3 {
	return Vec3{
		X: base.X + math.Sin(heading)*distance,
		Y: n.rng.Float(SwimDepthMin, SwimDepthMax),
		Z: base.Z + math.Cos(heading)*distance,
	}
}
