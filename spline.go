package main

// PathStrategy turns a four point waypoint window into a continuous swim path.
// Evaluate must be pure; Init and Advance decide how the window is seeded at
// spawn and how it rolls forward when a segment is finished.
type PathStrategy interface {
	Name() string
	Evaluate(t float64, p [NumWaypoints]Vec3) Vec3
	Init(start Vec3, nav *Navigator) WaypointWindow
	Advance(w *WaypointWindow, nav *Navigator)
}

// NewPathStrategy returns the strategy registered under name, defaulting to
// Catmull-Rom
func NewPathStrategy(name string) PathStrategy {
	if name == PathBezier {
		return Bezier{}
	}
	return CatmullRom{}
}

// CatmullRomPoint evaluates a Catmull-Rom segment. The curve passes through
// p1 at t=0 and p2 at t=1; p0 and p3 only shape the tangents.
func CatmullRomPoint(t float64, p0, p1, p2, p3 Vec3) Vec3 {
	t2 := t * t
	t3 := t2 * t

	a := p1.Mul(2)
	b := p2.Sub(p0).Mul(t)
	c := p0.Mul(2).Sub(p1.Mul(5)).Add(p2.Mul(4)).Sub(p3).Mul(t2)
	d := p1.Mul(3).Sub(p0).Sub(p2.Mul(3)).Add(p3).Mul(t3)

	return a.Add(b).Add(c).Add(d).Mul(0.5)
}

// BezierPoint evaluates a cubic Bézier curve. It passes through p0 at t=0 and
// p3 at t=1; p1 and p2 are handles.
func BezierPoint(t float64, p0, p1, p2, p3 Vec3) Vec3 {
	u := 1 - t
	uu := u * u
	tt := t * t

	point := p0.Mul(uu * u)
	point = point.Add(p1.Mul(3 * uu * t))
	point = point.Add(p2.Mul(3 * u * tt))
	point = point.Add(p3.Mul(tt * t))
	return point
}

// CatmullRom swims through every waypoint. Slot 1 is the current waypoint and
// slot 2 the destination of the running segment.
type CatmullRom struct{}

func (CatmullRom) Name() string { return PathCatmullRom }

func (CatmullRom) Evaluate(t float64, p [NumWaypoints]Vec3) Vec3 {
	return CatmullRomPoint(t, p[0], p[1], p[2], p[3])
}

func (CatmullRom) Init(start Vec3, nav *Navigator) WaypointWindow {
	behind := nav.Nudge(start, AnchorJitter)
	next := nav.PickPointNear(start)
	return NewWaypointWindow(behind, start, next, nav.PickPointNear(next))
}

func (CatmullRom) Advance(w *WaypointWindow, nav *Navigator) {
	w.Push(nav.PickPointNear(w.Last()))
}

// Bezier chains cubic curves end to end. Each new curve starts at the end of
// the previous one with a mirrored handle so the heading stays continuous.
type Bezier struct{}

func (Bezier) Name() string { return PathBezier }

func (Bezier) Evaluate(t float64, p [NumWaypoints]Vec3) Vec3 {
	return BezierPoint(t, p[0], p[1], p[2], p[3])
}

func (Bezier) Init(start Vec3, nav *Navigator) WaypointWindow {
	h1 := nav.PickPointNear(start)
	end := nav.PickPointNear(h1)
	h2 := nav.PickPointNear(end)
	return NewWaypointWindow(start, h1, h2, end)
}

func (Bezier) Advance(w *WaypointWindow, nav *Navigator) {
	start := w.At(3)
	handle := nav.ClampToGrid(start.Add(start.Sub(w.At(2))))
	end := nav.PickPointNear(start)
	h2 := nav.PickPointNear(end)

	w.Push(start)
	w.Push(handle)
	w.Push(h2)
	w.Push(end)
}
