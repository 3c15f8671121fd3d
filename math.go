package main

import "math"

// Vec2 is a point on the horizontal (x, z) plane
type Vec2 struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// Sub subtracts two vectors
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{X: v.X - other.X, Y: v.Y - other.Y}
}

// Length returns the magnitude of the vector
func (v Vec2) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Distance2 returns the distance between two planar points
func Distance2(a, b Vec2) float64 {
	return b.Sub(a).Length()
}

// Vec3 represents a point or direction in world space (y is up)
type Vec3 struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
	Z float64 `json:"z" msgpack:"z"`
}

// Add adds two vectors
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

// Sub subtracts two vectors
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Mul multiplies a vector by a scalar
func (v Vec3) Mul(scalar float64) Vec3 {
	return Vec3{X: v.X * scalar, Y: v.Y * scalar, Z: v.Z * scalar}
}

// Length returns the magnitude of the vector
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalize returns a unit vector in the same direction
func (v Vec3) Normalize() Vec3 {
	length := v.Length()
	if length == 0 {
		return Vec3{}
	}
	return v.Mul(1 / length)
}

// XZ projects the vector onto the horizontal plane
func (v Vec3) XZ() Vec2 {
	return Vec2{X: v.X, Y: v.Z}
}

// Distance returns the distance between two points
func Distance(a, b Vec3) float64 {
	return b.Sub(a).Length()
}

// Lerp performs linear interpolation between two vectors
func Lerp(a, b Vec3, t float64) Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// Heading returns the yaw angle of a horizontal direction, measured from +z toward +x
func Heading(dir Vec3) float64 {
	return math.Atan2(dir.X, dir.Z)
}

// Rect represents an axis-aligned rectangle on the horizontal plane
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Contains checks if a point is inside the rectangle
func (r Rect) Contains(point Vec2) bool {
	return point.X >= r.X && point.X <= r.X+r.Width &&
		point.Y >= r.Y && point.Y <= r.Y+r.Height
}

// CircleIntersectsRect checks if a circle intersects with a rectangle
func CircleIntersectsRect(center Vec2, radius float64, rect Rect) bool {
	// Find the closest point to the circle within the rectangle
	closestX := math.Max(rect.X, math.Min(center.X, rect.X+rect.Width))
	closestY := math.Max(rect.Y, math.Min(center.Y, rect.Y+rect.Height))

	distanceX := center.X - closestX
	distanceY := center.Y - closestY

	distanceSquared := distanceX*distanceX + distanceY*distanceY
	return distanceSquared <= (radius * radius)
}

// AABB is an axis-aligned bounding box in world space
type AABB struct {
	Min Vec3
	Max Vec3
}

// SpheresOverlap checks if two spheres touch or overlap
func SpheresOverlap(c1 Vec3, r1 float64, c2 Vec3, r2 float64) bool {
	return Distance(c1, c2) <= r1+r2
}

// SphereBelowPlane checks if the bottom of a sphere reached a horizontal plane
func SphereBelowPlane(center Vec3, radius, planeY float64) bool {
	return center.Y-radius <= planeY
}

// ContainsXZ checks if a point lies inside the box footprint, ignoring height
func (b AABB) ContainsXZ(point Vec3) bool {
	return point.X >= b.Min.X && point.X <= b.Max.X &&
		point.Z >= b.Min.Z && point.Z <= b.Max.Z
}

// Center returns the middle of the box
func (b AABB) Center() Vec3 {
	return Lerp(b.Min, b.Max, 0.5)
}
