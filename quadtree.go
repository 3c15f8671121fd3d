package main

// MaxQuadtreeDepth stops subdivision when many fish share a spot
const MaxQuadtreeDepth = 8

// Quadtree is a spatial partitioning structure over the horizontal plane,
// used to find fish near a bait without scanning the whole pool
type Quadtree struct {
	Bounds   Rect
	Capacity int
	Entities []Entity
	Divided  bool
	NW       *Quadtree
	NE       *Quadtree
	SW       *Quadtree
	SE       *Quadtree
	depth    int

	// largest radius inserted through this node; the root's value pads queries
	maxRadius float64
}

// Entity represents an object that can be stored in the quadtree
type Entity interface {
	GetPosition() Vec2
	GetRadius() float64
}

// NewQuadtree creates a new quadtree with the given bounds and capacity
func NewQuadtree(bounds Rect, capacity int) *Quadtree {
	return newQuadtree(bounds, capacity, 0)
}

func newQuadtree(bounds Rect, capacity, depth int) *Quadtree {
	return &Quadtree{
		Bounds:   bounds,
		Capacity: capacity,
		Entities: make([]Entity, 0, capacity),
		depth:    depth,
	}
}

// Insert adds an entity to the quadtree
func (qt *Quadtree) Insert(entity Entity) bool {
	if !qt.Bounds.Contains(entity.GetPosition()) {
		return false
	}
	if r := entity.GetRadius(); r > qt.maxRadius {
		qt.maxRadius = r
	}

	if !qt.Divided && (len(qt.Entities) < qt.Capacity || qt.depth >= MaxQuadtreeDepth) {
		qt.Entities = append(qt.Entities, entity)
		return true
	}

	if !qt.Divided {
		qt.Subdivide()
	}
	return qt.insertChild(entity)
}

func (qt *Quadtree) insertChild(entity Entity) bool {
	return qt.NW.Insert(entity) || qt.NE.Insert(entity) ||
		qt.SW.Insert(entity) || qt.SE.Insert(entity)
}

// Subdivide splits the quadtree into four sub-quadrants
func (qt *Quadtree) Subdivide() {
	x := qt.Bounds.X
	y := qt.Bounds.Y
	w := qt.Bounds.Width / 2
	h := qt.Bounds.Height / 2
	d := qt.depth + 1

	qt.NW = newQuadtree(Rect{X: x, Y: y, Width: w, Height: h}, qt.Capacity, d)
	qt.NE = newQuadtree(Rect{X: x + w, Y: y, Width: w, Height: h}, qt.Capacity, d)
	qt.SW = newQuadtree(Rect{X: x, Y: y + h, Width: w, Height: h}, qt.Capacity, d)
	qt.SE = newQuadtree(Rect{X: x + w, Y: y + h, Width: w, Height: h}, qt.Capacity, d)

	qt.Divided = true

	// Each entity goes to exactly one child
	for _, entity := range qt.Entities {
		qt.insertChild(entity)
	}
	qt.Entities = nil
}

// QueryCircle returns all entities whose radius reaches into a circular range
func (qt *Quadtree) QueryCircle(center Vec2, radius float64, found []Entity) []Entity {
	if found == nil {
		found = make([]Entity, 0)
	}
	return qt.queryCircle(center, radius, qt.maxRadius, found)
}

// queryCircle pads the quad bounds by pad so that an entity sitting just
// outside the circle but reaching into it is still found
func (qt *Quadtree) queryCircle(center Vec2, radius, pad float64, found []Entity) []Entity {
	if !CircleIntersectsRect(center, radius+pad, qt.Bounds) {
		return found
	}

	for _, entity := range qt.Entities {
		if Distance2(center, entity.GetPosition()) <= radius+entity.GetRadius() {
			found = append(found, entity)
		}
	}

	if qt.Divided {
		found = qt.NW.queryCircle(center, radius, pad, found)
		found = qt.NE.queryCircle(center, radius, pad, found)
		found = qt.SW.queryCircle(center, radius, pad, found)
		found = qt.SE.queryCircle(center, radius, pad, found)
	}

	return found
}

// FishEntity wraps a Fish to implement the Entity interface
type FishEntity struct {
	*Fish
	Radius float64
}

func (fe *FishEntity) GetPosition() Vec2 {
	return fe.Position.XZ()
}

func (fe *FishEntity) GetRadius() float64 {
	return fe.Radius
}
