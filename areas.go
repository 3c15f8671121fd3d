package main

import (
	"errors"
	"fmt"
)

// ErrUnknownArea is returned for area ids outside the area table
var ErrUnknownArea = errors.New("unknown area")

// AreaID indexes an area in the map
type AreaID int

// MapArea is a rectangular fishing region of the map
type MapArea struct {
	Name    string `yaml:"name" msgpack:"name"`
	Bounds  AABB   `yaml:"bounds" msgpack:"bounds"`
	HasFish bool   `yaml:"has_fish" msgpack:"hasFish"`
}

// ZoneType classifies a cell of the zone mask
type ZoneType int

const (
	ZoneInvalid ZoneType = iota
	ZoneValid
)

// ZoneCell addresses one cell of the zone mask
type ZoneCell struct {
	Col int
	Row int
}

// FishingMap holds the static area table and the boat zone mask
type FishingMap struct {
	areas []MapArea
	mask  [ZoneMaskSize][ZoneMaskSize]ZoneType
}

// NewFishingMap builds a map from an area table and a zone mask written as
// rows of '.' (water) and '#' (blocked). Row 0 is the -z edge of the map.
func NewFishingMap(areas []MapArea, mask []string) (*FishingMap, error) {
	if len(areas) == 0 {
		return nil, fmt.Errorf("map needs at least one area")
	}
	if len(mask) != ZoneMaskSize {
		return nil, fmt.Errorf("zone mask needs %d rows, got %d", ZoneMaskSize, len(mask))
	}

	m := &FishingMap{areas: make([]MapArea, len(areas))}
	copy(m.areas, areas)

	for row, line := range mask {
		if len(line) != ZoneMaskSize {
			return nil, fmt.Errorf("zone mask row %d needs %d cells, got %d", row, ZoneMaskSize, len(line))
		}
		for col := 0; col < ZoneMaskSize; col++ {
			switch line[col] {
			case '.':
				m.mask[row][col] = ZoneValid
			case '#':
				m.mask[row][col] = ZoneInvalid
			default:
				return nil, fmt.Errorf("zone mask row %d col %d: unexpected %q", row, col, line[col])
			}
		}
	}
	return m, nil
}

// Areas returns a copy of the area table
func (m *FishingMap) Areas() []MapArea {
	out := make([]MapArea, len(m.areas))
	copy(out, m.areas)
	return out
}

// Area returns the area record for id
func (m *FishingMap) Area(id AreaID) (MapArea, error) {
	if id < 0 || int(id) >= len(m.areas) {
		return MapArea{}, fmt.Errorf("%w: %d", ErrUnknownArea, id)
	}
	return m.areas[id], nil
}

// AreaHasFish reports whether fish live in area id
func (m *FishingMap) AreaHasFish(id AreaID) (bool, error) {
	area, err := m.Area(id)
	if err != nil {
		return false, err
	}
	return area.HasFish, nil
}

// AreaAt returns the first area whose footprint contains pos, or area 0
func (m *FishingMap) AreaAt(pos Vec3) AreaID {
	for i, area := range m.areas {
		if area.Bounds.ContainsXZ(pos) {
			return AreaID(i)
		}
	}
	return 0
}

// ZoneAt maps a world position to its zone mask cell. Positions off the map
// resolve to the center cell.
func (m *FishingMap) ZoneAt(pos Vec3) ZoneCell {
	half := MapSize / 2
	center := ZoneCell{Col: ZoneMaskSize / 2, Row: ZoneMaskSize / 2}
	if pos.X < -half || pos.X > half || pos.Z < -half || pos.Z > half {
		return center
	}

	col := int((pos.X + half) / MapSize * ZoneMaskSize)
	row := int((pos.Z + half) / MapSize * ZoneMaskSize)
	if col >= ZoneMaskSize {
		col = ZoneMaskSize - 1
	}
	if row >= ZoneMaskSize {
		row = ZoneMaskSize - 1
	}
	return ZoneCell{Col: col, Row: row}
}

// ZoneTypeAt returns the zone classification under pos
func (m *FishingMap) ZoneTypeAt(pos Vec3) ZoneType {
	cell := m.ZoneAt(pos)
	return m.mask[cell.Row][cell.Col]
}

// IsValidBoatPosition reports whether a boat may sit at pos
func (m *FishingMap) IsValidBoatPosition(pos Vec3) bool {
	return m.ZoneTypeAt(pos) == ZoneValid
}

// CellCenter returns the world position at the middle of a zone cell
func (m *FishingMap) CellCenter(cell ZoneCell) Vec3 {
	size := MapSize / ZoneMaskSize
	return Vec3{
		X: -MapSize/2 + (float64(cell.Col)+0.5)*size,
		Z: -MapSize/2 + (float64(cell.Row)+0.5)*size,
	}
}

// OnMap reports whether pos lies inside the map square on x/z
func (m *FishingMap) OnMap(pos Vec3) bool {
	half := MapSize / 2
	return pos.X >= -half && pos.X <= half && pos.Z >= -half && pos.Z <= half
}
