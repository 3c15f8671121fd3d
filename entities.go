package main

import "math"

// Phase is the game phase an angler is in
type Phase string

const (
	PhaseNavigation Phase = "navigation"
	PhaseFishing    Phase = "fishing"
)

// Boat is an angler's boat on the map
type Boat struct {
	Position Vec3
	Rotation float64 // yaw in radians; forward is (-sin, -cos)
}

// Forward returns the unit direction the boat faces
func (b Boat) Forward() Vec3 {
	return Vec3{X: -math.Sin(b.Rotation), Z: -math.Cos(b.Rotation)}
}

// Angler represents a connected player fishing from a boat
type Angler struct {
	ID       string
	Name     string
	Phase    Phase
	Boat     Boat
	Bait     Bait
	Area     AreaID
	Score    int
	Catches  int
	LastHook HookOutcome
	LastSeq  uint32
	Client   *Client

	// Held input, persists until the next input message
	Throttle float64 // -1 back .. 1 forward
	Turn     float64 // -1 right .. 1 left
	Steer    Vec2    // bait steering on x/z while in the water
	Reeling  bool
}

// NewAngler creates an angler in a boat at start
func NewAngler(id, name string, start Vec3, client *Client) *Angler {
	a := &Angler{
		ID:     id,
		Name:   name,
		Phase:  PhaseNavigation,
		Boat:   Boat{Position: start},
		Client: client,
	}
	a.ResetBait()
	return a
}

// ResetBait brings the bait back to the rod
func (a *Angler) ResetBait() {
	a.Bait = Bait{
		Owner:    a.ID,
		Position: a.Boat.Position.Add(Vec3{Y: BaitHoldHeight}),
		Radius:   BaitRadius,
	}
	a.Reeling = false
	a.Steer = Vec2{}
}

// Cast launches the bait with a power derived from charge in [0, 1]. It
// reports false when the angler is not fishing or the bait is already out.
func (a *Angler) Cast(charge float64) bool {
	if a.Phase != PhaseFishing || a.Bait.Launched {
		return false
	}
	power := ThrowPower(charge)
	forward := a.Boat.Forward()

	a.Bait.Launched = true
	a.Bait.InWater = false
	a.Bait.Position = a.Boat.Position.Add(Vec3{Y: BaitHoldHeight})
	a.Bait.Velocity = Vec3{X: forward.X * power, Y: -1, Z: forward.Z * power}
	return true
}

// ThrowPower maps a charge fraction onto the throw power range
func ThrowPower(charge float64) float64 {
	return MinThrowPower + Clamp(charge, 0, 1)*(MaxThrowPower-MinThrowPower)
}

// UpdateBait moves the bait for one tick: flight under gravity until it
// reaches the water plane, then steering and reeling on the surface
func (a *Angler) UpdateBait(dt float64) {
	b := &a.Bait
	if !b.Launched {
		b.Position = a.Boat.Position.Add(Vec3{Y: BaitHoldHeight})
		return
	}

	if !b.InWater {
		b.Velocity.Y -= Gravity * dt
		b.Position = b.Position.Add(b.Velocity.Mul(dt))
		if SphereBelowPlane(b.Position, b.Radius, WaterPlaneY) {
			b.InWater = true
			b.Velocity = Vec3{}
			b.Position.Y = WaterPlaneY
		}
	} else {
		velocity := Vec3{X: a.Steer.X * BaitSteerSpeed, Z: a.Steer.Y * BaitSteerSpeed}
		if a.Reeling {
			toBoat := a.Boat.Position.Sub(b.Position)
			toBoat.Y = 0
			velocity = velocity.Add(toBoat.Normalize().Mul(ReelSpeed))
		}
		b.Velocity = velocity
		b.Position = b.Position.Add(velocity.Mul(dt))
		b.Position.Y = WaterPlaneY

		if a.Reeling && Distance2(b.Position.XZ(), a.Boat.Position.XZ()) < BaitRadius*5 {
			a.ResetBait()
			return
		}
	}

	if Distance2(b.Position.XZ(), a.Boat.Position.XZ()) > BaitLostRange {
		a.ResetBait()
	}
}
