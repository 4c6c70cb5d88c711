// Package emitters manages persistent forcing jets as ECS entities and turns
// them into per-tick solver sources.
package emitters

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/swirl/config"
	"github.com/pthm-cable/swirl/fluid"
)

// Position is an emitter's grid-space location.
type Position struct {
	X, Y float32
}

// Jet describes what an emitter pushes into the flow.
type Jet struct {
	DirX, DirY float32 // unit direction, cells per tick
	Strength   float32
	Radius     float32
}

// Pulse gates an emitter on and off. A zero Period means always on.
type Pulse struct {
	Period float32 // seconds
	Duty   float32 // on fraction of each period
	Phase  float32 // seconds
}

// Active reports whether the pulse is on at sim time t.
func (p Pulse) Active(t float32) bool {
	if p.Period <= 0 {
		return true
	}
	cycle := math.Mod(float64(t+p.Phase), float64(p.Period))
	if cycle < 0 {
		cycle += float64(p.Period)
	}
	return float32(cycle)/p.Period < p.Duty
}

// Emitter is the flat construction record for one jet.
type Emitter struct {
	X, Y       float32
	DirX, DirY float32
	Strength   float32
	Radius     float32
	Period     float32
	Duty       float32
	Phase      float32
}

// System owns the emitter world.
type System struct {
	world  *ecs.World
	mapper *ecs.Map3[Position, Jet, Pulse]
	filter *ecs.Filter3[Position, Jet, Pulse]
	posMap *ecs.Map1[Position]

	count   int
	sources []fluid.Source
}

// NewSystem creates an empty emitter system.
func NewSystem() *System {
	world := ecs.NewWorld()
	return &System{
		world:  world,
		mapper: ecs.NewMap3[Position, Jet, Pulse](world),
		filter: ecs.NewFilter3[Position, Jet, Pulse](world),
		posMap: ecs.NewMap1[Position](world),
	}
}

// FromConfig builds a system from configured emitters on an n×n grid.
// Config positions are fractions of the grid.
func FromConfig(cfgs []config.EmitterConfig, n int) *System {
	s := NewSystem()
	size := float32(n)
	for _, c := range cfgs {
		s.Add(Emitter{
			X:        float32(c.X) * size,
			Y:        float32(c.Y) * size,
			DirX:     float32(c.DirX),
			DirY:     float32(c.DirY),
			Strength: float32(c.Strength),
			Radius:   float32(c.Radius),
			Period:   float32(c.Period),
			Duty:     float32(c.Duty),
			Phase:    float32(c.PhaseSecs),
		})
	}
	return s
}

// Add spawns an emitter. The direction is normalized; a zero direction
// emits density only.
func (s *System) Add(e Emitter) ecs.Entity {
	dx, dy := e.DirX, e.DirY
	if l := float32(math.Hypot(float64(dx), float64(dy))); l > 0 {
		dx /= l
		dy /= l
	}
	duty := e.Duty
	if e.Period > 0 && duty == 0 {
		duty = 1
	}

	pos := Position{X: e.X, Y: e.Y}
	jet := Jet{DirX: dx, DirY: dy, Strength: e.Strength, Radius: e.Radius}
	pulse := Pulse{Period: e.Period, Duty: duty, Phase: e.Phase}

	entity := s.mapper.NewEntity(&pos, &jet, &pulse)
	s.count++
	return entity
}

// Remove deletes an emitter. Returns false if it was already gone.
func (s *System) Remove(entity ecs.Entity) bool {
	if !s.world.Alive(entity) {
		return false
	}
	s.world.RemoveEntity(entity)
	s.count--
	return true
}

// Move relocates an emitter.
func (s *System) Move(entity ecs.Entity, x, y float32) bool {
	if !s.world.Alive(entity) {
		return false
	}
	pos := s.posMap.Get(entity)
	pos.X, pos.Y = x, y
	return true
}

// Len returns the number of live emitters.
func (s *System) Len() int { return s.count }

// Clear removes every emitter.
func (s *System) Clear() {
	var dead []ecs.Entity
	query := s.filter.Query()
	for query.Next() {
		dead = append(dead, query.Entity())
	}
	for _, e := range dead {
		s.world.RemoveEntity(e)
	}
	s.count = 0
}

// Sources returns the forcing points active at sim time t. The slice is
// reused across calls.
func (s *System) Sources(t float32) []fluid.Source {
	s.sources = s.sources[:0]

	query := s.filter.Query()
	for query.Next() {
		pos, jet, pulse := query.Get()
		if !pulse.Active(t) {
			continue
		}
		s.sources = append(s.sources, fluid.Source{
			Pos:      fluid.Vec2{X: pos.X, Y: pos.Y},
			Delta:    fluid.Vec2{X: jet.DirX, Y: jet.DirY},
			Radius:   jet.Radius,
			Strength: jet.Strength,
		})
	}
	return s.sources
}
