package garden

import (
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/garden/components"
)

// Scene mirrors the visible organisms of the last frame as ECS entities, one
// per organism. Entities are spawned when an organism appears, updated every
// frame and removed once it fades out or the clock moves before its birth.
type Scene struct {
	world *ecs.World

	mapper *ecs.Map3[
		components.Organism,
		components.Position,
		components.Appearance,
	]
	filter *ecs.Filter3[
		components.Organism,
		components.Position,
		components.Appearance,
	]

	byIndex map[int]ecs.Entity
	present map[int]bool // scratch set reused across syncs
}

// NewScene creates an empty scene.
func NewScene() *Scene {
	world := ecs.NewWorld()
	return &Scene{
		world: world,
		mapper: ecs.NewMap3[
			components.Organism,
			components.Position,
			components.Appearance,
		](world),
		filter: ecs.NewFilter3[
			components.Organism,
			components.Position,
			components.Appearance,
		](world),
		byIndex: make(map[int]ecs.Entity),
		present: make(map[int]bool),
	}
}

// SyncResult counts the scene changes made by one Sync.
type SyncResult struct {
	Appeared int
	Faded    int
	Unborn   int
}

// Sync makes the scene match items. entries resolves removed organisms so
// they can be told apart: born after t means scrubbed away, otherwise faded.
func (s *Scene) Sync(items []RenderItem, entries []components.Entry, t time.Time) SyncResult {
	var res SyncResult
	clear(s.present)

	for i := range items {
		it := &items[i]
		s.present[it.Index] = true
		app := appearance(it)

		if e, ok := s.byIndex[it.Index]; ok && s.world.Alive(e) {
			_, _, a := s.mapper.Get(e)
			*a = app
			continue
		}

		org := components.Organism{Index: it.Index, Type: it.Type}
		pos := components.Position{
			X: it.Placement.Position.X,
			Y: it.Placement.Position.Y,
			Z: it.Placement.Position.Z,
		}
		s.byIndex[it.Index] = s.mapper.NewEntity(&org, &pos, &app)
		res.Appeared++
	}

	// Collect entities to remove first, then remove them.
	var gone []int
	for idx := range s.byIndex {
		if !s.present[idx] {
			gone = append(gone, idx)
		}
	}
	for _, idx := range gone {
		e := s.byIndex[idx]
		delete(s.byIndex, idx)
		if s.world.Alive(e) {
			s.world.RemoveEntity(e)
		}
		if idx < len(entries) && t.Before(entries[idx].Timestamp) {
			res.Unborn++
		} else {
			res.Faded++
		}
	}
	return res
}

func appearance(it *RenderItem) components.Appearance {
	return components.Appearance{
		Scale:   it.Scale,
		Opacity: it.Opacity,
		Stem:    it.Growth.Eased[0],
		Leaves:  it.Growth.Eased[1],
		Bloom:   it.Growth.Eased[2],
	}
}

// Len returns the number of live organisms.
func (s *Scene) Len() int {
	return len(s.byIndex)
}

// Each calls fn for every live organism.
func (s *Scene) Each(fn func(org components.Organism, pos components.Position, app components.Appearance)) {
	query := s.filter.Query()
	for query.Next() {
		org, pos, app := query.Get()
		fn(*org, *pos, *app)
	}
}

// Lookup returns the appearance of the organism for an entry index.
func (s *Scene) Lookup(index int) (components.Appearance, bool) {
	e, ok := s.byIndex[index]
	if !ok || !s.world.Alive(e) {
		return components.Appearance{}, false
	}
	_, _, app := s.mapper.Get(e)
	return *app, true
}

// Reset removes every organism.
func (s *Scene) Reset() {
	for idx, e := range s.byIndex {
		if s.world.Alive(e) {
			s.world.RemoveEntity(e)
		}
		delete(s.byIndex, idx)
	}
}
