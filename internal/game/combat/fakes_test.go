package combat_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/gauntlet/internal/game/combat"
	"github.com/cory-johannsen/gauntlet/internal/game/dice"
	"github.com/cory-johannsen/gauntlet/internal/game/space"
	"github.com/cory-johannsen/gauntlet/internal/game/zone"
)

// arrival controls how fakeWorld answers HasArrived for one agent.
type arrival int

const (
	// teleport moves the agent onto its destination point and reports arrival.
	teleport arrival = iota
	// inPlace reports arrival without moving the agent.
	inPlace
	// never reports no arrival.
	never
	// natural reports arrival once the agent is within the stopping distance.
	natural
)

// fakeWorld is a Navigator and Locator with scripted movement.
type fakeWorld struct {
	pos     map[uuid.UUID]space.Vec2
	dest    map[uuid.UUID]combat.Destination
	mode    map[uuid.UUID]arrival
	blocked func(p space.Vec2) bool
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		pos:  make(map[uuid.UUID]space.Vec2),
		dest: make(map[uuid.UUID]combat.Destination),
		mode: make(map[uuid.UUID]arrival),
	}
}

func (w *fakeWorld) place(id uuid.UUID, p space.Vec2) { w.pos[id] = p }

func (w *fakeWorld) SetDestination(id uuid.UUID, d combat.Destination) {
	if _, ok := w.pos[id]; ok {
		w.dest[id] = d
	}
}

func (w *fakeWorld) HasArrived(id uuid.UUID) bool {
	d, ok := w.dest[id]
	if !ok || d.Hold {
		return false
	}
	switch w.mode[id] {
	case teleport:
		w.pos[id] = d.Point
		return true
	case inPlace:
		return true
	case natural:
		return w.pos[id].Dist(d.Point) <= d.StoppingDistance+1e-6
	default:
		return false
	}
}

func (w *fakeWorld) IsPointWalkable(p space.Vec2, _ float64) bool {
	return w.blocked == nil || !w.blocked(p)
}

func (w *fakeWorld) Position(id uuid.UUID) (space.Vec2, bool) {
	p, ok := w.pos[id]
	return p, ok
}

// stepToward moves every agent up to maxStep toward its destination, stopping at the stopping distance.
func (w *fakeWorld) stepToward(maxStep float64) {
	for id, d := range w.dest {
		if d.Hold {
			continue
		}
		p := w.pos[id]
		gap := d.Point.Sub(p)
		dist := gap.Len() - d.StoppingDistance
		if dist <= 0 {
			continue
		}
		if dist > maxStep {
			dist = maxStep
		}
		w.pos[id] = p.Add(gap.Normalize().Scale(dist))
	}
}

type fakeTarget struct{ pos space.Vec2 }

func (t *fakeTarget) Position() space.Vec2 { return t.pos }

type fakeBody struct{ staggerable bool }

func (b *fakeBody) SetStaggerable(v bool) { b.staggerable = v }

func gridSpec(sectors int) zone.Spec {
	return zone.Spec{SectorCount: sectors, ActiveMinDist: 3, ActiveMaxDist: 5, PassiveMaxDist: 10}
}

var probe = zone.ProbeSpec{AngleBuffer: 2, DistBuffer: 0.7, Tolerance: 0.3}

// calmTuning never attacks or loses patience on its own.
func calmTuning() combat.Tuning {
	t := combat.DefaultTuning()
	t.AttackCooldownMin = time.Hour
	t.AttackCooldownMax = time.Hour
	t.PatienceMin = time.Hour
	t.PatienceMax = time.Hour
	return t
}

type harness struct {
	enc    *combat.Encounter
	world  *fakeWorld
	target *fakeTarget
}

func newHarness(t *testing.T, sectors int, tuning combat.Tuning, logger *zap.Logger) *harness {
	t.Helper()
	world := newFakeWorld()
	target := &fakeTarget{}
	enc, err := combat.NewEncounter("test", gridSpec(sectors), probe, tuning, combat.Deps{
		Navigator: world,
		Locator:   world,
		Target:    target,
		Source:    dice.NewSeededSource(7),
		Logger:    logger,
	})
	require.NoError(t, err)
	return &harness{enc: enc, world: world, target: target}
}

// spawn places a new combatant at bearing angle and distance dist from the origin and enters it into combat.
func (h *harness) spawn(t *testing.T, name string, angle, dist float64, mode arrival) *combat.Combatant {
	t.Helper()
	c := combat.NewCombatant(uuid.Nil, name, nil)
	h.world.place(c.ID, space.DirFromAngle(angle).Scale(dist))
	h.world.mode[c.ID] = mode
	require.True(t, h.enc.EnterCombat(c))
	return c
}

func (h *harness) ticks(n int) {
	for i := 0; i < n; i++ {
		h.enc.Tick(100 * time.Millisecond)
	}
}
