package simulation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/gauntlet/internal/config"
	"github.com/cory-johannsen/gauntlet/internal/game/combat"
	"github.com/cory-johannsen/gauntlet/internal/game/scenario"
	"github.com/cory-johannsen/gauntlet/internal/game/space"
	"github.com/cory-johannsen/gauntlet/internal/simulation"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Simulation.Seed = 11
	return cfg
}

func openField(count int) *scenario.Scenario {
	return &scenario.Scenario{
		ID:     "field",
		Arena:  scenario.Arena{Bounds: "POLYGON((-40 -40, 40 -40, 40 40, -40 40, -40 -40))"},
		Target: scenario.Target{Health: 10000},
		Groups: []*scenario.Group{{Name: "pack", Count: count, Spawn: scenario.Point{X: 12, Y: 12}, Spread: 2}},
	}
}

func TestTarget_WalksRouteAndLoops(t *testing.T) {
	tg := simulation.NewTarget(space.V(0, 0), []space.Vec2{space.V(0, 4), space.V(0, 0)}, 2, 10)
	assert.Equal(t, space.V(0, 1), tg.Forward())

	tg.Step(time.Second)
	assert.InDelta(t, 2.0, tg.Position().Y, 1e-9)

	tg.Step(1500 * time.Millisecond)
	assert.InDelta(t, 3.0, tg.Position().Y, 1e-9, "overshoot carries past the waypoint")
	assert.InDelta(t, -1.0, tg.Forward().Y, 1e-9)

	tg.Step(10 * time.Second)
	assert.InDelta(t, 0.0, tg.Position().X, 1e-9)
}

func TestTarget_StandsWithoutRoute(t *testing.T) {
	tg := simulation.NewTarget(space.V(3, 3), nil, 5, 10)
	tg.Step(time.Second)
	assert.Equal(t, space.V(3, 3), tg.Position())
}

func TestTarget_Damage(t *testing.T) {
	tg := simulation.NewTarget(space.Vec2{}, nil, 0, 10)
	tg.ApplyDamage(4)
	assert.Equal(t, 6.0, tg.Health())
	tg.ApplyDamage(15)
	assert.Equal(t, 0.0, tg.Health())
	assert.Equal(t, 19.0, tg.Damage())
}

func TestNew_Errors(t *testing.T) {
	sc := openField(1)
	sc.Arena.Bounds = "POINT(0 0)"
	_, err := simulation.New(testConfig(), sc, nil, nil)
	assert.ErrorContains(t, err, "simulation.New")

	sc = openField(1)
	sc.Arena.Obstacles = []string{"POLYGON((5 5, 20 5, 20 20, 5 20, 5 5))"}
	_, err = simulation.New(testConfig(), sc, nil, nil)
	assert.ErrorContains(t, err, "spawning pack-1")

	cfg := testConfig()
	cfg.Zones.SectorCount = 0
	_, err = simulation.New(cfg, openField(1), nil, nil)
	assert.Error(t, err)
}

func TestNew_SpawnsEveryCombatantIntoCombat(t *testing.T) {
	r, err := simulation.New(testConfig(), openField(6), nil, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, 6, r.Encounter().Len())
	assert.Equal(t, 6, r.World().Len())
	assert.Equal(t, 3, r.Encounter().Roster().ActiveCount())
	assert.Equal(t, 3, r.Encounter().Roster().PassiveCount())
}

func TestRunner_PackAttacksTarget(t *testing.T) {
	cfg := testConfig()
	r, err := simulation.New(cfg, openField(5), nil, zap.NewNop())
	require.NoError(t, err)

	for i := 0; i < 1200; i++ {
		r.Step(cfg.Simulation.TickInterval)
		require.NoError(t, r.Encounter().CheckInvariants(), "step %d", i)
		require.LessOrEqual(t, r.Encounter().Roster().ActiveCount(), cfg.Roster.MaxActive)
	}

	sum := r.Summary()
	assert.Equal(t, 1200, sum.Steps)
	assert.Equal(t, time.Minute, sum.Elapsed)
	assert.Positive(t, sum.SwingsStarted)
	assert.Positive(t, sum.Hits)
	assert.Positive(t, sum.TargetDamage)
	assert.Equal(t, 10000-sum.TargetDamage, sum.TargetHealth)
	assert.Equal(t, 5, sum.Active+sum.Passive+sum.Unassigned)
	assert.LessOrEqual(t, sum.Hits, sum.SwingsStarted)
}

func TestRunner_SettlesIntoDistinctZones(t *testing.T) {
	cfg := testConfig()
	cfg.Combatant.AttackCooldownMin = time.Hour
	cfg.Combatant.AttackCooldownMax = time.Hour
	cfg.Combatant.PatienceMin = time.Hour
	cfg.Combatant.PatienceMax = time.Hour
	r, err := simulation.New(cfg, openField(5), nil, zap.NewNop())
	require.NoError(t, err)

	r.RunTicks(400)
	snap := r.Snapshot()
	held := make(map[combat.ZoneRef]string)
	for _, c := range snap.Combatants {
		if c.Occupied == nil {
			continue
		}
		if other, dup := held[*c.Occupied]; dup {
			t.Fatalf("%s and %s share zone %+v", c.Name, other, *c.Occupied)
		}
		held[*c.Occupied] = c.Name
	}
	assert.LessOrEqual(t, len(held), snap.OccupiedZones)
	assert.Positive(t, snap.OccupiedZones)
	assert.Zero(t, r.Summary().SwingsStarted)
}

func TestRunner_RunStopsAtTickLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Simulation.TickInterval = 2 * time.Millisecond
	sc := openField(2)
	sc.Ticks = 20
	r, err := simulation.New(cfg, sc, nil, zaptest.NewLogger(t))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, r.Run(ctx))
	assert.Equal(t, 20, r.Steps())
}

func TestRunner_RunStopsOnCancel(t *testing.T) {
	cfg := testConfig()
	cfg.Simulation.TickInterval = 2 * time.Millisecond
	r, err := simulation.New(cfg, openField(2), nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.NoError(t, r.Run(ctx))
	assert.Positive(t, r.Steps())
}

func TestSwings_ResolveAfterDuration(t *testing.T) {
	cfg := testConfig()
	cfg.Combatant.AttackTimeout = 0
	r, err := simulation.New(cfg, openField(1), nil, nil)
	require.NoError(t, err)
	c := r.Encounter().Combatants()[0]

	attacking := false
	for i := 0; i < 600 && !attacking; i++ {
		r.Step(cfg.Simulation.TickInterval)
		attacking = c.State() == combat.Attacking
	}
	require.True(t, attacking, "lone combatant never attacked")

	for i := 0; i < 30 && c.State() == combat.Attacking; i++ {
		r.Step(cfg.Simulation.TickInterval)
	}
	assert.NotEqual(t, combat.Attacking, c.State(), "swing resolves after its duration")
	assert.Equal(t, 1, r.Summary().Hits)
}
