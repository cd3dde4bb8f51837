package simulation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/cory-johannsen/gauntlet/internal/config"
	"github.com/cory-johannsen/gauntlet/internal/game/combat"
	"github.com/cory-johannsen/gauntlet/internal/game/dice"
	"github.com/cory-johannsen/gauntlet/internal/game/nav"
	"github.com/cory-johannsen/gauntlet/internal/game/scenario"
	"github.com/cory-johannsen/gauntlet/internal/game/space"
)

// spawnAttempts bounds how many positions are drawn for one combatant before spawning fails.
const spawnAttempts = 16

// Summary is a point-in-time report of a run.
type Summary struct {
	Scenario      string
	Steps         int
	Elapsed       time.Duration
	Active        int
	Passive       int
	Unassigned    int
	Attacking     int
	OccupiedZones int
	SwingsStarted int
	Hits          int
	TargetDamage  float64
	TargetHealth  float64
}

// Runner steps one scenario's encounter at a fixed interval.
//
// Invariant: every step runs target, encounter, swings and navigator in that order under mu.
type Runner struct {
	mu       sync.Mutex
	scenario *scenario.Scenario
	enc      *combat.Encounter
	world    *nav.World
	target   *Target
	swings   *Swings
	interval time.Duration
	logger   *zap.Logger
	steps    int
}

// New builds the arena, navigator, target and encounter for sc and spawns every group into combat.
//
// Precondition: cfg must be valid; sc must be valid.
// Postcondition: Returns a Runner with every combatant in combat, or an error.
func New(cfg config.Config, sc *scenario.Scenario, meter metric.Meter, logger *zap.Logger) (*Runner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("scenario", sc.ID))

	var src dice.Source
	if cfg.Simulation.Seed != 0 {
		src = dice.NewSeededSource(cfg.Simulation.Seed)
	} else {
		src = dice.NewCryptoSource()
	}

	arena, err := sc.BuildArena()
	if err != nil {
		return nil, fmt.Errorf("simulation.New: %w", err)
	}
	world := nav.NewWorld(arena, cfg.Speeds(), logger)

	route := make([]space.Vec2, 0, len(sc.Target.Route))
	for _, p := range sc.Target.Route {
		route = append(route, p.Vec())
	}
	target := NewTarget(sc.Target.Position.Vec(), route, sc.Target.Speed, sc.Target.Health)
	swings := NewSwings(cfg.Simulation.SwingWindup, cfg.Simulation.SwingDuration, logger)

	enc, err := combat.NewEncounter(sc.ID, cfg.GridSpec(), cfg.ProbeSpec(), cfg.CombatTuning(), combat.Deps{
		Navigator: world,
		Locator:   world,
		Target:    target,
		Source:    src,
		Listener:  swings,
		Logger:    logger,
		Meter:     meter,
	})
	if err != nil {
		return nil, fmt.Errorf("simulation.New: %w", err)
	}

	r := &Runner{
		scenario: sc,
		enc:      enc,
		world:    world,
		target:   target,
		swings:   swings,
		interval: cfg.Simulation.TickInterval,
		logger:   logger,
	}
	for _, g := range sc.Groups {
		for i := 0; i < g.Count; i++ {
			if err := r.spawn(g, i, src); err != nil {
				return nil, fmt.Errorf("simulation.New: %w", err)
			}
		}
	}
	logger.Info("scenario ready",
		zap.Int("combatants", enc.Len()),
		zap.Int("obstacles", arena.Obstacles()),
		zap.Duration("tick_interval", r.interval),
	)
	return r, nil
}

func (r *Runner) spawn(g *scenario.Group, i int, src dice.Source) error {
	c := combat.NewCombatant(uuid.New(), fmt.Sprintf("%s-%d", g.Name, i+1), nil)
	var err error
	for attempt := 0; attempt < spawnAttempts; attempt++ {
		if err = r.world.Spawn(c.ID, g.Position(src)); err == nil {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("spawning %s: %w", c.Name, err)
	}
	r.enc.EnterCombat(c)
	return nil
}

// Encounter returns the simulated encounter.
func (r *Runner) Encounter() *combat.Encounter { return r.enc }

// World returns the navigator.
func (r *Runner) World() *nav.World { return r.world }

// Target returns the common target.
func (r *Runner) Target() *Target { return r.target }

// Step advances the simulation by dt.
func (r *Runner) Step(dt time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.target.Step(dt)
	r.enc.Tick(dt)
	r.swings.Step(dt, r.enc, r.target)
	r.world.Step(dt)
	r.steps++
}

// RunTicks advances the simulation n steps of the tick interval without waiting.
func (r *Runner) RunTicks(n int) {
	for i := 0; i < n; i++ {
		r.Step(r.interval)
	}
}

// Run steps the simulation once per tick interval until ctx is done or, when the scenario sets a tick limit,
// the limit is reached.
//
// Postcondition: Returns nil; cancellation is not an error.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	r.logger.Info("simulation running", zap.Int("tick_limit", r.scenario.Ticks))
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Step(r.interval)
			if r.scenario.Ticks > 0 && r.Steps() >= r.scenario.Ticks {
				r.logger.Info("tick limit reached", zap.Int("steps", r.Steps()))
				return nil
			}
		}
	}
}

// Steps returns the number of steps taken.
func (r *Runner) Steps() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.steps
}

// Summary reports the current state of the run.
func (r *Runner) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := r.enc.Snapshot()
	return Summary{
		Scenario:      r.scenario.ID,
		Steps:         r.steps,
		Elapsed:       snap.Elapsed,
		Active:        snap.Active,
		Passive:       snap.Passive,
		Unassigned:    snap.Unassigned,
		Attacking:     snap.Attacking,
		OccupiedZones: snap.OccupiedZones,
		SwingsStarted: r.swings.Started(),
		Hits:          r.swings.Hits(),
		TargetDamage:  r.target.Damage(),
		TargetHealth:  r.target.Health(),
	}
}

// Snapshot copies the encounter state under the runner's lock.
func (r *Runner) Snapshot() combat.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enc.Snapshot()
}
