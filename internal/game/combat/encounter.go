package combat

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/cory-johannsen/gauntlet/internal/game/dice"
	"github.com/cory-johannsen/gauntlet/internal/game/space"
	"github.com/cory-johannsen/gauntlet/internal/game/zone"
)

// Deps holds the collaborators an Encounter drives.
type Deps struct {
	// Navigator receives movement requests and answers walkability probes. Required.
	Navigator Navigator
	// Locator reports live combatant positions. Required.
	Locator Locator
	// Target is the common target. Required.
	Target Target
	// Source supplies randomness; nil selects a crypto-backed source.
	Source dice.Source
	// Listener is notified when attacks start; may be nil.
	Listener AttackListener
	// Logger may be nil.
	Logger *zap.Logger
	// Meter records encounter counters; nil disables them.
	Meter metric.Meter
}

// Encounter is the simulation context for one group of combatants attacking one target. It owns the zone grid,
// the obstruction prober and the roster, and steps every combatant's state machine once per Tick.
//
// Invariant: no zone has more than one occupant.
// Invariant: every combatant in combat is tracked by the roster exactly once.
//
// An Encounter is not safe for concurrent use; Tick and the resolution callbacks must run on one goroutine.
type Encounter struct {
	id       string
	grid     *zone.Grid
	prober   *zone.Prober
	roster   *Roster
	tuning   Tuning
	nav      Navigator
	locator  Locator
	target   Target
	src      dice.Source
	listener AttackListener
	logger   *zap.Logger
	metrics  *telemetry

	combatants []*Combatant
	byID       map[uuid.UUID]*Combatant
	targetPos  space.Vec2
	elapsed    time.Duration
	ticks      int
}

// NewEncounter builds an encounter with an empty grid.
//
// Precondition: spec and tuning must validate; deps.Navigator, deps.Locator and deps.Target must be non-nil.
// Postcondition: Returns a ready Encounter or a configuration error.
func NewEncounter(id string, spec zone.Spec, probe zone.ProbeSpec, tuning Tuning, deps Deps) (*Encounter, error) {
	if err := tuning.Validate(); err != nil {
		return nil, fmt.Errorf("combat.NewEncounter: %w", err)
	}
	if deps.Navigator == nil || deps.Locator == nil || deps.Target == nil {
		return nil, errors.New("combat.NewEncounter: navigator, locator and target are required")
	}
	grid, err := zone.NewGrid(spec)
	if err != nil {
		return nil, fmt.Errorf("combat.NewEncounter: %w", err)
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("encounter", id))
	src := deps.Source
	if src == nil {
		src = dice.NewCryptoSource()
	}
	tel, err := newTelemetry(deps.Meter, id)
	if err != nil {
		return nil, fmt.Errorf("combat.NewEncounter: %w", err)
	}
	return &Encounter{
		id:       id,
		grid:     grid,
		prober:   zone.NewProber(grid, deps.Navigator, probe, logger),
		roster:   NewRoster(tuning.MaxActive, tuning.MaxSimultaneousAttacks, logger),
		tuning:   tuning,
		nav:      deps.Navigator,
		locator:  deps.Locator,
		target:   deps.Target,
		src:      src,
		listener: deps.Listener,
		logger:   logger,
		metrics:  tel,
		byID:     make(map[uuid.UUID]*Combatant),
	}, nil
}

// ID returns the encounter identifier.
func (e *Encounter) ID() string { return e.id }

// Grid returns the zone grid.
func (e *Encounter) Grid() *zone.Grid { return e.grid }

// Roster returns the admission controller.
func (e *Encounter) Roster() *Roster { return e.roster }

// Tuning returns the behavior constants.
func (e *Encounter) Tuning() Tuning { return e.tuning }

// Ticks returns the number of Tick calls.
func (e *Encounter) Ticks() int { return e.ticks }

// Elapsed returns the simulated time advanced by Tick.
func (e *Encounter) Elapsed() time.Duration { return e.elapsed }

// Len returns the number of combatants in combat.
func (e *Encounter) Len() int { return len(e.combatants) }

// Combatant returns the combatant in combat with id.
//
// Postcondition: Returns (c, true) if found, or (nil, false) otherwise.
func (e *Encounter) Combatant(id uuid.UUID) (*Combatant, bool) {
	c, ok := e.byID[id]
	return c, ok
}

// Combatants returns the combatants in combat in update order.
func (e *Encounter) Combatants() []*Combatant { return append([]*Combatant(nil), e.combatants...) }

// EnterCombat registers c, classifies it, and sends it toward the nearest free zone of its band, or after
// the target when none is free.
//
// Precondition: c must be non-nil and known to the Locator.
// Postcondition: Returns true iff c was added; a combatant already in combat is left unchanged.
func (e *Encounter) EnterCombat(c *Combatant) bool {
	if c == nil {
		return false
	}
	if _, exists := e.byID[c.ID]; exists {
		return false
	}
	pos, ok := e.locator.Position(c.ID)
	if !ok {
		e.logger.Warn("combatant has no position; not entering combat", zap.String("combatant", c.Name))
		return false
	}
	if c.reservation == nil || c.reservation.grid != e.grid {
		c.reservation = newReservation(c, e.grid, e.src, e.logger)
	}
	c.position = pos
	c.inCombat = true
	e.combatants = append(e.combatants, c)
	e.byID[c.ID] = c
	e.targetPos = e.target.Position()

	e.roster.Register(c)
	e.classify(c)
	e.randomizeStrafe(c)
	e.resetAttackTimer(c)
	c.setStaggerable(true)

	c.reservation.Refresh(e.targetPos)
	if c.reservation.AnyZoneAvailable() {
		e.reserveOrPursue(c)
	} else {
		e.enter(c, Pursuing)
	}
	e.logger.Debug("combatant entered combat",
		zap.String("combatant", c.Name),
		zap.Stringer("class", c.class),
		zap.Stringer("state", c.state),
	)
	return true
}

// LeaveCombat unregisters the combatant and releases its zone claims in the same call. A combatant leaving
// mid-swing is unlocked and can be staggered again.
//
// Postcondition: Returns true iff id was in combat.
func (e *Encounter) LeaveCombat(id uuid.UUID) bool {
	c, ok := e.byID[id]
	if !ok {
		return false
	}
	e.roster.Unregister(c)
	c.reservation.ClearOccupied()
	c.reservation.ClearReserved()
	delete(e.byID, id)
	e.combatants, _ = without(e.combatants, c)
	c.inCombat = false
	c.attackLocked = false
	c.armed = false
	c.setStaggerable(true)
	e.nav.SetDestination(c.ID, Destination{Hold: true})
	e.logger.Debug("combatant left combat", zap.String("combatant", c.Name))
	return true
}

// ResetForReuse returns c to its neutral state so a pooled body can be spawned again. A combatant still in
// combat leaves it first.
//
// Postcondition: c is Unassigned, Pursuing, unlocked, with no zone claims and zeroed timers.
func (e *Encounter) ResetForReuse(c *Combatant) {
	if c == nil {
		return
	}
	e.LeaveCombat(c.ID)
	if c.reservation != nil {
		c.reservation.Reset()
	}
	c.class = Unassigned
	c.state = Pursuing
	c.strafeDist = 0
	c.strafeDir = Left
	c.attackMode = Normal
	c.cooldown = 0
	c.patience = 0
	c.attackLocked = false
	c.armed = false
	c.resetTimers()
	c.setStaggerable(true)
}

// Disband removes every combatant from combat and empties every zone.
func (e *Encounter) Disband() {
	for _, c := range e.Combatants() {
		e.LeaveCombat(c.ID)
	}
	e.grid.ClearAll()
	e.logger.Debug("encounter disbanded")
}

// Tick advances the encounter by dt: rebalance the roster, probe one zone, then update each combatant in
// entry order. Classification changes made by the rebalance are visible to every update in the same tick.
func (e *Encounter) Tick(dt time.Duration) {
	e.elapsed += dt
	e.ticks++
	e.targetPos = e.target.Position()
	for _, c := range e.combatants {
		if pos, ok := e.locator.Position(c.ID); ok {
			c.position = pos
		}
	}

	promoted, demoted := e.roster.Rebalance(e.targetPos)
	if promoted != nil {
		e.metrics.promotion()
	}
	for range demoted {
		e.metrics.demotion()
	}

	if z := e.prober.Tick(e.targetPos); z.IsObstructed() {
		e.metrics.obstructedProbe()
	}

	for _, c := range e.combatants {
		e.update(c, dt)
	}
}

// OnAttackResolved is the resolution signal from the swing timing layer. The combatant backs away, draws a
// new cooldown and unlocks.
//
// Postcondition: Returns true iff id was attacking; late or unknown signals are ignored.
func (e *Encounter) OnAttackResolved(id uuid.UUID) bool {
	c, ok := e.byID[id]
	if !ok || c.state != Attacking {
		return false
	}
	e.resolveAttack(c, false)
	return true
}

// Interrupt staggers the combatant and sends it back to pursuit. Attack-locked combatants ignore it.
//
// Postcondition: Returns true iff the combatant was interrupted.
func (e *Encounter) Interrupt(id uuid.UUID) bool {
	c, ok := e.byID[id]
	if !ok || c.attackLocked {
		return false
	}
	c.armed = false
	e.enter(c, Pursuing)
	return true
}

// IsAttackColliding reports whether id's swing is live and the target is within the attack mode's reach.
func (e *Encounter) IsAttackColliding(id uuid.UUID) bool {
	c, ok := e.byID[id]
	if !ok || c.state != Attacking || !c.armed {
		return false
	}
	pos := c.position
	if live, ok := e.locator.Position(id); ok {
		pos = live
	}
	reach := e.tuning.Profile(c.attackMode).StoppingDistance + e.tuning.AttackReachMargin
	return pos.WithinSq(e.target.Position(), reach)
}

// ConsumeHit disarms a colliding swing and returns its damage. Each swing connects at most once.
//
// Postcondition: Returns (damage, true) iff the swing was colliding.
func (e *Encounter) ConsumeHit(id uuid.UUID) (float64, bool) {
	if !e.IsAttackColliding(id) {
		return 0, false
	}
	c := e.byID[id]
	c.armed = false
	return e.tuning.Profile(c.attackMode).Damage, true
}

// CheckInvariants verifies exclusive occupancy, exclusive classification, the active cap and every
// reservation's back-references.
//
// Postcondition: Returns nil if every invariant holds.
func (e *Encounter) CheckInvariants() error {
	var errs []error
	for _, z := range e.grid.Zones() {
		if !z.IsOccupied() {
			continue
		}
		c, ok := e.byID[z.Occupant()]
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("%s zone %d held by a combatant not in combat", z.Band, z.Sector))
		case c.reservation.occupied != z:
			errs = append(errs, fmt.Errorf("%s zone %d held by %s without a claim", z.Band, z.Sector, c.Name))
		}
	}
	for _, c := range e.combatants {
		in := 0
		for _, set := range [][]*Combatant{e.roster.active, e.roster.passive, e.roster.unassigned} {
			if indexOf(set, c) >= 0 {
				in++
			}
		}
		if in != 1 {
			errs = append(errs, fmt.Errorf("%s is in %d roster sets", c.Name, in))
		}
		if !c.reservation.Consistent() {
			errs = append(errs, fmt.Errorf("%s has inconsistent zone claims", c.Name))
		}
	}
	if e.roster.Len() != len(e.combatants) {
		errs = append(errs, fmt.Errorf("roster tracks %d combatants, encounter has %d", e.roster.Len(), len(e.combatants)))
	}
	if e.roster.ActiveCount() > e.roster.MaxActive() {
		errs = append(errs, fmt.Errorf("%d active exceeds cap %d", e.roster.ActiveCount(), e.roster.MaxActive()))
	}
	return errors.Join(errs...)
}
