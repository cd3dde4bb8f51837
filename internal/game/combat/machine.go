package combat

import (
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/gauntlet/internal/game/dice"
	"github.com/cory-johannsen/gauntlet/internal/game/space"
)

// update steps one combatant's state machine. Every check that changes state ends the update for this tick.
func (e *Encounter) update(c *Combatant, dt time.Duration) {
	c.reservation.Refresh(e.targetPos)
	if c.class == Active && c.state != Pursuing && e.roster.CanAttackNow() {
		c.sinceAttack += dt
	}

	switch c.state {
	case Pursuing:
		e.updatePursuing(c)
	case Strafing:
		if e.timedZoneCheck(c, dt) {
			return
		}
		e.strafe(c, e.tuning.StrafeStep, Strafe)
		if e.rangeCheck(c) {
			return
		}
		e.attackCheck(c)
	case StrafingToZone:
		e.strafe(c, e.tuning.StrafeStep, Strafe)
		if e.rangeCheck(c) || e.neighborCheck(c) || e.strafeZoneCheck(c, dt) {
			return
		}
		e.attackCheck(c)
	case RadialRunToZone:
		e.strafe(c, e.tuning.RunStep, Run)
		if e.rangeCheck(c) || e.neighborCheck(c) || e.radialZoneCheck(c) {
			return
		}
		e.attackCheck(c)
	case MaintainDistance:
		if e.timedZoneCheck(c, dt) || e.rangeCheck(c) || e.patienceCheck(c, dt) {
			return
		}
		e.attackCheck(c)
	case ClosingDistance:
		e.moveTo(c, e.targetPos, e.tuning.StoppingDistance, Walk)
		if e.rangeCheck(c) {
			return
		}
		if e.withinStrafeDist(c) {
			e.strafeOrMaintain(c)
			return
		}
		e.attackCheck(c)
	case BackingUp:
		if !e.withinStrafeDist(c) {
			e.strafeOrMaintain(c)
			return
		}
		away := c.position.Sub(e.targetPos).Normalize()
		e.moveTo(c, c.position.Add(away.Scale(e.tuning.BackupStep)), e.tuning.StoppingDistance*0.5, Walk)
		if e.rangeCheck(c) {
			return
		}
		e.attackCheck(c)
	case MovingToAttack:
		e.moveTo(c, e.targetPos, e.tuning.Profile(c.attackMode).StoppingDistance, Run)
		if e.nav.HasArrived(c.ID) {
			e.enter(c, Attacking)
		}
	case MovingToZone:
		e.moveTo(c, c.reservation.ReservedPoint(), e.tuning.ZoneArrivalDistance, Run)
		if e.nav.HasArrived(c.ID) {
			c.reservation.ClearReserved()
			e.resample(c)
			e.enter(c, MaintainDistance)
		}
	case Attacking:
		c.swingTime += dt
		if e.tuning.AttackTimeout > 0 && c.swingTime >= e.tuning.AttackTimeout {
			e.logger.Warn("attack resolution timed out",
				zap.String("combatant", c.Name),
				zap.Duration("after", c.swingTime),
			)
			e.resolveAttack(c, true)
		}
	}
}

// enter switches c to s and runs the state's entry action.
func (e *Encounter) enter(c *Combatant, s State) {
	e.setState(c, s)
	switch s {
	case Pursuing, ClosingDistance, BackingUp:
		e.randomizeStrafe(c)
		if s == Pursuing {
			e.moveTo(c, e.targetPos, e.tuning.StoppingDistance, Run)
		}
	case Strafing, StrafingToZone, RadialRunToZone:
		c.strafeDir = dice.Pick(e.src, []StrafeDir{Left, Right})
	case MaintainDistance:
		c.patience = e.randDuration(e.tuning.PatienceMin, e.tuning.PatienceMax)
		c.idle = 0
		c.reservation.OccupyCurrent()
		e.nav.SetDestination(c.ID, Destination{Hold: true})
	case MovingToZone:
		e.moveTo(c, c.reservation.ReservedPoint(), e.tuning.ZoneArrivalDistance, Run)
	case MovingToAttack:
		c.attackMode = AttackMode(e.src.Intn(e.tuning.AttackModes))
		e.moveTo(c, e.targetPos, e.tuning.Profile(c.attackMode).StoppingDistance, Run)
		e.metrics.attackStarted(c.attackMode)
	case Attacking:
		c.attackLocked = true
		c.armed = true
		c.swingTime = 0
		c.setStaggerable(false)
		e.nav.SetDestination(c.ID, Destination{Hold: true})
		if e.listener != nil {
			e.listener.AttackStarted(c.ID, c.attackMode)
		}
	}
}

// setState switches c to s without running an entry action.
func (e *Encounter) setState(c *Combatant, s State) {
	if c.state == s {
		return
	}
	if c.state == MovingToZone {
		c.reservation.ClearReserved()
	}
	e.logger.Debug("combat state changed",
		zap.String("combatant", c.Name),
		zap.Stringer("from", c.state),
		zap.Stringer("to", s),
	)
	c.state = s
	e.metrics.transition(s)
}

// resample reads c's live position and recomputes its current zone mid-tick.
func (e *Encounter) resample(c *Combatant) {
	if pos, ok := e.locator.Position(c.ID); ok {
		c.position = pos
	}
	c.reservation.Refresh(e.targetPos)
}

func (e *Encounter) moveTo(c *Combatant, p space.Vec2, stopping float64, gait Gait) {
	e.nav.SetDestination(c.ID, Destination{Point: p, StoppingDistance: stopping, Gait: gait})
}

// strafe steps c sideways around the target in its strafe direction.
func (e *Encounter) strafe(c *Combatant, step float64, gait Gait) {
	side := e.sideDir(c)
	e.moveTo(c, c.position.Add(side.Scale(step)), e.tuning.StoppingDistance*0.5, gait)
}

// sideDir returns the unit vector to c's strafe side while facing the target.
func (e *Encounter) sideDir(c *Combatant) space.Vec2 {
	toTarget := e.targetPos.Sub(c.position).Normalize()
	if c.strafeDir == Right {
		return toTarget.Right()
	}
	return toTarget.Left()
}

func (e *Encounter) updatePursuing(c *Combatant) {
	e.moveTo(c, e.targetPos, e.tuning.StoppingDistance, Run)
	spec := e.grid.Spec()
	inRange := c.position.WithinSq(e.targetPos, spec.PassiveMaxDist)
	switch {
	case c.class == Unassigned && inRange:
		e.classify(c)
		e.randomizeStrafe(c)
	case c.class != Unassigned && !inRange:
		e.roster.MarkUnassigned(c)
	}
	if c.class == Unassigned || !e.withinStrafeDist(c) {
		return
	}
	switch {
	case c.reservation.IsCurrentZoneAvailable():
		e.enter(c, MaintainDistance)
	case c.reservation.AnyZoneAvailable():
		e.reserveOrPursue(c)
	default:
		e.enter(c, MaintainDistance)
	}
}

// reserveOrPursue reserves the closest free zone and heads for it. A failed search after availability was
// confirmed is a contract violation; the combatant falls back to pursuit.
func (e *Encounter) reserveOrPursue(c *Combatant) {
	if _, ok := c.reservation.ReserveClosestAvailable(); ok {
		e.enter(c, MovingToZone)
		return
	}
	e.logger.DPanic("no zone reservable although zones were reported available",
		zap.String("combatant", c.Name),
		zap.Stringer("band", c.class.Band()),
	)
	e.enter(c, Pursuing)
}

// rangeCheck keeps c inside its classification's band.
func (e *Encounter) rangeCheck(c *Combatant) bool {
	spec := e.grid.Spec()
	if c.class == Passive && c.position.WithinSq(e.targetPos, spec.ActiveMinDist) {
		demoted := e.roster.SwapPassiveForActive(c, e.targetPos)
		if demoted != nil {
			e.metrics.demotion()
			if demoted.state != Attacking {
				e.enter(demoted, BackingUp)
			}
		}
		e.metrics.promotion()
	}

	lo, hi := spec.ActiveMinDist, spec.ActiveMaxDist
	if c.class == Passive {
		lo, hi = spec.ActiveMaxDist, spec.PassiveMaxDist
	}
	d := c.position.Dist(e.targetPos)
	switch {
	case c.class == Unassigned || d > spec.PassiveMaxDist:
		e.roster.MarkUnassigned(c)
		c.reservation.ClearReserved()
		c.reservation.ClearOccupied()
		e.enter(c, Pursuing)
		return true
	case d > hi:
		e.enter(c, Pursuing)
		return true
	case c.state != BackingUp && d < lo:
		e.enter(c, BackingUp)
		return true
	}
	return false
}

// attackCheck commits c to an attack when it is active, off cooldown and the admission gate is open.
func (e *Encounter) attackCheck(c *Combatant) bool {
	if c.class != Active || c.sinceAttack < c.cooldown || !e.roster.CanAttackNow() {
		return false
	}
	e.logger.Debug("attack admitted",
		zap.String("combatant", c.Name),
		zap.Int("attacking", e.roster.AttackingCount()),
	)
	e.enter(c, MovingToAttack)
	return true
}

// timedZoneCheck periodically validates the zone c is standing in.
func (e *Encounter) timedZoneCheck(c *Combatant, dt time.Duration) bool {
	res := c.reservation
	if !res.AnyZoneAvailable() {
		return false
	}
	c.zoneTimer += dt
	if c.zoneTimer < e.tuning.ZoneCheckInterval {
		return false
	}
	c.zoneTimer = 0

	if !res.IsCurrentZoneMatchingBand() {
		if c.class == Active {
			e.enter(c, ClosingDistance)
		} else {
			e.enter(c, BackingUp)
		}
		return true
	}
	cur := res.Current()
	switch {
	case cur.IsAvailable():
		res.OccupyCurrent()
	case cur.IsOccupiedBy(c.ID):
	case cur.IsOccupied():
		if dice.Percent(e.src, e.tuning.TakeoverChance) {
			e.takeover(c)
			return false
		}
		e.enter(c, StrafingToZone)
		return true
	default:
		e.enter(c, StrafingToZone)
		return true
	}
	return false
}

// takeover evicts the occupant of c's current zone and sends it looking for another.
func (e *Encounter) takeover(c *Combatant) {
	victim, ok := e.byID[c.reservation.occupantOfCurrent()]
	if !ok || victim == c {
		return
	}
	if !c.reservation.TakeoverFrom(victim.reservation) {
		return
	}
	e.metrics.takeover()
	e.logger.Debug("zone taken over",
		zap.String("combatant", c.Name),
		zap.String("from", victim.Name),
		zap.Int("zone", c.reservation.Current().Sector),
	)
	if !victim.attackLocked {
		e.enter(victim, StrafingToZone)
	}
}

// strafeZoneCheck periodically settles a strafing combatant into a free zone.
func (e *Encounter) strafeZoneCheck(c *Combatant, dt time.Duration) bool {
	if !c.reservation.AnyZoneAvailable() {
		return false
	}
	c.strafeTimer += dt
	if c.strafeTimer < e.tuning.StrafeCheckInterval {
		return false
	}
	c.strafeTimer = 0
	if c.reservation.IsCurrentZoneAvailable() && c.reservation.OccupyCurrent() {
		e.enter(c, MaintainDistance)
		return true
	}
	return false
}

// radialZoneCheck slows a running combatant to a strafe once it reaches a free zone.
func (e *Encounter) radialZoneCheck(c *Combatant) bool {
	if !c.reservation.IsCurrentZoneAvailable() {
		return false
	}
	e.setState(c, StrafingToZone)
	return true
}

// patienceCheck starts c strafing after it has held position for its patience.
func (e *Encounter) patienceCheck(c *Combatant, dt time.Duration) bool {
	if !c.reservation.AnyZoneAvailable() {
		return false
	}
	c.idle += dt
	if c.idle <= c.patience {
		return false
	}
	c.idle = 0
	e.enter(c, StrafingToZone)
	return true
}

// neighborCheck nudges c's strafe distance away from the nearest combatant ahead of it in its strafe
// direction, so circling combatants do not stack.
func (e *Encounter) neighborCheck(c *Combatant) bool {
	nearest := e.nearestOther(c)
	if nearest == nil || !c.position.WithinSq(nearest.position, e.tuning.NeighborCheckDist) {
		return false
	}
	toNeighbor := nearest.position.Sub(c.position)
	if space.AngleBetween(e.sideDir(c), toNeighbor) >= e.tuning.NeighborCheckAngle*0.5 {
		return false
	}
	spec := e.grid.Spec()
	mid := spec.ActiveMinDist + (spec.ActiveMaxDist-spec.ActiveMinDist)*0.5
	if c.class == Passive {
		mid = spec.ActiveMaxDist + (spec.PassiveMaxDist-spec.ActiveMaxDist)*0.5
	}
	if c.strafeDist > mid {
		c.strafeDist -= e.tuning.AvoidanceIncrement
		e.setState(c, ClosingDistance)
	} else {
		c.strafeDist += e.tuning.AvoidanceIncrement
		e.setState(c, BackingUp)
	}
	return true
}

func (e *Encounter) nearestOther(c *Combatant) *Combatant {
	var best *Combatant
	bestDist := 0.0
	for _, o := range e.combatants {
		if o == c {
			continue
		}
		d := c.position.DistSq(o.position)
		if best == nil || d < bestDist {
			best, bestDist = o, d
		}
	}
	return best
}

// strafeOrMaintain settles c in place when it stands in a zone or no zone is free; otherwise it runs around
// the target looking for one.
func (e *Encounter) strafeOrMaintain(c *Combatant) {
	if c.reservation.Current() != nil || !c.reservation.AnyZoneAvailable() {
		e.enter(c, MaintainDistance)
		return
	}
	e.setState(c, RadialRunToZone)
}

func (e *Encounter) withinStrafeDist(c *Combatant) bool {
	return c.position.WithinSq(e.targetPos, c.strafeDist)
}

// classify assigns c the active role when a slot is open, passive otherwise.
func (e *Encounter) classify(c *Combatant) {
	if e.roster.ActiveSlotsOpen() {
		e.roster.Promote(c)
		return
	}
	e.roster.Demote(c)
}

// randomizeStrafe draws a strafe distance inside c's band.
func (e *Encounter) randomizeStrafe(c *Combatant) {
	spec := e.grid.Spec()
	if c.class == Passive {
		c.strafeDist = dice.Range(e.src, spec.ActiveMaxDist, spec.PassiveMaxDist)
		return
	}
	c.strafeDist = dice.Range(e.src, spec.ActiveMinDist, spec.ActiveMaxDist)
}

func (e *Encounter) resetAttackTimer(c *Combatant) {
	c.cooldown = e.randDuration(e.tuning.AttackCooldownMin, e.tuning.AttackCooldownMax)
	c.sinceAttack = 0
}

func (e *Encounter) randDuration(lo, hi time.Duration) time.Duration {
	return time.Duration(dice.Range(e.src, float64(lo), float64(hi)))
}

// resolveAttack ends c's swing: back away, draw a new cooldown, unlock.
func (e *Encounter) resolveAttack(c *Combatant, timedOut bool) {
	c.armed = false
	e.enter(c, BackingUp)
	e.resetAttackTimer(c)
	c.attackLocked = false
	c.setStaggerable(true)
	e.metrics.attackResolved(timedOut)
}
