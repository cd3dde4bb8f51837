package combat

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/gauntlet/internal/game/space"
)

// Roster is the admission controller: it classifies every combatant in combat as Active, Passive or
// Unassigned and caps how many are active and how many attack at once.
//
// Invariant: every tracked combatant is in exactly one of the three sets.
// Invariant: len(Active) <= maxActive after every Rebalance.
//
// Sets are slices in insertion order so that tie-breaks are deterministic. A Roster is not safe for
// concurrent use; it is driven by a single encounter tick.
type Roster struct {
	maxActive  int
	maxSim     int
	active     []*Combatant
	passive    []*Combatant
	unassigned []*Combatant
	logger     *zap.Logger
}

// NewRoster creates an empty roster.
//
// Precondition: maxActive >= 1 and maxSimultaneous >= 1.
func NewRoster(maxActive, maxSimultaneous int, logger *zap.Logger) *Roster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Roster{maxActive: maxActive, maxSim: maxSimultaneous, logger: logger}
}

// Register adds c to the Unassigned set if it is not already tracked.
//
// Postcondition: Returns true iff c was newly added; c's classification is Unassigned.
func (r *Roster) Register(c *Combatant) bool {
	if c == nil || r.Contains(c) {
		return false
	}
	r.unassigned = append(r.unassigned, c)
	c.class = Unassigned
	return true
}

// Unregister removes c from whichever set holds it. Zone claims are the caller's to release.
//
// Postcondition: Returns true iff c was tracked.
func (r *Roster) Unregister(c *Combatant) bool {
	var removed bool
	r.active, removed = without(r.active, c)
	if !removed {
		r.passive, removed = without(r.passive, c)
	}
	if !removed {
		r.unassigned, removed = without(r.unassigned, c)
	}
	return removed
}

// Promote moves a tracked c to the Active set. Untracked combatants are ignored.
func (r *Roster) Promote(c *Combatant) { r.move(c, Active) }

// Demote moves a tracked c to the Passive set. Untracked combatants are ignored.
func (r *Roster) Demote(c *Combatant) { r.move(c, Passive) }

// MarkUnassigned moves a tracked c to the Unassigned set. Untracked combatants are ignored.
func (r *Roster) MarkUnassigned(c *Combatant) { r.move(c, Unassigned) }

func (r *Roster) move(c *Combatant, to Classification) {
	if !r.Contains(c) {
		return
	}
	if c.class == to {
		return
	}
	r.active, _ = without(r.active, c)
	r.passive, _ = without(r.passive, c)
	r.unassigned, _ = without(r.unassigned, c)
	switch to {
	case Active:
		r.active = append(r.active, c)
	case Passive:
		r.passive = append(r.passive, c)
	default:
		r.unassigned = append(r.unassigned, c)
	}
	r.logger.Debug("classification changed",
		zap.String("combatant", c.Name),
		zap.Stringer("from", c.class),
		zap.Stringer("to", to),
	)
	c.class = to
}

// Rebalance demotes the furthest active combatants until the active set is within its cap, or promotes the
// closest passive combatant while under it. At most one promotion is made per call; distances use positions
// sampled at the start of the tick.
//
// Postcondition: len(Active) <= maxActive. Returns the combatant promoted, if any, and those demoted.
func (r *Roster) Rebalance(target space.Vec2) (promoted *Combatant, demoted []*Combatant) {
	for len(r.active) > r.maxActive {
		c := extreme(r.active, target, func(d, best float64) bool { return d > best })
		r.Demote(c)
		demoted = append(demoted, c)
	}
	if len(demoted) == 0 && len(r.active) < r.maxActive && len(r.passive) > 0 {
		promoted = extreme(r.passive, target, func(d, best float64) bool { return d < best })
		r.Promote(promoted)
	}
	return promoted, demoted
}

// CanAttackNow reports whether another active combatant may commit to an attack.
//
// Postcondition: Returns true iff fewer than maxSimultaneous active combatants are moving to attack or attacking.
func (r *Roster) CanAttackNow() bool {
	return r.AttackingCount() < r.maxSim
}

// AttackingCount returns the number of active combatants moving to attack or attacking.
func (r *Roster) AttackingCount() int {
	n := 0
	for _, c := range r.active {
		if c.state.IsAttackState() {
			n++
		}
	}
	return n
}

// SwapPassiveForActive promotes a passive c that has drifted into close range. When no active slot is open
// the furthest active combatant is demoted to make room.
//
// Postcondition: Returns the demoted combatant, or nil if none was demoted or c was not passive.
func (r *Roster) SwapPassiveForActive(c *Combatant, target space.Vec2) *Combatant {
	if !r.Contains(c) || c.class != Passive {
		return nil
	}
	var furthest *Combatant
	if !r.ActiveSlotsOpen() {
		furthest = extreme(r.active, target, func(d, best float64) bool { return d > best })
	}
	r.Promote(c)
	if furthest != nil {
		r.Demote(furthest)
	}
	return furthest
}

// ActiveSlotsOpen reports whether the active set is below its cap.
func (r *Roster) ActiveSlotsOpen() bool { return len(r.active) < r.maxActive }

// MaxActive returns the active cap.
func (r *Roster) MaxActive() int { return r.maxActive }

// MaxSimultaneous returns the simultaneous attack cap.
func (r *Roster) MaxSimultaneous() int { return r.maxSim }

// Contains reports whether c is tracked in any set.
func (r *Roster) Contains(c *Combatant) bool {
	if c == nil {
		return false
	}
	return indexOf(r.active, c) >= 0 || indexOf(r.passive, c) >= 0 || indexOf(r.unassigned, c) >= 0
}

// ActiveCount returns the size of the Active set.
func (r *Roster) ActiveCount() int { return len(r.active) }

// PassiveCount returns the size of the Passive set.
func (r *Roster) PassiveCount() int { return len(r.passive) }

// UnassignedCount returns the size of the Unassigned set.
func (r *Roster) UnassignedCount() int { return len(r.unassigned) }

// Len returns the number of tracked combatants.
func (r *Roster) Len() int { return len(r.active) + len(r.passive) + len(r.unassigned) }

// Active returns a copy of the Active set in insertion order.
func (r *Roster) Active() []*Combatant { return append([]*Combatant(nil), r.active...) }

// Passive returns a copy of the Passive set in insertion order.
func (r *Roster) Passive() []*Combatant { return append([]*Combatant(nil), r.passive...) }

// Unassigned returns a copy of the Unassigned set in insertion order.
func (r *Roster) Unassigned() []*Combatant { return append([]*Combatant(nil), r.unassigned...) }

// extreme returns the first combatant whose squared distance to target beats every earlier one under better.
func extreme(set []*Combatant, target space.Vec2, better func(d, best float64) bool) *Combatant {
	var pick *Combatant
	best := 0.0
	for _, c := range set {
		d := c.position.DistSq(target)
		if pick == nil || better(d, best) {
			pick, best = c, d
		}
	}
	return pick
}

func indexOf(set []*Combatant, c *Combatant) int {
	for i, e := range set {
		if e == c {
			return i
		}
	}
	return -1
}

func without(set []*Combatant, c *Combatant) ([]*Combatant, bool) {
	i := indexOf(set, c)
	if i < 0 {
		return set, false
	}
	return append(set[:i], set[i+1:]...), true
}
