package combat_test

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/gauntlet/internal/game/combat"
	"github.com/cory-johannsen/gauntlet/internal/game/space"
)

func combatantAt(name string, x, y float64) *combat.Combatant {
	c := combat.NewCombatant(uuid.New(), name, nil)
	c.Observe(space.V(x, y))
	return c
}

func TestRoster_RegisterIsIdempotent(t *testing.T) {
	r := combat.NewRoster(3, 2, zaptest.NewLogger(t))
	c := combatantAt("a", 0, 4)

	assert.True(t, r.Register(c))
	assert.False(t, r.Register(c))
	assert.Equal(t, 1, r.UnassignedCount())
	assert.Equal(t, combat.Unassigned, c.Classification())
	assert.False(t, r.Register(nil))
}

func TestRoster_MovesBetweenSets(t *testing.T) {
	r := combat.NewRoster(3, 2, zaptest.NewLogger(t))
	c := combatantAt("a", 0, 4)
	r.Register(c)

	r.Promote(c)
	assert.Equal(t, combat.Active, c.Classification())
	assert.Equal(t, []*combat.Combatant{c}, r.Active())
	assert.Empty(t, r.Unassigned())

	r.Demote(c)
	assert.Equal(t, combat.Passive, c.Classification())
	assert.Equal(t, []*combat.Combatant{c}, r.Passive())
	assert.Empty(t, r.Active())

	r.MarkUnassigned(c)
	assert.Equal(t, combat.Unassigned, c.Classification())
	assert.Equal(t, 1, r.Len())
}

func TestRoster_UntrackedIsNoOp(t *testing.T) {
	r := combat.NewRoster(3, 2, nil)
	c := combatantAt("stray", 0, 4)

	r.Promote(c)
	r.Demote(c)
	r.MarkUnassigned(c)
	assert.False(t, r.Unregister(c))
	assert.Nil(t, r.SwapPassiveForActive(c, space.Vec2{}))
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, combat.Unassigned, c.Classification())
}

func TestRoster_Unregister(t *testing.T) {
	r := combat.NewRoster(3, 2, nil)
	a, b := combatantAt("a", 0, 4), combatantAt("b", 0, 6)
	r.Register(a)
	r.Register(b)
	r.Promote(a)

	assert.True(t, r.Unregister(a))
	assert.False(t, r.Contains(a))
	assert.True(t, r.Contains(b))
	assert.Equal(t, 0, r.ActiveCount())
}

func TestRoster_RebalancePromotesClosestPassive(t *testing.T) {
	r := combat.NewRoster(1, 2, zaptest.NewLogger(t))
	far := combatantAt("far", 0, 5.0)
	near := combatantAt("near", 3.0, 0)
	r.Register(far)
	r.Register(near)
	r.Demote(far)
	r.Demote(near)

	promoted, demoted := r.Rebalance(space.Vec2{})
	assert.Same(t, near, promoted)
	assert.Empty(t, demoted)
	assert.Equal(t, combat.Active, near.Classification())
	assert.Equal(t, combat.Passive, far.Classification())

	promoted, demoted = r.Rebalance(space.Vec2{})
	assert.Nil(t, promoted)
	assert.Empty(t, demoted)
}

func TestRoster_RebalanceTieGoesToFirstRegistered(t *testing.T) {
	r := combat.NewRoster(1, 2, nil)
	first := combatantAt("first", 0, 4)
	second := combatantAt("second", 4, 0)
	r.Register(first)
	r.Register(second)
	r.Demote(first)
	r.Demote(second)

	promoted, _ := r.Rebalance(space.Vec2{})
	assert.Same(t, first, promoted)
}

func TestRoster_RebalanceDemotesFurthestActive(t *testing.T) {
	r := combat.NewRoster(2, 2, nil)
	cs := []*combat.Combatant{combatantAt("a", 0, 3), combatantAt("b", 0, 4.5), combatantAt("c", 0, 4)}
	for _, c := range cs {
		r.Register(c)
		r.Promote(c)
	}

	promoted, demoted := r.Rebalance(space.Vec2{})
	assert.Nil(t, promoted)
	require.Len(t, demoted, 1)
	assert.Same(t, cs[1], demoted[0])
	assert.Equal(t, 2, r.ActiveCount())
}

func TestRoster_SwapPassiveForActive(t *testing.T) {
	t.Run("full roster demotes furthest", func(t *testing.T) {
		r := combat.NewRoster(2, 2, nil)
		a, b := combatantAt("a", 0, 3.5), combatantAt("b", 0, 4.8)
		p := combatantAt("p", 0, 2)
		for _, c := range []*combat.Combatant{a, b, p} {
			r.Register(c)
		}
		r.Promote(a)
		r.Promote(b)
		r.Demote(p)

		demoted := r.SwapPassiveForActive(p, space.Vec2{})
		assert.Same(t, b, demoted)
		assert.Equal(t, combat.Active, p.Classification())
		assert.Equal(t, combat.Passive, b.Classification())
		assert.Equal(t, 2, r.ActiveCount())
	})
	t.Run("open slot only promotes", func(t *testing.T) {
		r := combat.NewRoster(2, 2, nil)
		a, p := combatantAt("a", 0, 3.5), combatantAt("p", 0, 2)
		r.Register(a)
		r.Register(p)
		r.Promote(a)
		r.Demote(p)

		assert.Nil(t, r.SwapPassiveForActive(p, space.Vec2{}))
		assert.Equal(t, 2, r.ActiveCount())
	})
	t.Run("non passive ignored", func(t *testing.T) {
		r := combat.NewRoster(1, 2, nil)
		a := combatantAt("a", 0, 3.5)
		r.Register(a)
		r.Promote(a)
		assert.Nil(t, r.SwapPassiveForActive(a, space.Vec2{}))
		assert.Equal(t, combat.Active, a.Classification())
	})
}

func TestRoster_CanAttackNowWithNoAttackers(t *testing.T) {
	r := combat.NewRoster(3, 1, nil)
	a := combatantAt("a", 0, 4)
	r.Register(a)
	r.Promote(a)
	assert.True(t, r.CanAttackNow())
	assert.Equal(t, 0, r.AttackingCount())
}

func TestProperty_Roster_ExclusiveClassificationAndActiveCap(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		maxActive := rapid.IntRange(1, 4).Draw(rt, "maxActive")
		r := combat.NewRoster(maxActive, 2, nil)
		pool := make([]*combat.Combatant, 8)
		for i := range pool {
			pool[i] = combatantAt(fmt.Sprintf("c%d", i),
				rapid.Float64Range(-10, 10).Draw(rt, "x"),
				rapid.Float64Range(-10, 10).Draw(rt, "y"))
		}
		registered := make(map[*combat.Combatant]bool)

		steps := rapid.IntRange(1, 60).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			c := pool[rapid.IntRange(0, len(pool)-1).Draw(rt, "who")]
			switch rapid.IntRange(0, 6).Draw(rt, "op") {
			case 0:
				r.Register(c)
				registered[c] = true
			case 1:
				r.Unregister(c)
				delete(registered, c)
			case 2:
				r.Promote(c)
			case 3:
				r.Demote(c)
			case 4:
				r.MarkUnassigned(c)
			case 5:
				r.SwapPassiveForActive(c, space.Vec2{})
			case 6:
				r.Rebalance(space.Vec2{})
				if r.ActiveCount() > maxActive {
					rt.Fatalf("active %d exceeds cap %d after rebalance", r.ActiveCount(), maxActive)
				}
			}

			if r.Len() != len(registered) {
				rt.Fatalf("roster tracks %d, expected %d", r.Len(), len(registered))
			}
			sets := map[combat.Classification][]*combat.Combatant{
				combat.Active:     r.Active(),
				combat.Passive:    r.Passive(),
				combat.Unassigned: r.Unassigned(),
			}
			for c := range registered {
				count := 0
				for class, set := range sets {
					for _, member := range set {
						if member == c {
							count++
							if c.Classification() != class {
								rt.Fatalf("%s classified %s but held in %s set", c.Name, c.Classification(), class)
							}
						}
					}
				}
				if count != 1 {
					rt.Fatalf("%s held in %d sets", c.Name, count)
				}
			}
		}
	})
}
