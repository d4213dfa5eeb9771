package creature

import (
	"fmt"
	"math"
	"sort"

	"github.com/cory-johannsen/catchemall/internal/game/dice"
)

// growthRange is the [lo, hi] random increase each stat gains per level, indexed by Stat.
var growthRange = [4][2]int{
	StatAttack:  {1, 4},
	StatDefence: {1, 4},
	StatMaxHP:   {2, 5},
	StatSpeed:   {1, 3},
}

// RankToBonus assigns growth bonuses 0..3 to the four stats by ascending value:
// the weakest stat gets 0 and the strongest gets 3. Equal values keep their input order.
//
// Postcondition: the result is a permutation of {0, 1, 2, 3}.
func RankToBonus(stats [4]int) [4]int {
	idx := []int{0, 1, 2, 3}
	sort.SliceStable(idx, func(a, b int) bool { return stats[idx[a]] < stats[idx[b]] })
	var bonus [4]int
	for rank, i := range idx {
		bonus[i] = rank
	}
	return bonus
}

// stats returns the growable stats indexed by Stat.
func (c *Combatant) stats() [4]int {
	return [4]int{c.Attack, c.Defence, c.MaxHP, c.Speed}
}

// levelUp applies one level of stat growth. Draw order is attack, defence,
// max_hp, speed; the multiplier is taken at the level being left.
func (c *Combatant) levelUp(r dice.Ranger) {
	mult := c.CPMultiplier()
	grow := func(stat Stat, value int) int {
		rng := growthRange[stat]
		return value + r.Between(rng[0], rng[1]) + int(math.Floor(float64(value)*mult)) + c.Growth[stat]
	}
	c.Attack = grow(StatAttack, c.Attack)
	c.Defence = grow(StatDefence, c.Defence)
	c.MaxHP = grow(StatMaxHP, c.MaxHP)
	c.Speed = grow(StatSpeed, c.Speed)
	c.Level++
	c.RecalculateCP()
}

// GrantXP adds amount experience and applies every level-up it pays for,
// consuming XPPerLevel per level.
//
// Precondition: amount >= 0; r must be non-nil.
// Postcondition: 0 <= XP < XPPerLevel; returns the number of levels gained.
func (c *Combatant) GrantXP(amount int, r dice.Ranger) int {
	if amount < 0 {
		panic(fmt.Sprintf("creature: GrantXP called with negative amount %d", amount))
	}
	c.XP += amount
	levels := 0
	for c.XP >= XPPerLevel {
		c.XP -= XPPerLevel
		c.levelUp(r)
		levels++
	}
	return levels
}

// ForceLevel applies n level-ups directly, without touching XP.
// The stat deltas are identical to n organic level-ups drawn from the same rolls.
//
// Precondition: n >= 0; r must be non-nil.
// Postcondition: Level increases by exactly n.
func (c *Combatant) ForceLevel(n int, r dice.Ranger) {
	if n < 0 {
		panic(fmt.Sprintf("creature: ForceLevel called with negative n %d", n))
	}
	for i := 0; i < n; i++ {
		c.levelUp(r)
	}
}
