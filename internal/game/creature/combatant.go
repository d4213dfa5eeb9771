// Package creature models a single battling creature: its stats, combat power,
// experience and level growth.
package creature

import (
	"fmt"
	"math"
	"strings"
)

// XPPerLevel is the experience consumed by one level-up.
const XPPerLevel = 100

// Stat indexes the four growable stats in Growth and RankToBonus.
type Stat int

const (
	StatAttack Stat = iota
	StatDefence
	StatMaxHP
	StatSpeed
)

// String returns the stat's display name.
func (s Stat) String() string {
	switch s {
	case StatAttack:
		return "attack"
	case StatDefence:
		return "defence"
	case StatMaxHP:
		return "max_hp"
	case StatSpeed:
		return "speed"
	default:
		return "unknown"
	}
}

// Combatant is one creature instance.
//
// Invariant: 0 <= CurrentHP <= MaxHP; 0 <= XP < XPPerLevel between calls;
// Level >= 1; Attack, Defence, MaxHP, Speed >= 0.
type Combatant struct {
	ID        string
	Species   string
	Name      string
	Attack    int
	Defence   int
	MaxHP     int
	Speed     int
	CurrentHP int
	Level     int
	XP        int
	// CP is the cached combat power; refreshed by RecalculateCP.
	CP int
	// Growth holds the per-stat level-up bias, indexed by Stat.
	Growth [4]int
}

// CPMultiplier returns level/100.
func (c *Combatant) CPMultiplier() float64 {
	return float64(c.Level) / 100
}

// CombatPower computes floor(attack * sqrt(defence) * sqrt(max_hp) * level/100 / 10).
//
// Postcondition: Returns >= 0.
func (c *Combatant) CombatPower() int {
	cp := float64(c.Attack) * math.Sqrt(float64(c.Defence)) * math.Sqrt(float64(c.MaxHP)) * c.CPMultiplier() / 10
	return int(math.Floor(cp))
}

// RecalculateCP refreshes the cached CP field.
func (c *Combatant) RecalculateCP() {
	c.CP = c.CombatPower()
}

// Fainted reports whether the combatant has no hit points left.
func (c *Combatant) Fainted() bool { return c.CurrentHP <= 0 }

// ApplyDamage reduces CurrentHP by amount, flooring at zero.
// Precondition: amount must be >= 0.
// Postcondition: CurrentHP >= 0.
func (c *Combatant) ApplyDamage(amount int) {
	c.CurrentHP -= amount
	if c.CurrentHP < 0 {
		c.CurrentHP = 0
	}
}

// Heal restores CurrentHP to MaxHP. Calling it repeatedly has no further effect.
func (c *Combatant) Heal() {
	c.CurrentHP = c.MaxHP
}

// Clone returns an independent copy.
func (c *Combatant) Clone() *Combatant {
	cp := *c
	return &cp
}

// String renders the combatant's stat card.
func (c *Combatant) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Stats for %s\n", c.Name)
	fmt.Fprintf(&b, "HP: %d/%d\n", c.CurrentHP, c.MaxHP)
	fmt.Fprintf(&b, "CP: %d\n", c.CP)
	fmt.Fprintf(&b, "Lv: %d\n", c.Level)
	fmt.Fprintf(&b, "Xp: %d/%d\n", c.XP, XPPerLevel)
	fmt.Fprintf(&b, "Atk: %d Def: %d Spd: %d\n", c.Attack, c.Defence, c.Speed)
	return b.String()
}
