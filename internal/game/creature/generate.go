package creature

import (
	"math"

	"github.com/google/uuid"

	"github.com/cory-johannsen/catchemall/internal/game/dice"
	"github.com/cory-johannsen/catchemall/internal/game/species"
)

// MaxIVNoise is the upper bound of the per-stat noise added at creation.
const MaxIVNoise = 15

// Generate creates a level-1 combatant of the given species. Each stat is
// floor(base + rand(0, MaxIVNoise) + base*0.01); growth biases come from the
// resulting stat ranking. Attack is raised to 1 if the species would yield 0
// so that damage division is always defined.
//
// Precondition: tmpl must be valid; r must be non-nil.
// Postcondition: Level == 1; XP == 0; CurrentHP == MaxHP; Attack >= 1.
func Generate(tmpl *species.Template, r dice.Ranger) *Combatant {
	c := &Combatant{
		ID:      uuid.NewString(),
		Species: tmpl.ID,
		Name:    tmpl.Name,
		Level:   1,
	}
	mult := c.CPMultiplier()
	noisy := func(base int) int {
		return int(math.Floor(float64(base+r.Between(0, MaxIVNoise)) + float64(base)*mult))
	}
	c.Attack = noisy(tmpl.Attack)
	c.Defence = noisy(tmpl.Defense)
	c.MaxHP = noisy(tmpl.HP)
	c.Speed = noisy(tmpl.Speed)
	if c.Attack < 1 {
		c.Attack = 1
	}
	c.CurrentHP = c.MaxHP
	c.Growth = RankToBonus(c.stats())
	c.RecalculateCP()
	return c
}

// GenerateAtLevel creates a combatant and pre-ages it to level via ForceLevel.
//
// Precondition: level >= 1.
// Postcondition: Level == level; CurrentHP == MaxHP.
func GenerateAtLevel(tmpl *species.Template, level int, r dice.Ranger) *Combatant {
	c := Generate(tmpl, r)
	c.ForceLevel(level-1, r)
	c.Heal()
	return c
}
