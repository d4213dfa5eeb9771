package battle_test

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/catchemall/internal/game/creature"
	"github.com/cory-johannsen/catchemall/internal/game/dice"
)

// scriptRanger returns queued values in order and panics if a value falls
// outside the requested interval or the script runs dry.
type scriptRanger struct {
	vals []int
}

func (s *scriptRanger) Between(lo, hi int) int {
	if lo == hi {
		return lo
	}
	if len(s.vals) == 0 {
		panic(fmt.Sprintf("scriptRanger: no value queued for [%d, %d]", lo, hi))
	}
	v := s.vals[0]
	s.vals = s.vals[1:]
	if v < lo || v > hi {
		panic(fmt.Sprintf("scriptRanger: %d outside [%d, %d]", v, lo, hi))
	}
	return v
}

type minRanger struct{}

func (minRanger) Between(lo, _ int) int { return lo }

func seeded(seed uint64) dice.Ranger {
	return dice.NewLoggedRoller(dice.NewSeededSource(seed), zap.NewNop())
}

func mon(name string, atk, def, hp, spd, level int) *creature.Combatant {
	c := &creature.Combatant{
		ID:        name,
		Name:      name,
		Attack:    atk,
		Defence:   def,
		MaxHP:     hp,
		CurrentHP: hp,
		Speed:     spd,
		Level:     level,
	}
	c.Growth = creature.RankToBonus([4]int{atk, def, hp, spd})
	c.RecalculateCP()
	return c
}

func snapshot(members []*creature.Combatant) []creature.Combatant {
	out := make([]creature.Combatant, len(members))
	for i, m := range members {
		out[i] = *m
	}
	return out
}
