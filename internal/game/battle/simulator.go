package battle

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/catchemall/internal/game/creature"
	"github.com/cory-johannsen/catchemall/internal/game/dice"
)

// Outcome is the terminal state of a battle.
type Outcome int

const (
	OutcomeTie Outcome = iota
	OutcomeChallengerWins
	OutcomeOpponentWins
)

// String returns a human-readable outcome label.
func (o Outcome) String() string {
	switch o {
	case OutcomeChallengerWins:
		return "challenger"
	case OutcomeOpponentWins:
		return "opponent"
	default:
		return "tie"
	}
}

// Result is what a completed battle hands back to the caller.
type Result struct {
	Battle  Battle
	Outcome Outcome
	// Winner is the owner of the winning side; empty on a tie.
	Winner     string
	Pairings   []Pairing
	Transcript *Transcript
}

// Simulator drives party-versus-party battles. It holds no per-battle state,
// so one Simulator may run battles concurrently on disjoint parties provided
// its Ranger is safe for concurrent use.
type Simulator struct {
	rng    dice.Ranger
	logger *zap.Logger
	rules  Rules
}

// NewSimulator creates a Simulator.
//
// Precondition: rng and logger must be non-nil.
func NewSimulator(rng dice.Ranger, logger *zap.Logger, rules Rules) *Simulator {
	return &Simulator{rng: rng, logger: logger, rules: rules}
}

// SimulateBattle runs one battle with DefaultRules and returns its transcript text.
func SimulateBattle(challenger, opponent *Party, rng dice.Ranger) (string, error) {
	res, err := NewSimulator(rng, zap.NewNop(), DefaultRules()).Simulate(challenger, opponent)
	if err != nil {
		return "", err
	}
	return res.Transcript.String(), nil
}

// Simulate fights challenger against opponent until one party is exhausted.
//
// The front combatant of each party fights until one faints. The survivor
// earns XP (see XPReward) and stays in; the fainted side sends out its next
// member. If both faint, both advance and nobody earns XP. The side that
// still has combatants when the other runs out wins; if both run out
// together the battle is a tie.
//
// The battle runs on copies. Level, XP, stat and HP changes are written back
// to the caller's combatants only if the whole battle succeeds; on error the
// caller's combatants are untouched. Healing afterwards is the caller's job.
//
// Precondition: rng must be non-nil.
// Postcondition: Returns a *InvalidPartyError if either party is nil, empty,
// oversized, or shares a combatant with the other.
func (s *Simulator) Simulate(challenger, opponent *Party) (*Result, error) {
	if err := challenger.Validate(s.rules.MaxPartySize); err != nil {
		return nil, err
	}
	if err := opponent.Validate(s.rules.MaxPartySize); err != nil {
		return nil, err
	}
	for _, c := range challenger.Members {
		for _, o := range opponent.Members {
			if c == o {
				return nil, &InvalidPartyError{
					Owner:  opponent.Owner,
					Size:   len(opponent.Members),
					Reason: fmt.Sprintf("%s is already fighting for %s", o.Name, challenger.Owner),
				}
			}
		}
	}

	ours := cloneMembers(challenger.Members)
	theirs := cloneMembers(opponent.Members)

	res := &Result{
		Battle:     Battle{Challenger: challenger.Owner, Opponent: opponent.Owner},
		Transcript: &Transcript{},
	}
	t := res.Transcript
	t.Addf("%s challenges %s to a battle!", challenger.Owner, opponent.Owner)

	ci, oi := 0, 0
	sentC, sentO := -1, -1
	for ci < len(ours) && oi < len(theirs) {
		c, o := ours[ci], theirs[oi]
		if sentC != ci {
			t.Addf("%s sends out %s (Lv %d, CP %d)!", challenger.Owner, c.Name, c.Level, c.CP)
			sentC = ci
		}
		if sentO != oi {
			t.Addf("%s sends out %s (Lv %d, CP %d)!", opponent.Owner, o.Name, o.Level, o.CP)
			sentO = oi
		}

		p, err := ResolvePairing(c, o, s.rng, s.rules)
		if err != nil {
			if errors.Is(err, ErrStalemate) {
				return nil, fmt.Errorf("%s vs %s: %w", c.Name, o.Name, err)
			}
			return nil, err
		}
		res.Pairings = append(res.Pairings, p)
		narratePairing(t, p)
		s.logger.Debug("pairing resolved",
			zap.String("challenger", c.Name),
			zap.String("opponent", o.Name),
			zap.Int("exchanges", len(p.Exchanges)),
		)

		switch {
		case c.Fainted() && o.Fainted():
			t.Addf("Both %s and %s fainted!", c.Name, o.Name)
			ci++
			oi++
		case o.Fainted():
			t.Addf("%s fainted!", o.Name)
			s.award(t, c, o)
			oi++
		default:
			t.Addf("%s fainted!", c.Name)
			s.award(t, o, c)
			ci++
		}
	}

	switch {
	case ci >= len(ours) && oi >= len(theirs):
		res.Outcome = OutcomeTie
		t.Addf("The battle ended in a tie!")
	case oi >= len(theirs):
		res.Outcome = OutcomeChallengerWins
		res.Winner = challenger.Owner
		t.Addf("%s is the winner!", challenger.Owner)
	default:
		res.Outcome = OutcomeOpponentWins
		res.Winner = opponent.Owner
		t.Addf("%s is the winner!", opponent.Owner)
	}

	commitMembers(challenger.Members, ours)
	commitMembers(opponent.Members, theirs)

	s.logger.Info("battle finished",
		zap.String("challenger", challenger.Owner),
		zap.String("opponent", opponent.Owner),
		zap.Stringer("outcome", res.Outcome),
		zap.Int("pairings", len(res.Pairings)),
	)
	return res, nil
}

// award grants the pairing XP to winner and narrates every level gained.
func (s *Simulator) award(t *Transcript, winner, loser *creature.Combatant) {
	xp := XPReward(winner, loser, s.rules)
	t.Addf("%s gained %d XP!", winner.Name, xp)
	from := winner.Level
	levels := winner.GrantXP(xp, s.rng)
	for lvl := from + 1; lvl <= from+levels; lvl++ {
		t.Addf("%s grew to level %d!", winner.Name, lvl)
	}
	if levels > 0 {
		s.logger.Debug("level up",
			zap.String("combatant", winner.Name),
			zap.Int("level", winner.Level),
			zap.Int("cp", winner.CP),
		)
	}
}

func narratePairing(t *Transcript, p Pairing) {
	for _, ex := range p.Exchanges {
		switch {
		case ex.Countered:
			t.Addf("%s dodged %s's attack!", ex.Defender, ex.Attacker)
			t.Addf("%s countered %s for %d damage! (%s HP: %d)", ex.Defender, ex.Attacker, ex.CounterDamage, ex.Attacker, ex.AttackerHP)
		case ex.Dodged:
			t.Addf("%s dodged %s's attack!", ex.Defender, ex.Attacker)
		default:
			if ex.Critical {
				t.Addf("Critical hit!")
			}
			t.Addf("%s attacks %s for %d damage! (%s HP: %d)", ex.Attacker, ex.Defender, ex.Damage, ex.Defender, ex.DefenderHP)
		}
	}
}

func cloneMembers(members []*creature.Combatant) []*creature.Combatant {
	out := make([]*creature.Combatant, len(members))
	for i, m := range members {
		out[i] = m.Clone()
	}
	return out
}

func commitMembers(dst, src []*creature.Combatant) {
	for i := range dst {
		*dst[i] = *src[i]
	}
}
