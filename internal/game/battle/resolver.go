package battle

import (
	"math"

	"github.com/cory-johannsen/catchemall/internal/game/creature"
	"github.com/cory-johannsen/catchemall/internal/game/dice"
)

// Exchange records one attack and its outcome.
type Exchange struct {
	Attacker string
	Defender string
	// Dodged is true when the defender avoided the attack.
	Dodged bool
	// Countered is true when a dodge was followed by a counter-attack.
	Countered     bool
	CounterDamage int
	Critical      bool
	// Damage is the damage dealt to the defender; 0 when dodged.
	Damage int
	// AttackerHP and DefenderHP are the hit points after the exchange.
	AttackerHP int
	DefenderHP int
}

// Pairing records the exchanges between two front-line combatants.
type Pairing struct {
	First     string
	Second    string
	Exchanges []Exchange
}

// FirstStriker returns (first, second) for a new pairing: the faster
// combatant strikes first and a tie favours a.
func FirstStriker(a, b *creature.Combatant) (*creature.Combatant, *creature.Combatant) {
	if b.Speed > a.Speed {
		return b, a
	}
	return a, b
}

// Damage computes (floor(((2*level/5)+2) * 100 * (atk/def_atk) / 50) + 2) * rand(2,3)
// for attacker hitting defender, where level is the attacker's and def_atk is
// the defender's attack stat.
//
// Postcondition: Returns >= 4, or a *DivisionGuardError when defender.Attack <= 0.
func Damage(attacker, defender *creature.Combatant, r dice.Ranger) (int, error) {
	if defender.Attack <= 0 {
		return 0, &DivisionGuardError{Attacker: attacker.Name, Defender: defender.Name, Attack: defender.Attack}
	}
	level := float64(attacker.Level)
	ratio := float64(attacker.Attack) / float64(defender.Attack)
	base := ((2 * level / 5) + 2) * 100 * ratio
	return (int(math.Floor(base/50)) + 2) * r.Between(2, 3), nil
}

// contest reports whether a roll in [0, defenderStat] meets or beats a roll in [0, attackerAttack].
func contest(defenderStat, attackerAttack int, r dice.Ranger) bool {
	defRoll := r.Between(0, defenderStat)
	atkRoll := r.Between(0, attackerAttack)
	return defRoll >= atkRoll
}

// ResolveExchange resolves one attack from attacker against defender and
// applies any damage in place.
//
// Order of rolls: dodge contest (defender speed/3 vs attacker attack); on a
// dodge, counter contest (defender attack/3 vs attacker attack) and, if it
// succeeds, half of the defender's damage roll back onto the attacker. On a
// landed hit, the damage roll and then the critical roll.
//
// Precondition: both combatants non-nil and not fainted.
// Postcondition: HP of both sides stays >= 0; returns a *DivisionGuardError
// without consuming rolls or mutating state if either attack stat is <= 0.
func ResolveExchange(attacker, defender *creature.Combatant, r dice.Ranger, rules Rules) (Exchange, error) {
	if defender.Attack <= 0 {
		return Exchange{}, &DivisionGuardError{Attacker: attacker.Name, Defender: defender.Name, Attack: defender.Attack}
	}
	if attacker.Attack <= 0 {
		return Exchange{}, &DivisionGuardError{Attacker: defender.Name, Defender: attacker.Name, Attack: attacker.Attack}
	}

	ex := Exchange{Attacker: attacker.Name, Defender: defender.Name}

	if contest(defender.Speed/3, attacker.Attack, r) {
		ex.Dodged = true
		if contest(defender.Attack/3, attacker.Attack, r) {
			dmg, err := Damage(defender, attacker, r)
			if err != nil {
				return Exchange{}, err
			}
			ex.Countered = true
			ex.CounterDamage = dmg / 2
			attacker.ApplyDamage(ex.CounterDamage)
		}
	} else {
		dmg, err := Damage(attacker, defender, r)
		if err != nil {
			return Exchange{}, err
		}
		if r.Between(1, 100) <= rules.CritChance {
			ex.Critical = true
			dmg *= 2
		}
		ex.Damage = dmg
		defender.ApplyDamage(dmg)
	}

	ex.AttackerHP = attacker.CurrentHP
	ex.DefenderHP = defender.CurrentHP
	return ex, nil
}

// ResolvePairing runs exchanges between a and b, alternating attacker and
// defender, until either has fainted. A pairing where either side has already
// fainted produces no exchanges.
//
// Postcondition: on success a.Fainted() || b.Fainted().
func ResolvePairing(a, b *creature.Combatant, r dice.Ranger, rules Rules) (Pairing, error) {
	attacker, defender := FirstStriker(a, b)
	p := Pairing{First: attacker.Name, Second: defender.Name}
	for !a.Fainted() && !b.Fainted() {
		if rules.MaxExchanges > 0 && len(p.Exchanges) >= rules.MaxExchanges {
			return p, ErrStalemate
		}
		ex, err := ResolveExchange(attacker, defender, r, rules)
		if err != nil {
			return p, err
		}
		p.Exchanges = append(p.Exchanges, ex)
		attacker, defender = defender, attacker
	}
	return p, nil
}

// XPReward returns floor(BaseXPReward * ratio * bonus) for winner defeating
// loser, with ratio = loser.level / winner.level. The bonus is 1 plus one
// 0.1 ramp step, plus 1 when ratio < 1, capped at MaxDifficultyBonus.
//
// Postcondition: Returns >= 0.
func XPReward(winner, loser *creature.Combatant, rules Rules) int {
	ratio := float64(loser.Level) / float64(winner.Level)
	bonus := 1.0
	bonus += 0.1
	if ratio < 1 {
		bonus++
	}
	bonus = math.Min(bonus, rules.MaxDifficultyBonus)
	return int(math.Floor(rules.BaseXPReward * ratio * bonus))
}
