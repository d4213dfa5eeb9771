// Package dice provides the randomness abstraction and roll-result types
// used by creature growth and battle resolution.
package dice

import "fmt"

// RollResult holds the full audit trail for a single dice roll evaluation.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string // e.g. "1d4+1"
	Dice       []int  // individual die results before modifier
	Modifier   int    // flat modifier (may be negative)
}

// Total returns the sum of all die results plus the modifier.
//
// Postcondition: return value == sum(r.Dice) + r.Modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String renders the roll as "1d4+1 → [3] +1 = 4". An unnamed roll drops
// the expression: "[3] +1 = 4".
func (r RollResult) String() string {
	body := fmt.Sprintf("%v %+d = %d", r.Dice, r.Modifier, r.Total())
	if r.Expression == "" {
		return body
	}
	return r.Expression + " → " + body
}

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Ranger draws uniformly distributed integers from a closed interval.
// It is the capability injected into growth and battle code.
type Ranger interface {
	// Between returns a random int in [lo, hi].
	//
	// Precondition: lo <= hi.
	Between(lo, hi int) int
}
