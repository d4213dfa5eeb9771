package dice

import "fmt"

// Expression describes a roll of Count dice with Sides faces plus a flat Modifier.
// Precondition: Count >= 1, Sides >= 2.
type Expression struct {
	Raw      string // display form, e.g. "1d4+1"
	Count    int
	Sides    int
	Modifier int
}

// RangeExpression returns the single-die expression whose total is uniform over [lo, hi].
//
// Precondition: lo < hi.
// Postcondition: Count == 1; Sides == hi-lo+1; Modifier == lo-1.
func RangeExpression(lo, hi int) Expression {
	if lo >= hi {
		panic(fmt.Sprintf("dice: RangeExpression requires lo < hi, got [%d, %d]", lo, hi))
	}
	sides := hi - lo + 1
	mod := lo - 1
	raw := fmt.Sprintf("1d%d", sides)
	if mod != 0 {
		raw = fmt.Sprintf("1d%d%+d", sides, mod)
	}
	return Expression{Raw: raw, Count: 1, Sides: sides, Modifier: mod}
}

// Roll evaluates an Expression using the given Source and returns a RollResult.
//
// Precondition: Count >= 1, Sides >= 2; src must be non-nil.
// Postcondition: len(result.Dice) == expr.Count;
// result.Total() == sum(result.Dice) + result.Modifier.
func Roll(expr Expression, src Source) (RollResult, error) {
	if expr.Count < 1 {
		return RollResult{}, fmt.Errorf("dice: invalid die count %d in %q", expr.Count, expr.Raw)
	}
	if expr.Sides < 2 {
		return RollResult{}, fmt.Errorf("dice: invalid die sides %d in %q", expr.Sides, expr.Raw)
	}
	rolled := make([]int, expr.Count)
	for i := range rolled {
		rolled[i] = src.Intn(expr.Sides) + 1
	}
	return RollResult{
		Expression: expr.Raw,
		Dice:       rolled,
		Modifier:   expr.Modifier,
	}, nil
}

// Between draws a uniform int in [lo, hi] from src without logging.
// A degenerate interval (lo == hi) returns lo and consumes no randomness.
//
// Precondition: lo <= hi; src must be non-nil.
func Between(src Source, lo, hi int) int {
	if lo > hi {
		panic(fmt.Sprintf("dice: Between called with lo > hi (%d > %d)", lo, hi))
	}
	if lo == hi {
		return lo
	}
	return src.Intn(hi-lo+1) + lo
}
