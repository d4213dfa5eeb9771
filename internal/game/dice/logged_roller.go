package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged dice rolling.
// Every roll is logged at debug level as its rendered audit string and total.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Roll evaluates expr and logs the result at debug level.
//
// Postcondition: result logged; returns RollResult or error.
func (r *Roller) Roll(expr Expression) (RollResult, error) {
	result, err := Roll(expr, r.src)
	if err != nil {
		return RollResult{}, err
	}
	r.logger.Debug("dice roll",
		zap.Stringer("roll", result),
		zap.Int("total", result.Total()),
	)
	return result, nil
}

// Between rolls a uniform int in [lo, hi] and logs it. Satisfies Ranger.
//
// Precondition: lo <= hi.
// Postcondition: lo <= result <= hi.
func (r *Roller) Between(lo, hi int) int {
	if lo == hi {
		return lo
	}
	result, err := r.Roll(RangeExpression(lo, hi))
	if err != nil {
		// RangeExpression never yields an invalid expression.
		panic("dice: " + err.Error())
	}
	return result.Total()
}
