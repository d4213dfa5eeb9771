package battle

// Rules holds the tunable constants of battle resolution.
type Rules struct {
	// CritChance is the percent chance, 0-100, that a landed hit is critical.
	CritChance int
	// BaseXPReward is the XP for beating an opponent of equal level before the difficulty bonus.
	BaseXPReward float64
	// MaxDifficultyBonus caps the XP difficulty multiplier.
	MaxDifficultyBonus float64
	// MaxPartySize bounds party length at battle time.
	MaxPartySize int
	// MaxExchanges bounds the exchanges in a single pairing; 0 means unbounded.
	MaxExchanges int
}

// DefaultRules returns the standard rule set.
func DefaultRules() Rules {
	return Rules{
		CritChance:         2,
		BaseXPReward:       15,
		MaxDifficultyBonus: 2.5,
		MaxPartySize:       MaxPartySize,
		MaxExchanges:       10_000,
	}
}
