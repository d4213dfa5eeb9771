package battle

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParty is matched by every *InvalidPartyError.
	ErrInvalidParty = errors.New("invalid party")
	// ErrDivisionGuard is matched by every *DivisionGuardError.
	ErrDivisionGuard = errors.New("division guard")
	// ErrStalemate is returned when a pairing exceeds Rules.MaxExchanges.
	ErrStalemate = errors.New("pairing did not resolve")
)

// InvalidPartyError reports a party that cannot enter a battle.
type InvalidPartyError struct {
	Owner  string
	Size   int
	Reason string
}

func (e *InvalidPartyError) Error() string {
	return fmt.Sprintf("invalid party for %q (size %d): %s", e.Owner, e.Size, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidParty.
func (e *InvalidPartyError) Unwrap() error { return ErrInvalidParty }

// DivisionGuardError reports a damage calculation whose divisor, the
// receiving side's attack stat, is not positive.
type DivisionGuardError struct {
	Attacker string
	Defender string
	Attack   int
}

func (e *DivisionGuardError) Error() string {
	return fmt.Sprintf("damage from %s to %s: defender attack %d must be > 0", e.Attacker, e.Defender, e.Attack)
}

// Unwrap lets errors.Is match ErrDivisionGuard.
func (e *DivisionGuardError) Unwrap() error { return ErrDivisionGuard }
