// Package storage defines the roster persistence contract shared by the
// postgres and sqlite backends.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cory-johannsen/catchemall/internal/game/battle"
)

var (
	// ErrNotFound is returned when an owner has no stored party.
	ErrNotFound = errors.New("roster not found")
	// ErrConflict is returned when a combatant is already stored under another owner.
	ErrConflict = errors.New("combatant belongs to another owner")
)

// Roster persists parties by owner. Member order is preserved.
type Roster interface {
	// LoadParty returns the stored party for owner, or ErrNotFound.
	LoadParty(ctx context.Context, owner string) (*battle.Party, error)
	// SaveAll replaces the stored party of every given owner in one transaction.
	SaveAll(ctx context.Context, parties ...*battle.Party) error
	// DeleteParty removes owner's party, or returns ErrNotFound.
	DeleteParty(ctx context.Context, owner string) error
	// Owners lists every owner with a stored party, in ascending order.
	Owners(ctx context.Context) ([]string, error)
	// RematchTimes returns the stored time each beaten trainer can fight again, keyed by trainer ID.
	RematchTimes(ctx context.Context) (map[string]time.Time, error)
	// SetRematchTime stores readyAt for trainerID, replacing any earlier value.
	SetRematchTime(ctx context.Context, trainerID string, readyAt time.Time) error
}

// CheckParties validates parties before a SaveAll.
//
// Postcondition: Returns an error if any party is nil, has a blank owner,
// repeats an owner, or fails battle.Party.Validate against MaxPartySize.
func CheckParties(parties []*battle.Party) error {
	seen := make(map[string]bool, len(parties))
	for i, p := range parties {
		if p == nil {
			return fmt.Errorf("party %d is nil", i)
		}
		if strings.TrimSpace(p.Owner) == "" {
			return fmt.Errorf("party %d has no owner", i)
		}
		if seen[p.Owner] {
			return fmt.Errorf("owner %q appears more than once", p.Owner)
		}
		seen[p.Owner] = true
		if err := p.Validate(battle.MaxPartySize); err != nil {
			return err
		}
	}
	return nil
}
