// Package battle resolves party-versus-party creature battles into a narrated transcript.
package battle

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/catchemall/internal/game/creature"
)

// MaxPartySize is the largest party allowed by DefaultRules.
const MaxPartySize = 6

// Party is an ordered team of combatants owned by one side. Members fight in
// slice order.
type Party struct {
	Owner   string
	Members []*creature.Combatant
}

// NewParty forms a party and validates it against MaxPartySize.
//
// Postcondition: Returns a *InvalidPartyError if members is empty, larger
// than MaxPartySize, or contains nil or repeated combatants.
func NewParty(owner string, members ...*creature.Combatant) (*Party, error) {
	p := &Party{Owner: owner, Members: members}
	if err := p.Validate(MaxPartySize); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the 1..maxSize size invariant and member sanity.
func (p *Party) Validate(maxSize int) error {
	if p == nil {
		return &InvalidPartyError{Reason: "party is nil"}
	}
	n := len(p.Members)
	if n == 0 {
		return &InvalidPartyError{Owner: p.Owner, Size: n, Reason: "party is empty"}
	}
	if n > maxSize {
		return &InvalidPartyError{Owner: p.Owner, Size: n, Reason: fmt.Sprintf("party exceeds %d members", maxSize)}
	}
	seen := make(map[*creature.Combatant]bool, n)
	for i, m := range p.Members {
		if m == nil {
			return &InvalidPartyError{Owner: p.Owner, Size: n, Reason: fmt.Sprintf("member %d is nil", i)}
		}
		if seen[m] {
			return &InvalidPartyError{Owner: p.Owner, Size: n, Reason: fmt.Sprintf("%s appears more than once", m.Name)}
		}
		seen[m] = true
	}
	return nil
}

// HealAll restores every member to full HP.
func (p *Party) HealAll() {
	for _, m := range p.Members {
		m.Heal()
	}
}

// String lists the members with their CP.
func (p *Party) String() string {
	names := make([]string, len(p.Members))
	for i, m := range p.Members {
		names[i] = fmt.Sprintf("%s (cp:%d)", m.Name, m.CP)
	}
	return fmt.Sprintf("%s: %s", p.Owner, strings.Join(names, ", "))
}

// Battle names the two sides of one engagement.
type Battle struct {
	Challenger string
	Opponent   string
}
