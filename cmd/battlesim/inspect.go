package main

import (
	"context"
	"fmt"
	"io"

	"github.com/cory-johannsen/catchemall/internal/game/battle"
	"github.com/cory-johannsen/catchemall/internal/game/creature"
	"github.com/cory-johannsen/catchemall/internal/storage"
)

// ListParties writes every stored party, one member per line with its slot and CP.
//
// Postcondition: Writes a notice instead when the store is empty.
func ListParties(ctx context.Context, store storage.Roster, out io.Writer) error {
	owners, err := store.Owners(ctx)
	if err != nil {
		return err
	}
	if len(owners) == 0 {
		_, err := fmt.Fprintln(out, "No parties are stored.")
		return err
	}
	for _, owner := range owners {
		p, err := store.LoadParty(ctx, owner)
		if err != nil {
			return fmt.Errorf("loading party for %q: %w", owner, err)
		}
		fmt.Fprintf(out, "Here are the contents of %s's party\n", owner)
		for slot, c := range p.Members {
			fmt.Fprintf(out, "%d: %s | lv: %d | cp: %d\n", slot, c.Name, c.Level, c.CP)
		}
	}
	return nil
}

// ShowMember writes the stat card of the combatant in owner's slot.
//
// Postcondition: Returns storage.ErrNotFound (wrapped) for an unknown owner
// and an error for a slot outside the party.
func ShowMember(ctx context.Context, store storage.Roster, owner string, slot int, out io.Writer) error {
	c, _, err := member(ctx, store, owner, slot)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(out, c.String())
	return err
}

// ReleaseMember removes the combatant in owner's slot. Releasing the last
// member deletes the party.
//
// Postcondition: The remaining members keep their relative order.
func ReleaseMember(ctx context.Context, store storage.Roster, owner string, slot int, out io.Writer) error {
	c, rest, err := member(ctx, store, owner, slot)
	if err != nil {
		return err
	}
	if len(rest.Members) == 0 {
		err = store.DeleteParty(ctx, owner)
	} else {
		err = store.SaveAll(ctx, rest)
	}
	if err != nil {
		return fmt.Errorf("releasing %s: %w", c.Name, err)
	}
	_, err = fmt.Fprintf(out, "%s released %s (cp:%d)... goodbye...\n", owner, c.Name, c.CP)
	return err
}

// member loads owner's party and splits out the combatant at slot.
func member(ctx context.Context, store storage.Roster, owner string, slot int) (*creature.Combatant, *battle.Party, error) {
	p, err := store.LoadParty(ctx, owner)
	if err != nil {
		return nil, nil, fmt.Errorf("loading party for %q: %w", owner, err)
	}
	if slot < 0 || slot >= len(p.Members) {
		return nil, nil, fmt.Errorf("%s has no member in slot %d", owner, slot)
	}
	rest := &battle.Party{Owner: owner, Members: make([]*creature.Combatant, 0, len(p.Members)-1)}
	rest.Members = append(rest.Members, p.Members[:slot]...)
	rest.Members = append(rest.Members, p.Members[slot+1:]...)
	return p.Members[slot], rest, nil
}
