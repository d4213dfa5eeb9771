package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/catchemall/internal/game/battle"
	"github.com/cory-johannsen/catchemall/internal/game/creature"
	"github.com/cory-johannsen/catchemall/internal/storage"
)

// Combatant builds a levelled combatant with fixed stats for roster tests.
func Combatant(id, name string, level int) *creature.Combatant {
	c := &creature.Combatant{
		ID:      id,
		Species: name,
		Name:    name,
		Attack:  40 + level,
		Defence: 30 + level,
		MaxHP:   50 + 2*level,
		Speed:   20 + level,
		Level:   level,
		XP:      level % creature.XPPerLevel,
		Growth:  [4]int{3, 2, 1, 0},
	}
	c.CurrentHP = c.MaxHP / 2
	c.RecalculateCP()
	return c
}

// RunRosterSuite exercises the storage.Roster contract. newRoster must return
// an empty roster each time it is called.
func RunRosterSuite(t *testing.T, newRoster func(t *testing.T) storage.Roster) {
	t.Run("LoadMissingOwner", func(t *testing.T) {
		r := newRoster(t)
		_, err := r.LoadParty(context.Background(), "nobody")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("SaveAndLoadPreservesOrderAndState", func(t *testing.T) {
		r := newRoster(t)
		ctx := context.Background()
		ash := &battle.Party{Owner: "Ash", Members: []*creature.Combatant{
			Combatant("p-1", "Pikachu", 12),
			Combatant("p-2", "Bulbasaur", 7),
			Combatant("p-3", "Charmander", 9),
		}}
		require.NoError(t, r.SaveAll(ctx, ash))

		got, err := r.LoadParty(ctx, "Ash")
		require.NoError(t, err)
		assert.Equal(t, "Ash", got.Owner)
		require.Len(t, got.Members, 3)
		for i := range ash.Members {
			assert.Equal(t, *ash.Members[i], *got.Members[i])
		}
	})

	t.Run("SaveReplacesPreviousParty", func(t *testing.T) {
		r := newRoster(t)
		ctx := context.Background()
		require.NoError(t, r.SaveAll(ctx, &battle.Party{Owner: "Ash", Members: []*creature.Combatant{
			Combatant("p-1", "Pikachu", 5), Combatant("p-2", "Pidgey", 3),
		}}))
		levelled := Combatant("p-1", "Pikachu", 6)
		require.NoError(t, r.SaveAll(ctx, &battle.Party{Owner: "Ash", Members: []*creature.Combatant{levelled}}))

		got, err := r.LoadParty(ctx, "Ash")
		require.NoError(t, err)
		require.Len(t, got.Members, 1)
		assert.Equal(t, *levelled, *got.Members[0])
	})

	t.Run("SaveAllCommitsBothSides", func(t *testing.T) {
		r := newRoster(t)
		ctx := context.Background()
		require.NoError(t, r.SaveAll(ctx,
			&battle.Party{Owner: "Ash", Members: []*creature.Combatant{Combatant("a-1", "Pikachu", 5)}},
			&battle.Party{Owner: "Gary", Members: []*creature.Combatant{Combatant("g-1", "Eevee", 5)}},
		))
		owners, err := r.Owners(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Ash", "Gary"}, owners)
	})

	t.Run("SaveAllIsAtomic", func(t *testing.T) {
		r := newRoster(t)
		ctx := context.Background()
		original := Combatant("shared", "Mew", 10)
		require.NoError(t, r.SaveAll(ctx, &battle.Party{Owner: "Ash", Members: []*creature.Combatant{original}}))

		err := r.SaveAll(ctx,
			&battle.Party{Owner: "Gary", Members: []*creature.Combatant{Combatant("g-1", "Eevee", 5)}},
			&battle.Party{Owner: "Misty", Members: []*creature.Combatant{Combatant("shared", "Mew", 11)}},
		)
		require.ErrorIs(t, err, storage.ErrConflict)

		owners, err := r.Owners(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Ash"}, owners, "a failed SaveAll must not store Gary")
		got, err := r.LoadParty(ctx, "Ash")
		require.NoError(t, err)
		assert.Equal(t, *original, *got.Members[0])
	})

	t.Run("SaveAllRejectsInvalidParties", func(t *testing.T) {
		r := newRoster(t)
		ctx := context.Background()
		assert.Error(t, r.SaveAll(ctx, nil))
		assert.Error(t, r.SaveAll(ctx, &battle.Party{Owner: " ", Members: []*creature.Combatant{Combatant("x", "X", 1)}}))
		assert.ErrorIs(t, r.SaveAll(ctx, &battle.Party{Owner: "Ash"}), battle.ErrInvalidParty)
		same := &battle.Party{Owner: "Ash", Members: []*creature.Combatant{Combatant("x", "X", 1)}}
		assert.Error(t, r.SaveAll(ctx, same, same))
	})

	t.Run("DeleteParty", func(t *testing.T) {
		r := newRoster(t)
		ctx := context.Background()
		require.NoError(t, r.SaveAll(ctx, &battle.Party{Owner: "Ash", Members: []*creature.Combatant{Combatant("p-1", "Pikachu", 5)}}))
		require.NoError(t, r.DeleteParty(ctx, "Ash"))
		assert.ErrorIs(t, r.DeleteParty(ctx, "Ash"), storage.ErrNotFound)
		_, err := r.LoadParty(ctx, "Ash")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("OwnersEmpty", func(t *testing.T) {
		r := newRoster(t)
		owners, err := r.Owners(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, owners)
		assert.Empty(t, owners)
	})

	t.Run("RematchTimes", func(t *testing.T) {
		r := newRoster(t)
		ctx := context.Background()
		empty, err := r.RematchTimes(ctx)
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)

		first := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
		require.NoError(t, r.SetRematchTime(ctx, "brock", first))
		require.NoError(t, r.SetRematchTime(ctx, "misty", first.Add(time.Minute)))
		require.NoError(t, r.SetRematchTime(ctx, "brock", first.Add(time.Hour)))

		got, err := r.RematchTimes(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.True(t, got["brock"].Equal(first.Add(time.Hour)), "brock: %s", got["brock"])
		assert.True(t, got["misty"].Equal(first.Add(time.Minute)), "misty: %s", got["misty"])
	})

	t.Run("FullParty", func(t *testing.T) {
		r := newRoster(t)
		ctx := context.Background()
		members := make([]*creature.Combatant, battle.MaxPartySize)
		for i := range members {
			members[i] = Combatant(fmt.Sprintf("m-%d", i), fmt.Sprintf("Mon%d", i), i+1)
		}
		require.NoError(t, r.SaveAll(ctx, &battle.Party{Owner: "Red", Members: members}))
		got, err := r.LoadParty(ctx, "Red")
		require.NoError(t, err)
		require.Len(t, got.Members, battle.MaxPartySize)
		for i := range members {
			assert.Equal(t, members[i].ID, got.Members[i].ID)
		}
	})
}
