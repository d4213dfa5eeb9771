package main

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/catchemall/internal/game/battle"
	"github.com/cory-johannsen/catchemall/internal/game/creature"
	"github.com/cory-johannsen/catchemall/internal/storage"
	"github.com/cory-johannsen/catchemall/internal/storage/sqlite"
	"github.com/cory-johannsen/catchemall/internal/testutil"
)

func seededStore(t *testing.T) storage.Roster {
	t.Helper()
	r, err := sqlite.Open(context.Background(), ":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	require.NoError(t, r.SaveAll(context.Background(),
		&battle.Party{Owner: "Ash", Members: []*creature.Combatant{
			testutil.Combatant("a-1", "Pikachu", 12),
			testutil.Combatant("a-2", "Bulbasaur", 7),
		}},
		&battle.Party{Owner: "Gary", Members: []*creature.Combatant{
			testutil.Combatant("g-1", "Eevee", 9),
		}},
	))
	return r
}

func TestListParties(t *testing.T) {
	store := seededStore(t)
	var out bytes.Buffer
	require.NoError(t, ListParties(context.Background(), store, &out))

	pika := testutil.Combatant("a-1", "Pikachu", 12)
	assert.Contains(t, out.String(), "Here are the contents of Ash's party\n")
	assert.Contains(t, out.String(), fmt.Sprintf("0: Pikachu | lv: 12 | cp: %d\n", pika.CP))
	assert.Contains(t, out.String(), "1: Bulbasaur | lv: 7")
	assert.Contains(t, out.String(), "Here are the contents of Gary's party\n0: Eevee")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("Ash's")), bytes.Index(out.Bytes(), []byte("Gary's")))
}

func TestListParties_Empty(t *testing.T) {
	r, err := sqlite.Open(context.Background(), ":memory:", zap.NewNop())
	require.NoError(t, err)
	defer r.Close()
	var out bytes.Buffer
	require.NoError(t, ListParties(context.Background(), r, &out))
	assert.Equal(t, "No parties are stored.\n", out.String())
}

func TestShowMember(t *testing.T) {
	store := seededStore(t)
	var out bytes.Buffer
	require.NoError(t, ShowMember(context.Background(), store, "Ash", 1, &out))
	assert.Equal(t, testutil.Combatant("a-2", "Bulbasaur", 7).String(), out.String())

	assert.ErrorIs(t, ShowMember(context.Background(), store, "Misty", 0, &out), storage.ErrNotFound)
	assert.Error(t, ShowMember(context.Background(), store, "Ash", 2, &out))
	assert.Error(t, ShowMember(context.Background(), store, "Ash", -1, &out))
}

func TestReleaseMember(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	var out bytes.Buffer
	require.NoError(t, ReleaseMember(ctx, store, "Ash", 0, &out))
	assert.Contains(t, out.String(), "Ash released Pikachu (cp:")
	p, err := store.LoadParty(ctx, "Ash")
	require.NoError(t, err)
	require.Len(t, p.Members, 1)
	assert.Equal(t, "a-2", p.Members[0].ID)

	require.NoError(t, ReleaseMember(ctx, store, "Gary", 0, &out))
	_, err = store.LoadParty(ctx, "Gary")
	assert.ErrorIs(t, err, storage.ErrNotFound, "releasing the last member deletes the party")
	owners, err := store.Owners(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ash"}, owners)

	assert.Error(t, ReleaseMember(ctx, store, "Ash", 5, &out))
	assert.ErrorIs(t, ReleaseMember(ctx, store, "Gary", 0, &out), storage.ErrNotFound)
}
