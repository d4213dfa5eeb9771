package npc_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/catchemall/internal/game/battle"
	"github.com/cory-johannsen/catchemall/internal/game/dice"
	"github.com/cory-johannsen/catchemall/internal/game/npc"
	"github.com/cory-johannsen/catchemall/internal/game/species"
	"github.com/cory-johannsen/catchemall/internal/scripting"
)

var epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func registry(t testing.TB) *species.Registry {
	t.Helper()
	reg, err := species.NewRegistry([]*species.Template{
		{ID: "geodude", Name: "Geodude", Attack: 80, Defense: 100, HP: 40, Speed: 20},
		{ID: "onix", Name: "Onix", Attack: 45, Defense: 160, HP: 35, Speed: 70},
		{ID: "staryu", Name: "Staryu", Attack: 45, Defense: 55, HP: 30, Speed: 85},
	})
	require.NoError(t, err)
	return reg
}

func roller(seed uint64) dice.Ranger {
	return dice.NewLoggedRoller(dice.NewSeededSource(seed), zap.NewNop())
}

// fakeScripts answers order_party with a canned reply.
type fakeScripts struct {
	reply  []string
	ok     bool
	loaded map[string]string
	seen   []string
}

func (f *fakeScripts) LoadTrainer(id, dir string, _ int) error {
	if f.loaded == nil {
		f.loaded = map[string]string{}
	}
	f.loaded[id] = dir
	return nil
}

func (f *fakeScripts) LoadGlobal(string, int) error { return nil }

func (f *fakeScripts) CallLineHook(_, hook, winner string) (string, bool) {
	if hook != npc.DefeatLineHook {
		return "", false
	}
	return "You got lucky, " + winner + ".", true
}

func (f *fakeScripts) CallStringsHook(_, hook string, in []string) ([]string, bool) {
	f.seen = append([]string(nil), in...)
	if hook != npc.OrderPartyHook {
		return nil, false
	}
	return f.reply, f.ok
}

func brock() *npc.Trainer {
	return &npc.Trainer{ID: "brock", Name: "Brock", Party: []string{"geodude", "onix"}, Level: 5, LeadScript: "brock", RematchDelay: "10m"}
}

func names(p *battle.Party) []string {
	out := make([]string, len(p.Members))
	for i, m := range p.Members {
		out[i] = m.Name
	}
	return out
}

func TestNewManager_RejectsUnknownSpecies(t *testing.T) {
	bad := &npc.Trainer{ID: "x", Name: "X", Party: []string{"mewtwo"}, Level: 1}
	_, err := npc.NewManager([]*npc.Trainer{bad}, registry(t), nil, zap.NewNop())
	assert.Error(t, err)
}

func TestNewManager_RejectsDuplicateTrainer(t *testing.T) {
	_, err := npc.NewManager([]*npc.Trainer{brock(), brock()}, registry(t), nil, zap.NewNop())
	assert.Error(t, err)
}

func TestManager_Party_BuildsLevelledHealedParty(t *testing.T) {
	m, err := npc.NewManager([]*npc.Trainer{brock()}, registry(t), nil, zap.NewNop())
	require.NoError(t, err)

	p, err := m.Party("brock", epoch, roller(1))
	require.NoError(t, err)
	assert.Equal(t, "Brock", p.Owner)
	assert.Equal(t, []string{"Geodude", "Onix"}, names(p))
	for _, c := range p.Members {
		assert.Equal(t, 5, c.Level)
		assert.Equal(t, c.MaxHP, c.CurrentHP)
		assert.Equal(t, 0, c.XP)
		assert.Equal(t, c.CombatPower(), c.CP)
	}
}

func TestManager_Party_UnknownTrainer(t *testing.T) {
	m, err := npc.NewManager(nil, registry(t), nil, zap.NewNop())
	require.NoError(t, err)
	_, err = m.Party("nobody", epoch, roller(1))
	assert.True(t, errors.Is(err, npc.ErrUnknownTrainer))
	_, err = m.RecordDefeat("nobody", epoch)
	assert.ErrorIs(t, err, npc.ErrUnknownTrainer)
}

func TestManager_Party_ScriptReorders(t *testing.T) {
	scripts := &fakeScripts{reply: []string{"Onix", "Geodude"}, ok: true}
	m, err := npc.NewManager([]*npc.Trainer{brock()}, registry(t), scripts, zap.NewNop())
	require.NoError(t, err)

	p, err := m.Party("brock", epoch, roller(2))
	require.NoError(t, err)
	assert.Equal(t, []string{"Geodude", "Onix"}, scripts.seen)
	assert.Equal(t, []string{"Onix", "Geodude"}, names(p))
}

func TestManager_Party_MalformedOrderIgnored(t *testing.T) {
	for name, reply := range map[string][]string{
		"short":     {"Onix"},
		"stranger":  {"Onix", "Pikachu"},
		"duplicate": {"Onix", "Onix"},
	} {
		t.Run(name, func(t *testing.T) {
			core, logs := observer.New(zap.WarnLevel)
			scripts := &fakeScripts{reply: reply, ok: true}
			m, err := npc.NewManager([]*npc.Trainer{brock()}, registry(t), scripts, zap.New(core))
			require.NoError(t, err)

			p, err := m.Party("brock", epoch, roller(3))
			require.NoError(t, err)
			assert.Equal(t, []string{"Geodude", "Onix"}, names(p))
			assert.Equal(t, 1, logs.Len())
		})
	}
}

func TestManager_Party_DuplicateSpeciesKeepDistinctMembers(t *testing.T) {
	twins := &npc.Trainer{ID: "twins", Name: "Twins", Party: []string{"staryu", "staryu", "onix"}, Level: 3, LeadScript: "twins"}
	scripts := &fakeScripts{reply: []string{"Staryu", "Onix", "Staryu"}, ok: true}
	m, err := npc.NewManager([]*npc.Trainer{twins}, registry(t), scripts, zap.NewNop())
	require.NoError(t, err)

	p, err := m.Party("twins", epoch, roller(4))
	require.NoError(t, err)
	assert.Equal(t, []string{"Staryu", "Onix", "Staryu"}, names(p))
	assert.NotSame(t, p.Members[0], p.Members[2])
}

func TestManager_RematchCooldown(t *testing.T) {
	m, err := npc.NewManager([]*npc.Trainer{brock()}, registry(t), nil, zap.NewNop())
	require.NoError(t, err)

	readyAt, err := m.RecordDefeat("brock", epoch)
	require.NoError(t, err)
	assert.Equal(t, epoch.Add(10*time.Minute), readyAt)
	_, err = m.Party("brock", epoch.Add(9*time.Minute), roller(1))
	assert.ErrorIs(t, err, npc.ErrRematchCooldown)

	_, err = m.Party("brock", epoch.Add(10*time.Minute), roller(1))
	assert.NoError(t, err)
}

func TestManager_RecordDefeat_NoDelayNoCooldown(t *testing.T) {
	tr := brock()
	tr.RematchDelay = ""
	m, err := npc.NewManager([]*npc.Trainer{tr}, registry(t), nil, zap.NewNop())
	require.NoError(t, err)
	readyAt, err := m.RecordDefeat("brock", epoch)
	require.NoError(t, err)
	assert.True(t, readyAt.IsZero())
	_, err = m.Party("brock", epoch, roller(1))
	assert.NoError(t, err)
}

func TestManager_RestoreRematch(t *testing.T) {
	m, err := npc.NewManager([]*npc.Trainer{brock()}, registry(t), nil, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, m.RestoreRematch("nobody", epoch.Add(time.Hour)))
	require.True(t, m.RestoreRematch("brock", epoch.Add(time.Hour)))
	_, err = m.Party("brock", epoch.Add(59*time.Minute), roller(1))
	assert.ErrorIs(t, err, npc.ErrRematchCooldown)

	// An earlier defeat does not shorten a restored cooldown.
	_, err = m.RecordDefeat("brock", epoch)
	require.NoError(t, err)
	_, err = m.Party("brock", epoch.Add(30*time.Minute), roller(1))
	assert.ErrorIs(t, err, npc.ErrRematchCooldown)

	_, err = m.Party("brock", epoch.Add(time.Hour), roller(1))
	assert.NoError(t, err)
}

func TestManager_DefeatLine(t *testing.T) {
	m, err := npc.NewManager([]*npc.Trainer{brock()}, registry(t), &fakeScripts{}, zap.NewNop())
	require.NoError(t, err)
	line, ok := m.DefeatLine("brock", "Ash")
	require.True(t, ok)
	assert.Equal(t, "You got lucky, Ash.", line)

	_, ok = m.DefeatLine("nobody", "Ash")
	assert.False(t, ok)

	plain := &npc.Trainer{ID: "joey", Name: "Joey", Party: []string{"staryu"}, Level: 2}
	m, err = npc.NewManager([]*npc.Trainer{plain}, registry(t), &fakeScripts{}, zap.NewNop())
	require.NoError(t, err)
	_, ok = m.DefeatLine("joey", "Ash")
	assert.False(t, ok, "trainers without scripts stay silent")
}

func TestManager_RandomTrainer(t *testing.T) {
	m, err := npc.NewManager(nil, registry(t), nil, zap.NewNop())
	require.NoError(t, err)

	p, err := m.RandomTrainer("Wild", 4, 7, roller(5))
	require.NoError(t, err)
	assert.Equal(t, "Wild", p.Owner)
	require.Len(t, p.Members, 4)
	for _, c := range p.Members {
		assert.Equal(t, 7, c.Level)
		_, ok := registry(t).Get(c.Species)
		assert.True(t, ok)
	}

	_, err = m.RandomTrainer("Wild", 0, 7, roller(5))
	assert.ErrorIs(t, err, battle.ErrInvalidParty)
	_, err = m.RandomTrainer("Wild", battle.MaxPartySize+1, 7, roller(5))
	assert.ErrorIs(t, err, battle.ErrInvalidParty)
	_, err = m.RandomTrainer("Wild", 1, 0, roller(5))
	assert.Error(t, err)
}

func TestProperty_RandomTrainer_Deterministic(t *testing.T) {
	reg := registry(t)
	rapid.Check(t, func(rt *rapid.T) {
		m, err := npc.NewManager(nil, reg, nil, zap.NewNop())
		require.NoError(rt, err)
		seed := rapid.Uint64().Draw(rt, "seed")
		size := rapid.IntRange(1, battle.MaxPartySize).Draw(rt, "size")
		level := rapid.IntRange(1, 30).Draw(rt, "level")

		a, err := m.RandomTrainer("Wild", size, level, roller(seed))
		require.NoError(rt, err)
		b, err := m.RandomTrainer("Wild", size, level, roller(seed))
		require.NoError(rt, err)
		for i := range a.Members {
			x, y := *a.Members[i], *b.Members[i]
			x.ID, y.ID = "", ""
			assert.Equal(rt, x, y)
		}
	})
}

func TestManager_LoadScripts_WithLuaOrderHook(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "brock")
	require.NoError(t, os.Mkdir(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "order.lua"), []byte(`
		function order_party(names)
			local out = {}
			for i = #names, 1, -1 do
				out[#out + 1] = names[i]
			end
			return out
		end
	`), 0644))

	scripts := scripting.NewManager(roller(9), zap.NewNop())
	defer scripts.Close()
	m, err := npc.NewManager([]*npc.Trainer{brock()}, registry(t), scripts, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.LoadScripts(root, 0))

	p, err := m.Party("brock", epoch, roller(6))
	require.NoError(t, err)
	assert.Equal(t, []string{"Onix", "Geodude"}, names(p))
}

func TestManager_LoadScripts_SharedScriptsServeUnscriptedTrainers(t *testing.T) {
	root := t.TempDir()
	shared := filepath.Join(root, npc.SharedScriptsDir)
	require.NoError(t, os.Mkdir(shared, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(shared, "order.lua"), []byte(`
		function order_party(names)
			local out = {}
			for i = 2, #names do
				out[#out + 1] = names[i]
			end
			out[#out + 1] = names[1]
			return out
		end
		function defeat_line(winner)
			return "Not bad, " .. winner .. "."
		end
	`), 0644))

	joey := &npc.Trainer{ID: "joey", Name: "Joey", Party: []string{"staryu", "geodude", "onix"}, Level: 4}
	scripts := scripting.NewManager(roller(9), zap.NewNop())
	defer scripts.Close()
	m, err := npc.NewManager([]*npc.Trainer{joey}, registry(t), scripts, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.LoadScripts(root, 0))

	p, err := m.Party("joey", epoch, roller(6))
	require.NoError(t, err)
	assert.Equal(t, []string{"Geodude", "Onix", "Staryu"}, names(p))

	line, ok := m.DefeatLine("joey", "Ash")
	require.True(t, ok)
	assert.Equal(t, "Not bad, Ash.", line)
}

func TestManager_LoadScripts_RequiresScripts(t *testing.T) {
	m, err := npc.NewManager([]*npc.Trainer{brock()}, registry(t), nil, zap.NewNop())
	require.NoError(t, err)
	assert.Error(t, m.LoadScripts(t.TempDir(), 0))
}

func TestManager_Wild(t *testing.T) {
	m, err := npc.NewManager(nil, registry(t), nil, zap.NewNop())
	require.NoError(t, err)
	c := m.Wild(3, roller(8))
	assert.Equal(t, 3, c.Level)
	assert.False(t, c.Fainted())
}
