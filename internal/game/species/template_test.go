package species_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/catchemall/internal/game/dice"
	"github.com/cory-johannsen/catchemall/internal/game/species"
)

const pikachuYAML = `
id: pikachu
name: Pikachu
attack: 55
defense: 40
hp: 35
speed: 90
`

func TestLoadTemplateFromBytes(t *testing.T) {
	tmpl, err := species.LoadTemplateFromBytes([]byte(pikachuYAML))
	require.NoError(t, err)
	assert.Equal(t, "pikachu", tmpl.ID)
	assert.Equal(t, "Pikachu", tmpl.Name)
	assert.Equal(t, 55, tmpl.Attack)
	assert.Equal(t, 40, tmpl.Defense)
	assert.Equal(t, 35, tmpl.HP)
	assert.Equal(t, 90, tmpl.Speed)
}

func TestLoadTemplateFromBytes_Invalid(t *testing.T) {
	cases := map[string]string{
		"missing id":   "name: X\nhp: 1\n",
		"missing name": "id: x\nhp: 1\n",
		"zero hp":      "id: x\nname: X\nhp: 0\n",
		"negative atk": "id: x\nname: X\nhp: 5\nattack: -1\n",
		"malformed":    "id: [unterminated\n",
	}
	for name, doc := range cases {
		_, err := species.LoadTemplateFromBytes([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestLoadPokedex(t *testing.T) {
	data := []byte(`[
  {"id": 1, "ename": "Bulbasaur", "base": {"HP": 45, "Attack": 49, "Defense": 49, "Sp. Attack": 65, "Sp. Defense": 65, "Speed": 45}},
  {"id": 4, "ename": "Charmander", "base": {"HP": 39, "Attack": 52, "Defense": 43, "Sp. Attack": 60, "Sp. Defense": 50, "Speed": 65}}
]`)
	dex, err := species.LoadPokedex(data)
	require.NoError(t, err)
	require.Len(t, dex, 2)
	assert.Equal(t, "bulbasaur", dex[0].ID)
	assert.Equal(t, "Bulbasaur", dex[0].Name)
	assert.Equal(t, 49, dex[0].Attack)
	assert.Equal(t, 45, dex[0].HP)
	assert.Equal(t, 65, dex[1].Speed)
}

func TestLoadPokedex_RejectsBadEntry(t *testing.T) {
	_, err := species.LoadPokedex([]byte(`[{"ename": "Ghost", "base": {"HP": 0}}]`))
	assert.Error(t, err)
}

func TestLoadTemplates_Dir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pikachu.yaml"), []byte(pikachuYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pokedex.json"),
		[]byte(`[{"ename": "Abra", "base": {"HP": 25, "Attack": 20, "Defense": 15, "Speed": 90}}]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	templates, err := species.LoadTemplates(dir)
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "abra", templates[0].ID)
	assert.Equal(t, "pikachu", templates[1].ID)
}

func TestLoadTemplates_MissingDir(t *testing.T) {
	_, err := species.LoadTemplates(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestRegistry_EmptyFallsBackToMissingNo(t *testing.T) {
	reg, err := species.NewRegistry(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())
	tmpl, ok := reg.Get("missingno")
	require.True(t, ok)
	assert.Equal(t, "???", tmpl.Name)
}

func TestRegistry_DuplicateID(t *testing.T) {
	a := &species.Template{ID: "x", Name: "X", HP: 1}
	b := &species.Template{ID: "X", Name: "X2", HP: 1}
	_, err := species.NewRegistry([]*species.Template{a, b})
	assert.Error(t, err)
}

func TestRegistry_AllKeepsRegistrationOrder(t *testing.T) {
	reg, err := species.NewRegistry([]*species.Template{
		{ID: "onix", Name: "Onix", Attack: 45, Defense: 160, HP: 35, Speed: 70},
		{ID: "eevee", Name: "Eevee", Attack: 55, Defense: 50, HP: 55, Speed: 55},
	})
	require.NoError(t, err)
	all := reg.All()
	require.Len(t, all, 2)
	assert.Equal(t, "onix", all[0].ID)
	assert.Equal(t, "eevee", all[1].ID)
}

func TestRegistry_GetIsCaseInsensitive(t *testing.T) {
	reg, err := species.NewRegistry([]*species.Template{{ID: "pikachu", Name: "Pikachu", HP: 35}})
	require.NoError(t, err)
	_, ok := reg.Get("Pikachu")
	assert.True(t, ok)
	_, ok = reg.Get("raichu")
	assert.False(t, ok)
}

func TestRegistry_Random_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 20).Draw(rt, "n")
		var templates []*species.Template
		for i := 0; i < n; i++ {
			templates = append(templates, &species.Template{ID: fmt.Sprintf("s%d", i), Name: "S", HP: 1})
		}
		reg, err := species.NewRegistry(templates)
		require.NoError(rt, err)
		roller := dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed"))
		got := reg.Random(rangerFunc(func(lo, hi int) int { return dice.Between(roller, lo, hi) }))
		_, ok := reg.Get(got.ID)
		assert.True(rt, ok)
	})
}

type rangerFunc func(lo, hi int) int

func (f rangerFunc) Between(lo, hi int) int { return f(lo, hi) }
