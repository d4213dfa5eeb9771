package dice_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/catchemall/internal/game/dice"
)

func TestRollResult_Total(t *testing.T) {
	r := dice.RollResult{
		Expression: "2d6+3",
		Dice:       []int{4, 5},
		Modifier:   3,
	}
	assert.Equal(t, 12, r.Total(), "Total() must equal sum(Dice)+Modifier")
}

func TestRollResult_String(t *testing.T) {
	r := dice.RollResult{
		Expression: "1d4+1",
		Dice:       []int{3},
		Modifier:   1,
	}
	assert.Equal(t, "1d4+1 → [3] +1 = 4", r.String())
}

func TestRollResult_String_WithoutExpression(t *testing.T) {
	r := dice.RollResult{Dice: []int{4}, Modifier: -1}
	assert.Equal(t, "[4] -1 = 3", r.String())
}

func TestRollResult_String_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		expr := rapid.StringMatching(`1d[0-9]+[+-][0-9]+`).Draw(rt, "expression")
		dice_ := rapid.SliceOfN(rapid.IntRange(1, 20), 1, 10).Draw(rt, "dice")
		modifier := rapid.IntRange(-100, 100).Draw(rt, "modifier")

		r := dice.RollResult{Expression: expr, Dice: dice_, Modifier: modifier}
		s := r.String()
		assert.True(rt, strings.Contains(s, expr))
		assert.Contains(rt, s, fmt.Sprintf("%d", r.Total()))
	})
}

func TestRangeExpression(t *testing.T) {
	tests := []struct {
		lo, hi   int
		wantRaw  string
		wantSide int
		wantMod  int
	}{
		{1, 4, "1d4", 4, 0},
		{2, 5, "1d4+1", 4, 1},
		{2, 3, "1d2+1", 2, 1},
		{0, 9, "1d10-1", 10, -1},
		{1, 100, "1d100", 100, 0},
	}
	for _, tc := range tests {
		e := dice.RangeExpression(tc.lo, tc.hi)
		assert.Equal(t, tc.wantRaw, e.Raw)
		assert.Equal(t, 1, e.Count)
		assert.Equal(t, tc.wantSide, e.Sides)
		assert.Equal(t, tc.wantMod, e.Modifier)
	}
}

func TestRangeExpression_PanicsOnDegenerate(t *testing.T) {
	assert.Panics(t, func() { dice.RangeExpression(3, 3) })
	assert.Panics(t, func() { dice.RangeExpression(4, 1) })
}

func TestRoll_RejectsInvalidExpression(t *testing.T) {
	src := dice.NewSeededSource(1)
	_, err := dice.Roll(dice.Expression{Raw: "0d6", Count: 0, Sides: 6}, src)
	assert.Error(t, err)
	_, err = dice.Roll(dice.Expression{Raw: "1d1", Count: 1, Sides: 1}, src)
	assert.Error(t, err)
}

func TestBetween_Property_InRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		lo := rapid.IntRange(-50, 50).Draw(rt, "lo")
		width := rapid.IntRange(0, 100).Draw(rt, "width")
		seed := rapid.Uint64().Draw(rt, "seed")
		v := dice.Between(dice.NewSeededSource(seed), lo, lo+width)
		assert.GreaterOrEqual(rt, v, lo)
		assert.LessOrEqual(rt, v, lo+width)
	})
}

func TestBetween_DegenerateConsumesNothing(t *testing.T) {
	a := dice.NewSeededSource(7)
	b := dice.NewSeededSource(7)
	assert.Equal(t, 5, dice.Between(a, 5, 5))
	assert.Equal(t, a.Intn(1000), b.Intn(1000))
}

func TestRoller_Between_MatchesUnloggedDraws(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64().Draw(rt, "seed")
		lo := rapid.IntRange(0, 10).Draw(rt, "lo")
		hi := lo + rapid.IntRange(0, 10).Draw(rt, "width")
		roller := dice.NewLoggedRoller(dice.NewSeededSource(seed), zap.NewNop())
		plain := dice.NewSeededSource(seed)
		for i := 0; i < 20; i++ {
			require.Equal(rt, dice.Between(plain, lo, hi), roller.Between(lo, hi))
		}
	})
}

func TestRoller_LogsEachRoll(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	roller := dice.NewLoggedRoller(dice.NewSeededSource(3), zap.New(core))

	v := roller.Between(2, 5)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "dice roll", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, int64(v), fields["total"])
	roll, ok := fields["roll"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(roll, "1d4+1 → ["), roll)
	assert.True(t, strings.HasSuffix(roll, fmt.Sprintf("= %d", v)), roll)

	roller.Between(7, 7)
	assert.Equal(t, 1, logs.Len(), "a degenerate range is not rolled")
}

func TestSeededSource_Deterministic(t *testing.T) {
	a := dice.NewSeededSource(42)
	b := dice.NewSeededSource(42)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}

func TestSeededSource_Intn_PanicsOnZero(t *testing.T) {
	assert.Panics(t, func() { dice.NewSeededSource(1).Intn(0) })
}

func TestCryptoSource_Intn_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
}

func TestCryptoSource_Intn_PanicsOnZero(t *testing.T) {
	src := dice.NewCryptoSource()
	assert.Panics(t, func() { src.Intn(0) })
}
