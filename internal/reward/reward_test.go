package reward

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runeworks/glyphbot/internal/domain"
)

func TestDistanceRingProperties(t *testing.T) {
	maxSeen := 0
	for _, a := range domain.Symbols {
		assert.Equal(t, 0, Distance(a, a))
		for _, b := range domain.Symbols {
			d := Distance(a, b)
			assert.Equal(t, d, Distance(b, a), "distance must be symmetric")
			assert.GreaterOrEqual(t, d, 0)
			assert.LessOrEqual(t, d, MaxDistance())
			if d > maxSeen {
				maxSeen = d
			}
		}
	}
	assert.Equal(t, domain.SymbolCount/2, maxSeen)
}

func TestDistanceUnknownSymbol(t *testing.T) {
	assert.Equal(t, -1, Distance("x", domain.Symbols[0]))
	assert.Equal(t, -1, Distance(domain.Symbols[0], ""))
}

func TestDistanceWrapAround(t *testing.T) {
	// Neighbors across the array boundary are distance 1 on the ring.
	first := domain.Symbols[0]
	last := domain.Symbols[domain.SymbolCount-1]
	assert.Equal(t, 1, Distance(first, last))
}

func TestTierRanges(t *testing.T) {
	tests := []struct {
		distance int
		min, max int
	}{
		{0, 950, 1000},
		{1, 700, 900},
		{3, 700, 900},
		{4, 400, 600},
		{7, 400, 600},
		{8, 150, 300},
		{11, 150, 300},
	}
	for _, tt := range tests {
		min, max := TierRange(tt.distance)
		assert.Equal(t, tt.min, min, "distance %d", tt.distance)
		assert.Equal(t, tt.max, max, "distance %d", tt.distance)
	}
}

func TestComputeExactMatchBeatsAllOtherTiers(t *testing.T) {
	// Non-overlapping ranges: worst exact-match payout (950) still beats
	// the best near-miss payout (900).
	exactMin, _ := TierRange(0)
	_, nearMax := TierRange(1)
	assert.Greater(t, exactMin, nearMax)
}

func TestComputeMaxDistanceScenario(t *testing.T) {
	// Alphabet size 22, base reward 1,000,000, picks at opposite ends of
	// the ring: reward must always land in [150000, 300000] inclusive.
	m := NewModel(rand.New(rand.NewSource(42)))
	player := domain.Symbols[0]
	system := domain.Symbols[11]
	require.Equal(t, 11, Distance(player, system))

	for i := 0; i < 5000; i++ {
		r := m.Compute(1_000_000, player, system)
		assert.GreaterOrEqual(t, r, int64(150_000))
		assert.LessOrEqual(t, r, int64(300_000))
	}
}

func TestComputeFloorsScaledReward(t *testing.T) {
	m := NewModel(fixedIntn{0}) // always the tier minimum
	// distance 0 -> 950 per mille of 999 = 949.05, floored to 949
	got := m.Compute(999, domain.Symbols[3], domain.Symbols[3])
	assert.Equal(t, int64(949), got)
}

func TestPickSymbolReturnsAlphabetMember(t *testing.T) {
	m := NewModel(rand.New(rand.NewSource(7)))
	for i := 0; i < 200; i++ {
		assert.True(t, domain.IsValidSymbol(m.PickSymbol()))
	}
}

// fixedIntn always returns the same draw, pinning Compute to a tier bound.
type fixedIntn struct{ v int }

func (f fixedIntn) Intn(n int) int {
	if f.v >= n {
		return n - 1
	}
	return f.v
}
