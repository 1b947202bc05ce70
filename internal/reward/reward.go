package reward

import (
	"math/rand"

	"github.com/runeworks/glyphbot/internal/domain"
)

// Tier bounds in per-mille of the base reward, inclusive on both ends.
// Exact matches always beat every other tier ([950,1000] vs max 900).
const (
	exactMin, exactMax = 950, 1000 // distance 0
	closeMin, closeMax = 700, 900  // distance 1-3
	midMin, midMax     = 400, 600  // distance 4-7
	farMin, farMax     = 150, 300  // distance 8+
)

// IntN abstracts the uniform integer source so tests can pin outcomes.
// rand.Rand satisfies it.
type IntN interface {
	Intn(n int) int
}

// Model computes symbolic distances and tiered randomized payouts.
type Model struct {
	rng IntN
}

// NewModel creates a reward model backed by the given source. Pass nil to
// use the shared math/rand source.
func NewModel(rng IntN) *Model {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63())) //nolint:gosec // Game randomness
	}
	return &Model{rng: rng}
}

// Distance returns the ring distance between two symbols: the minimum of
// the direct and wrap-around index difference on the circular alphabet.
// Returns -1 if either symbol is not in the alphabet.
func Distance(a, b string) int {
	ai := domain.SymbolIndex(a)
	bi := domain.SymbolIndex(b)
	if ai < 0 || bi < 0 {
		return -1
	}
	direct := ai - bi
	if direct < 0 {
		direct = -direct
	}
	wrap := domain.SymbolCount - direct
	if wrap < direct {
		return wrap
	}
	return direct
}

// MaxDistance is the largest value Distance can return: floor(N/2).
func MaxDistance() int {
	return domain.SymbolCount / 2
}

// TierRange returns the inclusive per-mille payout bounds for a distance.
func TierRange(distance int) (min, max int) {
	switch {
	case distance == 0:
		return exactMin, exactMax
	case distance <= 3:
		return closeMin, closeMax
	case distance <= 7:
		return midMin, midMax
	default:
		return farMin, farMax
	}
}

// Compute draws a payout for a player choice against the system choice:
// a uniform per-mille fraction from the distance tier, scaled by
// baseReward and floored.
func (m *Model) Compute(baseReward int64, player, system string) int64 {
	min, max := TierRange(Distance(player, system))
	permille := int64(m.rng.Intn(max-min+1) + min)
	return baseReward * permille / 1000
}

// PickSymbol draws a uniformly random symbol from the alphabet.
func (m *Model) PickSymbol() string {
	return domain.Symbols[m.rng.Intn(domain.SymbolCount)]
}
