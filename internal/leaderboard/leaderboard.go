package leaderboard

import (
	"context"
	"crypto/sha1" //nolint:gosec // cache key fingerprint, not security
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/runeworks/glyphbot/internal/domain"
	"github.com/runeworks/glyphbot/internal/gamestate"
	"github.com/runeworks/glyphbot/internal/ledger"
	"github.com/runeworks/glyphbot/internal/logger"
)

const (
	// CacheTTL bounds how long standings may lag behind balance changes
	// that happen without a block advance (grumbles, market prizes).
	CacheTTL  = 30 * time.Second
	cacheSize = 8

	// TopSize is how many entries displays show before the requester's
	// own rank line.
	TopSize = 10
)

// UserStats is one leaderboard row, folded from the block history.
type UserStats struct {
	UserID              string         `json:"userId"`
	Balance             int64          `json:"balance"`
	Picks               map[string]int `json:"picks"`
	ExactMatches        int            `json:"exactMatches"`
	TotalParticipations int            `json:"totalParticipations"`
	LastParticipationAt int64          `json:"lastParticipationAt,omitempty"` // epoch ms
	MostPicked          string         `json:"mostPicked,omitempty"`
}

// Service computes standings: exact matches first, balance as tiebreaker.
// Results are cached until the block advances, balances change, or the TTL
// lapses.
type Service interface {
	Standings(ctx context.Context) []UserStats
	Top(ctx context.Context, n int) []UserStats
	// UserRank returns the 1-based rank, or false when the user has no row.
	UserRank(ctx context.Context, userID string) (int, UserStats, bool)
}

type service struct {
	keeper *gamestate.Keeper
	ledger ledger.Service
	cache  *expirable.LRU[string, []UserStats]
}

// NewService creates the leaderboard over the shared state and ledger.
func NewService(keeper *gamestate.Keeper, led ledger.Service) Service {
	return &service{
		keeper: keeper,
		ledger: led,
		cache:  expirable.NewLRU[string, []UserStats](cacheSize, nil, CacheTTL),
	}
}

func (s *service) Standings(ctx context.Context) []UserStats {
	balances := s.ledger.All(ctx)
	key := s.cacheKey(balances)
	if cached, ok := s.cache.Get(key); ok {
		return cached
	}

	stats := s.fold(balances)
	s.cache.Add(key, stats)
	logger.FromContext(ctx).Debug(LogMsgRecomputed, "entries", len(stats))
	return stats
}

func (s *service) Top(ctx context.Context, n int) []UserStats {
	stats := s.Standings(ctx)
	if n > len(stats) {
		n = len(stats)
	}
	return stats[:n]
}

func (s *service) UserRank(ctx context.Context, userID string) (int, UserStats, bool) {
	for i, entry := range s.Standings(ctx) {
		if entry.UserID == userID {
			return i + 1, entry, true
		}
	}
	return 0, UserStats{}, false
}

// cacheKey fingerprints the current block plus the exact balance map, so
// any payout invalidates the cached standings.
func (s *service) cacheKey(balances domain.Balances) string {
	var block int64
	s.keeper.View(func(st *domain.State) { block = st.CurrentBlock })

	data, err := json.Marshal(balances)
	if err != nil {
		// Unreachable for a string-keyed map; fall back to an uncacheable key.
		return fmt.Sprintf("%d:%d", block, time.Now().UnixNano())
	}
	return fmt.Sprintf("%d:%x", block, sha1.Sum(data)) //nolint:gosec
}

// fold walks the whole block history once and merges in every balance
// holder and current picker, so users appear even before their first
// resolved block.
func (s *service) fold(balances domain.Balances) []UserStats {
	statsMap := map[string]*UserStats{}
	ensure := func(userID string) *UserStats {
		if st, ok := statsMap[userID]; ok {
			return st
		}
		st := &UserStats{
			UserID:  userID,
			Balance: balances[userID],
			Picks:   map[string]int{},
		}
		statsMap[userID] = st
		return st
	}

	s.keeper.View(func(st *domain.State) {
		for _, block := range st.BlockHistory {
			for _, r := range block.MemberResults {
				u := ensure(r.UserID)
				u.Picks[r.Choice]++
				if r.Distance == 0 {
					u.ExactMatches++
				}
				u.TotalParticipations++
				if block.Timestamp > u.LastParticipationAt {
					u.LastParticipationAt = block.Timestamp
				}
			}
		}
		for userID := range st.CurrentChoices {
			ensure(userID)
		}
	})
	for userID := range balances {
		ensure(userID)
	}

	out := make([]UserStats, 0, len(statsMap))
	for _, st := range statsMap {
		st.MostPicked = mostPicked(st.Picks)
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ExactMatches != out[j].ExactMatches {
			return out[i].ExactMatches > out[j].ExactMatches
		}
		if out[i].Balance != out[j].Balance {
			return out[i].Balance > out[j].Balance
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

func mostPicked(picks map[string]int) string {
	top := ""
	topCount := -1
	// Walk the alphabet for a deterministic tie-break.
	for _, symbol := range domain.Symbols {
		if count, ok := picks[symbol]; ok && count > topCount {
			topCount = count
			top = symbol
		}
	}
	return top
}
