package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/runeworks/glyphbot/internal/domain"
	"github.com/runeworks/glyphbot/internal/logger"
	"github.com/runeworks/glyphbot/internal/store"
)

// Service manages glyph balances. All mutations persist through the write
// queue; balances never go negative.
type Service interface {
	Balance(ctx context.Context, userID string) int64
	Credit(ctx context.Context, userID string, amount int64) (int64, error)
	Debit(ctx context.Context, userID string, amount int64) (int64, error)
	SetBalance(ctx context.Context, userID string, amount int64) error
	Transfer(ctx context.Context, fromID, toID string, amount int64) error
	All(ctx context.Context) domain.Balances
	ResetAll(ctx context.Context)
}

type service struct {
	mu       sync.Mutex
	balances domain.Balances
	queue    *store.WriteQueue
}

// NewService creates the ledger over balances loaded at startup and
// registers its snapshot with the write queue.
func NewService(balances domain.Balances, queue *store.WriteQueue) Service {
	if balances == nil {
		balances = domain.Balances{}
	}
	s := &service{balances: balances, queue: queue}
	queue.Register(store.DocBalances, s.snapshot)
	return s
}

// snapshot marshals balances under the ledger lock so the write queue never
// sees a torn document.
func (s *service) snapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return json.Marshal(s.balances)
}

func (s *service) Balance(_ context.Context, userID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[userID]
}

func (s *service) Credit(ctx context.Context, userID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: %d", domain.ErrInvalidAmount, amount)
	}

	s.mu.Lock()
	s.balances[userID] += amount
	newBalance := s.balances[userID]
	s.mu.Unlock()

	s.queue.Schedule(store.DocBalances)
	logger.FromContext(ctx).Debug(LogMsgCredited, "user_id", userID, "amount", amount, "balance", newBalance)
	return newBalance, nil
}

func (s *service) Debit(ctx context.Context, userID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: %d", domain.ErrInvalidAmount, amount)
	}

	s.mu.Lock()
	if s.balances[userID] < amount {
		balance := s.balances[userID]
		s.mu.Unlock()
		return balance, fmt.Errorf("%w: have %d, need %d", domain.ErrInsufficientFunds, balance, amount)
	}
	s.balances[userID] -= amount
	newBalance := s.balances[userID]
	s.mu.Unlock()

	s.queue.Schedule(store.DocBalances)
	logger.FromContext(ctx).Debug(LogMsgDebited, "user_id", userID, "amount", amount, "balance", newBalance)
	return newBalance, nil
}

func (s *service) SetBalance(ctx context.Context, userID string, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%w: %d", domain.ErrNegativeBalance, amount)
	}

	s.mu.Lock()
	s.balances[userID] = amount
	s.mu.Unlock()

	s.queue.Schedule(store.DocBalances)
	logger.FromContext(ctx).Info(LogMsgBalanceSet, "user_id", userID, "balance", amount)
	return nil
}

// Transfer moves glyphs atomically between two users under one lock hold.
func (s *service) Transfer(ctx context.Context, fromID, toID string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: %d", domain.ErrInvalidAmount, amount)
	}

	s.mu.Lock()
	if s.balances[fromID] < amount {
		balance := s.balances[fromID]
		s.mu.Unlock()
		return fmt.Errorf("%w: have %d, need %d", domain.ErrInsufficientFunds, balance, amount)
	}
	s.balances[fromID] -= amount
	s.balances[toID] += amount
	s.mu.Unlock()

	s.queue.Schedule(store.DocBalances)
	logger.FromContext(ctx).Info(LogMsgTransferred, "from", fromID, "to", toID, "amount", amount)
	return nil
}

// All returns a copy safe for iteration outside the lock.
func (s *service) All(_ context.Context) domain.Balances {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(domain.Balances, len(s.balances))
	for k, v := range s.balances {
		out[k] = v
	}
	return out
}

func (s *service) ResetAll(ctx context.Context) {
	s.mu.Lock()
	s.balances = domain.Balances{}
	s.mu.Unlock()

	s.queue.Schedule(store.DocBalances)
	logger.FromContext(ctx).Warn(LogMsgBalancesReset)
}
