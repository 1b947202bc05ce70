package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/runeworks/glyphbot/internal/domain"
	"github.com/runeworks/glyphbot/internal/logger"
)

// Document identifies one of the persisted JSON documents.
type Document string

const (
	DocState    Document = "state"
	DocBalances Document = "balances"
)

var bucketDocuments = []byte("documents")

// Store is the durable key-value layer: a single bbolt file holding the
// round-state and balances documents as JSON.
type Store struct {
	db *bolt.DB
}

// Open creates or opens the database file and ensures the documents
// bucket exists.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextOpenDatabase, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketDocuments)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", ErrContextCreateBucket, err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database. Pending write-queue work must be
// flushed first.
func (s *Store) Close(ctx context.Context) error {
	logger.FromContext(ctx).Info(LogMsgClosingStore)
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("%s: %w", ErrContextCloseDatabase, err)
	}
	return nil
}

// Ping verifies the database is readable; used by the readiness endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketDocuments) == nil {
			return fmt.Errorf("%s: %q", ErrContextBucketMissing, bucketDocuments)
		}
		return nil
	})
}

// Put writes raw document bytes.
func (s *Store) Put(ctx context.Context, doc Document, data []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDocuments).Put([]byte(doc), data)
	})
	if err != nil {
		return fmt.Errorf("%s %s: %w", ErrContextWriteDocument, doc, err)
	}
	return nil
}

// get returns a copy of the stored document bytes, or nil when absent.
func (s *Store) get(doc Document) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketDocuments).Get([]byte(doc)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", ErrContextReadDocument, doc, err)
	}
	return data, nil
}

// LoadState loads the round-state document, filling absent fields with
// their documented defaults. Missing or partial documents are never fatal;
// only an unreadable database is.
func (s *Store) LoadState(ctx context.Context) (*domain.State, error) {
	log := logger.FromContext(ctx)

	data, err := s.get(DocState)
	if err != nil {
		return nil, err
	}

	state := &domain.State{}
	if data != nil {
		if err := json.Unmarshal(data, state); err != nil {
			// A corrupt document is treated like a missing one; the game
			// restarts from defaults rather than refusing to boot.
			log.Error(LogMsgStateDocumentCorrupt, "error", err)
			state = &domain.State{}
		}
	}
	applyStateDefaults(state)
	return state, nil
}

// LoadBalances loads the balances document; absent means empty.
func (s *Store) LoadBalances(ctx context.Context) (domain.Balances, error) {
	log := logger.FromContext(ctx)

	data, err := s.get(DocBalances)
	if err != nil {
		return nil, err
	}

	balances := domain.Balances{}
	if data != nil {
		if err := json.Unmarshal(data, &balances); err != nil {
			log.Error(LogMsgBalancesDocumentCorrupt, "error", err)
			balances = domain.Balances{}
		}
	}
	return balances, nil
}

// applyStateDefaults is the single default-merge step for loaded state
// documents: absent fields get their documented defaults here, so business
// logic never checks for zero values scattered around.
func applyStateDefaults(state *domain.State) {
	now := time.Now().UnixMilli()
	if state.CurrentBlock < 1 {
		state.CurrentBlock = 1
	}
	if state.TotalRewardsPerBlock <= 0 {
		state.TotalRewardsPerBlock = domain.DefaultTotalRewardsPerBlock
	}
	if state.BaseReward <= 0 {
		state.BaseReward = domain.DefaultBaseReward
	}
	if state.BlockDurationSec <= 0 {
		state.BlockDurationSec = domain.DefaultBlockDurationSec
	}
	if state.NextBlockAt <= 0 {
		state.NextBlockAt = now + state.BlockDurationSec*1000
	}
	if state.BlockHistory == nil {
		state.BlockHistory = []domain.BlockRecord{}
	}
	if state.CurrentChoices == nil {
		state.CurrentChoices = map[string]string{}
	}
	if state.MarketPacks == nil {
		state.MarketPacks = map[string]int{}
	}
	if state.MarketDollars == nil {
		state.MarketDollars = map[string]int{}
	}
	if state.ClaimLimit <= 0 {
		state.ClaimLimit = domain.DefaultClaimLimit
	}
	if state.Auctions == nil {
		state.Auctions = map[string]*domain.AuctionState{}
	}
}
