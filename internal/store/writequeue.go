package store

import (
	"context"
	"sync"
	"time"

	"github.com/runeworks/glyphbot/internal/logger"
)

// DefaultCoalesceWindow bounds disk I/O under bursts of rapid mutations
// (users re-picking symbols) by collapsing writes scheduled within the
// window into one flush.
const DefaultCoalesceWindow = 100 * time.Millisecond

// Snapshot produces the current document bytes. Implementations must take
// the owning component's lock so the queue never observes a torn document.
type Snapshot func() ([]byte, error)

// WriteQueue coalesces document writes. Components register a snapshot
// function per document and call Schedule after every mutation; the queue
// debounces, snapshots, and writes. In-memory state stays authoritative:
// a failed write is logged and retried on the next Schedule, never
// surfaced to game logic.
type WriteQueue struct {
	store  *Store
	window time.Duration

	mu        sync.Mutex
	snapshots map[Document]Snapshot
	timers    map[Document]*time.Timer
	closed    bool

	wg sync.WaitGroup
}

// NewWriteQueue creates a write queue over the store with the given
// coalescing window (0 means DefaultCoalesceWindow).
func NewWriteQueue(store *Store, window time.Duration) *WriteQueue {
	if window <= 0 {
		window = DefaultCoalesceWindow
	}
	return &WriteQueue{
		store:     store,
		window:    window,
		snapshots: make(map[Document]Snapshot),
		timers:    make(map[Document]*time.Timer),
	}
}

// Register binds a document to its snapshot source. Must be called before
// the first Schedule for that document.
func (q *WriteQueue) Register(doc Document, snapshot Snapshot) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.snapshots[doc] = snapshot
}

// Schedule requests a write of the document within the coalescing window.
// Calls inside the window reset the timer so bursts collapse into one write.
func (q *WriteQueue) Schedule(doc Document) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	if t, ok := q.timers[doc]; ok {
		t.Stop()
	}
	q.timers[doc] = time.AfterFunc(q.window, func() {
		q.mu.Lock()
		delete(q.timers, doc)
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return
		}
		q.wg.Add(1)
		defer q.wg.Done()
		q.write(context.Background(), doc)
	})
}

// write snapshots and persists one document. Errors are logged and
// swallowed; the next Schedule retries with fresher data anyway.
func (q *WriteQueue) write(ctx context.Context, doc Document) {
	log := logger.FromContext(ctx)

	q.mu.Lock()
	snapshot, ok := q.snapshots[doc]
	q.mu.Unlock()
	if !ok {
		log.Error(LogMsgNoSnapshotRegistered, "document", doc)
		return
	}

	data, err := snapshot()
	if err != nil {
		log.Error(LogMsgSnapshotFailed, "document", doc, "error", err)
		return
	}
	if err := q.store.Put(ctx, doc, data); err != nil {
		log.Error(LogMsgWriteFailed, "document", doc, "error", err)
	}
}

// Flush cancels pending timers and writes every registered document now.
// Used at shutdown so the durability window closes cleanly.
func (q *WriteQueue) Flush(ctx context.Context) {
	q.mu.Lock()
	for doc, t := range q.timers {
		t.Stop()
		delete(q.timers, doc)
	}
	docs := make([]Document, 0, len(q.snapshots))
	for doc := range q.snapshots {
		docs = append(docs, doc)
	}
	q.mu.Unlock()

	for _, doc := range docs {
		q.write(ctx, doc)
	}
}

// Shutdown flushes pending writes and stops accepting new schedules.
func (q *WriteQueue) Shutdown(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info(LogMsgShuttingDownWriteQueue)

	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		log.Warn(LogMsgWriteQueueShutdownTimeout)
		return ctx.Err()
	}

	// Final flush after in-flight writes settled.
	q.mu.Lock()
	q.closed = false
	q.mu.Unlock()
	q.Flush(ctx)
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	log.Info(LogMsgWriteQueueShutdownDone)
	return nil
}
