package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// WriteFunc is a callback that performs database writes inside a transaction.
type WriteFunc func(ctx context.Context, tx *sql.Tx) error

// BatchWriter buffers write operations and commits them in batches, one
// transaction per batch, on a background committer. Batches commit in
// submission order.
type BatchWriter struct {
	mu     sync.Mutex
	buf    []WriteFunc
	cap    int
	closed bool
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	commitCh chan []WriteFunc
	db       *sql.DB

	// OnCommit, when set before the first Submit, is called after every
	// committed batch with the running totals.
	OnCommit func(batches, items int)

	// errMu guards the fields below.
	errMu   sync.Mutex
	lastErr error
	batches int
	items   int
}

// NewBatchWriter creates a BatchWriter that commits every bufferSize writes.
func NewBatchWriter(db *sql.DB, bufferSize int) *BatchWriter {
	if bufferSize <= 0 {
		bufferSize = 500
	}
	ctx, cancel := context.WithCancel(context.Background())
	bw := &BatchWriter{
		buf:      make([]WriteFunc, 0, bufferSize),
		cap:      bufferSize,
		ctx:      ctx,
		cancel:   cancel,
		commitCh: make(chan []WriteFunc, 2),
		db:       db,
	}
	bw.wg.Add(1)
	go bw.committer()
	return bw
}

// Submit enqueues a write function. Once a batch has failed, Submit returns
// that error so callers can stop producing work early.
func (bw *BatchWriter) Submit(w WriteFunc) error {
	if err := bw.Err(); err != nil {
		return err
	}
	bw.mu.Lock()
	defer bw.mu.Unlock()
	if bw.closed {
		return ErrBatchWriterClosed
	}
	bw.buf = append(bw.buf, w)
	if len(bw.buf) >= bw.cap {
		bw.flushLocked()
	}
	return nil
}

// flushLocked assumes bw.mu is held. It blocks while the committer is busy
// with earlier batches.
func (bw *BatchWriter) flushLocked() {
	if len(bw.buf) == 0 {
		return
	}
	batch := bw.buf
	bw.buf = make([]WriteFunc, 0, bw.cap)
	bw.commitCh <- batch
}

func (bw *BatchWriter) committer() {
	defer bw.wg.Done()
	for batch := range bw.commitCh {
		bw.errMu.Lock()
		failed := bw.lastErr != nil
		bw.errMu.Unlock()
		if failed {
			// Later batches may depend on rows of the failed one.
			continue
		}
		err := bw.executeBatch(batch)
		bw.errMu.Lock()
		if err != nil {
			bw.lastErr = err
		} else {
			bw.batches++
			bw.items += len(batch)
		}
		batches, items := bw.batches, bw.items
		bw.errMu.Unlock()
		if err == nil && bw.OnCommit != nil {
			bw.OnCommit(batches, items)
		}
	}
}

func (bw *BatchWriter) executeBatch(batch []WriteFunc) error {
	// If no DB is configured (e.g. testing without DB), just run callbacks with nil tx
	if bw.db == nil {
		for _, w := range batch {
			if err := w(bw.ctx, nil); err != nil {
				return err
			}
		}
		return nil
	}

	tx, err := bw.db.BeginTx(bw.ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // ignored if committed
	}()

	for _, w := range batch {
		if err := w(bw.ctx, tx); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch (%d items): %w", len(batch), err)
	}
	return nil
}

// Err returns the first error a batch failed with, if any.
func (bw *BatchWriter) Err() error {
	bw.errMu.Lock()
	defer bw.errMu.Unlock()
	return bw.lastErr
}

// Committed reports how many batches and writes have been committed.
func (bw *BatchWriter) Committed() (batches, items int) {
	bw.errMu.Lock()
	defer bw.errMu.Unlock()
	return bw.batches, bw.items
}

// Close flushes pending writes, waits for the committer and returns the
// first batch error.
func (bw *BatchWriter) Close() error {
	bw.mu.Lock()
	if bw.closed {
		bw.mu.Unlock()
		return ErrBatchWriterClosed
	}
	bw.closed = true
	bw.flushLocked()
	bw.mu.Unlock()

	close(bw.commitCh)
	bw.wg.Wait()
	bw.cancel()
	return bw.Err()
}

var ErrBatchWriterClosed = &BatchWriterError{"batch writer closed"}

type BatchWriterError struct{ msg string }

func (e *BatchWriterError) Error() string { return e.msg }
