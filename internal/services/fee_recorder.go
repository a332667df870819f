package services

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// FeeRecorder dispatches fee recordings asynchronously after a primary
// operation has committed. Recording failures are logged and never
// propagate back to the caller, so a failed analytics write cannot unwind
// a successful sponsorship or mint.
type FeeRecorder struct {
	ledger    LedgerService
	queue     chan RecordFeeInput
	group     *errgroup.Group
	timeout   time.Duration
	closeOnce sync.Once
}

// NewFeeRecorder starts the recorder worker. buffer bounds the number of
// pending recordings; 0 selects the default.
func NewFeeRecorder(ledger LedgerService, buffer int) *FeeRecorder {
	if buffer <= 0 {
		buffer = 64
	}
	r := &FeeRecorder{
		ledger:  ledger,
		queue:   make(chan RecordFeeInput, buffer),
		group:   new(errgroup.Group),
		timeout: 10 * time.Second,
	}
	r.group.Go(r.run)
	return r
}

func (r *FeeRecorder) run() error {
	for input := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		if _, err := r.ledger.RecordFee(ctx, input); err != nil {
			log.Printf("fee recording failed (kind=%s user=%s): %v", input.Kind, input.UserID, err)
		}
		cancel()
	}
	return nil
}

// Enqueue hands off a recording without blocking. When the queue is full
// the recording is dropped with a log entry rather than stalling the
// caller's request.
func (r *FeeRecorder) Enqueue(input RecordFeeInput) {
	select {
	case r.queue <- input:
	default:
		log.Printf("fee recorder queue full, dropping %s fee for user %s", input.Kind, input.UserID)
	}
}

// Close drains pending recordings and stops the worker.
func (r *FeeRecorder) Close() {
	r.closeOnce.Do(func() {
		close(r.queue)
	})
	_ = r.group.Wait()
}
