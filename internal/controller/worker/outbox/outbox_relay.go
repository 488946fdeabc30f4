package outbox

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andreyxaxa/Image-Moderation/internal/infrastructure"
	"github.com/andreyxaxa/Image-Moderation/internal/usecase"
	"github.com/andreyxaxa/Image-Moderation/pkg/logger"
)

type Observer interface {
	BatchRelayed(sent int, err error)
}

type nopObserver struct{}

func (nopObserver) BatchRelayed(int, error) {}

// OutboxRelay moves committed moderation events from the outbox table to the
// event stream.
type OutboxRelay struct {
	outbox   usecase.OutboxUseCase
	es       infrastructure.EventsSender
	observer Observer
	logger   logger.Interface

	pollInterval        time.Duration
	cleanupInterval     time.Duration
	markFailedInterval  time.Duration
	processBatchTimeout time.Duration
	batchSize           int
	maxRetries          int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	started atomic.Bool
}

func New(
	outbox usecase.OutboxUseCase,
	es infrastructure.EventsSender,
	l logger.Interface,
	pollInterval time.Duration,
	cleanupInterval time.Duration,
	markFailedInterval time.Duration,
	processBatchTimeout time.Duration,
	batchSize int,
	maxRetries int,
) *OutboxRelay {
	return &OutboxRelay{
		outbox:              outbox,
		es:                  es,
		observer:            nopObserver{},
		logger:              l,
		pollInterval:        pollInterval,
		cleanupInterval:     cleanupInterval,
		markFailedInterval:  markFailedInterval,
		processBatchTimeout: processBatchTimeout,
		batchSize:           batchSize,
		maxRetries:          maxRetries,
	}
}

func (r *OutboxRelay) WithObserver(o Observer) *OutboxRelay {
	r.observer = o
	return r
}

func (r *OutboxRelay) Start(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return fmt.Errorf("OutboxRelay - Start - worker already started")
	}

	r.ctx, r.cancel = context.WithCancel(ctx)

	// 1. relay pending events
	r.worker(r.pollInterval, func() {
		batchCtx, batchCancel := context.WithTimeout(r.ctx, r.processBatchTimeout)
		r.processEventsBatch(batchCtx)
		batchCancel()
	})

	// 2. give up on events out of retries
	r.worker(r.markFailedInterval, func() {
		err := r.outbox.MarkMaxRetriesAsFailed(r.ctx, r.maxRetries)
		if err != nil {
			r.logger.Error(err, "OutboxRelay - Start - worker - r.outbox.MarkMaxRetriesAsFailed")
		}
	})

	// 3. drop old processed/failed rows
	r.worker(r.cleanupInterval, func() {
		err := r.outbox.CleanupOutbox(r.ctx)
		if err != nil {
			r.logger.Error(err, "OutboxRelay - Start - worker - r.outbox.CleanupOutbox")
		}
	})

	return nil
}

func (r *OutboxRelay) processEventsBatch(ctx context.Context) {
	// 1. pending events with retry_count < max retries, oldest first
	events, err := r.outbox.GetPendingEvents(ctx, r.maxRetries, r.batchSize)
	if err != nil {
		r.logger.Error(err, "OutboxRelay - processEventsBatch - r.outbox.GetPendingEvents")

		return
	}
	if len(events) == 0 {
		return
	}

	// 2. claim them
	err = r.outbox.MarkAsProcessingBatch(ctx, events)
	if err != nil {
		r.logger.Error(err, "OutboxRelay - processEventsBatch - r.outbox.MarkAsProcessingBatch")

		return
	}

	// 3. send
	err = r.es.SendEvents(ctx, events)
	r.observer.BatchRelayed(len(events), err)
	if err != nil {
		r.logger.Error(err, "OutboxRelay - processEventsBatch - r.es.SendEvents")
		// 3.1 back to pending with one more retry
		incErr := r.outbox.IncrementRetryCountBatch(ctx, events)
		if incErr != nil {
			r.logger.Error(incErr, "OutboxRelay - processEventsBatch - r.outbox.IncrementRetryCountBatch")
		}
		return
	}

	// 4. done
	err = r.outbox.MarkAsProcessedBatch(ctx, events)
	if err != nil {
		r.logger.Error(err, "OutboxRelay - processEventsBatch - r.outbox.MarkAsProcessedBatch")

		return
	}
}

func (r *OutboxRelay) worker(interval time.Duration, task func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-r.ctx.Done():
				return
			case <-ticker.C:
				task()
			}
		}
	}()
}

func (r *OutboxRelay) Shutdown(ctx context.Context) error {
	if !r.started.Load() {
		return nil
	}

	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})

	go func() {
		r.wg.Wait()
		if err := r.es.Close(); err != nil {
			r.logger.Error(err, "OutboxRelay - Shutdown - r.es.Close")
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("OutboxRelay - Shutdown: %w", ctx.Err())
	}
}
