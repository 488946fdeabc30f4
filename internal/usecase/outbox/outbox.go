package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andreyxaxa/Image-Moderation/internal/entity"
	"github.com/andreyxaxa/Image-Moderation/internal/repo"
	"github.com/andreyxaxa/Image-Moderation/internal/usecase"
	"github.com/andreyxaxa/Image-Moderation/pkg/logger"
	"github.com/google/uuid"
)

type UseCase struct {
	outboxRepo repo.OutboxRepo
	retention  time.Duration

	logger logger.Interface
}

var (
	_ usecase.OutboxUseCase          = (*UseCase)(nil)
	_ usecase.TransactionalPublisher = (*UseCase)(nil)
)

// New keeps processed and failed events for retention before cleanup.
func New(outboxRepo repo.OutboxRepo, retention time.Duration, l logger.Interface) *UseCase {
	return &UseCase{
		outboxRepo: outboxRepo,
		retention:  retention,
		logger:     l,
	}
}

// Transactional marks the outbox as a publisher that runs inside the
// transaction of the state change.
func (uc *UseCase) Transactional() {}

// Publish records the event in the outbox. Called inside the transaction of
// the state change, the event is committed together with it.
func (uc *UseCase) Publish(ctx context.Context, event entity.Event) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("OutboxUseCase - Publish - event.Validate: %w", err)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("OutboxUseCase - Publish - json.Marshal: %w", err)
	}

	outboxEvent := &entity.OutboxEvent{
		ID:          uuid.New(),
		AggregateID: event.ImageID,
		Payload:     payload,
		Status:      entity.Pending,
		CreatedAt:   time.Now(),
		RetryCount:  0,
	}

	if err := uc.outboxRepo.Create(ctx, outboxEvent); err != nil {
		return fmt.Errorf("OutboxUseCase - Publish - uc.outboxRepo.Create: %w", err)
	}

	return nil
}

func (uc *UseCase) GetPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error) {
	events, err := uc.outboxRepo.GetPendingEvents(ctx, maxRetries, limit)
	if err != nil {
		return nil, fmt.Errorf("OutboxUseCase - GetPendingEvents - uc.outboxRepo.GetPendingEvents: %w", err)
	}

	return events, nil
}

func (uc *UseCase) MarkAsProcessingBatch(ctx context.Context, events []*entity.OutboxEvent) error {
	err := uc.outboxRepo.MarkAsProcessingBatch(ctx, eventIDs(events))
	if err != nil {
		return fmt.Errorf("OutboxUseCase - MarkAsProcessingBatch - uc.outboxRepo.MarkAsProcessingBatch: %w", err)
	}

	return nil
}

func (uc *UseCase) MarkAsProcessedBatch(ctx context.Context, events []*entity.OutboxEvent) error {
	err := uc.outboxRepo.MarkAsProcessedBatch(ctx, eventIDs(events))
	if err != nil {
		return fmt.Errorf("OutboxUseCase - MarkAsProcessedBatch - uc.outboxRepo.MarkAsProcessedBatch: %w", err)
	}

	return nil
}

func (uc *UseCase) IncrementRetryCountBatch(ctx context.Context, events []*entity.OutboxEvent) error {
	err := uc.outboxRepo.IncrementRetryCountBatch(ctx, eventIDs(events))
	if err != nil {
		return fmt.Errorf("OutboxUseCase - IncrementRetryCountBatch - uc.outboxRepo.IncrementRetryCountBatch: %w", err)
	}

	return nil
}

func (uc *UseCase) MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error {
	err := uc.outboxRepo.MarkMaxRetriesAsFailed(ctx, maxRetries)
	if err != nil {
		return fmt.Errorf("OutboxUseCase - MarkMaxRetriesAsFailed - uc.outboxRepo.MarkMaxRetriesAsFailed: %w", err)
	}

	return nil
}

func (uc *UseCase) CleanupOutbox(ctx context.Context) error {
	count, err := uc.outboxRepo.DeleteOldProcessedAndFailed(ctx, uc.retention)
	if err != nil {
		return fmt.Errorf("OutboxUseCase - CleanupOutbox - uc.outboxRepo.DeleteOldProcessedAndFailed: %w", err)
	}

	if count > 0 {
		uc.logger.Info("deleted old outbox events, count = %d", count)
	}

	return nil
}

func eventIDs(events []*entity.OutboxEvent) uuid.UUIDs {
	IDs := make(uuid.UUIDs, 0, len(events))
	for _, event := range events {
		IDs = append(IDs, event.ID)
	}

	return IDs
}
