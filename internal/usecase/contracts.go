package usecase

import (
	"context"

	"github.com/andreyxaxa/Image-Moderation/internal/entity"
)

type (
	ModerationUseCase interface {
		Submit(ctx context.Context, data []byte, mimeType string) (*entity.Image, error)
		ListApproved(ctx context.Context) ([]*entity.Image, error)
		ListPending(ctx context.Context) ([]*entity.Image, error)
		Approve(ctx context.Context, id string) (*entity.Image, error)
		Delete(ctx context.Context, id string) error
	}

	OutboxUseCase interface {
		EventPublisher

		GetPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error)
		MarkAsProcessingBatch(ctx context.Context, events []*entity.OutboxEvent) error
		MarkAsProcessedBatch(ctx context.Context, events []*entity.OutboxEvent) error
		IncrementRetryCountBatch(ctx context.Context, events []*entity.OutboxEvent) error
		MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error
		CleanupOutbox(ctx context.Context) error
	}

	// EventPublisher hands a state transition to the push channel.
	// It is called after the state change has committed; a failure is logged
	// and does not undo the change.
	EventPublisher interface {
		Publish(ctx context.Context, event entity.Event) error
	}

	// TransactionalPublisher records events in the caller's transaction.
	// It is called before commit, and an error aborts the state change.
	TransactionalPublisher interface {
		EventPublisher
		Transactional()
	}
)
