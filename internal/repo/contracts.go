package repo

import (
	"context"
	"time"

	"github.com/andreyxaxa/Image-Moderation/internal/entity"
	"github.com/google/uuid"
)

type (
	// MediaRepo stores binary image data and hands back its public URL.
	MediaRepo interface {
		Store(ctx context.Context, key string, data []byte, contentType string) (string, error)
		Delete(ctx context.Context, key string) error
	}

	// ImageRecordRepo persists image metadata. Create assigns the record ID.
	// Lookups of unknown or malformed IDs fail with errs.ErrRecordNotFound.
	ImageRecordRepo interface {
		Create(ctx context.Context, image *entity.Image) error
		GetByID(ctx context.Context, id string) (*entity.Image, error)
		SetApproved(ctx context.Context, id string) (*entity.Image, error)
		Delete(ctx context.Context, id string) error
		ListByApproved(ctx context.Context, approved bool) ([]*entity.Image, error)
	}

	OutboxRepo interface {
		Create(ctx context.Context, event *entity.OutboxEvent) error
		GetPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error)
		MarkAsProcessingBatch(ctx context.Context, IDs uuid.UUIDs) error
		MarkAsProcessedBatch(ctx context.Context, IDs uuid.UUIDs) error
		IncrementRetryCountBatch(ctx context.Context, IDs uuid.UUIDs) error
		MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error
		DeleteOldProcessedAndFailed(ctx context.Context, olderThan time.Duration) (int64, error)
	}

	Transactor interface {
		WithinTransaction(ctx context.Context, f func(ctx context.Context) error) error
	}
)

// NoTransaction runs f directly, for stores where each single-record
// statement is already atomic.
type NoTransaction struct{}

func (NoTransaction) WithinTransaction(ctx context.Context, f func(ctx context.Context) error) error {
	return f(ctx)
}
