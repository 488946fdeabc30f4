package persistent

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/andreyxaxa/Image-Moderation/internal/entity"
	"github.com/andreyxaxa/Image-Moderation/pkg/postgres"
	"github.com/andreyxaxa/Image-Moderation/pkg/types/errs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	// Table
	outboxTable = "image_events_outbox"

	// Columns
	outboxIDColumn          = "id"
	outboxAggregateIDColumn = "aggregate_id"
	outboxPayloadColumn     = "payload"
	outboxStatusColumn      = "status"
	outboxCreatedAtColumn   = "created_at"
	outboxProcessedAtColumn = "processed_at"
	outboxRetryCountColumn  = "retry_count"
)

var outboxColumns = []string{
	outboxIDColumn,
	outboxAggregateIDColumn,
	outboxPayloadColumn,
	outboxStatusColumn,
	outboxCreatedAtColumn,
	outboxProcessedAtColumn,
	outboxRetryCountColumn,
}

type OutboxRepo struct {
	*postgres.Postgres
}

func NewOutboxRepo(pg *postgres.Postgres) *OutboxRepo {
	return &OutboxRepo{pg}
}

func (r *OutboxRepo) Create(ctx context.Context, event *entity.OutboxEvent) error {
	sql, args, err := r.Builder.
		Insert(outboxTable).
		Columns(
			outboxIDColumn,
			outboxAggregateIDColumn,
			outboxPayloadColumn,
			outboxStatusColumn,
			outboxCreatedAtColumn,
			outboxRetryCountColumn,
		).
		Values(
			event.ID,
			event.AggregateID,
			event.Payload,
			event.Status,
			event.CreatedAt,
			event.RetryCount,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("OutboxRepo - Create - r.Builder.ToSql: %w", err)
	}

	_, err = r.GetExecutor(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("OutboxRepo - Create - executor.Exec: %w", err)
	}

	return nil
}

func (r *OutboxRepo) GetPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error) {
	sql, args, err := r.Builder.
		Select(outboxColumns...).
		From(outboxTable).
		Where(squirrel.And{
			squirrel.Eq{outboxStatusColumn: entity.Pending},
			squirrel.Lt{outboxRetryCountColumn: maxRetries},
		}).
		OrderBy(outboxCreatedAtColumn + " ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("OutboxRepo - GetPendingEvents - r.Builder.ToSql: %w", err)
	}

	rows, err := r.GetExecutor(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("OutboxRepo - GetPendingEvents - executor.Query: %w", err)
	}

	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.OutboxEvent, error) {
		var event entity.OutboxEvent
		err := row.Scan(
			&event.ID,
			&event.AggregateID,
			&event.Payload,
			&event.Status,
			&event.CreatedAt,
			&event.ProcessedAt,
			&event.RetryCount,
		)
		return &event, err
	})
	if err != nil {
		return nil, fmt.Errorf("OutboxRepo - GetPendingEvents - pgx.CollectRows: %w", err)
	}

	return events, nil
}

func (r *OutboxRepo) MarkAsProcessingBatch(ctx context.Context, IDs uuid.UUIDs) error {
	return r.updateBatch(ctx, "MarkAsProcessingBatch", IDs, squirrel.Eq{
		outboxStatusColumn: entity.Processing,
	})
}

func (r *OutboxRepo) MarkAsProcessedBatch(ctx context.Context, IDs uuid.UUIDs) error {
	return r.updateBatch(ctx, "MarkAsProcessedBatch", IDs, squirrel.Eq{
		outboxStatusColumn:      entity.Processed,
		outboxProcessedAtColumn: time.Now(),
	})
}

// IncrementRetryCountBatch puts the events back to pending for the next poll.
func (r *OutboxRepo) IncrementRetryCountBatch(ctx context.Context, IDs uuid.UUIDs) error {
	return r.updateBatch(ctx, "IncrementRetryCountBatch", IDs, squirrel.Eq{
		outboxStatusColumn:     entity.Pending,
		outboxRetryCountColumn: squirrel.Expr(outboxRetryCountColumn + " + 1"),
	})
}

// updateBatch fails with errs.ErrRecordNotFound when none of IDs exist.
func (r *OutboxRepo) updateBatch(ctx context.Context, method string, IDs uuid.UUIDs, set squirrel.Eq) error {
	sql, args, err := r.Builder.
		Update(outboxTable).
		SetMap(set).
		Where(squirrel.Eq{outboxIDColumn: IDs}).
		ToSql()
	if err != nil {
		return fmt.Errorf("OutboxRepo - %s - r.Builder.ToSql: %w", method, err)
	}

	tag, err := r.GetExecutor(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("OutboxRepo - %s - executor.Exec: %w", method, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("OutboxRepo - %s: %w", method, errs.ErrRecordNotFound)
	}

	return nil
}

func (r *OutboxRepo) MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error {
	sql, args, err := r.Builder.
		Update(outboxTable).
		Set(outboxStatusColumn, entity.Failed).
		Where(squirrel.And{
			squirrel.Eq{outboxStatusColumn: entity.Pending},
			squirrel.GtOrEq{outboxRetryCountColumn: maxRetries},
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("OutboxRepo - MarkMaxRetriesAsFailed - r.Builder.ToSql: %w", err)
	}

	_, err = r.GetExecutor(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("OutboxRepo - MarkMaxRetriesAsFailed - executor.Exec: %w", err)
	}

	return nil
}

func (r *OutboxRepo) DeleteOldProcessedAndFailed(ctx context.Context, olderThan time.Duration) (int64, error) {
	sql, args, err := r.Builder.
		Delete(outboxTable).
		Where(squirrel.And{
			squirrel.Eq{outboxStatusColumn: []entity.OutboxStatus{entity.Processed, entity.Failed}},
			squirrel.Lt{outboxCreatedAtColumn: time.Now().Add(-olderThan)},
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("OutboxRepo - DeleteOldProcessedAndFailed - r.Builder.ToSql: %w", err)
	}

	tag, err := r.GetExecutor(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("OutboxRepo - DeleteOldProcessedAndFailed - executor.Exec: %w", err)
	}

	return tag.RowsAffected(), nil
}
