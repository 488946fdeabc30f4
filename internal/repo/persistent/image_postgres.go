package persistent

import (
	"context"
	"errors"
	"fmt"
	"strings"
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
	imagesTable = "images"

	// Columns
	idColumn          = "id"
	urlColumn         = "url"
	storageKeyColumn  = "storage_key"
	approvedColumn    = "approved"
	contentTypeColumn = "content_type"
	sizeColumn        = "size"
	widthColumn       = "width"
	heightColumn      = "height"
	createdAtColumn   = "created_at"
)

var imageColumns = []string{
	idColumn,
	urlColumn,
	storageKeyColumn,
	approvedColumn,
	contentTypeColumn,
	sizeColumn,
	widthColumn,
	heightColumn,
	createdAtColumn,
}

type ImagePostgresRepo struct {
	*postgres.Postgres
}

func NewImagePostgresRepo(pg *postgres.Postgres) *ImagePostgresRepo {
	return &ImagePostgresRepo{pg}
}

func (r *ImagePostgresRepo) Create(ctx context.Context, image *entity.Image) error {
	// timestamptz keeps microseconds
	image.CreatedAt = image.CreatedAt.UTC().Truncate(time.Microsecond)

	sql, args, err := r.Builder.
		Insert(imagesTable).
		Columns(
			urlColumn,
			storageKeyColumn,
			approvedColumn,
			contentTypeColumn,
			sizeColumn,
			widthColumn,
			heightColumn,
			createdAtColumn,
		).
		Values(
			image.URL,
			image.StorageKey,
			image.Approved,
			image.ContentType,
			image.Size,
			image.Width,
			image.Height,
			image.CreatedAt,
		).
		Suffix("RETURNING " + idColumn).
		ToSql()
	if err != nil {
		return fmt.Errorf("ImagePostgresRepo - Create - r.Builder.ToSql: %w", err)
	}

	// Pool / Tx
	executor := r.GetExecutor(ctx)

	var id uuid.UUID
	err = executor.QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		return fmt.Errorf("ImagePostgresRepo - Create - executor.QueryRow.Scan: %w", err)
	}

	image.ID = id.String()

	return nil
}

func (r *ImagePostgresRepo) GetByID(ctx context.Context, id string) (*entity.Image, error) {
	imageID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("ImagePostgresRepo - GetByID - uuid.Parse: %w", errs.ErrRecordNotFound)
	}

	sql, args, err := r.Builder.
		Select(imageColumns...).
		From(imagesTable).
		Where(squirrel.Eq{idColumn: imageID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ImagePostgresRepo - GetByID - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	image, err := scanImage(executor.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ImagePostgresRepo - GetByID: %w", errs.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("ImagePostgresRepo - GetByID - executor.QueryRow: %w", err)
	}

	return image, nil
}

// SetApproved flips the flag in one statement and returns the updated row.
func (r *ImagePostgresRepo) SetApproved(ctx context.Context, id string) (*entity.Image, error) {
	imageID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("ImagePostgresRepo - SetApproved - uuid.Parse: %w", errs.ErrRecordNotFound)
	}

	sql, args, err := r.Builder.
		Update(imagesTable).
		Set(approvedColumn, true).
		Where(squirrel.Eq{idColumn: imageID}).
		Suffix("RETURNING " + strings.Join(imageColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ImagePostgresRepo - SetApproved - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	image, err := scanImage(executor.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ImagePostgresRepo - SetApproved: %w", errs.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("ImagePostgresRepo - SetApproved - executor.QueryRow: %w", err)
	}

	return image, nil
}

func (r *ImagePostgresRepo) Delete(ctx context.Context, id string) error {
	imageID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("ImagePostgresRepo - Delete - uuid.Parse: %w", errs.ErrRecordNotFound)
	}

	sql, args, err := r.Builder.
		Delete(imagesTable).
		Where(squirrel.Eq{idColumn: imageID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("ImagePostgresRepo - Delete - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("ImagePostgresRepo - Delete - executor.Exec: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ImagePostgresRepo - Delete: %w", errs.ErrRecordNotFound)
	}

	return nil
}

func (r *ImagePostgresRepo) ListByApproved(ctx context.Context, approved bool) ([]*entity.Image, error) {
	sql, args, err := r.listByApprovedQuery(approved)
	if err != nil {
		return nil, fmt.Errorf("ImagePostgresRepo - ListByApproved - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	rows, err := executor.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("ImagePostgresRepo - ListByApproved - executor.Query: %w", err)
	}
	defer rows.Close()

	images := make([]*entity.Image, 0)
	for rows.Next() {
		image, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("ImagePostgresRepo - ListByApproved - rows.Scan: %w", err)
		}
		images = append(images, image)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ImagePostgresRepo - ListByApproved - rows.Err: %w", err)
	}

	return images, nil
}

// Newest first.
func (r *ImagePostgresRepo) listByApprovedQuery(approved bool) (string, []interface{}, error) {
	return r.Builder.
		Select(imageColumns...).
		From(imagesTable).
		Where(squirrel.Eq{approvedColumn: approved}).
		OrderBy(createdAtColumn + " DESC").
		ToSql()
}

func scanImage(row pgx.Row) (*entity.Image, error) {
	var (
		image entity.Image
		id    uuid.UUID
	)

	err := row.Scan(
		&id,
		&image.URL,
		&image.StorageKey,
		&image.Approved,
		&image.ContentType,
		&image.Size,
		&image.Width,
		&image.Height,
		&image.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	image.ID = id.String()

	return &image, nil
}
