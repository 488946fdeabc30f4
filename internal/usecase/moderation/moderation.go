package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andreyxaxa/Image-Moderation/internal/entity"
	"github.com/andreyxaxa/Image-Moderation/internal/infrastructure"
	"github.com/andreyxaxa/Image-Moderation/internal/repo"
	"github.com/andreyxaxa/Image-Moderation/internal/usecase"
	"github.com/andreyxaxa/Image-Moderation/pkg/logger"
	"github.com/andreyxaxa/Image-Moderation/pkg/types/errs"
	"github.com/google/uuid"
)

const _defaultFolder = "carousel-images"

const (
	OpSubmit       = "submit"
	OpListApproved = "list_approved"
	OpListPending  = "list_pending"
	OpApprove      = "approve"
	OpDelete       = "delete"
)

// Observer is notified of every finished operation.
type Observer interface {
	ObserveOperation(op string, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveOperation(string, error) {}

type UseCase struct {
	media      repo.MediaRepo
	records    repo.ImageRecordRepo
	transactor repo.Transactor
	inspector  infrastructure.ImageInspector
	events     usecase.EventPublisher
	txEvents   bool
	observer   Observer

	folder string
	now    func() time.Time

	logger logger.Interface
}

var _ usecase.ModerationUseCase = (*UseCase)(nil)

func New(
	media repo.MediaRepo,
	records repo.ImageRecordRepo,
	transactor repo.Transactor,
	inspector infrastructure.ImageInspector,
	events usecase.EventPublisher,
	l logger.Interface,
	opts ...Option,
) *UseCase {
	uc := &UseCase{
		media:      media,
		records:    records,
		transactor: transactor,
		inspector:  inspector,
		events:     events,
		observer:   nopObserver{},
		folder:     _defaultFolder,
		now:        time.Now,
		logger:     l,
	}

	_, uc.txEvents = events.(usecase.TransactionalPublisher)

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

func (uc *UseCase) Submit(ctx context.Context, data []byte, mimeType string) (_ *entity.Image, err error) {
	defer func() { uc.observer.ObserveOperation(OpSubmit, err) }()

	if len(data) == 0 {
		return nil, fmt.Errorf("ModerationUseCase - Submit: %w: empty image data", errs.ErrInvalidInput)
	}

	if !isImageMIME(mimeType) {
		return nil, fmt.Errorf("ModerationUseCase - Submit: %w: %q is not an image type", errs.ErrInvalidInput, mimeType)
	}

	info, err := uc.inspector.Inspect(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("ModerationUseCase - Submit - uc.inspector.Inspect: %w", err)
	}

	// 1. media first: no metadata without a stored object
	key := fmt.Sprintf("%s/%s%s", uc.folder, uuid.NewString(), info.Extension)

	url, err := uc.media.Store(ctx, key, data, info.ContentType)
	if err != nil {
		return nil, fmt.Errorf("ModerationUseCase - Submit - uc.media.Store: %w: %w", errs.ErrStorageFailure, err)
	}

	image := &entity.Image{
		URL:         url,
		StorageKey:  key,
		Approved:    false,
		ContentType: info.ContentType,
		Size:        int64(len(data)),
		Width:       info.Width,
		Height:      info.Height,
		CreatedAt:   uc.now(),
	}

	// 2. metadata, with the event when it is part of the transaction
	err = uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := uc.records.Create(ctx, image); err != nil {
			return fmt.Errorf("uc.records.Create: %w", err)
		}

		return uc.publishInTx(ctx, entity.NewSubmittedEvent(image))
	})
	if err != nil {
		// the stored object has no record pointing at it
		deleteErr := uc.media.Delete(context.WithoutCancel(ctx), key)
		if deleteErr != nil {
			uc.logger.Error(deleteErr, "ModerationUseCase - Submit - orphaned media key=%s", key)
		}

		return nil, fmt.Errorf("ModerationUseCase - Submit: %w: %w", errs.ErrPersistenceFailure, err)
	}

	// 3. viewers hear about committed records only
	uc.publishAfterCommit(ctx, entity.NewSubmittedEvent(image))

	return image, nil
}

func (uc *UseCase) ListApproved(ctx context.Context) (_ []*entity.Image, err error) {
	defer func() { uc.observer.ObserveOperation(OpListApproved, err) }()

	images, err := uc.records.ListByApproved(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("ModerationUseCase - ListApproved - uc.records.ListByApproved: %w: %w", errs.ErrPersistenceFailure, err)
	}

	return images, nil
}

func (uc *UseCase) ListPending(ctx context.Context) (_ []*entity.Image, err error) {
	defer func() { uc.observer.ObserveOperation(OpListPending, err) }()

	images, err := uc.records.ListByApproved(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("ModerationUseCase - ListPending - uc.records.ListByApproved: %w: %w", errs.ErrPersistenceFailure, err)
	}

	return images, nil
}

// Approve marks the image approved and publishes the approved event, also
// when the image was approved before.
func (uc *UseCase) Approve(ctx context.Context, id string) (_ *entity.Image, err error) {
	defer func() { uc.observer.ObserveOperation(OpApprove, err) }()

	var image *entity.Image

	err = uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		updated, err := uc.records.SetApproved(ctx, id)
		if err != nil {
			return fmt.Errorf("uc.records.SetApproved: %w", err)
		}

		image = updated

		return uc.publishInTx(ctx, entity.NewApprovedEvent(updated))
	})
	if err != nil {
		return nil, persistenceError("ModerationUseCase - Approve", err)
	}

	uc.publishAfterCommit(ctx, entity.NewApprovedEvent(image))

	return image, nil
}

// Delete removes the media object, then the record. A media failure leaves
// the record in place since it is the only locator of the object.
func (uc *UseCase) Delete(ctx context.Context, id string) (err error) {
	defer func() { uc.observer.ObserveOperation(OpDelete, err) }()

	image, err := uc.records.GetByID(ctx, id)
	if err != nil {
		return persistenceError("ModerationUseCase - Delete - uc.records.GetByID", err)
	}

	err = uc.media.Delete(ctx, image.StorageKey)
	if err != nil {
		return fmt.Errorf("ModerationUseCase - Delete - uc.media.Delete: %w: %w", errs.ErrStorageFailure, err)
	}

	err = uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := uc.records.Delete(ctx, image.ID); err != nil {
			return fmt.Errorf("uc.records.Delete: %w", err)
		}

		return uc.publishInTx(ctx, entity.NewDeletedEvent(image.ID))
	})
	if err != nil {
		return persistenceError("ModerationUseCase - Delete", err)
	}

	uc.publishAfterCommit(ctx, entity.NewDeletedEvent(image.ID))

	return nil
}

// publishInTx hands the event to a transactional publisher; its failure
// aborts the transaction.
func (uc *UseCase) publishInTx(ctx context.Context, event entity.Event) error {
	if !uc.txEvents {
		return nil
	}

	if err := uc.events.Publish(ctx, event); err != nil {
		return fmt.Errorf("uc.events.Publish: %w", err)
	}

	return nil
}

// publishAfterCommit hands the event to a best-effort publisher once the
// state change is durable.
func (uc *UseCase) publishAfterCommit(ctx context.Context, event entity.Event) {
	if uc.txEvents {
		return
	}

	if err := uc.events.Publish(ctx, event); err != nil {
		uc.logger.Warn("ModerationUseCase - publishAfterCommit - %s for image %s: %v", event.Kind, event.ImageID, err)
	}
}

// persistenceError keeps NotFound as is and tags everything else as a
// persistence failure.
func persistenceError(op string, err error) error {
	if errors.Is(err, errs.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, errs.ErrPersistenceFailure, err)
}

func isImageMIME(mimeType string) bool {
	mt, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(mimeType)), ";")
	return strings.HasPrefix(mt, "image/") && len(mt) > len("image/")
}
