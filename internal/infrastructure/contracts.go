package infrastructure

import (
	"context"

	"github.com/andreyxaxa/Image-Moderation/internal/dto"
	"github.com/andreyxaxa/Image-Moderation/internal/entity"
)

type (
	EventsSender interface {
		SendEvents(ctx context.Context, events []*entity.OutboxEvent) error
		Close() error
	}

	// ImageInspector verifies that data is a decodable image.
	// Data that is not an image fails with errs.ErrInvalidInput.
	ImageInspector interface {
		Inspect(ctx context.Context, data []byte) (dto.ImageInfo, error)
	}
)
