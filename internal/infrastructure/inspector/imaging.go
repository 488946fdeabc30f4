package inspector

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/andreyxaxa/Image-Moderation/internal/dto"
	"github.com/andreyxaxa/Image-Moderation/pkg/types/errs"
	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp" // registers the webp decoder
)

const _defaultMaxPixels = 50_000_000

type ImageInspector struct {
	maxPixels int
}

func New(opts ...Option) *ImageInspector {
	p := &ImageInspector{maxPixels: _defaultMaxPixels}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Inspect sniffs the content type from the data itself and decodes the image.
// Width and height are reported after EXIF orientation is applied.
func (p *ImageInspector) Inspect(ctx context.Context, data []byte) (dto.ImageInfo, error) {
	detected := mimetype.Detect(data)

	contentType, _, _ := strings.Cut(detected.String(), ";")
	if !strings.HasPrefix(contentType, "image/") {
		return dto.ImageInfo{}, fmt.Errorf("ImageInspector - Inspect: %w: content is %s", errs.ErrInvalidInput, contentType)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return dto.ImageInfo{}, fmt.Errorf("ImageInspector - Inspect - image.DecodeConfig: %w: %w", errs.ErrInvalidInput, err)
	}

	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > p.maxPixels {
		return dto.ImageInfo{}, fmt.Errorf("ImageInspector - Inspect: %w: %dx%d pixels", errs.ErrInvalidInput, cfg.Width, cfg.Height)
	}

	if err := ctx.Err(); err != nil {
		return dto.ImageInfo{}, fmt.Errorf("ImageInspector - Inspect: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return dto.ImageInfo{}, fmt.Errorf("ImageInspector - Inspect - imaging.Decode: %w: %w", errs.ErrInvalidInput, err)
	}

	bounds := img.Bounds()

	return dto.ImageInfo{
		ContentType: contentType,
		Extension:   detected.Extension(),
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
	}, nil
}
