package v1

import (
	"github.com/andreyxaxa/Image-Moderation/internal/usecase"
	"github.com/andreyxaxa/Image-Moderation/pkg/logger"
)

type V1 struct {
	mod    usecase.ModerationUseCase
	logger logger.Interface
}
