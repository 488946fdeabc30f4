package v1

import (
	"github.com/andreyxaxa/Image-Moderation/internal/usecase"
	"github.com/andreyxaxa/Image-Moderation/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

func NewImageRoutes(apiGroup fiber.Router, mod usecase.ModerationUseCase, l logger.Interface) {
	r := &V1{mod: mod, logger: l}

	imagesGroup := apiGroup.Group("/images")
	{
		imagesGroup.Post("/upload", r.uploadImage)
		imagesGroup.Get("/approved", r.listApproved)
		imagesGroup.Get("/unapproved", r.listPending)
		imagesGroup.Put("/:id/approve", r.approveImage)
		imagesGroup.Delete("/:id", r.deleteImage)
	}
}

// NewWebRoutes serves the submission, display and moderation pages.
func NewWebRoutes(app fiber.Router, l logger.Interface) {
	r := &V1{logger: l}

	app.Get("/", r.showPage("index.html"))
	app.Get("/display", r.showPage("display.html"))
	app.Get("/admin", r.showPage("admin.html"))
}
