package v1

import (
	"embed"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

var (
	//go:embed web/*.html
	webFiles embed.FS
)

func (r *V1) showPage(name string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		file, err := webFiles.ReadFile("web/" + name)
		if err != nil {
			r.logger.Error(err, "restapi - v1 - showPage")

			return errorResponse(ctx, http.StatusInternalServerError, "problems with load UI")
		}

		ctx.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)

		return ctx.Send(file)
	}
}
