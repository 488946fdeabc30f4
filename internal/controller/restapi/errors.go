package restapi

import (
	"errors"
	"net/http"

	"github.com/andreyxaxa/Image-Moderation/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/Image-Moderation/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders errors that escape the handlers (unknown route,
// missing upgrade, body over the server limit) with the same JSON body the
// v1 handlers use.
func ErrorHandler(l logger.Interface) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		code := http.StatusInternalServerError
		msg := "internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			msg = fe.Message
		} else {
			l.Error(err, "restapi - ErrorHandler - %s %s", ctx.Method(), ctx.Path())
		}

		return ctx.Status(code).JSON(response.Error{Error: msg})
	}
}
