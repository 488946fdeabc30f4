package v1

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/andreyxaxa/Image-Moderation/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/Image-Moderation/internal/controller/restapi/v1/validate"
	"github.com/andreyxaxa/Image-Moderation/internal/entity"
	"github.com/andreyxaxa/Image-Moderation/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
)

// @Summary 	Submit image
// @Description Stores the image, records it as pending and notifies viewers
// @Tags 		images
// @Accept 		mpfd
// @Produce 	json
// @Param 		image formData file true "Image file"
// @Success 	201 {object} response.Image
// @Failure 	400 {object} response.Error "Missing, empty or not an image"
// @Failure 	413 {object} response.Error "File too large"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/api/images/upload [post]
func (r *V1) uploadImage(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile(validate.FormField)
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "image file is required")
	}

	// 1. размер
	if file.Size == 0 {
		return errorResponse(ctx, http.StatusBadRequest, "image file is empty")
	}

	if file.Size > validate.MaxFileSize {
		return errorResponse(ctx, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file size cant be more than %d bytes", validate.MaxFileSize))
	}

	// 2. заявленный тип
	contentType := file.Header.Get(fiber.HeaderContentType)
	if !validate.IsImageContentType(contentType) {
		return errorResponse(ctx, http.StatusBadRequest, "only image files are allowed")
	}

	// 3. читаем
	fileReader, err := file.Open()
	if err != nil {
		r.logger.Error(err, "restapi - v1 - uploadImage")

		return errorResponse(ctx, http.StatusInternalServerError, "problems with opening the file")
	}
	defer fileReader.Close()

	data, err := io.ReadAll(io.LimitReader(fileReader, validate.MaxFileSize+1))
	if err != nil {
		r.logger.Error(err, "restapi - v1 - uploadImage")

		return errorResponse(ctx, http.StatusInternalServerError, "problems with reading the file")
	}

	// 4. сохраняем
	image, err := r.mod.Submit(ctx.UserContext(), data, contentType)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrInvalidInput):
			return errorResponse(ctx, http.StatusBadRequest, "file is not a supported image")
		case errors.Is(err, errs.ErrStorageFailure):
			r.logger.Error(err, "restapi - v1 - uploadImage")

			return errorResponse(ctx, http.StatusInternalServerError, "failed to store image")
		default:
			r.logger.Error(err, "restapi - v1 - uploadImage")

			return errorResponse(ctx, http.StatusInternalServerError, "failed to save image")
		}
	}

	return ctx.Status(http.StatusCreated).JSON(response.Image{
		Message: "Image uploaded successfully",
		Image:   image,
	})
}

// @Summary 	List approved images
// @Description Approved images, newest first
// @Tags 		images
// @Produce 	json
// @Success 	200 {array}  entity.Image
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/api/images/approved [get]
func (r *V1) listApproved(ctx *fiber.Ctx) error {
	images, err := r.mod.ListApproved(ctx.UserContext())
	if err != nil {
		r.logger.Error(err, "restapi - v1 - listApproved")

		return errorResponse(ctx, http.StatusInternalServerError, "failed to load images")
	}

	return ctx.Status(http.StatusOK).JSON(nonNil(images))
}

// @Summary 	List pending images
// @Description Images waiting for moderation, newest first
// @Tags 		images
// @Produce 	json
// @Success 	200 {array}  entity.Image
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/api/images/unapproved [get]
func (r *V1) listPending(ctx *fiber.Ctx) error {
	images, err := r.mod.ListPending(ctx.UserContext())
	if err != nil {
		r.logger.Error(err, "restapi - v1 - listPending")

		return errorResponse(ctx, http.StatusInternalServerError, "failed to load images")
	}

	return ctx.Status(http.StatusOK).JSON(nonNil(images))
}

// @Summary 	Approve image
// @Description Marks the image approved and notifies viewers. Approving twice succeeds.
// @Tags 		images
// @Produce 	json
// @Param 		id path string true "Image ID"
// @Success 	200 {object} response.Image
// @Failure 	404 {object} response.Error "Image not found"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/api/images/{id}/approve [put]
func (r *V1) approveImage(ctx *fiber.Ctx) error {
	image, err := r.mod.Approve(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return errorResponse(ctx, http.StatusNotFound, "image not found")
		}
		r.logger.Error(err, "restapi - v1 - approveImage")

		return errorResponse(ctx, http.StatusInternalServerError, "failed to approve image")
	}

	return ctx.Status(http.StatusOK).JSON(response.Image{
		Message: "Image approved successfully",
		Image:   image,
	})
}

// @Summary 	Delete image
// @Description Removes the stored file, then the record, and notifies viewers
// @Tags 		images
// @Produce 	json
// @Param		id 	path	 string true "Image ID"
// @Success		200 {object} response.Message
// @Failure 	404 {object} response.Error "Image not found"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/api/images/{id} [delete]
func (r *V1) deleteImage(ctx *fiber.Ctx) error {
	err := r.mod.Delete(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return errorResponse(ctx, http.StatusNotFound, "image not found")
		}
		r.logger.Error(err, "restapi - v1 - deleteImage")

		return errorResponse(ctx, http.StatusInternalServerError, "failed to delete image")
	}

	return ctx.Status(http.StatusOK).JSON(response.Message{Message: "Image deleted successfully"})
}

func nonNil(images []*entity.Image) []*entity.Image {
	if images == nil {
		return []*entity.Image{}
	}
	return images
}
