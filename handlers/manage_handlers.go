package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/columnfella/Transcripting-webapp/models"
	"github.com/columnfella/Transcripting-webapp/store"
	"github.com/columnfella/Transcripting-webapp/utils"
)

// EditTitleRequest is the payload for renaming a video.
type EditTitleRequest struct {
	ID    string `json:"id" validate:"required"`
	Title string `json:"title" validate:"required"`
}

// EditVideoTitle updates one record's title.
func (h *ApplicationHandler) EditVideoTitle(c *fiber.Ctx) error {
	payload := new(EditTitleRequest)
	if err := c.BodyParser(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
	}
	if err := validate.Struct(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest,
			"Missing id or title: "+strings.Join(utils.FormatValidationErrors(err), "; "))
	}

	err := h.Store.Update(payload.ID, func(rec *models.VideoRecord) {
		rec.Title = payload.Title
	})
	if err != nil {
		return h.respondStoreError(c, payload.ID, err)
	}
	h.Log.Infof("Title updated for video %s: %q", payload.ID, payload.Title)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Title updated successfully"})
}

// DeleteVideo removes one record and its artifacts.
func (h *ApplicationHandler) DeleteVideo(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Deleter.DeleteOne(id); err != nil {
		return h.respondStoreError(c, id, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": fmt.Sprintf("Deleted video %s successfully (including thumbnail and PDF).", id),
	})
}

// BatchDeleteRequest is the payload for deleting several videos at once.
type BatchDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

// DeleteVideoBatch deletes each requested id independently and reports the
// per-id failures without aborting the batch.
func (h *ApplicationHandler) DeleteVideoBatch(c *fiber.Ctx) error {
	payload := new(BatchDeleteRequest)
	if err := c.BodyParser(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
	}
	if err := validate.Struct(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest,
			strings.Join(utils.FormatValidationErrors(err), "; "))
	}

	deleted, failures := h.Deleter.DeleteMany(payload.IDs)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":  fmt.Sprintf("Successfully deleted %d video(s).", deleted),
		"deleted":  deleted,
		"failures": failures,
	})
}

// respondStoreError maps store errors onto HTTP statuses, keeping not-found
// distinct from generic failures.
func (h *ApplicationHandler) respondStoreError(c *fiber.Ctx, id string, err error) error {
	if errors.Is(err, store.ErrVideoNotFound) {
		h.Log.Warnf("Video not found: %s", id)
		return utils.RespondWithError(c, fiber.StatusNotFound, "Video not found")
	}
	h.Log.Errorf("Store operation failed for video %s: %v", id, err)
	return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
}
