package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/columnfella/Transcripting-webapp/report"
	"github.com/columnfella/Transcripting-webapp/utils"
)

// IntervalReportRequest is the payload for an interval-scoped report.
// Pointers distinguish an absent field from a zero value.
type IntervalReportRequest struct {
	Start *float64 `json:"start" validate:"required"`
	End   *float64 `json:"end" validate:"required"`
}

// GenerateIntervalReport renders a PDF covering an arbitrary [start, end]
// interval of one video's transcript.
func (h *ApplicationHandler) GenerateIntervalReport(c *fiber.Ctx) error {
	id := c.Params("id")

	payload := new(IntervalReportRequest)
	if err := c.BodyParser(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
	}
	if err := validate.Struct(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest,
			"Missing start or end: "+strings.Join(utils.FormatValidationErrors(err), "; "))
	}

	rec, err := h.Store.Find(id)
	if err != nil {
		return h.respondStoreError(c, id, err)
	}

	pdfName, err := h.Reports.RenderRange(rec, *payload.Start, *payload.End)
	if err != nil {
		if errors.Is(err, report.ErrInvalidRange) || errors.Is(err, report.ErrNoWords) {
			return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
		}
		h.Log.Errorf("Interval report failed for video %s: %v", id, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}

	h.Log.Infof("Interval report generated for video %s (%.0f-%.0fs): %s", id, *payload.Start, *payload.End, pdfName)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"pdffile": pdfName})
}
