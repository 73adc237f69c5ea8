package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"dealforge/internal/domain"
	"dealforge/internal/log"
	"dealforge/internal/services"
	"dealforge/internal/validate"
)

type StatusHandler struct {
	Status *services.StatusService
}

func (h *StatusHandler) Check(c *fiber.Ctx) error {
	dealID, ok := validate.ID(c.Query("dealId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing or invalid dealId",
		})
	}

	st, err := h.Status.Status(c.UserContext(), dealID, time.Now())
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "deal not found"})
	}
	if err != nil {
		log.Error(c, "availability.fail", err, map[string]any{"deal_id": dealID})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not check this deal"})
	}
	return c.JSON(st)
}
