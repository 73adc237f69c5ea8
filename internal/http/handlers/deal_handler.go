package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"dealforge/internal/domain"
	"dealforge/internal/log"
	"dealforge/internal/services"
	"dealforge/internal/validate"
)

type DealHandler struct {
	Details *services.DetailService
}

func (h *DealHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "deal"})
		return notFound(c, "This deal is no longer available")
	}
	d, err := h.Details.Load(c.UserContext(), id)
	if errors.Is(err, domain.ErrNotFound) {
		return notFound(c, "This deal is no longer available")
	}
	if err != nil {
		log.Error(c, "deal.load.fail", err, map[string]any{"deal_id": id})
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load this deal. Please retry.", "Retry": c.OriginalURL()})
	}
	return render(c, "deal", fiber.Map{"D": d, "Tiers": d.Tiers})
}
