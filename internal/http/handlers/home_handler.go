package handlers

import (
	"github.com/gofiber/fiber/v2"

	"dealforge/internal/log"
	"dealforge/internal/services"
)

type HomeHandler struct {
	Deals *services.DealService
}

func (h *HomeHandler) Home(c *fiber.Ctx) error {
	featured, err := h.Deals.GetFeatured(c.UserContext())
	if err != nil {
		log.Error(c, "home.featured.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load deals. Please retry.", "Retry": "/"})
	}
	cats, err := h.Deals.Categories(c.UserContext())
	if err != nil {
		log.Error(c, "home.categories.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load deals. Please retry.", "Retry": "/"})
	}
	return render(c, "home", fiber.Map{"Featured": featured, "Categories": cats})
}
