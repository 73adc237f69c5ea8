package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"dealforge/internal/domain"
	"dealforge/internal/log"
	"dealforge/internal/services"
	"dealforge/internal/validate"
)

type CartHandler struct {
	Cart   *services.CartService
	Browse *services.BrowseService
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	sid := ensureSID(c)
	dealID, ok := validate.ID(c.FormValue("dealId"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "dealId"})
		return c.Status(400).SendString("missing dealId")
	}
	tier, ok := validate.Tier(c.FormValue("tier"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "tier"})
		return c.Status(400).SendString("unknown license tier")
	}
	qty := validate.Qty(c.FormValue("qty"))

	e, err := h.Cart.Cart(c.UserContext(), sid)
	if err != nil {
		return h.unavailable(c, err)
	}
	n := e.Add(c.UserContext(), dealID, qty, tier)
	setFlash(c, n.Message)
	return c.Redirect("/cart")
}

func (h *CartHandler) Update(c *fiber.Ctx) error {
	sid := ensureSID(c)
	dealID, ok := validate.ID(c.FormValue("dealId"))
	if !ok {
		return c.Status(400).SendString("missing dealId")
	}
	tier, ok := validate.Tier(c.FormValue("tier"))
	if !ok {
		return c.Status(400).SendString("unknown license tier")
	}
	qty, ok := validate.NewQty(c.FormValue("qty"))
	if !ok {
		return c.Status(400).SendString("invalid quantity")
	}

	e, err := h.Cart.Cart(c.UserContext(), sid)
	if err != nil {
		return h.unavailable(c, err)
	}
	n := e.UpdateQuantity(c.UserContext(), dealID, qty, tier)
	setFlash(c, n.Message)
	return c.Redirect("/cart")
}

// Remove drops one tier of a deal, or every tier when the form carries none.
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	sid := ensureSID(c)
	dealID, ok := validate.ID(c.FormValue("dealId"))
	if !ok {
		return c.Status(400).SendString("missing dealId")
	}
	var tier domain.Tier
	if raw := strings.TrimSpace(c.FormValue("tier")); raw != "" {
		if tier, ok = validate.Tier(raw); !ok {
			return c.Status(400).SendString("unknown license tier")
		}
	}

	e, err := h.Cart.Cart(c.UserContext(), sid)
	if err != nil {
		return h.unavailable(c, err)
	}
	n := e.Remove(c.UserContext(), dealID, tier)
	setFlash(c, n.Message)
	return c.Redirect("/cart")
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	sid := ensureSID(c)
	e, err := h.Cart.Cart(c.UserContext(), sid)
	if err != nil {
		return h.unavailable(c, err)
	}
	n := e.Clear(c.UserContext())
	setFlash(c, n.Message)
	return c.Redirect("/cart")
}

func (h *CartHandler) unavailable(c *fiber.Ctx, err error) error {
	log.Error(c, "cart.load.fail", err, nil)
	return c.Status(fiber.StatusServiceUnavailable).Render("notfound", fiber.Map{"Message": "Could not load your cart. Please retry.", "Retry": "/cart"})
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	sid := ensureSID(c)
	cv, err := h.Cart.View(c.UserContext(), sid)
	if err != nil {
		log.Error(c, "cart.view.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load your cart. Please retry.", "Retry": "/cart"})
	}
	back := "/browse"
	if last, ok := h.Browse.Latest(sid); ok {
		back = browseURL(last.Query)
	}
	return render(c, "cart", fiber.Map{
		"Cart":     cv,
		"Tiers":    domain.Tiers,
		"Flash":    popFlash(c),
		"Continue": back,
	})
}
