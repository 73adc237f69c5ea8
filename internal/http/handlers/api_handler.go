package handlers

import (
	"github.com/gofiber/fiber/v2"

	"dealforge/internal/cart"
	"dealforge/internal/catalog"
	"dealforge/internal/domain"
	"dealforge/internal/log"
	"dealforge/internal/services"
	"dealforge/internal/validate"
)

// APIHandler serves the JSON surface under /api/v1.
type APIHandler struct {
	Deals   *services.DealService
	Reviews *services.ReviewService
	Cart    *services.CartService
	Browse  *services.BrowseService
}

func apiError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// GET /api/v1/deals accepts the same filters as /browse.
func (h *APIHandler) ListDeals(c *fiber.Ctx) error {
	q, ok := queryFrom(c)
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "enter a valid keyword (letters/numbers only)")
	}
	all, err := h.Deals.GetAll(c.UserContext())
	if err != nil {
		log.Error(c, "api.deals.fail", err, nil)
		return apiError(c, fiber.StatusInternalServerError, "could not load deals")
	}
	deals := catalog.Apply(all, q.Filter, q.Sort)
	return c.JSON(fiber.Map{"deals": deals, "total": len(deals)})
}

func (h *APIHandler) Featured(c *fiber.Ctx) error {
	deals, err := h.Deals.GetFeatured(c.UserContext())
	if err != nil {
		log.Error(c, "api.featured.fail", err, nil)
		return apiError(c, fiber.StatusInternalServerError, "could not load deals")
	}
	return c.JSON(fiber.Map{"deals": deals})
}

func (h *APIHandler) Categories(c *fiber.Ctx) error {
	cats, err := h.Deals.Categories(c.UserContext())
	if err != nil {
		log.Error(c, "api.categories.fail", err, nil)
		return apiError(c, fiber.StatusInternalServerError, "could not load categories")
	}
	return c.JSON(fiber.Map{"categories": cats})
}

func (h *APIHandler) GetDeal(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return apiError(c, fiber.StatusNotFound, "deal not found")
	}
	d, err := h.Deals.GetByID(c.UserContext(), id)
	if err != nil {
		if st := statusOf(err); st != fiber.StatusInternalServerError {
			return apiError(c, st, "deal not found")
		}
		log.Error(c, "api.deal.fail", err, map[string]any{"deal_id": id})
		return apiError(c, fiber.StatusInternalServerError, "could not load deal")
	}
	return c.JSON(d)
}

func (h *APIHandler) DealReviews(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return apiError(c, fiber.StatusNotFound, "deal not found")
	}
	rs, err := h.Reviews.GetByDealID(c.UserContext(), id)
	if err != nil {
		log.Error(c, "api.reviews.fail", err, map[string]any{"deal_id": id})
		return apiError(c, fiber.StatusInternalServerError, "could not load reviews")
	}
	return c.JSON(fiber.Map{"reviews": rs})
}

type cartItemReq struct {
	DealID   int    `json:"dealId"`
	Quantity int    `json:"quantity"`
	Tier     string `json:"tier"`
}

type cartResp struct {
	Notice *cart.Notice `json:"notice,omitempty"`
	Count  int          `json:"count"`
}

func (h *APIHandler) respond(c *fiber.Ctx, e *cart.Engine, n cart.Notice) error {
	out := cartResp{Count: e.Count()}
	if n.Message != "" {
		out.Notice = &n
	}
	return c.JSON(out)
}

// parseItem decodes a cart item body. A non-empty problem is the client-facing reason
// for rejecting it.
func (h *APIHandler) parseItem(c *fiber.Ctx) (req cartItemReq, tier domain.Tier, problem string) {
	if err := c.BodyParser(&req); err != nil {
		return req, "", "invalid body"
	}
	if req.DealID <= 0 {
		log.Security(c, "validation.fail", map[string]any{"field": "dealId"})
		return req, "", "missing dealId"
	}
	tier, ok := validate.Tier(req.Tier)
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "tier"})
		return req, "", "unknown license tier"
	}
	return req, tier, ""
}

func (h *APIHandler) ViewCart(c *fiber.Ctx) error {
	cv, err := h.Cart.View(c.UserContext(), ensureSID(c))
	if err != nil {
		log.Error(c, "api.cart.view.fail", err, nil)
		return apiError(c, fiber.StatusInternalServerError, "could not load cart")
	}
	return c.JSON(cv)
}

// sessionCart loads the session's engine, answering 503 itself when it cannot.
func (h *APIHandler) sessionCart(c *fiber.Ctx) (*cart.Engine, bool) {
	e, err := h.Cart.Cart(c.UserContext(), ensureSID(c))
	if err != nil {
		log.Error(c, "api.cart.load.fail", err, nil)
		_ = apiError(c, fiber.StatusServiceUnavailable, "could not load cart, retry")
		return nil, false
	}
	return e, true
}

func (h *APIHandler) CartCount(c *fiber.Ctx) error {
	e, ok := h.sessionCart(c)
	if !ok {
		return nil
	}
	return c.JSON(fiber.Map{"count": e.Count()})
}

// POST /api/v1/cart/items
func (h *APIHandler) AddItem(c *fiber.Ctx) error {
	e, ok := h.sessionCart(c)
	if !ok {
		return nil
	}
	req, tier, problem := h.parseItem(c)
	if problem != "" {
		return apiError(c, fiber.StatusBadRequest, problem)
	}
	qty := req.Quantity
	if qty > 99 {
		qty = 99
	}
	return h.respond(c, e, e.Add(c.UserContext(), req.DealID, qty, tier))
}

// PATCH /api/v1/cart/items sets the quantity; zero or less removes the line.
func (h *APIHandler) UpdateItem(c *fiber.Ctx) error {
	e, ok := h.sessionCart(c)
	if !ok {
		return nil
	}
	req, tier, problem := h.parseItem(c)
	if problem != "" {
		return apiError(c, fiber.StatusBadRequest, problem)
	}
	return h.respond(c, e, e.UpdateQuantity(c.UserContext(), req.DealID, min(req.Quantity, 99), tier))
}

// DELETE /api/v1/cart/items/:dealId removes every tier unless ?tier= names one.
func (h *APIHandler) RemoveItem(c *fiber.Ctx) error {
	e, ok := h.sessionCart(c)
	if !ok {
		return nil
	}
	id, ok := validate.ID(c.Params("dealId"))
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "missing dealId")
	}
	var tier domain.Tier
	if raw := c.Query("tier"); raw != "" {
		if tier, ok = validate.Tier(raw); !ok {
			return apiError(c, fiber.StatusBadRequest, "unknown license tier")
		}
	}
	return h.respond(c, e, e.Remove(c.UserContext(), id, tier))
}

func (h *APIHandler) ClearCart(c *fiber.Ctx) error {
	e, ok := h.sessionCart(c)
	if !ok {
		return nil
	}
	return h.respond(c, e, e.Clear(c.UserContext()))
}

// GET /api/v1/browse/last returns the session's last committed browse query as a link.
func (h *APIHandler) LastBrowse(c *fiber.Ctx) error {
	last, ok := h.Browse.Latest(ensureSID(c))
	if !ok {
		return c.JSON(fiber.Map{"url": "/browse"})
	}
	return c.JSON(fiber.Map{"url": browseURL(last.Query), "filter": last.Query.Filter, "sort": last.Query.Sort})
}
