package handlers

import (
	"github.com/gofiber/fiber/v2"

	"dealforge/internal/domain"
	applog "dealforge/internal/log"
	"dealforge/internal/services"
	"dealforge/internal/validate"
)

// AdminHandler maintains the catalog through the token-guarded JSON API.
type AdminHandler struct {
	Deals   *services.DealService
	Reviews *services.ReviewService
}

func (h *AdminHandler) fail(c *fiber.Ctx, action string, err error, fields map[string]any) error {
	st := statusOf(err)
	if st == fiber.StatusInternalServerError {
		applog.Error(c, action, err, fields)
		return apiError(c, st, "could not save changes")
	}
	return apiError(c, st, err.Error())
}

// POST /api/v1/admin/deals
func (h *AdminHandler) CreateDeal(c *fiber.Ctx) error {
	var d domain.Deal
	if err := c.BodyParser(&d); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid body")
	}
	d, err := h.Deals.Create(c.UserContext(), d)
	if err != nil {
		return h.fail(c, "admin.deals.create.fail", err, nil)
	}
	applog.Audit(c, "admin.deals.create", map[string]any{"deal_id": d.ID})
	return c.Status(fiber.StatusCreated).JSON(d)
}

// PATCH /api/v1/admin/deals/:id
func (h *AdminHandler) UpdateDeal(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return apiError(c, fiber.StatusNotFound, "deal not found")
	}
	d, err := h.Deals.Update(c.UserContext(), id, c.Body())
	if err != nil {
		return h.fail(c, "admin.deals.update.fail", err, map[string]any{"deal_id": id})
	}
	applog.Audit(c, "admin.deals.update", map[string]any{"deal_id": id})
	return c.JSON(d)
}

// DELETE /api/v1/admin/deals/:id
func (h *AdminHandler) DeleteDeal(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return apiError(c, fiber.StatusNotFound, "deal not found")
	}
	if err := h.Deals.Delete(c.UserContext(), id); err != nil {
		return h.fail(c, "admin.deals.delete.fail", err, map[string]any{"deal_id": id})
	}
	applog.Audit(c, "admin.deals.delete", map[string]any{"deal_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

// POST /api/v1/admin/reviews
func (h *AdminHandler) CreateReview(c *fiber.Ctx) error {
	var r domain.Review
	if err := c.BodyParser(&r); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid body")
	}
	if _, err := h.Deals.GetByID(c.UserContext(), r.DealID); err != nil {
		if statusOf(err) == fiber.StatusNotFound {
			return apiError(c, fiber.StatusBadRequest, "review points at an unknown deal")
		}
		return h.fail(c, "admin.reviews.create.fail", err, nil)
	}
	r, err := h.Reviews.Create(c.UserContext(), r)
	if err != nil {
		return h.fail(c, "admin.reviews.create.fail", err, nil)
	}
	applog.Audit(c, "admin.reviews.create", map[string]any{"review_id": r.ID, "deal_id": r.DealID})
	return c.Status(fiber.StatusCreated).JSON(r)
}

// PATCH /api/v1/admin/reviews/:id
func (h *AdminHandler) UpdateReview(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return apiError(c, fiber.StatusNotFound, "review not found")
	}
	r, err := h.Reviews.Update(c.UserContext(), id, c.Body())
	if err != nil {
		return h.fail(c, "admin.reviews.update.fail", err, map[string]any{"review_id": id})
	}
	applog.Audit(c, "admin.reviews.update", map[string]any{"review_id": id})
	return c.JSON(r)
}

// DELETE /api/v1/admin/reviews/:id
func (h *AdminHandler) DeleteReview(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return apiError(c, fiber.StatusNotFound, "review not found")
	}
	if err := h.Reviews.Delete(c.UserContext(), id); err != nil {
		return h.fail(c, "admin.reviews.delete.fail", err, map[string]any{"review_id": id})
	}
	applog.Audit(c, "admin.reviews.delete", map[string]any{"review_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}
