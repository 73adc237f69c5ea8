package handlers

import (
	"errors"

	applog "dealforge/internal/log"
	"dealforge/internal/services"

	"github.com/gofiber/fiber/v2"
)

const adminTokenHeader = "X-Admin-Token"

// RequireAdmin guards the catalog maintenance API with the bcrypt-checked admin token.
func RequireAdmin(auth *services.AdminAuth) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := auth.Check(c.Get(adminTokenHeader))
		if errors.Is(err, services.ErrAdminDisabled) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}
		if err != nil {
			applog.Security(c, "access.denied.admin", nil)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "access denied"})
		}
		return c.Next()
	}
}

// CartCount exposes the session's cart size to every rendered page.
func CartCount(carts *services.CartService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sid := c.Cookies(sidCookie); sid != "" && validSID(sid) {
			if e, err := carts.Cart(c.UserContext(), sid); err == nil {
				c.Locals("cartCount", e.Count())
			}
		}
		return c.Next()
	}
}
