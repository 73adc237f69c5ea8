package handlers

import (
	"errors"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"dealforge/internal/domain"
)

const (
	sidCookie   = "sid"
	flashCookie = "flash"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if n, ok := c.Locals("cartCount").(int); ok {
		data["CartCount"] = n
	}
	// Pick up the token the CSRF middleware put into Locals
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	if tok != "" {
		data["CSRFToken"] = tok
	}
	return c.Render(tmpl, data)
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": msg, "Retry": c.OriginalURL()})
}

// ensureSID returns the browser session id, issuing a cookie on first contact.
func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies(sidCookie)
	if !validSID(sid) {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{Name: sidCookie, Value: sid, Path: "/", HTTPOnly: true, SameSite: "Lax"})
	}
	return sid
}

func validSID(sid string) bool {
	_, err := uuid.Parse(sid)
	return err == nil
}

func setFlash(c *fiber.Ctx, msg string) {
	if msg == "" {
		return
	}
	c.Cookie(&fiber.Cookie{Name: flashCookie, Value: url.QueryEscape(msg), Path: "/", HTTPOnly: true})
}

func popFlash(c *fiber.Ctx) string {
	raw := c.Cookies(flashCookie)
	if raw == "" {
		return ""
	}
	c.Cookie(&fiber.Cookie{Name: flashCookie, Path: "/", HTTPOnly: true, Expires: time.Now().Add(-time.Hour)})
	msg, err := url.QueryUnescape(raw)
	if err != nil {
		return ""
	}
	return msg
}

// statusOf maps service errors onto HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrInvalid):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
