package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/shopspring/decimal"

	"dealforge/internal/catalog"
	"dealforge/internal/config"
	applog "dealforge/internal/log"
)

func isAPI(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api/")
}

// Views loads the page templates together with the helpers they use.
func Views(dir string) *html.Engine {
	engine := html.New(dir, ".html")
	engine.AddFunc("discount", catalog.Discount)
	engine.AddFunc("money", func(v any) string {
		switch x := v.(type) {
		case decimal.Decimal:
			return x.StringFixed(2)
		case float64:
			return decimal.NewFromFloat(x).StringFixed(2)
		}
		return ""
	})
	engine.AddFunc("stars", func(r float64) string {
		n := int(r + 0.5)
		return strings.Repeat("★", n) + strings.Repeat("☆", 5-min(n, 5))
	})
	return engine
}

// ErrorHandler renders a friendly page, or a JSON error under /api, without leaking internals.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Something went wrong. Please try again."
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < 500 {
		code = fe.Code
		msg = "Page not found"
	} else {
		// Log and show a friendly message
		applog.Error(c, "server.error", err, nil)
	}
	if isAPI(c) {
		return c.Status(code).JSON(fiber.Map{"error": strings.ToLower(msg)})
	}
	// Avoid leaking internals; best-effort render
	if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": msg, "Retry": c.OriginalURL()}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}

// NewApp builds the HTTP server with its middleware and every route.
func NewApp(cfg config.Config, deps *Deps) *fiber.App {
	engine := Views(cfg.TemplateDir)

	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: ErrorHandler,
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{Output: applog.Writer()}))
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        max(cfg.RateLimit, 1),
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/static/")
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.SendStatus(fiber.StatusTooManyRequests)
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		ContextKey:     "csrf",
		Next:           isAPI,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again.", "Retry": "/"})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})
	app.Use(CartCount(deps.Cart))

	app.Static("/static", "./web/static")

	// ---------- Pages ----------
	app.Get("/", deps.HomeHandler.Home)
	app.Get("/browse", limiter.New(limiter.Config{Max: 30, Expiration: time.Minute}), deps.BrowseHandler.Page)
	app.Get("/deals/:id", deps.DealHandler.Detail)

	app.Get("/cart", deps.CartHandler.View)
	app.Post("/cart", deps.CartHandler.Add)
	app.Post("/cart/update", deps.CartHandler.Update)
	app.Post("/cart/remove", deps.CartHandler.Remove)
	app.Post("/cart/clear", deps.CartHandler.Clear)

	// ---------- API ----------
	api := app.Group("/api/v1")
	availLimiter := limiter.New(limiter.Config{
		Max:        15,
		Expiration: 30 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|avail"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.availability.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	})
	api.Get("/availability", availLimiter, deps.StatusHandler.Check)

	api.Get("/deals", deps.APIHandler.ListDeals)
	api.Get("/deals/featured", deps.APIHandler.Featured)
	api.Get("/deals/:id", deps.APIHandler.GetDeal)
	api.Get("/deals/:id/reviews", deps.APIHandler.DealReviews)
	api.Get("/categories", deps.APIHandler.Categories)
	api.Get("/browse/last", deps.APIHandler.LastBrowse)

	api.Get("/cart", deps.APIHandler.ViewCart)
	api.Get("/cart/count", deps.APIHandler.CartCount)
	api.Post("/cart/items", deps.APIHandler.AddItem)
	api.Patch("/cart/items", deps.APIHandler.UpdateItem)
	api.Delete("/cart/items/:dealId", deps.APIHandler.RemoveItem)
	api.Delete("/cart", deps.APIHandler.ClearCart)

	// Admin
	admin := api.Group("/admin", RequireAdmin(deps.Admin))
	admin.Post("/deals", deps.AdminHandler.CreateDeal)
	admin.Patch("/deals/:id", deps.AdminHandler.UpdateDeal)
	admin.Delete("/deals/:id", deps.AdminHandler.DeleteDeal)
	admin.Post("/reviews", deps.AdminHandler.CreateReview)
	admin.Patch("/reviews/:id", deps.AdminHandler.UpdateReview)
	admin.Delete("/reviews/:id", deps.AdminHandler.DeleteReview)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		if isAPI(c) {
			return apiError(c, fiber.StatusNotFound, "not found")
		}
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Page not found"})
	})
	return app
}
