package handlers

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"dealforge/internal/browse"
	"dealforge/internal/catalog"
	"dealforge/internal/dataset"
	"dealforge/internal/log"
	"dealforge/internal/services"
	"dealforge/internal/validate"
)

type BrowseHandler struct {
	Browse *services.BrowseService
}

// queryFrom reads the browse filters. The category parameter may repeat or hold a
// comma-separated list. It reports false when the search text is not acceptable.
func queryFrom(c *fiber.Ctx) (services.Query, bool) {
	var cats []string
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		if string(k) == "category" {
			cats = append(cats, string(v))
		}
	})
	f, ok := validate.Filter(c.Query("search"), cats, c.Query("min_price"), c.Query("max_price"),
		c.Query("min_rating"), c.Query("min_discount"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "search"})
	}
	return services.Query{Filter: f, Sort: catalog.ParseSort(c.Query("sort"))}, ok
}

// browseURL rebuilds the /browse link for a query.
func browseURL(q services.Query) string {
	v := url.Values{}
	f := q.Filter
	if f.Query != "" {
		v.Set("search", f.Query)
	}
	for _, cat := range f.Categories {
		v.Add("category", cat)
	}
	def := catalog.DefaultFilter()
	if f.PriceRange[0] != def.PriceRange[0] {
		v.Set("min_price", strconv.FormatFloat(f.PriceRange[0], 'f', -1, 64))
	}
	if f.PriceRange[1] != def.PriceRange[1] {
		v.Set("max_price", strconv.FormatFloat(f.PriceRange[1], 'f', -1, 64))
	}
	if f.MinRating > 0 {
		v.Set("min_rating", strconv.FormatFloat(f.MinRating, 'f', -1, 64))
	}
	if f.MinDiscount > 0 {
		v.Set("min_discount", strconv.Itoa(f.MinDiscount))
	}
	if q.Sort != "" && q.Sort != catalog.SortFeatured {
		v.Set("sort", string(q.Sort))
	}
	if len(v) == 0 {
		return "/browse"
	}
	return "/browse?" + v.Encode()
}

func (h *BrowseHandler) Page(c *fiber.Ctx) error {
	sid := ensureSID(c)
	q, ok := queryFrom(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).Render("notfound", fiber.Map{
			"Message": "Enter a valid keyword (letters/numbers only)", "Retry": "/browse",
		})
	}

	res, err := h.Browse.Browse(c.UserContext(), sid, q)
	if errors.Is(err, browse.ErrSuperseded) {
		c.Set("X-Browse-Superseded", "1")
		err = nil
	}
	if err != nil {
		log.Error(c, "browse.error", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load deals. Please retry.", "Retry": c.OriginalURL()})
	}

	selected := map[string]bool{}
	for _, cat := range res.Query.Filter.Categories {
		selected[cat] = true
	}
	return render(c, "browse", fiber.Map{
		"Deals":      res.Deals,
		"Total":      res.Total,
		"Filter":     res.Query.Filter,
		"Sort":       string(res.Query.Sort),
		"SortKeys":   catalog.SortKeys,
		"Categories": dataset.Categories,
		"Selected":   selected,
		"Active":     res.Query.Filter.Active(),
	})
}
