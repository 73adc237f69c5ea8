package validate

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"dealforge/internal/catalog"
	"dealforge/internal/dataset"
	"dealforge/internal/domain"
)

var (
	reQ  = regexp.MustCompile(`^[\p{L}\p{N} _'&.+#-]{1,50}$`)
	reID = regexp.MustCompile(`^[0-9]{1,9}$`)
)

// Q validates a search query: trims, enforces allowed characters and max length
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if r := []rune(s); len(r) > 50 {
		s = string(r[:50])
	}
	return s, reQ.MatchString(s)
}

func Qty(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	if n > 99 {
		return 99
	} // clamp to avoid abuse
	return n
}

// NewQty parses the target quantity of an update. Zero and below mean "remove".
func NewQty(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return min(max(n, 0), 99), true
}

// ID validates a numeric deal or review id.
func ID(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if !reID.MatchString(s) {
		return 0, false
	}
	n, _ := strconv.Atoi(s)
	return n, n > 0
}

// Tier accepts the known license tiers; empty means the default tier.
func Tier(s string) (domain.Tier, bool) {
	t := domain.Tier(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return domain.TierSingle, true
	}
	return t, t.Valid()
}

// Categories keeps the known category names, matched case-insensitively, in canonical spelling.
func Categories(raw []string) []string {
	var out []string
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			part = strings.TrimSpace(part)
			i := slices.IndexFunc(dataset.Categories, func(c string) bool { return strings.EqualFold(c, part) })
			if i >= 0 && !slices.Contains(out, dataset.Categories[i]) {
				out = append(out, dataset.Categories[i])
			}
		}
	}
	return out
}

// Number parses a non-negative float, returning def for anything else.
func Number(s string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 || f != f {
		return def
	}
	return f
}

// Filter assembles a filter from browse query parameters. Bad numeric and category
// values fall back to the defaults; a non-empty search that Q rejects reports false.
func Filter(search string, categories []string, minPrice, maxPrice, minRating, minDiscount string) (catalog.Filter, bool) {
	f := catalog.DefaultFilter()
	if strings.TrimSpace(search) != "" {
		q, ok := Q(search)
		if !ok {
			return f, false
		}
		f.Query = q
	}
	f.Categories = Categories(categories)
	f.PriceRange[0] = Number(minPrice, f.PriceRange[0])
	f.PriceRange[1] = Number(maxPrice, f.PriceRange[1])
	if f.PriceRange[0] > f.PriceRange[1] {
		f.PriceRange[0], f.PriceRange[1] = f.PriceRange[1], f.PriceRange[0]
	}
	f.MinRating = min(Number(minRating, 0), 5)
	f.MinDiscount = int(min(Number(minDiscount, 0), 100))
	return f, true
}
