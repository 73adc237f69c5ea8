// Package catalog derives the browse view of the deal catalog.
package catalog

import (
	"math"
	"slices"
	"strings"

	"dealforge/internal/domain"
)

// DefaultMaxPrice is the upper bound of the price slider.
const DefaultMaxPrice = 500

type SortKey string

const (
	SortFeatured   SortKey = "featured"
	SortPriceLow   SortKey = "price-low"
	SortPriceHigh  SortKey = "price-high"
	SortDiscount   SortKey = "discount"
	SortRating     SortKey = "rating"
	SortEndingSoon SortKey = "ending-soon"
)

var SortKeys = []SortKey{SortFeatured, SortPriceLow, SortPriceHigh, SortDiscount, SortRating, SortEndingSoon}

// ParseSort maps a raw sort parameter to a key; anything unknown is featured order.
func ParseSort(s string) SortKey {
	k := SortKey(strings.TrimSpace(s))
	if slices.Contains(SortKeys, k) {
		return k
	}
	return SortFeatured
}

type Filter struct {
	Query       string     `json:"query,omitempty"`
	Categories  []string   `json:"categories,omitempty"`
	PriceRange  [2]float64 `json:"priceRange"`
	MinRating   float64    `json:"minRating,omitempty"`
	MinDiscount int        `json:"minDiscount,omitempty"`
}

func DefaultFilter() Filter {
	return Filter{PriceRange: [2]float64{0, DefaultMaxPrice}}
}

// Active counts the criteria that narrow the catalog, the way the sidebar badge does.
func (f Filter) Active() int {
	n := len(f.Categories)
	if f.MinRating > 0 {
		n++
	}
	if f.MinDiscount > 0 {
		n++
	}
	if f.PriceRange[0] > 0 || f.PriceRange[1] < DefaultMaxPrice {
		n++
	}
	return n
}

// Discount is the rounded percentage off the original price. Deals without a positive
// original price have no discount.
func Discount(originalPrice, salePrice float64) int {
	r := discountRatio(originalPrice, salePrice)
	return int(math.Floor(r*100 + 0.5))
}

func discountRatio(originalPrice, salePrice float64) float64 {
	if originalPrice <= 0 || math.IsNaN(originalPrice) || math.IsNaN(salePrice) {
		return 0
	}
	return (originalPrice - salePrice) / originalPrice
}

// Apply filters deals by f and orders them by key. The input slice is left untouched.
func Apply(deals []domain.Deal, f Filter, key SortKey) []domain.Deal {
	out := make([]domain.Deal, 0, len(deals))
	q := strings.ToLower(strings.TrimSpace(f.Query))

	work := deals
	if q != "" {
		work = keep(work, func(d domain.Deal) bool { return matchesQuery(d, q) })
	}
	if len(f.Categories) > 0 {
		work = keep(work, func(d domain.Deal) bool { return slices.Contains(f.Categories, d.Category) })
	}
	work = keep(work, func(d domain.Deal) bool {
		return d.SalePrice >= f.PriceRange[0] && d.SalePrice <= f.PriceRange[1]
	})
	if f.MinRating > 0 {
		work = keep(work, func(d domain.Deal) bool { return d.Rating >= f.MinRating })
	}
	if f.MinDiscount > 0 {
		work = keep(work, func(d domain.Deal) bool {
			return Discount(d.OriginalPrice, d.SalePrice) >= f.MinDiscount
		})
	}
	out = append(out, work...)

	switch key {
	case SortPriceLow:
		slices.SortStableFunc(out, func(a, b domain.Deal) int { return cmpFloat(a.SalePrice, b.SalePrice) })
	case SortPriceHigh:
		slices.SortStableFunc(out, func(a, b domain.Deal) int { return cmpFloat(b.SalePrice, a.SalePrice) })
	case SortDiscount:
		slices.SortStableFunc(out, func(a, b domain.Deal) int {
			return cmpFloat(discountRatio(b.OriginalPrice, b.SalePrice), discountRatio(a.OriginalPrice, a.SalePrice))
		})
	case SortRating:
		slices.SortStableFunc(out, func(a, b domain.Deal) int { return cmpFloat(b.Rating, a.Rating) })
	case SortEndingSoon:
		slices.SortStableFunc(out, func(a, b domain.Deal) int { return a.EndDate.Compare(b.EndDate) })
	}
	return out
}

func keep(in []domain.Deal, pred func(domain.Deal) bool) []domain.Deal {
	var out []domain.Deal
	for _, d := range in {
		if pred(d) {
			out = append(out, d)
		}
	}
	return out
}

func matchesQuery(d domain.Deal, q string) bool {
	if strings.Contains(strings.ToLower(d.Title), q) ||
		strings.Contains(strings.ToLower(d.Description), q) ||
		strings.Contains(strings.ToLower(d.Vendor), q) {
		return true
	}
	for _, t := range d.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
