// Package dataset ships the default catalog used when nothing has been stored yet.
package dataset

import (
	_ "embed"
	"encoding/json"

	"github.com/pkg/errors"

	"dealforge/internal/domain"
)

//go:embed deals.json
var dealsJSON []byte

//go:embed reviews.json
var reviewsJSON []byte

func LoadDeals() ([]domain.Deal, error) {
	var out []domain.Deal
	if err := json.Unmarshal(dealsJSON, &out); err != nil {
		return nil, errors.Wrap(err, "decode bundled deals")
	}
	return out, nil
}

func LoadReviews() ([]domain.Review, error) {
	var out []domain.Review
	if err := json.Unmarshal(reviewsJSON, &out); err != nil {
		return nil, errors.Wrap(err, "decode bundled reviews")
	}
	return out, nil
}

// Categories is the fixed set of catalog categories in display order.
var Categories = []string{"Marketing", "Productivity", "Design", "Development", "Analytics", "Communication"}
