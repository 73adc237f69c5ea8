package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"dealforge/internal/catalog"
	"dealforge/internal/domain"
)

type TierPrice struct {
	Tier          domain.Tier     `json:"tier"`
	Label         string          `json:"label"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	Savings       decimal.Decimal `json:"savings"`
}

type Detail struct {
	Deal     domain.Deal       `json:"deal"`
	Reviews  []domain.Review   `json:"reviews"`
	Tiers    []TierPrice       `json:"tiers"`
	Discount int               `json:"discount"`
	Savings  decimal.Decimal   `json:"savings"`
	Status   domain.DealStatus `json:"status"`
}

// DetailService assembles everything the deal page shows.
type DetailService struct {
	Deals   *DealService
	Reviews *ReviewService
	Now     func() time.Time
}

func NewDetailService(deals *DealService, reviews *ReviewService) *DetailService {
	return &DetailService{Deals: deals, Reviews: reviews, Now: time.Now}
}

// Load fetches the deal and its reviews concurrently.
func (s *DetailService) Load(ctx context.Context, id int) (Detail, error) {
	var (
		deal    domain.Deal
		reviews []domain.Review
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		deal, err = s.Deals.GetByID(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		reviews, err = s.Reviews.GetByDealID(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return Detail{}, err
	}

	sale := decimal.NewFromFloat(deal.SalePrice)
	orig := decimal.NewFromFloat(deal.OriginalPrice)
	d := Detail{
		Deal:     deal,
		Reviews:  reviews,
		Discount: catalog.Discount(deal.OriginalPrice, deal.SalePrice),
		Savings:  orig.Sub(sale),
		Status:   TimeUntil(deal.EndDate, s.Now()),
	}
	for _, t := range domain.Tiers {
		m := decimal.NewFromInt(int64(t.Multiplier()))
		d.Tiers = append(d.Tiers, TierPrice{
			Tier:          t,
			Label:         t.Label(),
			Price:         sale.Mul(m),
			OriginalPrice: orig.Mul(m),
			Savings:       orig.Sub(sale).Mul(m),
		})
	}
	return d, nil
}
