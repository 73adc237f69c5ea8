package services

import (
	"context"
	"strings"
	"time"

	"dealforge/internal/dataset"
	"dealforge/internal/domain"
)

const (
	DealsKey   = "dealforge-deals"
	ReviewsKey = "dealforge-reviews"

	featuredLimit = 6
)

// DealService is the deal half of the catalog store.
type DealService struct {
	Latency Latency
	Now     func() time.Time

	deals *collection[domain.Deal]
}

func NewDealService(store Storage, lat Latency) *DealService {
	return &DealService{
		Latency: lat,
		Now:     time.Now,
		deals: &collection[domain.Deal]{
			store:    store,
			key:      DealsKey,
			name:     "deal",
			fallback: dataset.LoadDeals,
			idOf:     func(d domain.Deal) int { return d.ID },
			setID:    func(d *domain.Deal, id int) { d.ID = id },
			clone:    domain.Deal.Clone,
		},
	}
}

func (s *DealService) GetAll(ctx context.Context) ([]domain.Deal, error) {
	if err := s.Latency.Wait(ctx, 300*time.Millisecond); err != nil {
		return nil, err
	}
	return s.deals.all(ctx)
}

func (s *DealService) GetByID(ctx context.Context, id int) (domain.Deal, error) {
	if err := s.Latency.Wait(ctx, 200*time.Millisecond); err != nil {
		return domain.Deal{}, err
	}
	return s.deals.find(ctx, id)
}

// GetFeatured returns at most six featured deals in catalog order.
func (s *DealService) GetFeatured(ctx context.Context) ([]domain.Deal, error) {
	if err := s.Latency.Wait(ctx, 250*time.Millisecond); err != nil {
		return nil, err
	}
	out, err := s.deals.where(ctx, func(d domain.Deal) bool { return d.Featured })
	if err != nil {
		return nil, err
	}
	if len(out) > featuredLimit {
		out = out[:featuredLimit]
	}
	return out, nil
}

// GetByCategory matches the category name case-insensitively.
func (s *DealService) GetByCategory(ctx context.Context, category string) ([]domain.Deal, error) {
	if err := s.Latency.Wait(ctx, 300*time.Millisecond); err != nil {
		return nil, err
	}
	return s.deals.where(ctx, func(d domain.Deal) bool {
		return strings.EqualFold(d.Category, category)
	})
}

type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Categories lists every known category with its deal count, including empty ones.
func (s *DealService) Categories(ctx context.Context) ([]CategoryCount, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, d := range all {
		counts[d.Category]++
	}
	out := make([]CategoryCount, 0, len(dataset.Categories))
	for _, name := range dataset.Categories {
		out = append(out, CategoryCount{Name: name, Count: counts[name]})
	}
	return out, nil
}

func (s *DealService) Create(ctx context.Context, d domain.Deal) (domain.Deal, error) {
	if err := s.Latency.Wait(ctx, 400*time.Millisecond); err != nil {
		return domain.Deal{}, err
	}
	if err := d.Validate(); err != nil {
		return domain.Deal{}, err
	}
	now := s.Now().UTC()
	d.CreatedAt = &now
	return s.deals.create(ctx, d)
}

// Update applies a partial JSON document. Fields absent from patch keep their value.
func (s *DealService) Update(ctx context.Context, id int, patch []byte) (domain.Deal, error) {
	if err := s.Latency.Wait(ctx, 350*time.Millisecond); err != nil {
		return domain.Deal{}, err
	}
	return s.deals.update(ctx, id, patch, domain.Deal.Validate)
}

func (s *DealService) Delete(ctx context.Context, id int) error {
	if err := s.Latency.Wait(ctx, 300*time.Millisecond); err != nil {
		return err
	}
	return s.deals.remove(ctx, id)
}

// ReviewService is the review half of the catalog store.
type ReviewService struct {
	Latency Latency
	Now     func() time.Time

	reviews *collection[domain.Review]
}

func NewReviewService(store Storage, lat Latency) *ReviewService {
	return &ReviewService{
		Latency: lat,
		Now:     time.Now,
		reviews: &collection[domain.Review]{
			store:    store,
			key:      ReviewsKey,
			name:     "review",
			fallback: dataset.LoadReviews,
			idOf:     func(r domain.Review) int { return r.ID },
			setID:    func(r *domain.Review, id int) { r.ID = id },
			clone:    domain.Review.Clone,
		},
	}
}

func (s *ReviewService) GetAll(ctx context.Context) ([]domain.Review, error) {
	if err := s.Latency.Wait(ctx, 200*time.Millisecond); err != nil {
		return nil, err
	}
	return s.reviews.all(ctx)
}

func (s *ReviewService) GetByID(ctx context.Context, id int) (domain.Review, error) {
	if err := s.Latency.Wait(ctx, 150*time.Millisecond); err != nil {
		return domain.Review{}, err
	}
	return s.reviews.find(ctx, id)
}

func (s *ReviewService) GetByDealID(ctx context.Context, dealID int) ([]domain.Review, error) {
	if err := s.Latency.Wait(ctx, 200*time.Millisecond); err != nil {
		return nil, err
	}
	return s.reviews.where(ctx, func(r domain.Review) bool { return r.DealID == dealID })
}

// Create stamps the review with the current time.
func (s *ReviewService) Create(ctx context.Context, r domain.Review) (domain.Review, error) {
	if err := s.Latency.Wait(ctx, 300*time.Millisecond); err != nil {
		return domain.Review{}, err
	}
	if err := r.Validate(); err != nil {
		return domain.Review{}, err
	}
	r.Date = s.Now().UTC()
	return s.reviews.create(ctx, r)
}

func (s *ReviewService) Update(ctx context.Context, id int, patch []byte) (domain.Review, error) {
	if err := s.Latency.Wait(ctx, 250*time.Millisecond); err != nil {
		return domain.Review{}, err
	}
	return s.reviews.update(ctx, id, patch, domain.Review.Validate)
}

func (s *ReviewService) Delete(ctx context.Context, id int) error {
	if err := s.Latency.Wait(ctx, 200*time.Millisecond); err != nil {
		return err
	}
	return s.reviews.remove(ctx, id)
}
