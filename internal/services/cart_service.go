package services

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/shopspring/decimal"

	"dealforge/internal/cart"
	"dealforge/internal/domain"
	applog "dealforge/internal/log"
)

// MaxCachedCarts bounds the engines kept in memory. An evicted cart is restored from
// storage on its next use.
const MaxCachedCarts = 4096

// CartService keeps one cart engine per recently active browser session.
type CartService struct {
	Store    Storage
	Deals    *DealService
	Notifier cart.Notifier

	mu    sync.Mutex
	carts *lru.Cache[string, *cart.Engine]
}

func NewCartService(store Storage, deals *DealService, notifier cart.Notifier) *CartService {
	return NewCartServiceSize(store, deals, notifier, MaxCachedCarts)
}

// NewCartServiceSize is NewCartService with a custom cache bound.
func NewCartServiceSize(store Storage, deals *DealService, notifier cart.Notifier, size int) *CartService {
	carts, err := lru.New[string, *cart.Engine](max(size, 1))
	if err != nil {
		panic(err)
	}
	return &CartService{Store: store, Deals: deals, Notifier: notifier, carts: carts}
}

// CartKey is the storage key of the cart owned by session sid.
func CartKey(sid string) string { return cart.StorageKey + ":" + sid }

// Cart returns the engine for sid, restoring it from storage on first use. A restore
// interrupted by ctx is not cached.
func (s *CartService) Cart(ctx context.Context, sid string) (*cart.Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.carts.Get(sid); ok {
		return e, nil
	}
	e, err := cart.NewEngine(ctx, s.Store, CartKey(sid), s.Notifier)
	if err != nil {
		return nil, err
	}
	s.carts.Add(sid, e)
	return e, nil
}

// Cached is the number of engines currently held in memory.
func (s *CartService) Cached() int { return s.carts.Len() }

type CartLine struct {
	domain.LineItem
	Title         string          `json:"title"`
	TierLabel     string          `json:"tierLabel"`
	Image         string          `json:"image,omitempty"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	UnitOriginal  decimal.Decimal `json:"unitOriginalPrice"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	OriginalTotal decimal.Decimal `json:"originalTotal"`
	Unavailable   bool            `json:"unavailable,omitempty"`
}

type CartView struct {
	Items         []CartLine      `json:"items"`
	Count         int             `json:"count"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	OriginalTotal decimal.Decimal `json:"originalTotal"`
	Savings       decimal.Decimal `json:"savings"`
}

// View prices the session's lines against the current catalog. A line whose deal is
// gone prices at zero and is flagged unavailable.
func (s *CartService) View(ctx context.Context, sid string) (CartView, error) {
	e, err := s.Cart(ctx, sid)
	if err != nil {
		return CartView{}, err
	}
	items := e.Items()
	deals, err := s.Deals.GetAll(ctx)
	if err != nil {
		return CartView{}, err
	}
	byID := make(map[int]domain.Deal, len(deals))
	for _, d := range deals {
		byID[d.ID] = d
	}

	v := CartView{Items: make([]CartLine, 0, len(items))}
	for _, it := range items {
		line := CartLine{LineItem: it, TierLabel: it.Tier.Label()}
		d, ok := byID[it.DealID]
		if ok {
			m := decimal.NewFromInt(int64(it.Tier.Multiplier()))
			line.Title = d.Title
			if len(d.Images) > 0 {
				line.Image = d.Images[0]
			}
			line.UnitPrice = decimal.NewFromFloat(d.SalePrice).Mul(m)
			line.UnitOriginal = decimal.NewFromFloat(d.OriginalPrice).Mul(m)
		} else {
			line.Unavailable = true
		}
		qty := decimal.NewFromInt(int64(it.Quantity))
		line.Subtotal = line.UnitPrice.Mul(qty)
		line.OriginalTotal = line.UnitOriginal.Mul(qty)

		v.Count += it.Quantity
		v.Subtotal = v.Subtotal.Add(line.Subtotal)
		v.OriginalTotal = v.OriginalTotal.Add(line.OriginalTotal)
		v.Items = append(v.Items, line)
	}
	v.Savings = v.OriginalTotal.Sub(v.Subtotal)
	return v, nil
}

// LogNotifier records cart notices in the application log.
type LogNotifier struct{}

func (LogNotifier) Dispatch(n cart.Notice) error {
	applog.Info(nil, n.Type(), map[string]any{"message": n.Message, "deal_id": n.DealID})
	return nil
}
