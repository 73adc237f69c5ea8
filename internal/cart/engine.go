// Package cart holds the shopping cart state for one shopper.
package cart

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"dealforge/internal/domain"
	applog "dealforge/internal/log"
)

// StorageKey is where the line items live in durable storage.
const StorageKey = "dealforge-cart"

// Storage is the durable key-value store the engine writes through to.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeInfo    NoticeKind = "info"
)

// Notice is the user-facing message produced by a cart mutation.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
	DealID  int        `json:"dealId,omitempty"`
}

func (n Notice) Type() string { return "cart." + string(n.Kind) }

// Notifier receives every notice the engine emits.
type Notifier interface {
	Dispatch(n Notice) error
}

const (
	msgAdded   = "Added to cart!"
	msgUpdated = "Quantity updated in cart!"
	msgRemoved = "Removed from cart"
	msgCleared = "Cart cleared"
	msgChanged = "Cart updated"
)

type Engine struct {
	mu       sync.Mutex
	store    Storage
	key      string
	items    []domain.LineItem
	notifier Notifier
}

// NewEngine restores the cart saved under key. Unreadable state leaves the cart empty;
// a read cut short by ctx returns the error so the stored cart is not replaced.
func NewEngine(ctx context.Context, store Storage, key string, notifier Notifier) (*Engine, error) {
	e := &Engine{store: store, key: key, notifier: notifier}
	if err := e.restore(ctx); err != nil {
		if domain.Interrupted(err) {
			return nil, err
		}
		applog.Error(nil, "cart.restore.fail", err, map[string]any{"key": key})
		e.items = nil
	}
	return e, nil
}

func (e *Engine) restore(ctx context.Context) error {
	raw, ok, err := e.store.Get(ctx, e.key)
	if err != nil {
		return errors.Wrap(err, "read cart")
	}
	if !ok || len(raw) == 0 {
		return nil
	}
	var items []domain.LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return errors.Wrap(err, "decode cart")
	}
	for _, it := range items {
		if it.Quantity > 0 {
			e.items = append(e.items, it)
		}
	}
	return nil
}

// Add merges qty into the (dealID, tier) line, creating it when absent.
func (e *Engine) Add(ctx context.Context, dealID, qty int, tier domain.Tier) Notice {
	if qty < 1 {
		qty = 1
	}
	if tier == "" {
		tier = domain.TierSingle
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	n := Notice{Kind: NoticeSuccess, Message: msgAdded, DealID: dealID}
	if i := e.indexOf(dealID, tier); i >= 0 {
		e.items[i].Quantity += qty
		n.Message = msgUpdated
	} else {
		e.items = append(e.items, domain.LineItem{DealID: dealID, Quantity: qty, Tier: tier})
	}
	e.persist(ctx)
	e.emit(n)
	return n
}

// Remove drops the (dealID, tier) line, or every line for dealID when tier is empty.
func (e *Engine) Remove(ctx context.Context, dealID int, tier domain.Tier) Notice {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.remove(ctx, dealID, tier)
}

func (e *Engine) remove(ctx context.Context, dealID int, tier domain.Tier) Notice {
	kept := e.items[:0]
	for _, it := range e.items {
		if it.DealID == dealID && (tier == "" || it.Tier == tier) {
			continue
		}
		kept = append(kept, it)
	}
	e.items = kept
	e.persist(ctx)

	n := Notice{Kind: NoticeInfo, Message: msgRemoved, DealID: dealID}
	e.emit(n)
	return n
}

// UpdateQuantity sets the quantity of an existing line; qty <= 0 removes it. A missing
// line is left alone and yields a zero Notice.
func (e *Engine) UpdateQuantity(ctx context.Context, dealID, qty int, tier domain.Tier) Notice {
	if tier == "" {
		tier = domain.TierSingle
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if qty <= 0 {
		return e.remove(ctx, dealID, tier)
	}
	i := e.indexOf(dealID, tier)
	if i < 0 {
		return Notice{}
	}
	e.items[i].Quantity = qty
	e.persist(ctx)

	n := Notice{Kind: NoticeInfo, Message: msgChanged, DealID: dealID}
	e.emit(n)
	return n
}

func (e *Engine) Clear(ctx context.Context) Notice {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.items = nil
	e.persist(ctx)

	n := Notice{Kind: NoticeInfo, Message: msgCleared}
	e.emit(n)
	return n
}

// Count is the total number of units across all lines.
func (e *Engine) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	total := 0
	for _, it := range e.items {
		total += it.Quantity
	}
	return total
}

// Items returns a copy of the lines in insertion order.
func (e *Engine) Items() []domain.LineItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.LineItem(nil), e.items...)
}

func (e *Engine) indexOf(dealID int, tier domain.Tier) int {
	for i, it := range e.items {
		if it.DealID == dealID && it.Tier == tier {
			return i
		}
	}
	return -1
}

// persist replaces the stored cart with the current lines. Failures keep the in-memory
// state and are only logged.
func (e *Engine) persist(ctx context.Context) {
	items := e.items
	if items == nil {
		items = []domain.LineItem{}
	}
	raw, err := json.Marshal(items)
	if err == nil {
		err = e.store.Put(ctx, e.key, raw)
	}
	if err != nil {
		applog.Error(nil, "cart.persist.fail", err, map[string]any{"key": e.key})
	}
}

func (e *Engine) emit(n Notice) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Dispatch(n); err != nil {
		applog.Error(nil, "cart.notify.fail", err, map[string]any{"message": n.Message})
	}
}
