package services

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"
	"time"

	"github.com/pkg/errors"

	"dealforge/internal/domain"
	applog "dealforge/internal/log"
)

// Storage is the durable key-value store behind the catalog and the carts.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Latency emulates network round trips. A zero Scale disables it.
type Latency struct{ Scale float64 }

func (l Latency) Wait(ctx context.Context, base time.Duration) error {
	d := time.Duration(float64(base) * l.Scale)
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// collection is an in-memory list of records persisted as one JSON array under key.
type collection[T any] struct {
	mu       sync.Mutex
	store    Storage
	key      string
	name     string
	fallback func() ([]T, error)
	idOf     func(T) int
	setID    func(*T, int)
	clone    func(T) T

	loaded bool
	items  []T
	lastID int
}

// load runs on first access: stored data wins, the bundled dataset covers a missing,
// unreadable or corrupt value. A read cut short by ctx leaves the collection unloaded
// and returns the error. Callers hold c.mu.
func (c *collection[T]) load(ctx context.Context) error {
	if c.loaded {
		return nil
	}

	items, err := c.read(ctx)
	if err != nil {
		if domain.Interrupted(err) {
			return err
		}
		applog.Error(nil, c.name+".load.fail", err, map[string]any{"key": c.key})
	}
	if items == nil {
		if items, err = c.fallback(); err != nil {
			applog.Error(nil, c.name+".fallback.fail", err, nil)
			items = nil
		}
	}
	c.loaded = true
	c.items = items
	for _, it := range c.items {
		c.lastID = max(c.lastID, c.idOf(it))
	}
	return nil
}

func (c *collection[T]) read(ctx context.Context) ([]T, error) {
	raw, ok, err := c.store.Get(ctx, c.key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errors.Wrapf(err, "decode %s", c.key)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (c *collection[T]) persist(ctx context.Context) {
	items := c.items
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err == nil {
		err = c.store.Put(ctx, c.key, raw)
	}
	if err != nil {
		applog.Error(nil, c.name+".persist.fail", err, map[string]any{"key": c.key})
	}
}

func (c *collection[T]) all(ctx context.Context) ([]T, error) {
	return c.where(ctx, func(T) bool { return true })
}

func (c *collection[T]) where(ctx context.Context, pred func(T) bool) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return nil, err
	}
	out := make([]T, 0, len(c.items))
	for _, it := range c.items {
		if pred(it) {
			out = append(out, c.clone(it))
		}
	}
	return out, nil
}

func (c *collection[T]) find(ctx context.Context, id int) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	if err := c.load(ctx); err != nil {
		return zero, err
	}
	if i := c.index(id); i >= 0 {
		return c.clone(c.items[i]), nil
	}
	return zero, errors.Wrapf(domain.ErrNotFound, "%s %d", c.name, id)
}

// create assigns the next id. Ids come from a counter seeded with the highest stored
// id, so an empty collection starts at 1 and deleted ids are not handed out again.
func (c *collection[T]) create(ctx context.Context, v T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	if err := c.load(ctx); err != nil {
		return zero, err
	}
	c.lastID++
	c.setID(&v, c.lastID)
	c.items = append(c.items, c.clone(v))
	c.persist(ctx)
	return c.clone(v), nil
}

// update overlays the JSON fields present in patch onto the stored record.
func (c *collection[T]) update(ctx context.Context, id int, patch []byte, validate func(T) error) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	if err := c.load(ctx); err != nil {
		return zero, err
	}
	i := c.index(id)
	if i < 0 {
		return zero, errors.Wrapf(domain.ErrNotFound, "%s %d", c.name, id)
	}
	next := c.clone(c.items[i])
	if err := json.Unmarshal(patch, &next); err != nil {
		return zero, stderrors.Join(domain.ErrInvalid, err)
	}
	c.setID(&next, id)
	if err := validate(next); err != nil {
		return zero, err
	}
	c.items[i] = next
	c.persist(ctx)
	return c.clone(next), nil
}

func (c *collection[T]) remove(ctx context.Context, id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return err
	}
	i := c.index(id)
	if i < 0 {
		return errors.Wrapf(domain.ErrNotFound, "%s %d", c.name, id)
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	c.persist(ctx)
	return nil
}

func (c *collection[T]) index(id int) int {
	for i, it := range c.items {
		if c.idOf(it) == id {
			return i
		}
	}
	return -1
}
