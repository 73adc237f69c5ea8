package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealforge/internal/cart"
	"dealforge/internal/domain"
	"dealforge/internal/services"
)

type notices []cart.Notice

func (n *notices) Dispatch(x cart.Notice) error {
	*n = append(*n, x)
	return nil
}

func TestCartService_ViewPricesTiers(t *testing.T) {
	ctx := context.Background()
	kv := memkv(t)
	deals := services.NewDealService(kv, instant)
	svc := services.NewCartService(kv, deals, services.LogNotifier{})

	d, err := deals.GetByID(ctx, 1)
	require.NoError(t, err)

	c, err := svc.Cart(ctx, "s1")
	require.NoError(t, err)
	c.Add(ctx, d.ID, 2, domain.TierTeam)
	c.Add(ctx, d.ID, 1, domain.TierSingle)

	v, err := svc.View(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, v.Items, 2)
	assert.Equal(t, 3, v.Count)

	sale := decimal.NewFromFloat(d.SalePrice)
	orig := decimal.NewFromFloat(d.OriginalPrice)
	team := v.Items[0]
	assert.True(t, team.UnitPrice.Equal(sale.Mul(decimal.NewFromInt(3))), team.UnitPrice.String())
	assert.True(t, team.Subtotal.Equal(sale.Mul(decimal.NewFromInt(6))), team.Subtotal.String())
	assert.Equal(t, domain.TierTeam.Label(), team.TierLabel)

	wantSub := sale.Mul(decimal.NewFromInt(7))
	wantOrig := orig.Mul(decimal.NewFromInt(7))
	assert.True(t, v.Subtotal.Equal(wantSub), v.Subtotal.String())
	assert.True(t, v.OriginalTotal.Equal(wantOrig), v.OriginalTotal.String())
	assert.True(t, v.Savings.Equal(wantOrig.Sub(wantSub)), v.Savings.String())
}

func TestCartService_MissingDealIsFlagged(t *testing.T) {
	ctx := context.Background()
	kv := memkv(t)
	svc := services.NewCartService(kv, services.NewDealService(kv, instant), nil)

	mustCart(t, svc, "s1").Add(ctx, 424242, 1, domain.TierSingle)
	v, err := svc.View(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, v.Items, 1)
	assert.True(t, v.Items[0].Unavailable)
	assert.True(t, v.Subtotal.IsZero())
}

func TestCartService_SessionsAreIsolatedAndPersisted(t *testing.T) {
	ctx := context.Background()
	kv := memkv(t)
	deals := services.NewDealService(kv, instant)
	var got notices
	svc := services.NewCartService(kv, deals, &got)

	mustCart(t, svc, "a").Add(ctx, 1, 2, "")
	assert.Equal(t, 0, mustCart(t, svc, "b").Count())
	assert.Same(t, mustCart(t, svc, "a"), mustCart(t, svc, "a"))
	require.Len(t, got, 1)
	assert.Equal(t, "Added to cart!", got[0].Message)

	raw, ok, err := kv.Get(ctx, services.CartKey("a"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{"dealId":1,"quantity":2,"tier":"single"}]`, string(raw))

	restored := services.NewCartService(kv, deals, nil)
	assert.Equal(t, 2, mustCart(t, restored, "a").Count())
}

func mustCart(t *testing.T, svc *services.CartService, sid string) *cart.Engine {
	t.Helper()
	e, err := svc.Cart(context.Background(), sid)
	require.NoError(t, err)
	return e
}

func TestCartService_EvictsIdleCarts(t *testing.T) {
	ctx := context.Background()
	kv := memkv(t)
	svc := services.NewCartServiceSize(kv, services.NewDealService(kv, instant), nil, 8)

	mustCart(t, svc, "first").Add(ctx, 1, 3, domain.TierTeam)
	for i := 0; i < 100; i++ {
		mustCart(t, svc, fmt.Sprintf("visitor-%d", i))
	}
	assert.Equal(t, 8, svc.Cached())

	// an evicted cart comes back from storage
	assert.Equal(t, 3, mustCart(t, svc, "first").Count())
}

func TestCartService_CancelledRestoreIsNotCached(t *testing.T) {
	ctx := context.Background()
	kv := memkv(t)
	deals := services.NewDealService(kv, instant)
	mustCart(t, services.NewCartService(kv, deals, nil), "s1").Add(ctx, 2, 4, "")

	slow := &slowStore{Storage: kv, key: services.CartKey("s1"), delay: 50 * time.Millisecond}
	svc := services.NewCartService(slow, deals, nil)

	short, cancel := context.WithTimeout(ctx, 5*time.Millisecond)
	defer cancel()
	_, err := svc.Cart(short, "s1")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, svc.Cached())

	e := mustCart(t, svc, "s1")
	assert.Equal(t, 4, e.Count())
	e.Add(ctx, 3, 1, "")

	raw, _, err := kv.Get(ctx, services.CartKey("s1"))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"dealId":2,"quantity":4,"tier":"single"},{"dealId":3,"quantity":1,"tier":"single"}]`, string(raw))
}
