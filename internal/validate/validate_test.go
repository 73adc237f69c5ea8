package validate_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealforge/internal/catalog"
	"dealforge/internal/domain"
	"dealforge/internal/validate"
)

func TestQ(t *testing.T) {
	q, ok := validate.Q("  photo editor ")
	assert.True(t, ok)
	assert.Equal(t, "photo editor", q)

	_, ok = validate.Q("<script>")
	assert.False(t, ok)
	_, ok = validate.Q("   ")
	assert.False(t, ok)

	long := strings.Repeat("é", 60)
	q, ok = validate.Q(long)
	assert.True(t, ok)
	assert.Equal(t, strings.Repeat("é", 50), q)
	assert.True(t, utf8.ValidString(q))
}

func TestQtyAndNewQty(t *testing.T) {
	assert.Equal(t, 1, validate.Qty("abc"))
	assert.Equal(t, 1, validate.Qty("-4"))
	assert.Equal(t, 3, validate.Qty("3"))
	assert.Equal(t, 99, validate.Qty("5000"))

	n, ok := validate.NewQty("0")
	assert.True(t, ok)
	assert.Equal(t, 0, n)
	n, ok = validate.NewQty("-2")
	assert.True(t, ok)
	assert.Equal(t, 0, n)
	_, ok = validate.NewQty("x")
	assert.False(t, ok)
}

func TestID(t *testing.T) {
	id, ok := validate.ID("42")
	assert.True(t, ok)
	assert.Equal(t, 42, id)

	for _, bad := range []string{"", "0", "-1", "1e3", "abc", "12345678901"} {
		_, ok := validate.ID(bad)
		assert.False(t, ok, bad)
	}
}

func TestTier(t *testing.T) {
	tier, ok := validate.Tier("")
	assert.True(t, ok)
	assert.Equal(t, domain.TierSingle, tier)

	tier, ok = validate.Tier("Business")
	assert.True(t, ok)
	assert.Equal(t, domain.TierBusiness, tier)

	_, ok = validate.Tier("enterprise")
	assert.False(t, ok)
}

func TestFilter(t *testing.T) {
	f, ok := validate.Filter("crm", []string{"design,DEVELOPMENT", "Nope", "Design"}, "50", "10", "4.5", "30")
	require.True(t, ok)
	assert.Equal(t, "crm", f.Query)
	assert.Equal(t, []string{"Design", "Development"}, f.Categories)
	assert.Equal(t, [2]float64{10, 50}, f.PriceRange)
	assert.Equal(t, 4.5, f.MinRating)
	assert.Equal(t, 30, f.MinDiscount)

	f, ok = validate.Filter("", nil, "x", "-3", "", "NaN")
	assert.True(t, ok)
	assert.Equal(t, catalog.DefaultFilter(), f)
}

func TestFilterRejectsUnsearchableQuery(t *testing.T) {
	for _, bad := range []string{"zzzz/nomatch", "50% off", "crm (beta)", "a:b"} {
		_, ok := validate.Filter(bad, nil, "", "", "", "")
		assert.False(t, ok, bad)
	}
}
