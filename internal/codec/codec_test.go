package codec

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/If4x/ShopCalc-Pro/internal/domain/product"
)

func TestEncodeCatalogLine(t *testing.T) {
	c := Codec{}
	p := product.Product{
		Name:       "Cola",
		Price:      decimal.RequireFromString("2.5"),
		HasDeposit: true,
		CartQty:    3,
		Sold:       12,
	}
	assert.Equal(t, "Cola,2.50,1,3,12", c.EncodeCatalogLine(p))
}

func TestCatalogLineRoundTrip(t *testing.T) {
	c := Codec{}
	products := []product.Product{
		{Name: "Brezel", Price: decimal.RequireFromString("2.50")},
		{Name: "Spezi", Price: decimal.RequireFromString("3.00"), HasDeposit: true, CartQty: 2, Sold: 41},
		{Name: "Ensinger Medium", Price: decimal.RequireFromString("2.00"), HasDeposit: true},
	}
	for _, p := range products {
		got, err := c.DecodeCatalogLine(c.EncodeCatalogLine(p))
		require.NoError(t, err)
		assert.Equal(t, p.Name, got.Name)
		assert.True(t, p.Price.Equal(got.Price), "price %s != %s", p.Price, got.Price)
		assert.Equal(t, p.HasDeposit, got.HasDeposit)
		assert.Equal(t, p.CartQty, got.CartQty)
		assert.Equal(t, p.Sold, got.Sold)
	}
}

func TestDecodeCatalogLine_TooFewFields(t *testing.T) {
	c := Codec{}
	for _, line := range []string{"", "Brezel", "Brezel,2.50", "Brezel,2.50,0,0"} {
		_, err := c.DecodeCatalogLine(line)
		require.ErrorIs(t, err, ErrMalformed, "line %q", line)
	}
}

func TestDecodeCatalogLine_CommaInLegacyName(t *testing.T) {
	c := Codec{}
	p, err := c.DecodeCatalogLine("Brezel, gross,2.50,0,1,7")
	require.NoError(t, err)
	assert.Equal(t, "Brezel, gross", p.Name)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("2.50")))
	assert.Equal(t, 1, p.CartQty)
	assert.Equal(t, 7, p.Sold)
}

func TestDecodeCatalogLine_LenientDefaultsBadNumbers(t *testing.T) {
	c := Codec{}
	p, err := c.DecodeCatalogLine("Cola,abc,1,x,y")
	require.NoError(t, err)
	assert.True(t, p.Price.IsZero())
	assert.True(t, p.HasDeposit)
	assert.Equal(t, 0, p.CartQty)
	assert.Equal(t, 0, p.Sold)
}

func TestDecodeCatalogLine_StrictRejectsBadNumbers(t *testing.T) {
	c := Codec{Strict: true}
	_, err := c.DecodeCatalogLine("Cola,abc,1,0,0")
	require.ErrorIs(t, err, ErrMalformed)

	_, err = c.DecodeCatalogLine("Cola,2.50,1,x,0")
	require.ErrorIs(t, err, ErrMalformed)
}

func TestLedgerLineRoundTrip(t *testing.T) {
	c := Codec{}
	name, count, err := c.DecodeLedgerLine(c.EncodeLedgerLine("Apfelschorle", 23))
	require.NoError(t, err)
	assert.Equal(t, "Apfelschorle", name)
	assert.Equal(t, 23, count)
}

func TestDecodeLedgerLine_NoDelimiter(t *testing.T) {
	c := Codec{}
	_, _, err := c.DecodeLedgerLine("Brezel")
	require.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeLedgerLine_CommaInName(t *testing.T) {
	c := Codec{}
	name, count, err := c.DecodeLedgerLine("Brezel, gross,9")
	require.NoError(t, err)
	assert.Equal(t, "Brezel, gross", name)
	assert.Equal(t, 9, count)
}

func TestDecodeLedgerLine_StrictBadCount(t *testing.T) {
	lenient := Codec{}
	name, count, err := lenient.DecodeLedgerLine("Brezel,oops")
	require.NoError(t, err)
	assert.Equal(t, "Brezel", name)
	assert.Equal(t, 0, count)

	strict := Codec{Strict: true}
	_, _, err = strict.DecodeLedgerLine("Brezel,oops")
	require.ErrorIs(t, err, ErrMalformed)
}
