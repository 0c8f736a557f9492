package product

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// MaxProducts is the catalog capacity. Slot indices are always < MaxProducts.
const MaxProducts = 50

// MaxNameLen bounds the stored product name in bytes.
const MaxNameLen = 49

// DepositUnit is the fixed per-unit deposit surcharge added to totals for
// products with HasDeposit set.
var DepositUnit = decimal.NewFromInt(1)

// Sentinel errors for catalog mutations.
var (
	// ErrCatalogFull is returned when appending to a catalog at capacity.
	ErrCatalogFull = errors.New("catalog full")
	// ErrSlotOutOfRange is returned when a slot index does not address a live product.
	ErrSlotOutOfRange = errors.New("slot out of range")
)

// Product is a catalog entry. Its identity is the slot it occupies in the
// catalog; slots shift left on deletion.
type Product struct {
	Name       string
	Price      decimal.Decimal
	HasDeposit bool

	// CartQty is the current, uncommitted cart quantity of the single shared
	// session. Transient: persisted for format compatibility but the cart
	// starts empty on every boot.
	CartQty int

	// Sold mirrors the sales ledger entry for this product as last decoded
	// from storage. The ledger is authoritative; this field is legacy.
	Sold int
}

// LineTotal returns price times cart quantity plus the deposit surcharge.
func (p Product) LineTotal() decimal.Decimal {
	qty := decimal.NewFromInt(int64(p.CartQty))
	total := p.Price.Mul(qty)
	if p.HasDeposit {
		total = total.Add(DepositUnit.Mul(qty))
	}
	return total
}

// DepositTotal returns only the deposit portion of the line total.
func (p Product) DepositTotal() decimal.Decimal {
	if !p.HasDeposit {
		return decimal.Zero
	}
	return DepositUnit.Mul(decimal.NewFromInt(int64(p.CartQty)))
}

// Defaults returns the built-in catalog used when storage holds no products.
func Defaults() []Product {
	return []Product{
		{Name: "Brezel", Price: decimal.RequireFromString("2.50")},
		{Name: "Fanta", Price: decimal.RequireFromString("2.50"), HasDeposit: true},
		{Name: "Cola", Price: decimal.RequireFromString("2.50"), HasDeposit: true},
		{Name: "Spezi", Price: decimal.RequireFromString("3.00"), HasDeposit: true},
		{Name: "Apfelschorle", Price: decimal.RequireFromString("3.00"), HasDeposit: true},
		{Name: "Ensinger Medium", Price: decimal.RequireFromString("2.00"), HasDeposit: true},
		{Name: "Ensinger Still", Price: decimal.RequireFromString("2.00"), HasDeposit: true},
		{Name: "Bier", Price: decimal.RequireFromString("3.00"), HasDeposit: true},
		{Name: "Sekt", Price: decimal.RequireFromString("3.00"), HasDeposit: true},
	}
}
