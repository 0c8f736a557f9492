// Package register implements the catalog-and-ledger state machine behind the
// two listener surfaces.
//
// A single Register owns the catalog and the sales ledger behind one mutex.
// Every structural mutation updates both collections inside the same critical
// section, together with its paired persistence call, so the two can never
// desynchronize even though the listeners serve in parallel.
package register

import (
	"io"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/If4x/ShopCalc-Pro/internal/codec"
	"github.com/If4x/ShopCalc-Pro/internal/domain/product"
	"github.com/If4x/ShopCalc-Pro/internal/storage"
)

// Gateway is the durable storage surface the Register persists through.
type Gateway interface {
	LoadCatalog() ([]product.Product, error)
	SaveCatalog(products []product.Product) error
	LoadLedger(names []string) ([]int, error)
	SaveLedger(names []string, counts []int) error
	ArchiveLedger(names []string, counts []int, now time.Time) (string, error)
}

var _ Gateway = (*storage.Gateway)(nil)

// CartLine is one product row of the customer cart view.
type CartLine struct {
	Slot       int
	Name       string
	Price      decimal.Decimal
	HasDeposit bool
	Quantity   int
}

// SalesEntry is one row of the sales report.
type SalesEntry struct {
	Name  string
	Count int
}

// Register is the mutex-guarded owner of catalog and ledger state, shared by
// the customer and admin listeners.
type Register struct {
	mu      sync.Mutex
	catalog Catalog
	ledger  Ledger

	store Gateway
	lg    *zap.Logger
	now   func() time.Time
}

// Load builds a Register from durable storage. Storage failures are logged
// and degrade to in-memory defaults: the service keeps serving even when
// durability is broken.
func Load(store Gateway, lg *zap.Logger) *Register {
	r := &Register{store: store, lg: lg, now: time.Now}

	products, err := store.LoadCatalog()
	if err != nil {
		lg.Error("loading catalog failed, serving defaults from memory", zap.Error(err))
		products = product.Defaults()
	}
	// The cart is a transient session: it starts empty on every boot even
	// though the persisted format carries cart quantities.
	for i := range products {
		products[i].CartQty = 0
	}
	r.catalog = NewCatalog(products)

	counts, err := store.LoadLedger(r.catalog.Names())
	if err != nil {
		lg.Error("loading ledger failed, starting from zero counters", zap.Error(err))
		counts = make([]int, r.catalog.Len())
	}
	r.ledger = NewLedger(counts)

	lg.Info("register loaded",
		zap.Int("products", r.catalog.Len()),
	)
	return r
}

// Count returns the number of live products.
func (r *Register) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.catalog.Len()
}

// AdjustCart changes the cart quantity of a slot by delta, clamped at zero.
// An out-of-range slot is a no-op: the customer surface must never fail
// visibly for a stale slot reference.
func (r *Register) AdjustCart(slot, delta int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.catalog.At(slot)
	if !ok {
		return
	}
	p.CartQty += delta
	if p.CartQty < 0 {
		p.CartQty = 0
	}
	_ = r.catalog.UpdateAt(slot, p)
}

// ClearCart zeroes every cart quantity.
func (r *Register) ClearCart() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearCartLocked()
}

func (r *Register) clearCartLocked() {
	for i, p := range r.catalog.Items() {
		p.CartQty = 0
		_ = r.catalog.UpdateAt(i, p)
	}
}

// CartView returns the current cart lines with the running totals. Total
// already includes the deposit portion; the deposit is reported separately
// for display only.
func (r *Register) CartView() (lines []CartLine, total, deposit decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()

	total, deposit = decimal.Zero, decimal.Zero
	lines = make([]CartLine, r.catalog.Len())
	for i, p := range r.catalog.Items() {
		lines[i] = CartLine{
			Slot:       i,
			Name:       p.Name,
			Price:      p.Price,
			HasDeposit: p.HasDeposit,
			Quantity:   p.CartQty,
		}
		total = total.Add(p.LineTotal())
		deposit = deposit.Add(p.DepositTotal())
	}
	return lines, total.Round(2), deposit.Round(2)
}

// Totals returns the cart total (deposit included) and the deposit portion.
func (r *Register) Totals() (total, deposit decimal.Decimal) {
	_, total, deposit = r.CartView()
	return total, deposit
}

// Checkout folds every cart quantity into the ledger, clears the cart, and
// persists the ledger. Committing and clearing happen unconditionally; a
// failed save is reported but not rolled back. Calling Checkout twice in a
// row commits all-zero quantities the second time.
func (r *Register) Checkout() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	carts := make([]int, r.catalog.Len())
	for i, p := range r.catalog.Items() {
		carts[i] = p.CartQty
	}
	r.ledger.Commit(carts)
	r.clearCartLocked()

	if err := r.store.SaveLedger(r.catalog.Names(), r.ledger.Counts()); err != nil {
		r.lg.Error("persisting ledger after checkout failed", zap.Error(err))
		return errors.Wrap(err, "save ledger")
	}
	return nil
}

// SalesReport returns the cumulative sold counts paired with current names.
func (r *Register) SalesReport() []SalesEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := r.ledger.Counts()
	entries := make([]SalesEntry, r.catalog.Len())
	for i, name := range r.catalog.Names() {
		count := 0
		if i < len(counts) {
			count = counts[i]
		}
		entries[i] = SalesEntry{Name: name, Count: count}
	}
	return entries
}

// ExportCSV writes the sales report as `Produkt,Anzahl` CSV to w.
func (r *Register) ExportCSV(w io.Writer) error {
	entries := r.SalesReport()

	var c codec.Codec
	if _, err := io.WriteString(w, "Produkt,Anzahl\n"); err != nil {
		return errors.Wrap(err, "write export header")
	}
	for _, e := range entries {
		if _, err := io.WriteString(w, c.EncodeLedgerLine(e.Name, e.Count)+"\n"); err != nil {
			return errors.Wrap(err, "write export line")
		}
	}
	return nil
}

// ResetSales archives the current ledger, zeroes every counter, and persists
// the zeroed ledger. A failed archive is logged and does not block the reset.
// Returning the service to a clean served state is the caller's lifecycle
// concern, not part of this operation.
func (r *Register) ResetSales() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := r.catalog.Names()
	if path, err := r.store.ArchiveLedger(names, r.ledger.Counts(), r.now()); err != nil {
		r.lg.Warn("archiving ledger before reset failed", zap.Error(err))
	} else {
		r.lg.Info("ledger archived", zap.String("path", path))
	}

	r.ledger.Reset()
	if err := r.store.SaveLedger(names, r.ledger.Counts()); err != nil {
		r.lg.Error("persisting reset ledger failed", zap.Error(err))
		return errors.Wrap(err, "save ledger")
	}
	return nil
}
