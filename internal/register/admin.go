package register

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/If4x/ShopCalc-Pro/internal/domain/product"
)

// ErrEmptyName is returned when a new product has no name.
var ErrEmptyName = errors.New("product name is empty")

// Edit is one entry of a bulk catalog edit. Nil fields are left unchanged.
type Edit struct {
	Slot       int
	Name       *string
	Price      *decimal.Decimal
	HasDeposit *bool
}

// ApplyBulkEdit applies per-slot field edits and persists the catalog.
// Unknown slots are skipped. Cart quantities and ledger entries are not
// touched by field edits.
func (r *Register) ApplyBulkEdit(edits []Edit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range edits {
		p, ok := r.catalog.At(e.Slot)
		if !ok {
			r.lg.Warn("bulk edit for unknown slot skipped", zap.Int("slot", e.Slot))
			continue
		}
		if e.Name != nil {
			if name := sanitizeName(*e.Name); name != "" {
				p.Name = name
			}
		}
		if e.Price != nil {
			p.Price = *e.Price
		}
		if e.HasDeposit != nil {
			p.HasDeposit = *e.HasDeposit
		}
		_ = r.catalog.UpdateAt(e.Slot, p)
	}

	if err := r.store.SaveCatalog(r.catalog.Items()); err != nil {
		r.lg.Error("persisting catalog after bulk edit failed", zap.Error(err))
		return errors.Wrap(err, "save catalog")
	}
	return nil
}

// AppendNew adds a product to the next free slot together with a zeroed
// ledger counter and persists both resources.
func (r *Register) AppendNew(name string, price decimal.Decimal, hasDeposit bool) error {
	name = sanitizeName(name)
	if name == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	slot, err := r.catalog.Append(product.Product{
		Name:       name,
		Price:      price,
		HasDeposit: hasDeposit,
	})
	if err != nil {
		return err
	}
	r.ledger.Append()

	r.lg.Info("product appended", zap.Int("slot", slot), zap.String("name", name))
	return r.persistBothLocked()
}

// DeleteProduct removes the slot from the catalog and its paired ledger
// counter in one compound mutation, then persists both resources. Unlike the
// customer surface, an invalid slot is rejected visibly.
func (r *Register) DeleteProduct(slot int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.catalog.DeleteAt(slot); err != nil {
		return err
	}
	r.ledger.DeleteAt(slot)

	r.lg.Info("product deleted", zap.Int("slot", slot))
	return r.persistBothLocked()
}

func (r *Register) persistBothLocked() error {
	if err := r.store.SaveCatalog(r.catalog.Items()); err != nil {
		r.lg.Error("persisting catalog failed", zap.Error(err))
		return errors.Wrap(err, "save catalog")
	}
	if err := r.store.SaveLedger(r.catalog.Names(), r.ledger.Counts()); err != nil {
		r.lg.Error("persisting ledger failed", zap.Error(err))
		return errors.Wrap(err, "save ledger")
	}
	return nil
}

var nameSanitizer = strings.NewReplacer(",", " ", "\n", " ", "\r", " ")

// sanitizeName keeps a name encodable: the field delimiter and line breaks
// would corrupt the persisted file on the next load.
func sanitizeName(name string) string {
	name = strings.TrimSpace(nameSanitizer.Replace(name))
	if len(name) > product.MaxNameLen {
		name = strings.TrimSpace(name[:product.MaxNameLen])
	}
	return name
}
