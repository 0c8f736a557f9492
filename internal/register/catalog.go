package register

import (
	"github.com/If4x/ShopCalc-Pro/internal/domain/product"
)

// Catalog is the bounded, ordered in-memory product collection. It performs no
// persistence; the Register pairs every durable mutation with a gateway save.
type Catalog struct {
	items []product.Product
}

// NewCatalog wraps the given products, clamping at capacity.
func NewCatalog(items []product.Product) Catalog {
	if len(items) > product.MaxProducts {
		items = items[:product.MaxProducts]
	}
	return Catalog{items: items}
}

// Len returns the number of live products.
func (c *Catalog) Len() int {
	return len(c.items)
}

// At returns the product in the given slot.
func (c *Catalog) At(slot int) (product.Product, bool) {
	if slot < 0 || slot >= len(c.items) {
		return product.Product{}, false
	}
	return c.items[slot], true
}

// Items returns the live products in slot order. The slice is shared; callers
// within the package must not retain it across mutations.
func (c *Catalog) Items() []product.Product {
	return c.items
}

// Names returns the product names in slot order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.items))
	for i, p := range c.items {
		names[i] = p.Name
	}
	return names
}

// Append adds a product to the next free slot and returns it.
func (c *Catalog) Append(p product.Product) (int, error) {
	if len(c.items) >= product.MaxProducts {
		return 0, product.ErrCatalogFull
	}
	c.items = append(c.items, p)
	return len(c.items) - 1, nil
}

// DeleteAt removes the slot and left-shifts all following slots by one.
func (c *Catalog) DeleteAt(slot int) error {
	if slot < 0 || slot >= len(c.items) {
		return product.ErrSlotOutOfRange
	}
	c.items = append(c.items[:slot], c.items[slot+1:]...)
	return nil
}

// UpdateAt replaces the product in the given slot.
func (c *Catalog) UpdateAt(slot int, p product.Product) error {
	if slot < 0 || slot >= len(c.items) {
		return product.ErrSlotOutOfRange
	}
	c.items[slot] = p
	return nil
}
