package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/If4x/ShopCalc-Pro/internal/register"
)

// Customer serves the cart surface. Mutating endpoints are deliberately
// tolerant: a stale or garbled slot reference must never produce a visible
// failure at the till.
type Customer struct {
	reg *register.Register

	// restart asks the surrounding service to return to a clean served
	// state after a sales reset. May be nil.
	restart func()
}

// NewCustomer builds the customer surface over the given register.
func NewCustomer(reg *register.Register, restart func()) *Customer {
	return &Customer{reg: reg, restart: restart}
}

// Routes returns the customer router.
func (c *Customer) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/content", c.content)
	r.Get("/add", c.add)
	r.Get("/remove", c.remove)
	r.Get("/clear", c.clear)
	r.Get("/submit", c.submit)
	r.Get("/sales", c.sales)
	r.Post("/exportSales", c.exportSales)
	r.Post("/resetSales", c.resetSales)
	return r
}

// content returns the cart view: every product with its cart quantity plus
// the running total and the deposit portion already included in it.
func (c *Customer) content(w http.ResponseWriter, _ *http.Request) {
	lines, total, deposit := c.reg.CartView()

	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("products")
	e.ArrStart()
	for _, line := range lines {
		e.ObjStart()
		e.FieldStart("slot")
		e.Int(line.Slot)
		e.FieldStart("name")
		e.Str(line.Name)
		e.FieldStart("price")
		encodeMoney(e, line.Price)
		e.FieldStart("hasDeposit")
		e.Bool(line.HasDeposit)
		e.FieldStart("quantity")
		e.Int(line.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("total")
	encodeMoney(e, total)
	e.FieldStart("deposit")
	encodeMoney(e, deposit)
	e.ObjEnd()

	writeJSON(w, e)
}

func (c *Customer) add(w http.ResponseWriter, r *http.Request) {
	qty, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil || qty <= 0 {
		qty = 1
	}
	c.reg.AdjustCart(slotParam(r), qty)
	writeOK(w)
}

func (c *Customer) remove(w http.ResponseWriter, r *http.Request) {
	c.reg.AdjustCart(slotParam(r), -1)
	writeOK(w)
}

func (c *Customer) clear(w http.ResponseWriter, _ *http.Request) {
	c.reg.ClearCart()
	writeOK(w)
}

// submit commits the cart into the ledger. A broken storage device does not
// fail the checkout: the sale is committed in memory and the failure is
// logged and reflected in readiness.
func (c *Customer) submit(w http.ResponseWriter, r *http.Request) {
	if err := c.reg.Checkout(); err != nil {
		zctx.From(r.Context()).Warn("checkout persisted partially", zap.Error(err))
	}
	writeOK(w)
}

func (c *Customer) sales(w http.ResponseWriter, _ *http.Request) {
	entries := c.reg.SalesReport()

	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("sales")
	e.ArrStart()
	for _, entry := range entries {
		e.ObjStart()
		e.FieldStart("name")
		e.Str(entry.Name)
		e.FieldStart("count")
		e.Int(entry.Count)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()

	writeJSON(w, e)
}

func (c *Customer) exportSales(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Disposition", "attachment; filename=sales.csv")
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	if err := c.reg.ExportCSV(w); err != nil {
		zctx.From(r.Context()).Warn("sales export aborted", zap.Error(err))
	}
}

func (c *Customer) resetSales(w http.ResponseWriter, r *http.Request) {
	if err := c.reg.ResetSales(); err != nil {
		zctx.From(r.Context()).Warn("sales reset persisted partially", zap.Error(err))
	}
	if c.restart != nil {
		c.restart()
	}
	w.Header().Set("Location", "/sales")
	w.WriteHeader(http.StatusSeeOther)
}
