package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/If4x/ShopCalc-Pro/internal/domain/product"
	"github.com/If4x/ShopCalc-Pro/internal/register"
)

// Admin serves the catalog editor surface. Unlike the customer surface,
// invalid structural edits are rejected visibly, and every mutation is
// durable before the response is sent.
type Admin struct {
	reg *register.Register
}

// NewAdmin builds the admin surface over the given register.
func NewAdmin(reg *register.Register) *Admin {
	return &Admin{reg: reg}
}

// Routes returns the admin router.
func (a *Admin) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", a.editor)
	r.Post("/saveConfig", a.saveConfig)
	r.Get("/deleteProduct", a.deleteProduct)
	return r
}

// editor returns the catalog as the editor's working data.
func (a *Admin) editor(w http.ResponseWriter, _ *http.Request) {
	lines, _, _ := a.reg.CartView()

	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("capacity")
	e.Int(product.MaxProducts)
	e.FieldStart("count")
	e.Int(len(lines))
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
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()

	writeJSON(w, e)
}

// saveConfig applies the editor form: per-slot name_N/price_N/deposit_N
// fields plus an optional new_name/new_price/new_deposit product. Slots
// without a name_N field are left untouched; unknown slots are skipped.
func (a *Admin) saveConfig(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	lg := zctx.From(r.Context())

	var edits []register.Edit
	for slot := range a.reg.Count() {
		suffix := strconv.Itoa(slot)
		names, ok := r.PostForm["name_"+suffix]
		if !ok || len(names) == 0 {
			continue
		}
		edit := register.Edit{Slot: slot, Name: &names[0]}

		if raw := r.PostFormValue("price_" + suffix); raw != "" {
			price, err := decimal.NewFromString(raw)
			if err != nil || price.IsNegative() {
				http.Error(w, "invalid price for slot "+suffix, http.StatusBadRequest)
				return
			}
			edit.Price = &price
		}

		// Checkbox semantics: the field is present when checked and
		// absent when not, so its state is always explicit.
		_, checked := r.PostForm["deposit_"+suffix]
		edit.HasDeposit = &checked

		edits = append(edits, edit)
	}

	if err := a.reg.ApplyBulkEdit(edits); err != nil {
		lg.Error("bulk edit persisted partially", zap.Error(err))
	}

	if name := r.PostFormValue("new_name"); name != "" {
		price := decimal.Zero
		if raw := r.PostFormValue("new_price"); raw != "" {
			parsed, err := decimal.NewFromString(raw)
			if err != nil || parsed.IsNegative() {
				http.Error(w, "invalid price for new product", http.StatusBadRequest)
				return
			}
			price = parsed
		}
		_, hasDeposit := r.PostForm["new_deposit"]

		err := a.reg.AppendNew(name, price, hasDeposit)
		switch {
		case errors.Is(err, product.ErrCatalogFull):
			http.Error(w, "catalog full", http.StatusConflict)
			return
		case errors.Is(err, register.ErrEmptyName):
			http.Error(w, "product name required", http.StatusBadRequest)
			return
		case err != nil:
			lg.Error("append persisted partially", zap.Error(err))
		}
	}

	w.Header().Set("Location", "/")
	w.WriteHeader(http.StatusSeeOther)
}

// deleteProduct removes a slot together with its ledger counter.
func (a *Admin) deleteProduct(w http.ResponseWriter, r *http.Request) {
	err := a.reg.DeleteProduct(slotParam(r))
	switch {
	case errors.Is(err, product.ErrSlotOutOfRange):
		http.Error(w, "no such product", http.StatusBadRequest)
	case err != nil:
		// Deleted in memory; only persistence failed.
		zctx.From(r.Context()).Error("delete persisted partially", zap.Error(err))
		writeOK(w)
	default:
		writeOK(w)
	}
}
