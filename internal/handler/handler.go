// Package handler exposes the register over the two listener surfaces: the
// customer cart endpoints and the admin catalog editor. Both talk to the same
// Register; the paths mirror the original firmware so existing front-ends
// keep working.
package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

func writeJSON(w http.ResponseWriter, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write(e.Bytes())
}

func writeOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK"))
}

// encodeMoney renders a currency amount with two decimal places.
func encodeMoney(e *jx.Encoder, d decimal.Decimal) {
	e.Str(d.StringFixed(2))
}

// slotParam parses the slot query parameter. Unparsable values map to an
// out-of-range slot, which each surface handles by its own policy.
func slotParam(r *http.Request) int {
	slot, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil {
		return -1
	}
	return slot
}
