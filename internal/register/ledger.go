package register

// Ledger holds the cumulative sold counts, index-aligned with the catalog.
// Structural catalog mutations must be mirrored here in the same critical
// section; the Register is the only caller and guarantees that.
type Ledger struct {
	counts []int
}

// NewLedger wraps the given counts.
func NewLedger(counts []int) Ledger {
	return Ledger{counts: counts}
}

// Commit folds the given cart quantities into the cumulative counters.
// Quantities beyond the ledger size are ignored.
func (l *Ledger) Commit(cartQuantities []int) {
	for i, q := range cartQuantities {
		if i >= len(l.counts) {
			break
		}
		l.counts[i] += q
	}
}

// Reset zeroes every counter in place.
func (l *Ledger) Reset() {
	for i := range l.counts {
		l.counts[i] = 0
	}
}

// Counts returns the counters in slot order. The slice is shared; callers
// within the package must not retain it across mutations.
func (l *Ledger) Counts() []int {
	return l.counts
}

// Append adds a zeroed counter for a newly appended catalog slot.
func (l *Ledger) Append() {
	l.counts = append(l.counts, 0)
}

// DeleteAt removes the counter paired with a deleted catalog slot,
// left-shifting the rest.
func (l *Ledger) DeleteAt(slot int) {
	if slot < 0 || slot >= len(l.counts) {
		return
	}
	l.counts = append(l.counts[:slot], l.counts[slot+1:]...)
}
