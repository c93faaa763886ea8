package models

// Ledger is the ordered collection of all transaction records known to the
// system. Insertion order carries no meaning but is preserved for display
// stability.
type Ledger []Transaction

// Clone returns a shallow copy so callers can mutate without aliasing the
// original backing array.
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	copy(out, l)
	return out
}

// IndexByID returns the position of the record with the given stable ID, or
// -1 when no record matches.
func (l Ledger) IndexByID(id string) int {
	for i, t := range l {
		if t.ID() == id {
			return i
		}
	}
	return -1
}
