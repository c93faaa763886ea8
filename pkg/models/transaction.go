package models

import (
	"crypto/sha256"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Transaction represents a single ledger record. Negative amounts are
// expenses, positive amounts are income.
type Transaction struct {
	Date        time.Time
	Description string
	Amount      float64
	Category    Category
}

// ID returns a synthetic stable identifier derived from the record's
// immutable fields. Category does not participate, so reclassifying a record
// keeps its ID stable.
func (t Transaction) ID() string {
	desc := strings.ToLower(strings.TrimSpace(t.Description))
	// Same exact amount formatting as Key, so records with distinct dedup
	// identities never collide on their ID.
	input := t.Date.Format(DateLayout) + "-" + desc + "-" +
		strconv.FormatFloat(t.Amount, 'f', -1, 64)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", hash)[:8]
}

// Key is the dedup identity: date, description and amount, matched exactly.
func (t Transaction) Key() string {
	return t.Date.Format(DateLayout) + "|" + t.Description + "|" +
		strconv.FormatFloat(t.Amount, 'f', -1, 64)
}
