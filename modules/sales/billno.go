package sales

import (
	"fmt"
	"time"

	nanoid "github.com/jaevor/go-nanoid"
)

const (
	billPrefix       = "BILL"
	billSuffixDigits = 5
	maxBillAttempts  = 10
)

// BillNumberFunc returns a candidate bill number for a sale made at t.
type BillNumberFunc func(t time.Time) string

// NewBillNumberFunc returns a generator of numbers shaped BILL-YYYYMMDD-NNNNN.
func NewBillNumberFunc() (BillNumberFunc, error) {
	suffix, err := nanoid.CustomASCII("0123456789", billSuffixDigits)
	if err != nil {
		return nil, fmt.Errorf("failed to create bill number generator: %w", err)
	}
	return func(t time.Time) string {
		return fmt.Sprintf("%s-%s-%s", billPrefix, t.Format("20060102"), suffix())
	}, nil
}
