package catalog

import "sync"

// StockLock serializes every writer of product rows within the process: sale
// commits, operator edits and deletions all run under it, so a sale's
// validation and its decrements observe the same stock levels.
type StockLock struct {
	mu sync.Mutex
}

// NewStockLock creates a new stock lock.
func NewStockLock() *StockLock {
	return &StockLock{}
}

// Do runs fn while holding the lock.
func (l *StockLock) Do(fn func() error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn()
}
