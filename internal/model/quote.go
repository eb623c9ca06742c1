package model

import "time"

// Quote is transient market data: consumed by the execution pass,
// never persisted directly.
type Quote struct {
	Symbol    string
	Price     Money
	PrevClose Money
	Timestamp time.Time

	// PriceIsCurrent is true only when the quote was fetched during or
	// after the latest session. A stale quote defers market orders.
	PriceIsCurrent bool
}

func (q Quote) TodayChange() Money {
	return q.Price.Sub(q.PrevClose)
}
