package model

import "time"

type Investment struct {
	ID             int64     `db:"id"`
	AccountID      int64     `db:"account_id"`
	Symbol         string    `db:"symbol"`
	Quantity       int64     `db:"quantity"`
	CostBasis      Money     `db:"cost_basis"`
	Price          Money     `db:"price"`
	PrevDayClose   Money     `db:"prev_day_close"`
	PriceIsCurrent bool      `db:"price_is_current"`
	LastTradeTime  time.Time `db:"last_trade_time"`
}

func (i Investment) Value() Money {
	return i.Price.MulQuantity(i.Quantity)
}

func (i Investment) PrevDayValue() Money {
	return i.PrevDayClose.MulQuantity(i.Quantity)
}

// ApplyBuy accumulates a fill into the position: weighted-average cost
// basis on buys is just the running sum of trade values.
func (i *Investment) ApplyBuy(price Money, qty int64) {
	i.Quantity += qty
	i.CostBasis = i.CostBasis.Add(price.MulQuantity(qty))
	i.Price = price
}

// ApplySell reduces the position and realizes cost basis pro-rata over
// the shares sold.
func (i *Investment) ApplySell(price Money, qty int64) {
	realized := i.CostBasis.SplitQuantity(qty, i.Quantity)
	i.CostBasis = i.CostBasis.Sub(realized)
	i.Quantity -= qty
	i.Price = price
	if i.Quantity == 0 {
		i.CostBasis = 0
	}
}

// ApplyQuote refreshes market value from a quote without touching the
// position itself.
func (i *Investment) ApplyQuote(q Quote) {
	i.Price = q.Price
	i.PrevDayClose = q.PrevClose
	i.PriceIsCurrent = q.PriceIsCurrent
	i.LastTradeTime = q.Timestamp
}
