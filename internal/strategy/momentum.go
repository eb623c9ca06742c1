package strategy

import "github.com/balch/mocktrade/internal/model"

// TripleMomentum exits positions whose day move breaks below the
// configured drop threshold, 3% by default.
type TripleMomentum struct {
	dropThreshold float64
}

func NewTripleMomentum() *TripleMomentum {
	return &TripleMomentum{dropThreshold: 0.03}
}

func (t *TripleMomentum) ID() model.StrategyID { return model.StrategyTripleMomentum }

func (t *TripleMomentum) Signal(acct model.Account, investments []model.Investment,
	quotes map[string]model.Quote) []model.Order {

	var orders []model.Order
	for _, inv := range investments {
		q, ok := quotes[inv.Symbol]
		if !ok || !q.PriceIsCurrent || q.PrevClose.IsZero() {
			continue
		}

		change := q.TodayChange().Decimal().Div(q.PrevClose.Decimal())
		if change.InexactFloat64() <= -t.dropThreshold {
			orders = append(orders, model.Order{
				AccountID: acct.ID,
				Symbol:    inv.Symbol,
				Side:      model.Sell,
				Kind:      model.Market,
				Quantity:  inv.Quantity,
			})
		}
	}
	return orders
}
