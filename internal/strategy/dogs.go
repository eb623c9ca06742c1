package strategy

import (
	"slices"

	"github.com/balch/mocktrade/internal/model"
)

// DogsOfTheDow buys the day's worst decliners that the account does
// not already hold, one position per sweep, sized to a fraction of
// available funds.
type DogsOfTheDow struct {
	fundsFraction int64 // buy with at most funds / fundsFraction
}

func NewDogsOfTheDow() *DogsOfTheDow {
	return &DogsOfTheDow{fundsFraction: 10}
}

func (d *DogsOfTheDow) ID() model.StrategyID { return model.StrategyDogsOfTheDow }

func (d *DogsOfTheDow) Signal(acct model.Account, investments []model.Investment,
	quotes map[string]model.Quote) []model.Order {

	held := make(map[string]bool, len(investments))
	for _, inv := range investments {
		held[inv.Symbol] = true
	}

	candidates := make([]model.Quote, 0, len(quotes))
	for _, q := range quotes {
		if held[q.Symbol] || !q.PriceIsCurrent || q.Price.IsZero() {
			continue
		}
		if q.TodayChange().IsNegative() {
			candidates = append(candidates, q)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	slices.SortFunc(candidates, func(a, b model.Quote) int {
		// deepest decline first
		if a.TodayChange() < b.TodayChange() {
			return -1
		} else if a.TodayChange() > b.TodayChange() {
			return 1
		}
		return 0
	})

	budget := model.Money(acct.AvailableFunds.MicroCents() / d.fundsFraction)
	for _, q := range candidates {
		qty := budget.MicroCents() / q.Price.MicroCents()
		if qty <= 0 {
			continue
		}
		return []model.Order{{
			AccountID: acct.ID,
			Symbol:    q.Symbol,
			Side:      model.Buy,
			Kind:      model.Market,
			Quantity:  qty,
		}}
	}
	return nil
}
