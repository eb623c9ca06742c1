package model

import "time"

type StrategyID string

const (
	StrategyNone           StrategyID = "none"
	StrategyDogsOfTheDow   StrategyID = "dogs_of_the_dow"
	StrategyTripleMomentum StrategyID = "triple_momentum"
)

type Account struct {
	ID                int64      `db:"id"`
	Name              string     `db:"name"`
	Description       string     `db:"description"`
	InitialBalance    Money      `db:"initial_balance"`
	AvailableFunds    Money      `db:"available_funds"`
	Strategy          StrategyID `db:"strategy"`
	ExcludeFromTotals bool       `db:"exclude_from_totals"`
	CreatedAt         time.Time  `db:"created_at"`
}

func NewAccount(name, description string, initialBalance Money, strategy StrategyID, excludeFromTotals bool) Account {
	return Account{
		Name:              name,
		Description:       description,
		InitialBalance:    initialBalance,
		AvailableFunds:    initialBalance,
		Strategy:          strategy,
		ExcludeFromTotals: excludeFromTotals,
	}
}

// Aggregate folds another account's balances into this one field-wise.
// Summation is associative and commutative, so rollup order never
// changes the totals.
func (a *Account) Aggregate(o Account) {
	a.InitialBalance = a.InitialBalance.Add(o.InitialBalance)
	a.AvailableFunds = a.AvailableFunds.Add(o.AvailableFunds)
}

// PerformanceItem computes the account's point-in-time snapshot:
// value = available funds plus the sum of investment values, today's
// change summed only over investments whose price is current.
func (a Account) PerformanceItem(investments []Investment, timestamp time.Time) PerformanceItem {
	value := a.AvailableFunds
	todayChange := Money(0)
	costBasis := Money(0)

	for _, inv := range investments {
		value = value.Add(inv.Value())
		costBasis = costBasis.Add(inv.CostBasis)
		if inv.PriceIsCurrent {
			todayChange = todayChange.Add(inv.Value().Sub(inv.PrevDayValue()))
		}
	}

	return PerformanceItem{
		AccountID:      a.ID,
		Timestamp:      timestamp,
		InitialBalance: a.InitialBalance,
		Value:          value,
		TodayChange:    todayChange,
		CostBasis:      costBasis,
	}
}
