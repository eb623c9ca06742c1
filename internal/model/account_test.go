package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAccountAggregate(t *testing.T) {
	a := NewAccount("a", "", MoneyFromDollars(10_000), StrategyNone, false)
	b := NewAccount("b", "", MoneyFromDollars(5_000), StrategyNone, false)
	c := NewAccount("c", "", MoneyFromDollars(1_000), StrategyNone, false)

	abc := a
	abc.Aggregate(b)
	abc.Aggregate(c)

	cba := c
	cba.Aggregate(b)
	cba.Aggregate(a)

	// associative and commutative: totals match regardless of order
	require.Equal(t, MoneyFromDollars(16_000), abc.InitialBalance)
	require.Equal(t, abc.InitialBalance, cba.InitialBalance)
	require.Equal(t, abc.AvailableFunds, cba.AvailableFunds)
}

func TestAccountPerformanceItem(t *testing.T) {
	acct := NewAccount("test", "", MoneyFromDollars(10_000), StrategyNone, false)
	acct.ID = 7
	acct.AvailableFunds = MoneyFromDollars(9_500)

	ts := time.Date(2026, 8, 28, 15, 30, 0, 0, time.UTC)
	investments := []Investment{
		{
			AccountID:      7,
			Symbol:         "X",
			Quantity:       10,
			CostBasis:      MoneyFromDollars(500),
			Price:          MoneyFromDollars(52),
			PrevDayClose:   MoneyFromDollars(50),
			PriceIsCurrent: true,
		},
		{
			// stale price: contributes to value but not today's change
			AccountID:      7,
			Symbol:         "Y",
			Quantity:       2,
			CostBasis:      MoneyFromDollars(100),
			Price:          MoneyFromDollars(40),
			PrevDayClose:   MoneyFromDollars(45),
			PriceIsCurrent: false,
		},
	}

	item := acct.PerformanceItem(investments, ts)

	require.Equal(t, int64(7), item.AccountID)
	require.Equal(t, ts, item.Timestamp)
	require.Equal(t, MoneyFromDollars(10_000), item.InitialBalance)
	require.Equal(t, MoneyFromDollars(9_500+520+80), item.Value)
	require.Equal(t, MoneyFromDollars(20), item.TodayChange)
	require.Equal(t, MoneyFromDollars(600), item.CostBasis)
}

func TestAccountPerformanceItemNoInvestments(t *testing.T) {
	acct := NewAccount("empty", "", MoneyFromDollars(100), StrategyNone, false)

	item := acct.PerformanceItem(nil, time.Now())
	require.Equal(t, MoneyFromDollars(100), item.Value)
	require.True(t, item.TodayChange.IsZero())
	require.True(t, item.CostBasis.IsZero())
}
