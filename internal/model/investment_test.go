package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInvestmentApplyBuy(t *testing.T) {
	inv := Investment{AccountID: 1, Symbol: "X"}

	inv.ApplyBuy(MoneyFromDollars(50), 10)
	require.Equal(t, int64(10), inv.Quantity)
	require.Equal(t, MoneyFromDollars(500), inv.CostBasis)

	// weighted-average accumulation: basis is the running trade value sum
	inv.ApplyBuy(MoneyFromDollars(60), 10)
	require.Equal(t, int64(20), inv.Quantity)
	require.Equal(t, MoneyFromDollars(1_100), inv.CostBasis)
}

func TestInvestmentApplySell(t *testing.T) {
	inv := Investment{AccountID: 1, Symbol: "X"}
	inv.ApplyBuy(MoneyFromDollars(50), 10)
	inv.ApplyBuy(MoneyFromDollars(60), 10)

	// pro-rata: selling a quarter realizes a quarter of the basis
	inv.ApplySell(MoneyFromDollars(70), 5)
	require.Equal(t, int64(15), inv.Quantity)
	require.Equal(t, MoneyFromDollars(825), inv.CostBasis)

	inv.ApplySell(MoneyFromDollars(70), 15)
	require.Equal(t, int64(0), inv.Quantity)
	require.True(t, inv.CostBasis.IsZero())
}

// Cash plus cost basis is conserved across fills, shifted only by the
// realized gain or loss on sells.
func TestFillConservation(t *testing.T) {
	funds := MoneyFromDollars(10_000)
	inv := Investment{AccountID: 1, Symbol: "X"}

	buyPrice := MoneyFromDollars(50)
	funds = funds.Sub(buyPrice.MulQuantity(10))
	inv.ApplyBuy(buyPrice, 10)
	require.Equal(t, MoneyFromDollars(10_000), funds.Add(inv.CostBasis))

	sellPrice := MoneyFromDollars(70)
	realized := inv.CostBasis.SplitQuantity(5, inv.Quantity)
	proceeds := sellPrice.MulQuantity(5)
	funds = funds.Add(proceeds)
	inv.ApplySell(sellPrice, 5)

	gain := proceeds.Sub(realized)
	require.Equal(t, MoneyFromDollars(10_000).Add(gain), funds.Add(inv.CostBasis))
}

func TestInvestmentApplyQuote(t *testing.T) {
	inv := Investment{AccountID: 1, Symbol: "X", Quantity: 10}

	q := Quote{
		Symbol:         "X",
		Price:          MoneyFromDollars(52),
		PrevClose:      MoneyFromDollars(50),
		PriceIsCurrent: true,
	}
	inv.ApplyQuote(q)

	require.Equal(t, MoneyFromDollars(520), inv.Value())
	require.Equal(t, MoneyFromDollars(500), inv.PrevDayValue())
	require.True(t, inv.PriceIsCurrent)
}
