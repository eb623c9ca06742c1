package strategy

import (
	"testing"

	"github.com/balch/mocktrade/internal/model"
	"github.com/stretchr/testify/require"
)

func testQuote(symbol string, price, prevClose float64, current bool) model.Quote {
	return model.Quote{
		Symbol:         symbol,
		Price:          model.MoneyFromDollars(price),
		PrevClose:      model.MoneyFromDollars(prevClose),
		PriceIsCurrent: current,
	}
}

func TestRegistryLookup(t *testing.T) {
	r := NewDefaultRegistry()

	for _, id := range []model.StrategyID{
		model.StrategyNone, model.StrategyTripleMomentum, model.StrategyDogsOfTheDow,
	} {
		s, err := r.Lookup(id)
		require.NoError(t, err)
		require.Equal(t, id, s.ID())
	}

	_, err := r.Lookup("martingale")
	require.ErrorIs(t, err, model.ErrInvalidArgument)
}

func TestNoneSignalsNothing(t *testing.T) {
	s, err := NewDefaultRegistry().Lookup(model.StrategyNone)
	require.NoError(t, err)

	acct := model.NewAccount("idle", "", model.MoneyFromDollars(10_000), model.StrategyNone, false)
	quotes := map[string]model.Quote{"X": testQuote("X", 40, 50, true)}
	require.Empty(t, s.Signal(acct, nil, quotes))
}

func TestTripleMomentumSellsOnDrop(t *testing.T) {
	s := NewTripleMomentum()
	acct := model.NewAccount("momo", "", model.MoneyFromDollars(10_000), model.StrategyTripleMomentum, false)
	acct.ID = 7

	investments := []model.Investment{
		{AccountID: 7, Symbol: "DROP", Quantity: 20},
		{AccountID: 7, Symbol: "FLAT", Quantity: 5},
		{AccountID: 7, Symbol: "STALE", Quantity: 5},
	}
	quotes := map[string]model.Quote{
		"DROP":  testQuote("DROP", 48, 50, true),   // -4%, exit
		"FLAT":  testQuote("FLAT", 49.5, 50, true), // -1%, hold
		"STALE": testQuote("STALE", 40, 50, false), // stale, skip
	}

	orders := s.Signal(acct, investments, quotes)
	require.Len(t, orders, 1)
	require.Equal(t, "DROP", orders[0].Symbol)
	require.Equal(t, model.Sell, orders[0].Side)
	require.Equal(t, model.Market, orders[0].Kind)
	require.Equal(t, int64(20), orders[0].Quantity)
	require.Equal(t, int64(7), orders[0].AccountID)
}

func TestDogsOfTheDowBuysDeepestDecliner(t *testing.T) {
	s := NewDogsOfTheDow()
	acct := model.NewAccount("dogs", "", model.MoneyFromDollars(10_000), model.StrategyDogsOfTheDow, false)
	acct.ID = 3
	acct.AvailableFunds = model.MoneyFromDollars(1_000)

	investments := []model.Investment{{AccountID: 3, Symbol: "HELD", Quantity: 4}}
	quotes := map[string]model.Quote{
		"HELD": testQuote("HELD", 45, 50, true), // already held, skip
		"DIP":  testQuote("DIP", 49, 50, true),  // -$1
		"DIVE": testQuote("DIVE", 10, 14, true), // -$4, deepest
		"UP":   testQuote("UP", 55, 50, true),
	}

	orders := s.Signal(acct, investments, quotes)
	require.Len(t, orders, 1)
	require.Equal(t, "DIVE", orders[0].Symbol)
	require.Equal(t, model.Buy, orders[0].Side)
	// budget is funds/10 = $100, at $10 a share that is 10 shares
	require.Equal(t, int64(10), orders[0].Quantity)
}

func TestDogsOfTheDowNoDecliners(t *testing.T) {
	s := NewDogsOfTheDow()
	acct := model.NewAccount("dogs", "", model.MoneyFromDollars(10_000), model.StrategyDogsOfTheDow, false)

	quotes := map[string]model.Quote{
		"UP":   testQuote("UP", 55, 50, true),
		"ZERO": testQuote("ZERO", 0, 50, true),
	}
	require.Empty(t, s.Signal(acct, nil, quotes))
}
