package order

import (
	"testing"

	"github.com/balch/mocktrade/internal/model"
	"github.com/stretchr/testify/require"
)

func quote(price float64, current bool) model.Quote {
	return model.Quote{
		Symbol:         "X",
		Price:          model.MoneyFromDollars(price),
		PrevClose:      model.MoneyFromDollars(price),
		PriceIsCurrent: current,
	}
}

func TestDecideSymbolMismatch(t *testing.T) {
	o := model.Order{Symbol: "Y", Side: model.Buy, Kind: model.Market, Quantity: 10}

	_, err := Decide(o, quote(50, true))
	require.ErrorIs(t, err, model.ErrInvalidArgument)
}

func TestDecideMarket(t *testing.T) {
	o := model.Order{Symbol: "X", Side: model.Buy, Kind: model.Market, Quantity: 10}

	price, err := Decide(o, quote(50, true))
	require.NoError(t, err)
	require.Equal(t, model.MoneyFromDollars(50), price)

	// stale quote defers, the order stays open for the next pass
	_, err = Decide(o, quote(50, false))
	require.ErrorIs(t, err, model.ErrExecutionDeferred)
}

func TestDecideLimit(t *testing.T) {
	buy := model.Order{Symbol: "X", Side: model.Buy, Kind: model.Limit,
		Quantity: 10, TriggerPrice: model.MoneyFromDollars(50)}
	sell := model.Order{Symbol: "X", Side: model.Sell, Kind: model.Limit,
		Quantity: 10, TriggerPrice: model.MoneyFromDollars(50)}

	tests := []struct {
		name  string
		order model.Order
		price float64
		fills bool
	}{
		{"buy below trigger", buy, 49, true},
		{"buy at trigger", buy, 50, true},
		{"buy above trigger", buy, 51, false},
		{"sell above trigger", sell, 51, true},
		{"sell at trigger", sell, 50, true},
		{"sell below trigger", sell, 49, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, err := Decide(tt.order, quote(tt.price, true))
			if tt.fills {
				require.NoError(t, err)
				require.Equal(t, model.MoneyFromDollars(tt.price), price)
			} else {
				require.ErrorIs(t, err, model.ErrExecutionDeferred)
			}
		})
	}
}

func TestDecideStop(t *testing.T) {
	stopBuy := model.Order{Symbol: "X", Side: model.Buy, Kind: model.Stop,
		Quantity: 10, TriggerPrice: model.MoneyFromDollars(55)}
	stopSell := model.Order{Symbol: "X", Side: model.Sell, Kind: model.Stop,
		Quantity: 10, TriggerPrice: model.MoneyFromDollars(45)}

	// not yet crossed
	_, err := Decide(stopBuy, quote(54, true))
	require.ErrorIs(t, err, model.ErrExecutionDeferred)
	_, err = Decide(stopSell, quote(46, true))
	require.ErrorIs(t, err, model.ErrExecutionDeferred)

	// crossed in the adverse direction: fills at the triggering price
	price, err := Decide(stopBuy, quote(56, true))
	require.NoError(t, err)
	require.Equal(t, model.MoneyFromDollars(56), price)

	price, err = Decide(stopSell, quote(44, true))
	require.NoError(t, err)
	require.Equal(t, model.MoneyFromDollars(44), price)
}

func TestIsTerminalFailure(t *testing.T) {
	require.True(t, isTerminalFailure(model.ErrInsufficientFunds))
	require.True(t, isTerminalFailure(model.ErrInsufficientShares))
	require.True(t, isTerminalFailure(model.ErrAccountNotFound))
	require.False(t, isTerminalFailure(model.ErrExecutionDeferred))
	require.False(t, isTerminalFailure(model.ErrPersistenceFailure))
}
