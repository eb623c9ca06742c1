package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	m, err := ParseMoney("50.00")
	require.NoError(t, err)
	require.Equal(t, int64(50_000_000), m.MicroCents())

	m, err = ParseMoney("-0.25")
	require.NoError(t, err)
	require.Equal(t, int64(-250_000), m.MicroCents())
	require.True(t, m.IsNegative())

	_, err = ParseMoney("fifty")
	require.Error(t, err)
}

func TestMoneyArithmetic(t *testing.T) {
	funds := MoneyFromDollars(10_000)
	price := MoneyFromDollars(50)

	tradeValue := price.MulQuantity(10)
	require.Equal(t, MoneyFromDollars(500), tradeValue)

	funds = funds.Sub(tradeValue)
	require.Equal(t, MoneyFromDollars(9_500), funds)
	require.Equal(t, "$9500.00", funds.String())
}

func TestMoneySplitQuantity(t *testing.T) {
	costBasis := MoneyFromDollars(500)

	require.Equal(t, MoneyFromDollars(200), costBasis.SplitQuantity(4, 10))
	require.Equal(t, costBasis, costBasis.SplitQuantity(10, 10))
	require.Equal(t, Money(0), costBasis.SplitQuantity(1, 0))

	// thirds round to the nearest micro-cent
	oneDollar := MoneyFromDollars(1)
	require.Equal(t, Money(333_333), oneDollar.SplitQuantity(1, 3))
}

func TestMoneyScan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan(int64(1_000_000)))
	require.Equal(t, MoneyFromDollars(1), m)

	require.Error(t, m.Scan("1.00"))
}
