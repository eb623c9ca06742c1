package model

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a fixed-precision monetary amount stored as micro-cents
// (1 dollar = 1_000_000 micro-cents). Integer representation keeps
// account arithmetic exact across any sequence of fills.
type Money int64

const _microCentsPerDollar int64 = 1_000_000

func MoneyFromDollars(dollars float64) Money {
	return MoneyFromDecimal(decimal.NewFromFloat(dollars))
}

func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money(d.Mul(decimal.NewFromInt(_microCentsPerDollar)).Round(0).IntPart())
}

func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: can't parse money value %q", err, s)
	}
	return MoneyFromDecimal(d), nil
}

func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), 0).Div(decimal.NewFromInt(_microCentsPerDollar))
}

func (m Money) MicroCents() int64 { return int64(m) }

func (m Money) Add(o Money) Money { return m + o }

func (m Money) Sub(o Money) Money { return m - o }

// MulQuantity returns the value of qty units priced at m each.
func (m Money) MulQuantity(qty int64) Money { return m * Money(qty) }

// SplitQuantity divides m across total units and returns the portion
// attributable to qty of them, rounded to the nearest micro-cent.
func (m Money) SplitQuantity(qty, total int64) Money {
	if total == 0 {
		return 0
	}
	portion := m.Decimal().
		Mul(decimal.NewFromInt(qty)).
		Div(decimal.NewFromInt(total))
	return MoneyFromDecimal(portion)
}

func (m Money) IsNegative() bool { return m < 0 }

func (m Money) IsZero() bool { return m == 0 }

func (m Money) String() string {
	return "$" + m.Decimal().StringFixed(2)
}

func (m Money) Value() (driver.Value, error) {
	return int64(m), nil
}

func (m *Money) Scan(src interface{}) error {
	switch v := src.(type) {
	case int64:
		*m = Money(v)
	case nil:
		*m = 0
	default:
		return fmt.Errorf("can't scan money from %T", src)
	}
	return nil
}
