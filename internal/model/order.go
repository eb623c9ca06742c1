package model

import (
	"database/sql"
	"time"
)

type OrderSide string

const (
	Buy  OrderSide = "buy"
	Sell OrderSide = "sell"
)

type OrderKind string

const (
	Market OrderKind = "market"
	Limit  OrderKind = "limit"
	Stop   OrderKind = "stop"
)

type OrderStatus string

const (
	OrderOpen      OrderStatus = "OPEN"
	OrderFilled    OrderStatus = "FILLED"
	OrderCancelled OrderStatus = "CANCELLED"
	OrderError     OrderStatus = "ERROR"
)

func (s OrderStatus) IsTerminal() bool {
	return s != OrderOpen
}

// Order quantity and trigger price are immutable after creation; only
// the status moves, exactly once, from OPEN to a terminal state.
type Order struct {
	ID           int64          `db:"id"`
	RequestID    string         `db:"request_id"`
	AccountID    int64          `db:"account_id"`
	Symbol       string         `db:"symbol"`
	Side         OrderSide      `db:"side"`
	Kind         OrderKind      `db:"kind"`
	Quantity     int64          `db:"quantity"`
	TriggerPrice Money          `db:"trigger_price"`
	Status       OrderStatus    `db:"status"`
	FailReason   sql.NullString `db:"fail_reason"`
	CreatedAt    time.Time      `db:"created_at"`
}

// OrderResult carries the realized fill back to the caller.
type OrderResult struct {
	OrderID   int64
	Price     Money
	Value     Money
	Timestamp time.Time
}
