package order

import (
	"context"
	"fmt"

	"github.com/balch/mocktrade/internal/logger"
	"github.com/balch/mocktrade/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const _orderRequestPrefix = "mocktrade-"

const (
	_insertOrder = `INSERT INTO orders (
						request_id, account_id, symbol, side, kind, quantity, trigger_price, status
					) VALUES ($1,$2,$3,$4,$5,$6,$7,'OPEN')
					RETURNING id, created_at`

	_queryOpenOrders = "SELECT * FROM orders WHERE status = 'OPEN' ORDER BY created_at"
	_queryOrder      = "SELECT * FROM orders WHERE id = $1"
	_queryAnyOpen    = "SELECT EXISTS (SELECT 1 FROM orders WHERE status = 'OPEN')"

	// Status moves exactly once from OPEN to a terminal state; the
	// WHERE clause makes a second transition a no-op we can detect.
	_updateStatus = "UPDATE orders SET status = $1, fail_reason = $2 WHERE id = $3 AND status = 'OPEN'"
)

type Store struct {
	db     *sqlx.DB
	logger logger.Logger
}

func NewStore(db *sqlx.DB, logger logger.Logger) *Store {
	return &Store{db: db, logger: logger}
}

func (s *Store) CreateOrder(ctx context.Context, o *model.Order) error {
	if o.Quantity <= 0 {
		return fmt.Errorf("%w: non-positive quantity %d", model.ErrInvalidArgument, o.Quantity)
	}
	if o.Symbol == "" {
		return fmt.Errorf("%w: empty symbol", model.ErrInvalidArgument)
	}
	if (o.Kind == model.Limit || o.Kind == model.Stop) && o.TriggerPrice <= 0 {
		return fmt.Errorf("%w: %s order needs a positive trigger price", model.ErrInvalidArgument, o.Kind)
	}

	o.RequestID = _orderRequestPrefix + uuid.NewString()
	o.Status = model.OrderOpen

	if err := s.db.QueryRowxContext(ctx, _insertOrder,
		o.RequestID, o.AccountID, o.Symbol, o.Side, o.Kind, o.Quantity, o.TriggerPrice,
	).Scan(&o.ID, &o.CreatedAt); err != nil {
		return fmt.Errorf("%w: can't insert order", err)
	}
	return nil
}

func (s *Store) GetOrder(ctx context.Context, id int64) (model.Order, error) {
	var o model.Order
	if err := s.db.GetContext(ctx, &o, _queryOrder, id); err != nil {
		return o, fmt.Errorf("%w: can't query order", err)
	}
	return o, nil
}

// GetOpenOrders returns OPEN orders in creation order so earlier
// submissions execute first.
func (s *Store) GetOpenOrders(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	if err := s.db.SelectContext(ctx, &orders, _queryOpenOrders); err != nil {
		return nil, fmt.Errorf("%w: can't query open orders", err)
	}
	return orders, nil
}

func (s *Store) HasOpenOrders(ctx context.Context) (bool, error) {
	var exists bool
	if err := s.db.GetContext(ctx, &exists, _queryAnyOpen); err != nil {
		return false, fmt.Errorf("%w: can't check open orders", err)
	}
	return exists, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id int64, status model.OrderStatus, reason string) error {
	return s.updateStatus(ctx, s.db, id, status, reason)
}

func (s *Store) updateStatusTx(ctx context.Context, tx *sqlx.Tx, id int64, status model.OrderStatus, reason string) error {
	return s.updateStatus(ctx, tx, id, status, reason)
}

func (s *Store) updateStatus(ctx context.Context, q sqlx.ExtContext, id int64, status model.OrderStatus, reason string) error {
	if !status.IsTerminal() {
		return fmt.Errorf("%w: status %s is not terminal", model.ErrInvalidArgument, status)
	}

	res, err := q.ExecContext(ctx, _updateStatus, status, reason, id)
	if err != nil {
		return fmt.Errorf("%w: can't update order status", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: can't read rows affected", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: order %d", model.ErrOrderNotOpen, id)
	}
	return nil
}

// CancelOrder moves an OPEN order to CANCELLED on user request.
func (s *Store) CancelOrder(ctx context.Context, id int64) error {
	return s.UpdateStatus(ctx, id, model.OrderCancelled, "cancelled by user")
}
