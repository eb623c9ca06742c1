package investment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/balch/mocktrade/internal/logger"
	"github.com/balch/mocktrade/internal/model"
	"github.com/jmoiron/sqlx"
)

const (
	_queryInvestments    = "SELECT * FROM investments WHERE account_id = $1 ORDER BY symbol"
	_queryAllInvestments = "SELECT * FROM investments ORDER BY account_id, symbol"
	_queryLastTradeTime  = "SELECT COALESCE(MAX(last_trade_time), 'epoch'::timestamptz) FROM investments"

	_queryBySymbolForUpdate = "SELECT * FROM investments WHERE account_id = $1 AND symbol = $2 FOR UPDATE"

	_upsertInvestment = `INSERT INTO investments (
								account_id, symbol, quantity, cost_basis, price, prev_day_close, price_is_current, last_trade_time
							) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
							ON CONFLICT (account_id, symbol)
							DO UPDATE SET
								quantity = EXCLUDED.quantity,
								cost_basis = EXCLUDED.cost_basis,
								price = EXCLUDED.price,
								prev_day_close = EXCLUDED.prev_day_close,
								price_is_current = EXCLUDED.price_is_current,
								last_trade_time = EXCLUDED.last_trade_time;`

	_updateQuote = `UPDATE investments SET
							price = $1,
							prev_day_close = $2,
							price_is_current = $3,
							last_trade_time = $4
						WHERE id = $5`

	_deleteInvestment = "DELETE FROM investments WHERE account_id = $1 AND symbol = $2"
)

type Store struct {
	db     *sqlx.DB
	logger logger.Logger
}

func NewStore(db *sqlx.DB, logger logger.Logger) *Store {
	return &Store{db: db, logger: logger}
}

func (s *Store) GetInvestments(ctx context.Context, accountID int64) ([]model.Investment, error) {
	var investments []model.Investment
	if err := s.db.SelectContext(ctx, &investments, _queryInvestments, accountID); err != nil {
		return nil, fmt.Errorf("%w: can't query investments", err)
	}
	return investments, nil
}

func (s *Store) GetAllInvestments(ctx context.Context) ([]model.Investment, error) {
	var investments []model.Investment
	if err := s.db.SelectContext(ctx, &investments, _queryAllInvestments); err != nil {
		return nil, fmt.Errorf("%w: can't query all investments", err)
	}
	return investments, nil
}

// GetLastTradeTime reports the freshest quote applied to any holding,
// the "prices as of" marker for display surfaces.
func (s *Store) GetLastTradeTime(ctx context.Context) (time.Time, error) {
	var ts time.Time
	if err := s.db.GetContext(ctx, &ts, _queryLastTradeTime); err != nil {
		return ts, fmt.Errorf("%w: can't query last trade time", err)
	}
	return ts, nil
}

// GetBySymbolForUpdate locks the position row inside the fill
// transaction. The bool reports whether the account holds a position
// in the symbol.
func (s *Store) GetBySymbolForUpdate(ctx context.Context, tx *sqlx.Tx, accountID int64, symbol string) (model.Investment, bool, error) {
	var inv model.Investment
	if err := tx.GetContext(ctx, &inv, _queryBySymbolForUpdate, accountID, symbol); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return inv, false, nil
		}
		return inv, false, fmt.Errorf("%w: can't lock investment", err)
	}
	return inv, true, nil
}

func (s *Store) Upsert(ctx context.Context, tx *sqlx.Tx, inv model.Investment) error {
	if _, err := tx.ExecContext(ctx, _upsertInvestment,
		inv.AccountID, inv.Symbol, inv.Quantity, inv.CostBasis,
		inv.Price, inv.PrevDayClose, inv.PriceIsCurrent, inv.LastTradeTime,
	); err != nil {
		return fmt.Errorf("%w: can't upsert investment", err)
	}
	return nil
}

// Delete removes a fully sold-out position.
func (s *Store) Delete(ctx context.Context, tx *sqlx.Tx, accountID int64, symbol string) error {
	if _, err := tx.ExecContext(ctx, _deleteInvestment, accountID, symbol); err != nil {
		return fmt.Errorf("%w: can't delete investment", err)
	}
	return nil
}

// UpdateQuote refreshes a holding's market value from a quote outside
// any fill transaction.
func (s *Store) UpdateQuote(ctx context.Context, inv *model.Investment, q model.Quote) error {
	inv.ApplyQuote(q)
	if _, err := s.db.ExecContext(ctx, _updateQuote,
		inv.Price, inv.PrevDayClose, inv.PriceIsCurrent, inv.LastTradeTime, inv.ID,
	); err != nil {
		return fmt.Errorf("%w: can't update investment quote", err)
	}
	return nil
}
