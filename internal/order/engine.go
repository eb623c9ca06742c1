package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/balch/mocktrade/internal/account"
	"github.com/balch/mocktrade/internal/investment"
	"github.com/balch/mocktrade/internal/logger"
	"github.com/balch/mocktrade/internal/model"
	"github.com/benbjohnson/clock"
	"github.com/jmoiron/sqlx"
)

// Engine evaluates one order against one quote and, on a fill, applies
// the funds movement, the position change and the status transition as
// a single transaction.
type Engine struct {
	db          *sqlx.DB
	orders      *Store
	accounts    *account.Store
	investments *investment.Store
	clock       clock.Clock

	logger logger.Logger
}

func NewEngine(db *sqlx.DB, orders *Store, accounts *account.Store,
	investments *investment.Store, clk clock.Clock, logger logger.Logger) *Engine {
	return &Engine{
		db:          db,
		orders:      orders,
		accounts:    accounts,
		investments: investments,
		clock:       clk,
		logger:      logger,
	}
}

// Decide applies the fill rules and returns the execution price.
// ErrExecutionDeferred means the order stays OPEN for the next pass.
func Decide(o model.Order, q model.Quote) (model.Money, error) {
	if !strings.EqualFold(o.Symbol, q.Symbol) {
		return 0, fmt.Errorf("%w: order symbol %s vs quote %s", model.ErrInvalidArgument, o.Symbol, q.Symbol)
	}

	if !q.PriceIsCurrent {
		return 0, fmt.Errorf("%w: quote for %s is stale", model.ErrExecutionDeferred, q.Symbol)
	}

	switch o.Kind {
	case model.Market:
		return q.Price, nil

	case model.Limit:
		if o.Side == model.Buy && q.Price <= o.TriggerPrice {
			return q.Price, nil
		}
		if o.Side == model.Sell && q.Price >= o.TriggerPrice {
			return q.Price, nil
		}
		return 0, fmt.Errorf("%w: limit condition unmet for %s", model.ErrExecutionDeferred, o.Symbol)

	case model.Stop:
		// Once price crosses the stop in the adverse direction the
		// order fills as a market order at the triggering price.
		if o.Side == model.Buy && q.Price >= o.TriggerPrice {
			return q.Price, nil
		}
		if o.Side == model.Sell && q.Price <= o.TriggerPrice {
			return q.Price, nil
		}
		return 0, fmt.Errorf("%w: stop not triggered for %s", model.ErrExecutionDeferred, o.Symbol)

	default:
		return 0, fmt.Errorf("%w: unknown order kind %s", model.ErrInvalidArgument, o.Kind)
	}
}

// AttemptExecute evaluates the order against the quote. Deferred
// results leave the order OPEN; irrecoverable ones mark it ERROR and
// are never retried automatically.
func (e *Engine) AttemptExecute(ctx context.Context, o model.Order, q model.Quote) (model.OrderResult, error) {
	if o.Quantity <= 0 {
		err := fmt.Errorf("%w: non-positive quantity %d", model.ErrInvalidArgument, o.Quantity)
		e.failOrder(ctx, o, err)
		return model.OrderResult{}, err
	}

	price, err := Decide(o, q)
	if err != nil {
		return model.OrderResult{}, err
	}

	result := model.OrderResult{
		OrderID:   o.ID,
		Price:     price,
		Value:     price.MulQuantity(o.Quantity),
		Timestamp: e.clock.Now().UTC(),
	}

	if err := e.applyFill(ctx, o, result, q); err != nil {
		if isTerminalFailure(err) {
			e.failOrder(ctx, o, err)
		}
		return model.OrderResult{}, err
	}

	e.logger.Infof("order %d filled: %s %d %s @ %s", o.ID, o.Side, o.Quantity, o.Symbol, result.Price)
	return result, nil
}

func isTerminalFailure(err error) bool {
	return errors.Is(err, model.ErrInsufficientFunds) ||
		errors.Is(err, model.ErrInsufficientShares) ||
		errors.Is(err, model.ErrAccountNotFound)
}

// applyFill mutates account funds, the investment row and the order
// status inside one transaction; partial application is never visible.
func (e *Engine) applyFill(ctx context.Context, o model.Order, res model.OrderResult, q model.Quote) error {
	tx, err := e.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: can't begin fill tx", err)
	}
	defer tx.Rollback()

	acct, err := e.accounts.GetAccountForUpdate(ctx, tx, o.AccountID)
	if err != nil {
		return err
	}

	inv, held, err := e.investments.GetBySymbolForUpdate(ctx, tx, o.AccountID, o.Symbol)
	if err != nil {
		return err
	}

	switch o.Side {
	case model.Buy:
		if acct.AvailableFunds < res.Value {
			return fmt.Errorf("%w: need %s, have %s", model.ErrInsufficientFunds, res.Value, acct.AvailableFunds)
		}
		if !held {
			inv = model.Investment{AccountID: o.AccountID, Symbol: strings.ToUpper(o.Symbol)}
		}
		inv.ApplyBuy(res.Price, o.Quantity)
		inv.ApplyQuote(q)
		acct.AvailableFunds = acct.AvailableFunds.Sub(res.Value)

		if err := e.investments.Upsert(ctx, tx, inv); err != nil {
			return err
		}

	case model.Sell:
		if !held || inv.Quantity < o.Quantity {
			return fmt.Errorf("%w: selling %d of %s", model.ErrInsufficientShares, o.Quantity, o.Symbol)
		}
		inv.ApplySell(res.Price, o.Quantity)
		inv.ApplyQuote(q)
		acct.AvailableFunds = acct.AvailableFunds.Add(res.Value)

		if inv.Quantity == 0 {
			if err := e.investments.Delete(ctx, tx, o.AccountID, o.Symbol); err != nil {
				return err
			}
		} else if err := e.investments.Upsert(ctx, tx, inv); err != nil {
			return err
		}

	default:
		return fmt.Errorf("%w: unknown order side %s", model.ErrInvalidArgument, o.Side)
	}

	if err := e.accounts.UpdateAvailableFunds(ctx, tx, acct.ID, acct.AvailableFunds); err != nil {
		return err
	}

	if err := e.orders.updateStatusTx(ctx, tx, o.ID, model.OrderFilled, ""); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: can't commit fill: %s", model.ErrPersistenceFailure, err)
	}
	return nil
}

// failOrder records the terminal ERROR state outside the rolled-back
// fill transaction.
func (e *Engine) failOrder(ctx context.Context, o model.Order, cause error) {
	if err := e.orders.UpdateStatus(ctx, o.ID, model.OrderError, cause.Error()); err != nil {
		e.logger.Errorf("%s: can't mark order %d failed", err, o.ID)
		return
	}
	e.logger.Warnf("order %d moved to ERROR: %s", o.ID, cause)
}
