package portfolio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/balch/mocktrade/internal/account"
	"github.com/balch/mocktrade/internal/finance"
	"github.com/balch/mocktrade/internal/investment"
	"github.com/balch/mocktrade/internal/logger"
	"github.com/balch/mocktrade/internal/model"
	"github.com/balch/mocktrade/internal/order"
	"github.com/balch/mocktrade/internal/snapshot"
	"github.com/balch/mocktrade/internal/strategy"
)

// Portfolio wires the stores, the execution engine, the quote service
// and the snapshot aggregator into one model the scheduler and the
// HTTP surface talk to.
type Portfolio struct {
	accounts    *account.Store
	investments *investment.Store
	orders      *order.Store
	snapshots   *snapshot.Store
	aggregator  *snapshot.Aggregator
	engine      *order.Engine
	quotes      finance.QuoteService
	registry    *strategy.Registry

	logger logger.Logger
}

func NewPortfolio(
	accounts *account.Store,
	investments *investment.Store,
	orders *order.Store,
	snapshots *snapshot.Store,
	aggregator *snapshot.Aggregator,
	engine *order.Engine,
	quotes finance.QuoteService,
	registry *strategy.Registry,
	logger logger.Logger) *Portfolio {
	return &Portfolio{
		accounts:    accounts,
		investments: investments,
		orders:      orders,
		snapshots:   snapshots,
		aggregator:  aggregator,
		engine:      engine,
		quotes:      quotes,
		registry:    registry,
		logger:      logger,
	}
}

// ExecutionPass runs one poll cycle: evaluate every open order against
// the latest quotes, refresh holdings, then persist the performance
// snapshot. Invoked only under the scheduler's exclusive lease.
func (p *Portfolio) ExecutionPass(ctx context.Context) error {
	openOrders, err := p.orders.GetOpenOrders(ctx)
	if err != nil {
		return fmt.Errorf("%w: can't load open orders", err)
	}

	investments, err := p.investments.GetAllInvestments(ctx)
	if err != nil {
		return fmt.Errorf("%w: can't load investments", err)
	}

	quotes := p.fetchQuotes(ctx, openOrders, investments)

	for _, o := range openOrders {
		q, ok := quotes[strings.ToUpper(o.Symbol)]
		if !ok {
			p.logger.Debugf("order %d deferred: no quote for %s", o.ID, o.Symbol)
			continue
		}

		if _, err := p.engine.AttemptExecute(ctx, o, q); err != nil {
			if errors.Is(err, model.ErrExecutionDeferred) {
				p.logger.Debugf("order %d deferred: %s", o.ID, err)
				continue
			}
			p.logger.Warnf("%s: order %d not executed", err, o.ID)
		}
	}

	if err := p.refreshInvestments(ctx, quotes); err != nil {
		return err
	}

	return p.snapshotAccounts(ctx)
}

// fetchQuotes collects one quote batch for the pass. Transport
// failures degrade to an empty set, deferring every order to the next
// cycle instead of failing the pass.
func (p *Portfolio) fetchQuotes(ctx context.Context, orders []model.Order,
	investments []model.Investment) map[string]model.Quote {

	seen := make(map[string]bool)
	symbols := make([]string, 0, len(orders)+len(investments))
	for _, o := range orders {
		s := strings.ToUpper(o.Symbol)
		if !seen[s] {
			seen[s] = true
			symbols = append(symbols, s)
		}
	}
	for _, inv := range investments {
		s := strings.ToUpper(inv.Symbol)
		if !seen[s] {
			seen[s] = true
			symbols = append(symbols, s)
		}
	}

	quotes, err := p.quotes.GetQuotes(ctx, symbols)
	if err != nil {
		p.logger.Warnf("%s: quotes unavailable, deferring pass work", err)
		return map[string]model.Quote{}
	}
	return quotes
}

func (p *Portfolio) refreshInvestments(ctx context.Context, quotes map[string]model.Quote) error {
	investments, err := p.investments.GetAllInvestments(ctx)
	if err != nil {
		return fmt.Errorf("%w: can't reload investments", err)
	}

	for i := range investments {
		q, ok := quotes[strings.ToUpper(investments[i].Symbol)]
		if !ok {
			continue
		}
		if err := p.investments.UpdateQuote(ctx, &investments[i], q); err != nil {
			return err
		}
	}
	return nil
}

func (p *Portfolio) snapshotAccounts(ctx context.Context) error {
	accounts, err := p.accounts.GetAccounts(ctx, true)
	if err != nil {
		return err
	}

	investments, err := p.investments.GetAllInvestments(ctx)
	if err != nil {
		return err
	}

	byAccount := make(map[int64][]model.Investment, len(accounts))
	for _, inv := range investments {
		byAccount[inv.AccountID] = append(byAccount[inv.AccountID], inv)
	}

	return p.aggregator.CreateSnapshotTotals(ctx, accounts, byAccount)
}

// RunStrategySweep asks each account's strategy handler for trade
// signals and submits the resulting orders. The next poll cycle
// executes them.
func (p *Portfolio) RunStrategySweep(ctx context.Context) error {
	accounts, err := p.accounts.GetAccounts(ctx, true)
	if err != nil {
		return err
	}

	allInvestments, err := p.investments.GetAllInvestments(ctx)
	if err != nil {
		return err
	}
	quotes := p.fetchQuotes(ctx, nil, allInvestments)

	byAccount := make(map[int64][]model.Investment, len(accounts))
	for _, inv := range allInvestments {
		byAccount[inv.AccountID] = append(byAccount[inv.AccountID], inv)
	}

	for _, acct := range accounts {
		handler, err := p.registry.Lookup(acct.Strategy)
		if err != nil {
			p.logger.Warnf("%s: skipping strategy sweep for account %d", err, acct.ID)
			continue
		}

		for _, o := range handler.Signal(acct, byAccount[acct.ID], quotes) {
			if err := p.orders.CreateOrder(ctx, &o); err != nil {
				p.logger.Errorf("%s: can't submit strategy order for account %d", err, acct.ID)
				continue
			}
			p.logger.Infof("strategy %s submitted order %d: %s %d %s", acct.Strategy, o.ID, o.Side, o.Quantity, o.Symbol)
		}
	}
	return nil
}

// Query surface used by the HTTP handlers and charting clients.

func (p *Portfolio) GetAccounts(ctx context.Context, allAccounts bool) ([]model.Account, error) {
	return p.accounts.GetAccounts(ctx, allAccounts)
}

func (p *Portfolio) GetAccount(ctx context.Context, id int64) (model.Account, error) {
	return p.accounts.GetAccount(ctx, id)
}

func (p *Portfolio) CreateAccount(ctx context.Context, a *model.Account) error {
	return p.accounts.CreateAccount(ctx, a)
}

func (p *Portfolio) DeleteAccount(ctx context.Context, id int64) error {
	return p.accounts.DeleteAccount(ctx, id)
}

func (p *Portfolio) GetInvestments(ctx context.Context, accountID int64) ([]model.Investment, error) {
	return p.investments.GetInvestments(ctx, accountID)
}

func (p *Portfolio) CreateOrder(ctx context.Context, o *model.Order) error {
	return p.orders.CreateOrder(ctx, o)
}

func (p *Portfolio) CancelOrder(ctx context.Context, id int64) error {
	return p.orders.CancelOrder(ctx, id)
}

func (p *Portfolio) GetOpenOrders(ctx context.Context) ([]model.Order, error) {
	return p.orders.GetOpenOrders(ctx)
}

func (p *Portfolio) HasOpenOrders(ctx context.Context) (bool, error) {
	return p.orders.HasOpenOrders(ctx)
}

func (p *Portfolio) GetCurrentSnapshot(ctx context.Context) ([]model.PerformanceItem, error) {
	return p.snapshots.GetCurrentSnapshot(ctx)
}

func (p *Portfolio) GetCurrentSnapshotForAccount(ctx context.Context, accountID int64) ([]model.PerformanceItem, error) {
	return p.snapshots.GetCurrentSnapshotForAccount(ctx, accountID)
}

func (p *Portfolio) GetCurrentDailySnapshot(ctx context.Context, days int) ([]model.PerformanceItem, error) {
	return p.snapshots.GetCurrentDailySnapshot(ctx, days)
}

func (p *Portfolio) GetCurrentDailySnapshotForAccount(ctx context.Context, accountID int64, days int) ([]model.PerformanceItem, error) {
	return p.snapshots.GetCurrentDailySnapshotForAccount(ctx, accountID, days)
}

func (p *Portfolio) PurgeSnapshots(ctx context.Context, olderThanDays int) (int, error) {
	return p.snapshots.PurgeSnapshots(ctx, olderThanDays)
}

func (p *Portfolio) GetLastQuoteTime(ctx context.Context) (time.Time, error) {
	return p.investments.GetLastTradeTime(ctx)
}

// Rollup aggregates the latest snapshot rows into an "all accounts"
// figure, skipping accounts flagged exclude-from-totals.
func (p *Portfolio) Rollup(ctx context.Context) (model.PerformanceItem, error) {
	accounts, err := p.accounts.GetAccounts(ctx, true)
	if err != nil {
		return model.PerformanceItem{}, err
	}
	excluded := make(map[int64]bool, len(accounts))
	for _, a := range accounts {
		if a.ExcludeFromTotals {
			excluded[a.ID] = true
		}
	}

	items, err := p.snapshots.GetCurrentSnapshot(ctx)
	if err != nil {
		return model.PerformanceItem{}, err
	}

	var total model.PerformanceItem
	for _, item := range items {
		if excluded[item.AccountID] {
			continue
		}
		total.Aggregate(item)
	}
	return total, nil
}
