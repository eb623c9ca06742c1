package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/balch/mocktrade/internal/logger"
	"github.com/balch/mocktrade/internal/model"
	"github.com/jmoiron/sqlx"
)

const (
	_insertAccount = `INSERT INTO accounts (
							name, description, initial_balance, available_funds, strategy, exclude_from_totals
						) VALUES ($1,$2,$3,$4,$5,$6)
						RETURNING id, created_at`
	_queryAccount          = "SELECT * FROM accounts WHERE id = $1"
	_queryAccounts         = "SELECT * FROM accounts ORDER BY id"
	_queryAccountsIncluded = "SELECT * FROM accounts WHERE exclude_from_totals = FALSE ORDER BY id"

	_queryAccountForUpdate = "SELECT * FROM accounts WHERE id = $1 FOR UPDATE"
	_updateAvailableFunds  = "UPDATE accounts SET available_funds = $1 WHERE id = $2"

	_queryHasOpenOrders = "SELECT EXISTS (SELECT 1 FROM orders WHERE account_id = $1 AND status = 'OPEN')"
	_deleteAccount      = "DELETE FROM accounts WHERE id = $1"
)

type Store struct {
	db     *sqlx.DB
	logger logger.Logger
}

func NewStore(db *sqlx.DB, logger logger.Logger) *Store {
	return &Store{db: db, logger: logger}
}

func (s *Store) CreateAccount(ctx context.Context, a *model.Account) error {
	if a.Name == "" {
		return fmt.Errorf("%w: empty account name", model.ErrInvalidArgument)
	}
	if a.InitialBalance.IsNegative() {
		return fmt.Errorf("%w: negative initial balance", model.ErrInvalidArgument)
	}

	if err := s.db.QueryRowxContext(ctx, _insertAccount,
		a.Name, a.Description, a.InitialBalance, a.AvailableFunds, a.Strategy, a.ExcludeFromTotals,
	).Scan(&a.ID, &a.CreatedAt); err != nil {
		return fmt.Errorf("%w: can't insert account", err)
	}
	return nil
}

func (s *Store) GetAccount(ctx context.Context, id int64) (model.Account, error) {
	var a model.Account
	if err := s.db.GetContext(ctx, &a, _queryAccount, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return a, fmt.Errorf("%w: id %d", model.ErrAccountNotFound, id)
		}
		return a, fmt.Errorf("%w: can't query account", err)
	}
	return a, nil
}

// GetAccounts returns every account, or only the ones included in
// totals when allAccounts is false.
func (s *Store) GetAccounts(ctx context.Context, allAccounts bool) ([]model.Account, error) {
	query := _queryAccountsIncluded
	if allAccounts {
		query = _queryAccounts
	}

	var accounts []model.Account
	if err := s.db.SelectContext(ctx, &accounts, query); err != nil {
		return nil, fmt.Errorf("%w: can't query accounts", err)
	}
	return accounts, nil
}

// DeleteAccount refuses to remove an account while open orders still
// reference it.
func (s *Store) DeleteAccount(ctx context.Context, id int64) error {
	var hasOpen bool
	if err := s.db.GetContext(ctx, &hasOpen, _queryHasOpenOrders, id); err != nil {
		return fmt.Errorf("%w: can't check open orders", err)
	}
	if hasOpen {
		return fmt.Errorf("%w: account %d has open orders", model.ErrInvalidArgument, id)
	}

	if _, err := s.db.ExecContext(ctx, _deleteAccount, id); err != nil {
		return fmt.Errorf("%w: can't delete account", err)
	}
	return nil
}

// GetAccountForUpdate locks the account row for the duration of the
// enclosing transaction. Fills are serialized per account through this
// lock.
func (s *Store) GetAccountForUpdate(ctx context.Context, tx *sqlx.Tx, id int64) (model.Account, error) {
	var a model.Account
	if err := tx.GetContext(ctx, &a, _queryAccountForUpdate, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return a, fmt.Errorf("%w: id %d", model.ErrAccountNotFound, id)
		}
		return a, fmt.Errorf("%w: can't lock account", err)
	}
	return a, nil
}

func (s *Store) UpdateAvailableFunds(ctx context.Context, tx *sqlx.Tx, id int64, funds model.Money) error {
	if _, err := tx.ExecContext(ctx, _updateAvailableFunds, funds, id); err != nil {
		return fmt.Errorf("%w: can't update available funds", err)
	}
	return nil
}

// Rollup combines accounts into an "all accounts" aggregate, omitting
// accounts flagged exclude-from-totals.
func Rollup(accounts []model.Account) model.Account {
	total := model.Account{Name: "Totals"}
	for _, a := range accounts {
		if a.ExcludeFromTotals {
			continue
		}
		total.Aggregate(a)
	}
	return total
}
