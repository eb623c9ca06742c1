package snapshot

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
	_insertSnapshot = `INSERT INTO snapshots (
							account_id, ts, initial_balance, value, today_change, cost_basis
						) VALUES ($1,$2,$3,$4,$5,$6)`

	_updateSnapshot = `UPDATE snapshots SET
							value = $1,
							today_change = $2,
							cost_basis = $3
						WHERE id = $4`

	_queryLastSnapshot = "SELECT * FROM snapshots WHERE account_id = $1 ORDER BY ts DESC LIMIT 1"

	_queryCurrentSnapshot = `SELECT DISTINCT ON (account_id) *
								FROM snapshots
								ORDER BY account_id, ts DESC`

	_queryCurrentSnapshotAccount = `SELECT * FROM snapshots
										WHERE account_id = $1
										ORDER BY ts DESC LIMIT 1`

	_queryDailySnapshot = `SELECT * FROM snapshots
								WHERE ts >= NOW() - make_interval(days => $1)
								ORDER BY ts, account_id`

	_queryDailySnapshotAccount = `SELECT * FROM snapshots
									WHERE account_id = $1 AND ts >= NOW() - make_interval(days => $2)
									ORDER BY ts`

	_purgeSnapshots = "DELETE FROM snapshots WHERE ts < NOW() - make_interval(days => $1)"
)

type Store struct {
	db     *sqlx.DB
	logger logger.Logger
}

func NewStore(db *sqlx.DB, logger logger.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// GetLastSnapshot returns the most recent row for the account, or nil
// when the account has never been snapshotted.
func (s *Store) GetLastSnapshot(ctx context.Context, accountID int64) (*model.PerformanceItem, error) {
	var item model.PerformanceItem
	if err := s.db.GetContext(ctx, &item, _queryLastSnapshot, accountID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: can't query last snapshot", err)
	}
	return &item, nil
}

// GetCurrentSnapshot returns the latest row per account.
func (s *Store) GetCurrentSnapshot(ctx context.Context) ([]model.PerformanceItem, error) {
	var items []model.PerformanceItem
	if err := s.db.SelectContext(ctx, &items, _queryCurrentSnapshot); err != nil {
		return nil, fmt.Errorf("%w: can't query current snapshot", err)
	}
	return items, nil
}

func (s *Store) GetCurrentSnapshotForAccount(ctx context.Context, accountID int64) ([]model.PerformanceItem, error) {
	var items []model.PerformanceItem
	if err := s.db.SelectContext(ctx, &items, _queryCurrentSnapshotAccount, accountID); err != nil {
		return nil, fmt.Errorf("%w: can't query current account snapshot", err)
	}
	return items, nil
}

// GetCurrentDailySnapshot returns the bounded time window ordered by
// timestamp ascending, the shape the charting surface consumes.
func (s *Store) GetCurrentDailySnapshot(ctx context.Context, days int) ([]model.PerformanceItem, error) {
	var items []model.PerformanceItem
	if err := s.db.SelectContext(ctx, &items, _queryDailySnapshot, days); err != nil {
		return nil, fmt.Errorf("%w: can't query daily snapshot", err)
	}
	return items, nil
}

func (s *Store) GetCurrentDailySnapshotForAccount(ctx context.Context, accountID int64, days int) ([]model.PerformanceItem, error) {
	var items []model.PerformanceItem
	if err := s.db.SelectContext(ctx, &items, _queryDailySnapshotAccount, accountID, days); err != nil {
		return nil, fmt.Errorf("%w: can't query daily account snapshot", err)
	}
	return items, nil
}

// WriteBatch applies the insert-set and update-set as one transaction;
// on any failure the whole batch rolls back and no partial snapshot is
// observable.
func (s *Store) WriteBatch(ctx context.Context, inserts, updates []model.PerformanceItem) error {
	if len(inserts) == 0 && len(updates) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: can't begin snapshot tx: %s", model.ErrPersistenceFailure, err)
	}
	defer tx.Rollback()

	for _, item := range inserts {
		if _, err := tx.ExecContext(ctx, _insertSnapshot,
			item.AccountID, item.Timestamp, item.InitialBalance,
			item.Value, item.TodayChange, item.CostBasis,
		); err != nil {
			return fmt.Errorf("%w: can't insert snapshot: %s", model.ErrPersistenceFailure, err)
		}
	}
	for _, item := range updates {
		if _, err := tx.ExecContext(ctx, _updateSnapshot,
			item.Value, item.TodayChange, item.CostBasis, item.ID,
		); err != nil {
			return fmt.Errorf("%w: can't update snapshot: %s", model.ErrPersistenceFailure, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: can't commit snapshot batch: %s", model.ErrPersistenceFailure, err)
	}
	return nil
}

// PurgeSnapshots deletes rows strictly older than the cutoff and
// returns the count removed. Not transactional with snapshot batches.
func (s *Store) PurgeSnapshots(ctx context.Context, olderThanDays int) (int, error) {
	res, err := s.db.ExecContext(ctx, _purgeSnapshots, olderThanDays)
	if err != nil {
		return 0, fmt.Errorf("%w: can't purge snapshots", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: can't read purge count", err)
	}
	return int(rows), nil
}
