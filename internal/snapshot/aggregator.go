package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/balch/mocktrade/internal/logger"
	"github.com/balch/mocktrade/internal/model"
	"github.com/benbjohnson/clock"
)

// store is the persistence surface the aggregator needs.
type store interface {
	GetLastSnapshot(ctx context.Context, accountID int64) (*model.PerformanceItem, error)
	WriteBatch(ctx context.Context, inserts, updates []model.PerformanceItem) error
}

// Aggregator turns a batch of per-account performance figures into
// durable, deduplicated snapshot rows. Idempotent per timestamp: the
// same inputs at the same cycle produce no extra rows and no changes.
type Aggregator struct {
	store       store
	clock       clock.Clock
	granularity time.Duration

	logger logger.Logger
}

func NewAggregator(store store, clk clock.Clock, granularity time.Duration, logger logger.Logger) *Aggregator {
	return &Aggregator{
		store:       store,
		clock:       clk,
		granularity: granularity,
		logger:      logger,
	}
}

// Partition classifies a computed item against the account's last
// persisted snapshot: same timestamp and changed figures means an
// in-place update, a new timestamp means an insert, otherwise skip.
func Partition(item model.PerformanceItem, last *model.PerformanceItem) (insert bool, update *model.PerformanceItem) {
	if last == nil || !last.Timestamp.Equal(item.Timestamp) {
		return true, nil
	}

	if last.Equal(item) {
		return false, nil
	}

	updated := *last
	updated.Value = item.Value
	updated.TodayChange = item.TodayChange
	updated.CostBasis = item.CostBasis
	return false, &updated
}

// CreateSnapshotTotals computes and persists one snapshot row per
// account holding at least one investment. The accounts commit as one
// atomic bundle so the cross-account sums always add up.
func (a *Aggregator) CreateSnapshotTotals(ctx context.Context, accounts []model.Account,
	accountToInvestments map[int64][]model.Investment) error {

	timestamp := a.clock.Now().UTC().Truncate(a.granularity)

	inserts := make([]model.PerformanceItem, 0, len(accounts))
	updates := make([]model.PerformanceItem, 0, len(accounts))

	for _, acct := range accounts {
		investments := accountToInvestments[acct.ID]
		if len(investments) == 0 {
			continue
		}

		item := acct.PerformanceItem(investments, timestamp)

		last, err := a.store.GetLastSnapshot(ctx, acct.ID)
		if err != nil {
			return fmt.Errorf("%w: can't load last snapshot for account %d", err, acct.ID)
		}

		insert, update := Partition(item, last)
		switch {
		case insert:
			inserts = append(inserts, item)
		case update != nil:
			updates = append(updates, *update)
		}
	}

	if len(inserts) == 0 && len(updates) == 0 {
		a.logger.Debugf("snapshot unchanged at %s", timestamp)
		return nil
	}

	if err := a.store.WriteBatch(ctx, inserts, updates); err != nil {
		return err
	}

	a.logger.Infof("snapshot at %s: %d inserted, %d updated", timestamp, len(inserts), len(updates))
	return nil
}
