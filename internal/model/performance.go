package model

import "time"

// PerformanceItem is one persisted snapshot row per (account,
// timestamp). Uniqueness is enforced by the aggregator's
// update-vs-insert branch, not by the storage layer.
type PerformanceItem struct {
	ID             int64     `db:"id"`
	AccountID      int64     `db:"account_id"`
	Timestamp      time.Time `db:"ts"`
	InitialBalance Money     `db:"initial_balance"`
	Value          Money     `db:"value"`
	TodayChange    Money     `db:"today_change"`
	CostBasis      Money     `db:"cost_basis"`
}

// Aggregate folds another row into this one for all-accounts rollups.
func (p *PerformanceItem) Aggregate(o PerformanceItem) {
	p.InitialBalance = p.InitialBalance.Add(o.InitialBalance)
	p.Value = p.Value.Add(o.Value)
	p.TodayChange = p.TodayChange.Add(o.TodayChange)
	p.CostBasis = p.CostBasis.Add(o.CostBasis)
}

// Equal compares the recomputable fields the aggregator diffs when
// deciding update vs skip for an unchanged timestamp.
func (p PerformanceItem) Equal(o PerformanceItem) bool {
	return p.CostBasis == o.CostBasis &&
		p.TodayChange == o.TodayChange &&
		p.Value == o.Value
}
