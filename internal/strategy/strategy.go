package strategy

import (
	"fmt"
	"sync"

	"github.com/balch/mocktrade/internal/model"
)

// Strategy computes trade signals for one account: candidate orders
// derived from its holdings and the latest quotes. Implementations are
// dispatched through the registry by the account's strategy tag.
type Strategy interface {
	ID() model.StrategyID
	Signal(acct model.Account, investments []model.Investment, quotes map[string]model.Quote) []model.Order
}

// Registry maps strategy identifiers to handlers, populated at
// startup.
type Registry struct {
	mu         sync.RWMutex
	strategies map[model.StrategyID]Strategy
}

func NewRegistry() *Registry {
	return &Registry{strategies: make(map[model.StrategyID]Strategy)}
}

// NewDefaultRegistry registers the shipped strategies.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(none{})
	r.Register(NewTripleMomentum())
	r.Register(NewDogsOfTheDow())
	return r
}

func (r *Registry) Register(s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[s.ID()] = s
}

func (r *Registry) Lookup(id model.StrategyID) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.strategies[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown strategy %q", model.ErrInvalidArgument, id)
	}
	return s, nil
}

type none struct{}

func (none) ID() model.StrategyID { return model.StrategyNone }

func (none) Signal(model.Account, []model.Investment, map[string]model.Quote) []model.Order {
	return nil
}
