package finance

import (
	"context"
	"time"

	"github.com/balch/mocktrade/internal/model"
)

// QuoteService is the market-data collaborator: quote retrieval plus
// market-hours state. Implementations may fail on the network side;
// callers treat failed quotes as "not current" and defer, never crash.
type QuoteService interface {
	GetQuote(ctx context.Context, symbol string) (model.Quote, error)
	GetQuotes(ctx context.Context, symbols []string) (map[string]model.Quote, error)

	IsMarketOpen() bool
	NextMarketOpen() time.Time
	IsInPollTime() bool
}
