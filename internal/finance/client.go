package finance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/balch/mocktrade/internal/config"
	"github.com/balch/mocktrade/internal/logger"
	"github.com/balch/mocktrade/internal/model"
	"github.com/bytedance/sonic"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

const _quotesURL = "/v1/quotes"

type quotePayload struct {
	Symbol    string `json:"symbol"`
	Price     string `json:"price"`
	PrevClose string `json:"prev_close"`
	Timestamp int64  `json:"timestamp"`
	IsCurrent bool   `json:"is_current"`
}

type quotesResponse struct {
	Quotes []quotePayload `json:"quotes"`
}

// Client fetches quotes over HTTP. The endpoint serves delayed public
// data, so requests are rate limited rather than batched aggressively.
type Client struct {
	c       *resty.Client
	limiter ratelimit.Limiter

	logger logger.Logger
}

func NewClient(cfg config.FinanceConfig, logger logger.Logger) *Client {
	client := resty.New().
		SetLogger(logger).
		SetBaseURL(cfg.Address).
		SetTimeout(cfg.Timeout)

	return &Client{
		c:       client,
		limiter: ratelimit.New(cfg.RequestsPerMinute, ratelimit.Per(time.Minute)),
		logger:  logger,
	}
}

func (c *Client) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	quotes, err := c.GetQuotes(ctx, []string{symbol})
	if err != nil {
		return model.Quote{}, err
	}

	q, ok := quotes[strings.ToUpper(symbol)]
	if !ok {
		return model.Quote{}, fmt.Errorf("%w: no quote for %s", model.ErrQuoteUnavailable, symbol)
	}
	return q, nil
}

func (c *Client) GetQuotes(ctx context.Context, symbols []string) (map[string]model.Quote, error) {
	if len(symbols) == 0 {
		return map[string]model.Quote{}, nil
	}

	c.limiter.Take()
	resp, err := c.c.R().
		SetQueryParam("symbols", strings.Join(symbols, ",")).
		SetContext(ctx).
		Get(_quotesURL)
	if err != nil {
		return nil, fmt.Errorf("%w: can't request quotes", err)
	}
	defer resp.Body.Close()

	c.logger.Debugf("got response %s status: %s, %s", resp.Request.URL, resp.Status(), resp.Duration())

	if resp.IsError() {
		return nil, fmt.Errorf("%w: quotes request status %s", model.ErrQuoteUnavailable, resp.Status())
	}

	var payload quotesResponse
	if err := sonic.Unmarshal(resp.Bytes(), &payload); err != nil {
		return nil, fmt.Errorf("%w: can't unmarshal quotes", err)
	}

	quotes := make(map[string]model.Quote, len(payload.Quotes))
	for _, p := range payload.Quotes {
		q, err := p.toQuote()
		if err != nil {
			c.logger.Warnf("%s: skipping malformed quote for %s", err, p.Symbol)
			continue
		}
		quotes[q.Symbol] = q
	}

	return quotes, nil
}

func (p quotePayload) toQuote() (model.Quote, error) {
	price, err := model.ParseMoney(p.Price)
	if err != nil {
		return model.Quote{}, fmt.Errorf("%w: bad price", err)
	}
	prevClose, err := model.ParseMoney(p.PrevClose)
	if err != nil {
		return model.Quote{}, fmt.Errorf("%w: bad prev close", err)
	}

	return model.Quote{
		Symbol:         strings.ToUpper(p.Symbol),
		Price:          price,
		PrevClose:      prevClose,
		Timestamp:      time.Unix(p.Timestamp, 0).UTC(),
		PriceIsCurrent: p.IsCurrent,
	}, nil
}

// Service is the full QuoteService: HTTP quotes plus the market-hours
// calendar.
type Service struct {
	*Client
	*Calendar
}

func NewService(client *Client, calendar *Calendar) *Service {
	return &Service{Client: client, Calendar: calendar}
}
