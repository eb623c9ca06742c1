package finance

import (
	"fmt"
	"time"

	"github.com/balch/mocktrade/internal/config"
	"github.com/benbjohnson/clock"
)

// Calendar answers market-hours questions from configured session
// times. Weekends are closed; exchange holidays are out of scope, a
// closed-feed day just means every quote comes back stale.
type Calendar struct {
	clock    clock.Clock
	location *time.Location

	openHour, openMinute   int
	closeHour, closeMinute int
	pollGrace              time.Duration
}

func NewCalendar(cfg config.MarketConfig, clk clock.Clock) (*Calendar, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: can't load market timezone", err)
	}

	open, err := time.Parse("15:04", cfg.OpenTime)
	if err != nil {
		return nil, fmt.Errorf("%w: can't parse open time", err)
	}
	closeT, err := time.Parse("15:04", cfg.CloseTime)
	if err != nil {
		return nil, fmt.Errorf("%w: can't parse close time", err)
	}

	return &Calendar{
		clock:       clk,
		location:    loc,
		openHour:    open.Hour(),
		openMinute:  open.Minute(),
		closeHour:   closeT.Hour(),
		closeMinute: closeT.Minute(),
		pollGrace:   cfg.PollGrace,
	}, nil
}

func (c *Calendar) sessionBounds(day time.Time) (time.Time, time.Time) {
	open := time.Date(day.Year(), day.Month(), day.Day(),
		c.openHour, c.openMinute, 0, 0, c.location)
	closeT := time.Date(day.Year(), day.Month(), day.Day(),
		c.closeHour, c.closeMinute, 0, 0, c.location)
	return open, closeT
}

func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}

func (c *Calendar) IsMarketOpen() bool {
	now := c.clock.Now().In(c.location)
	if isWeekend(now) {
		return false
	}
	open, closeT := c.sessionBounds(now)
	return !now.Before(open) && now.Before(closeT)
}

// IsInPollTime extends the session by the poll grace window so closing
// prices settle into the snapshot ledger after the bell.
func (c *Calendar) IsInPollTime() bool {
	now := c.clock.Now().In(c.location)
	if isWeekend(now) {
		return false
	}
	open, closeT := c.sessionBounds(now)
	return !now.Before(open) && now.Before(closeT.Add(c.pollGrace))
}

// NextMarketOpen returns the next session open strictly after now.
func (c *Calendar) NextMarketOpen() time.Time {
	now := c.clock.Now().In(c.location)

	day := now
	for {
		open, _ := c.sessionBounds(day)
		if open.After(now) && !isWeekend(day) {
			return open
		}
		day = day.AddDate(0, 0, 1)
	}
}
