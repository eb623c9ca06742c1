package finance

import (
	"testing"
	"time"

	"github.com/balch/mocktrade/internal/config"
	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
)

func newTestCalendar(t *testing.T) (*Calendar, *clock.Mock, *time.Location) {
	t.Helper()

	clk := clock.NewMock()
	cfg := config.MarketConfig{
		Timezone:  "America/New_York",
		OpenTime:  "09:30",
		CloseTime: "16:00",
		PollGrace: 30 * time.Minute,
	}
	cal, err := NewCalendar(cfg, clk)
	require.NoError(t, err)

	loc, err := time.LoadLocation(cfg.Timezone)
	require.NoError(t, err)

	return cal, clk, loc
}

func TestIsMarketOpen(t *testing.T) {
	cal, clk, loc := newTestCalendar(t)

	// Wednesday mid-session
	clk.Set(time.Date(2026, 8, 26, 12, 0, 0, 0, loc))
	require.True(t, cal.IsMarketOpen())

	// before the bell
	clk.Set(time.Date(2026, 8, 26, 9, 0, 0, 0, loc))
	require.False(t, cal.IsMarketOpen())

	// right at open
	clk.Set(time.Date(2026, 8, 26, 9, 30, 0, 0, loc))
	require.True(t, cal.IsMarketOpen())

	// at close the session is over
	clk.Set(time.Date(2026, 8, 26, 16, 0, 0, 0, loc))
	require.False(t, cal.IsMarketOpen())

	// Saturday
	clk.Set(time.Date(2026, 8, 29, 12, 0, 0, 0, loc))
	require.False(t, cal.IsMarketOpen())
}

func TestIsInPollTime(t *testing.T) {
	cal, clk, loc := newTestCalendar(t)

	// closing prices settle during the grace window after the bell
	clk.Set(time.Date(2026, 8, 26, 16, 15, 0, 0, loc))
	require.False(t, cal.IsMarketOpen())
	require.True(t, cal.IsInPollTime())

	clk.Set(time.Date(2026, 8, 26, 16, 45, 0, 0, loc))
	require.False(t, cal.IsInPollTime())
}

func TestNextMarketOpen(t *testing.T) {
	cal, clk, loc := newTestCalendar(t)

	// pre-open: same day's bell
	clk.Set(time.Date(2026, 8, 26, 8, 0, 0, 0, loc))
	require.Equal(t, time.Date(2026, 8, 26, 9, 30, 0, 0, loc), cal.NextMarketOpen())

	// mid-session: tomorrow's bell
	clk.Set(time.Date(2026, 8, 26, 12, 0, 0, 0, loc))
	require.Equal(t, time.Date(2026, 8, 27, 9, 30, 0, 0, loc), cal.NextMarketOpen())

	// Friday evening skips the weekend
	clk.Set(time.Date(2026, 8, 28, 18, 0, 0, 0, loc))
	require.Equal(t, time.Date(2026, 8, 31, 9, 30, 0, 0, loc), cal.NextMarketOpen())
}
