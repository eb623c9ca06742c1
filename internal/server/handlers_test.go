package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/balch/mocktrade/internal/logger"
	"github.com/balch/mocktrade/internal/model"
	"github.com/balch/mocktrade/internal/scheduler"
	"github.com/benbjohnson/clock"
	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/require"
)

type stubMarket struct{}

func (stubMarket) IsInPollTime() bool { return true }

func (stubMarket) NextMarketOpen() time.Time { return time.Time{} }

type stubOrders struct{}

func (stubOrders) HasOpenOrders(context.Context) (bool, error) { return false, nil }

type stubRunner struct {
	mu   sync.Mutex
	runs int
}

func (r *stubRunner) ExecutionPass(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs++
	return nil
}

func (r *stubRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs
}

func newTestAPI(runner *stubRunner) *API {
	sched := scheduler.NewScheduler(clock.NewMock(), stubMarket{}, stubOrders{}, runner,
		time.Minute, time.Second, logger.NewNop())
	return NewAPI(nil, sched, logger.NewNop())
}

// The admin override runs the pass before replying, so the response
// reports the outcome rather than a promise.
func TestForceExecuteRunsPassBeforeReplying(t *testing.T) {
	runner := &stubRunner{}
	api := newTestAPI(runner)

	req := httptest.NewRequest(http.MethodPost, "/admin/execute", nil)
	rec := httptest.NewRecorder()
	api.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, runner.count())

	var body map[string]bool
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body["executed"])
}

func TestFieldDescriptorEndpoints(t *testing.T) {
	api := newTestAPI(&stubRunner{})
	router := api.Router()

	for path, want := range map[string][]model.FieldSpec{
		"/accounts/fields": model.AccountFieldSpecs,
		"/orders/fields":   model.OrderFieldSpecs,
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, path)

		var specs []model.FieldSpec
		require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &specs))
		require.Equal(t, want, specs, path)
	}
}
