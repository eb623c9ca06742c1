package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/balch/mocktrade/internal/logger"
	"github.com/balch/mocktrade/internal/model"
	"github.com/balch/mocktrade/internal/portfolio"
	"github.com/balch/mocktrade/internal/scheduler"
	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type API struct {
	portfolio *portfolio.Portfolio
	scheduler *scheduler.Scheduler

	logger logger.Logger
}

func NewAPI(p *portfolio.Portfolio, s *scheduler.Scheduler, logger logger.Logger) *API {
	return &API{portfolio: p, scheduler: s, logger: logger}
}

func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/admin/execute", a.forceExecute)

	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", a.listAccounts)
		r.Post("/", a.createAccount)
		r.Get("/fields", a.accountFields)
		r.Delete("/{id}", a.deleteAccount)
		r.Get("/{id}/investments", a.listInvestments)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/open", a.listOpenOrders)
		r.Post("/", a.createOrder)
		r.Get("/fields", a.orderFields)
		r.Delete("/{id}", a.cancelOrder)
	})

	r.Route("/snapshots", func(r chi.Router) {
		r.Get("/", a.currentSnapshot)
		r.Get("/totals", a.snapshotTotals)
		r.Get("/daily", a.dailySnapshot)
	})

	return r
}

// forceExecute is the only externally triggerable override: it runs an
// execution pass regardless of market hours, synchronously, and
// reports whether the pass ran or was skipped for one already in
// flight.
func (a *API) forceExecute(w http.ResponseWriter, r *http.Request) {
	executed := a.scheduler.ForceRun()
	a.writeJSON(w, http.StatusOK, map[string]bool{"executed": executed})
}

// Form descriptors for client-side rendering and validation.

func (a *API) accountFields(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, model.AccountFieldSpecs)
}

func (a *API) orderFields(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, model.OrderFieldSpecs)
}

func (a *API) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := a.portfolio.GetAccounts(r.Context(), true)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, accounts)
}

type createAccountRequest struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	InitialBalance    string `json:"initial_balance"`
	Strategy          string `json:"strategy"`
	ExcludeFromTotals bool   `json:"exclude_from_totals"`
}

func (a *API) createAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := a.readJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}

	balance, err := model.ParseMoney(req.InitialBalance)
	if err != nil {
		a.writeError(w, errors.Join(model.ErrInvalidArgument, err))
		return
	}

	strategyID := model.StrategyID(req.Strategy)
	if strategyID == "" {
		strategyID = model.StrategyNone
	}

	acct := model.NewAccount(req.Name, req.Description, balance, strategyID, req.ExcludeFromTotals)
	if err := a.portfolio.CreateAccount(r.Context(), &acct); err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, acct)
}

func (a *API) deleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		a.writeError(w, errors.Join(model.ErrInvalidArgument, err))
		return
	}
	if err := a.portfolio.DeleteAccount(r.Context(), id); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listInvestments(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		a.writeError(w, errors.Join(model.ErrInvalidArgument, err))
		return
	}
	investments, err := a.portfolio.GetInvestments(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, investments)
}

func (a *API) listOpenOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := a.portfolio.GetOpenOrders(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, orders)
}

type createOrderRequest struct {
	AccountID    int64  `json:"account_id"`
	Symbol       string `json:"symbol"`
	Side         string `json:"side"`
	Kind         string `json:"kind"`
	Quantity     int64  `json:"quantity"`
	TriggerPrice string `json:"trigger_price"`
}

func (a *API) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := a.readJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}

	var trigger model.Money
	if req.TriggerPrice != "" {
		var err error
		if trigger, err = model.ParseMoney(req.TriggerPrice); err != nil {
			a.writeError(w, errors.Join(model.ErrInvalidArgument, err))
			return
		}
	}

	o := model.Order{
		AccountID:    req.AccountID,
		Symbol:       req.Symbol,
		Side:         model.OrderSide(req.Side),
		Kind:         model.OrderKind(req.Kind),
		Quantity:     req.Quantity,
		TriggerPrice: trigger,
	}
	if err := a.portfolio.CreateOrder(r.Context(), &o); err != nil {
		a.writeError(w, err)
		return
	}

	// a new open order may need a wake-up armed
	if err := a.scheduler.ScheduleIfNeeded(r.Context()); err != nil {
		a.logger.Errorf("%s: can't arm scheduler after order submit", err)
	}

	a.writeJSON(w, http.StatusCreated, o)
}

func (a *API) cancelOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		a.writeError(w, errors.Join(model.ErrInvalidArgument, err))
		return
	}
	if err := a.portfolio.CancelOrder(r.Context(), id); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) currentSnapshot(w http.ResponseWriter, r *http.Request) {
	if v := r.URL.Query().Get("account_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			a.writeError(w, errors.Join(model.ErrInvalidArgument, err))
			return
		}
		items, err := a.portfolio.GetCurrentSnapshotForAccount(r.Context(), id)
		if err != nil {
			a.writeError(w, err)
			return
		}
		a.writeJSON(w, http.StatusOK, items)
		return
	}

	items, err := a.portfolio.GetCurrentSnapshot(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, items)
}

func (a *API) snapshotTotals(w http.ResponseWriter, r *http.Request) {
	total, err := a.portfolio.Rollup(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, total)
}

func (a *API) dailySnapshot(w http.ResponseWriter, r *http.Request) {
	days := 90
	if v := r.URL.Query().Get("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			a.writeError(w, model.ErrInvalidArgument)
			return
		}
		days = parsed
	}

	if v := r.URL.Query().Get("account_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			a.writeError(w, errors.Join(model.ErrInvalidArgument, err))
			return
		}
		items, err := a.portfolio.GetCurrentDailySnapshotForAccount(r.Context(), id, days)
		if err != nil {
			a.writeError(w, err)
			return
		}
		a.writeJSON(w, http.StatusOK, items)
		return
	}

	items, err := a.portfolio.GetCurrentDailySnapshot(r.Context(), days)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, items)
}

func (a *API) readJSON(r *http.Request, dst interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return errors.Join(model.ErrInvalidArgument, err)
	}
	if err := sonic.Unmarshal(body, dst); err != nil {
		return errors.Join(model.ErrInvalidArgument, err)
	}
	return nil
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := sonic.Marshal(v)
	if err != nil {
		a.logger.Errorf("%s: can't marshal response", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrInvalidArgument), errors.Is(err, model.ErrOrderNotOpen):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrAccountNotFound):
		status = http.StatusNotFound
	}

	a.logger.Warnf("request failed: %s", err)
	a.writeJSON(w, status, map[string]string{"error": err.Error()})
}
