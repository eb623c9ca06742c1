package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/balch/mocktrade/internal/account"
	"github.com/balch/mocktrade/internal/config"
	"github.com/balch/mocktrade/internal/finance"
	"github.com/balch/mocktrade/internal/investment"
	"github.com/balch/mocktrade/internal/logger"
	"github.com/balch/mocktrade/internal/order"
	"github.com/balch/mocktrade/internal/portfolio"
	"github.com/balch/mocktrade/internal/postgres"
	"github.com/balch/mocktrade/internal/scheduler"
	"github.com/balch/mocktrade/internal/server"
	"github.com/balch/mocktrade/internal/snapshot"
	"github.com/balch/mocktrade/internal/strategy"
	"github.com/benbjohnson/clock"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

const _cfgFilePath = "./configs/mocktrade.yaml"

func main() {
	zapLogger, loggerSync, err := logger.NewZapLogger(logger.ParseLevel(os.Getenv("MOCKTRADE_LOG_LEVEL")))
	if err != nil {
		log.Fatalf("%s: can't init logger", err)
	}
	defer loggerSync()

	if err := godotenv.Load(); err != nil {
		zapLogger.Warnf("can't detect .env file")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadMockTradeConfig(_cfgFilePath)
	if err != nil {
		zapLogger.Fatalf("%s: can't load cfg", err)
	}

	db, err := postgres.NewDB(postgres.NewConfigFromEnv().Setup())
	if err != nil {
		zapLogger.Fatalf("%s: can't connect to db", err)
	}
	defer db.Close()

	clk := clock.New()

	accounts := account.NewStore(db, zapLogger.With("component", "accounts"))
	investments := investment.NewStore(db, zapLogger.With("component", "investments"))
	orders := order.NewStore(db, zapLogger.With("component", "orders"))
	snapshots := snapshot.NewStore(db, zapLogger.With("component", "snapshots"))

	calendar, err := finance.NewCalendar(cfg.Market, clk)
	if err != nil {
		zapLogger.Fatalf("%s: can't init market calendar", err)
	}
	quoteService := finance.NewService(
		finance.NewClient(cfg.Finance, zapLogger.With("component", "finance")),
		calendar,
	)

	engine := order.NewEngine(db, orders, accounts, investments, clk,
		zapLogger.With("component", "engine"))
	aggregator := snapshot.NewAggregator(snapshots, clk, cfg.Snapshot.Granularity,
		zapLogger.With("component", "aggregator"))

	portfolioModel := portfolio.NewPortfolio(accounts, investments, orders, snapshots,
		aggregator, engine, quoteService, strategy.NewDefaultRegistry(),
		zapLogger.With("component", "portfolio"))

	sched := scheduler.NewScheduler(clk, quoteService, orders, portfolioModel,
		cfg.Scheduler.PollInterval, cfg.Scheduler.PassTimeout,
		zapLogger.With("component", "scheduler"))
	defer sched.Stop()

	jobs := cron.New()
	if _, err := jobs.AddFunc(cfg.Snapshot.PurgeSpec, func() {
		jobCtx, jobCancel := context.WithTimeout(ctx, time.Minute)
		defer jobCancel()

		removed, err := portfolioModel.PurgeSnapshots(jobCtx, cfg.Snapshot.RetentionDays)
		if err != nil {
			zapLogger.Errorf("%s: can't purge snapshots", err)
			return
		}
		zapLogger.Infof("purged %d snapshot rows older than %d days", removed, cfg.Snapshot.RetentionDays)
	}); err != nil {
		zapLogger.Fatalf("%s: can't schedule snapshot purge", err)
	}
	if _, err := jobs.AddFunc(cfg.Strategy.SweepSpec, func() {
		jobCtx, jobCancel := context.WithTimeout(ctx, 5*time.Minute)
		defer jobCancel()

		if err := portfolioModel.RunStrategySweep(jobCtx); err != nil {
			zapLogger.Errorf("%s: strategy sweep failed", err)
		}
		if err := sched.ScheduleIfNeeded(jobCtx); err != nil {
			zapLogger.Errorf("%s: can't arm scheduler after sweep", err)
		}
	}); err != nil {
		zapLogger.Fatalf("%s: can't schedule strategy sweep", err)
	}
	jobs.Start()
	defer jobs.Stop()

	if err := sched.ScheduleIfNeeded(ctx); err != nil {
		zapLogger.Errorf("%s: can't arm scheduler on startup", err)
	}

	api := server.NewAPI(portfolioModel, sched, zapLogger.With("component", "api"))
	httpServer := server.NewHTTPServer(ctx, cfg.ServerPort, api.Router())

	zapLogger.Infof("mocktrade listening on :%s", cfg.ServerPort)
	if err := httpServer.Run(ctx); err != nil {
		zapLogger.Errorf("%s: server stopped", err)
	}
}
