package app

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"family-finance-go/internal/auth"
	"family-finance-go/internal/config"
	"family-finance-go/internal/db"
	budgetdomain "family-finance-go/internal/domain/budget"
	familydomain "family-finance-go/internal/domain/family"
	goalsdomain "family-finance-go/internal/domain/goals"
	notificationsdomain "family-finance-go/internal/domain/notifications"
	reportsdomain "family-finance-go/internal/domain/reports"
	transactionsdomain "family-finance-go/internal/domain/transactions"
	userdomain "family-finance-go/internal/domain/user"
	"family-finance-go/internal/events"
	"family-finance-go/internal/metrics"
	"family-finance-go/internal/repository/inmemory"
	familyrepo "family-finance-go/internal/repository/postgres/family"
	goalsrepo "family-finance-go/internal/repository/postgres/goals"
	notificationsrepo "family-finance-go/internal/repository/postgres/notifications"
	reportsrepo "family-finance-go/internal/repository/postgres/reports"
	transactionsrepo "family-finance-go/internal/repository/postgres/transactions"
	userrepo "family-finance-go/internal/repository/postgres/user"
	"family-finance-go/internal/transport/httpserver"
	"family-finance-go/internal/transport/httpserver/handler"
	"family-finance-go/internal/transport/httpserver/handler/common"
	goalshandler "family-finance-go/internal/transport/httpserver/handler/goals"
	notificationshandler "family-finance-go/internal/transport/httpserver/handler/notifications"
	reportshandler "family-finance-go/internal/transport/httpserver/handler/reports"
	transactionshandler "family-finance-go/internal/transport/httpserver/handler/transactions"
	authmw "family-finance-go/internal/transport/httpserver/middleware"
	"family-finance-go/pkg/logger"
	"gorm.io/gorm"
)

const familyCacheTTL = 5 * time.Minute

type App struct {
	cfg        config.Config
	log        logger.Logger
	httpServer *http.Server
	db         *gorm.DB
	closers    []io.Closer
}

// New loads configuration, connects the store and migrates it.
func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	log.Info("app: initializing database", "driver", cfg.DB.Driver)
	gormDB, err := db.Open(cfg.DB, log)
	if err != nil {
		return nil, err
	}
	if cfg.DB.Driver == config.DriverPostgres {
		if err := db.Migrate(gormDB); err != nil {
			closeDB(gormDB)
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	application, err := NewWithDB(cfg, gormDB, log)
	if err != nil {
		closeDB(gormDB)
		return nil, err
	}
	return application, nil
}

// NewWithDB wires every service on top of an already migrated store.
func NewWithDB(cfg config.Config, gormDB *gorm.DB, log logger.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log, db: gormDB}

	var (
		publisher notificationsdomain.Publisher
		observer  notificationsdomain.Observer
		collector *metrics.Metrics
	)
	if cfg.Metrics.Enabled {
		collector = metrics.New()
		observer = collector
	}
	if cfg.AMQP.URL != "" {
		amqpPublisher, err := events.Dial(cfg.AMQP, log.Named("events"))
		if err != nil {
			// The ledger works without the broker; notifications stay in the store.
			log.Error("app: amqp unavailable, publishing disabled", "err", err)
		} else {
			publisher = amqpPublisher
			a.closers = append(a.closers, amqpPublisher)
			log.Info("app: publishing notifications", "exchange", cfg.AMQP.Exchange)
		}
	}

	users := userdomain.NewService(userrepo.NewPostgres(gormDB))
	families := familydomain.NewServiceWithCache(familyrepo.NewPostgres(gormDB), inmemory.NewFamilyCache(), familyCacheTTL)
	dispatcher := notificationsdomain.NewDispatcher(notificationsrepo.NewPostgres(gormDB), families, publisher, observer, log.Named("notifications"))

	ledger := transactionsrepo.NewPostgres(gormDB)
	monitor := budgetdomain.NewMonitor(ledger, dispatcher, cfg.Budget)
	transactions := transactionsdomain.NewService(ledger, monitor, log.Named("transactions"))
	goals := goalsdomain.NewService(goalsrepo.NewPostgres(gormDB), users, dispatcher, families, log.Named("goals"))
	reports := reportsdomain.NewService(reportsrepo.NewPostgres(gormDB), users, cfg.Reports, cfg.Budget.Location())

	handlers := handler.New(
		common.New(families, users, log),
		transactionshandler.New(transactions, families, log),
		goalshandler.New(goals, log),
		notificationshandler.New(dispatcher, log),
		reportshandler.New(reports, goals, families, log),
	)

	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	router := httpserver.NewRouter(httpserver.RouterOptions{
		CORSOrigins: cfg.CORSOrigins,
		Auth:        authmw.NewJWTAuth(cfg.Auth, tokens, users, log.Named("auth")),
		Metrics:     collector,
	}, handlers)

	a.httpServer = httpserver.New(cfg, router)
	return a, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	var firstErr error
	for _, closer := range a.closers {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.db == nil {
		return firstErr
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func closeDB(gormDB *gorm.DB) {
	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
