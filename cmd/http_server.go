package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fieldops/advance-settlement/internal"
	"github.com/fieldops/advance-settlement/internal/advance"
	advancePostgres "github.com/fieldops/advance-settlement/internal/advance/postgres"
	"github.com/fieldops/advance-settlement/internal/auth"
	authPostgres "github.com/fieldops/advance-settlement/internal/auth/postgres"
	"github.com/fieldops/advance-settlement/internal/collection"
	collectionPostgres "github.com/fieldops/advance-settlement/internal/collection/postgres"
	"github.com/fieldops/advance-settlement/internal/core/events"
	"github.com/fieldops/advance-settlement/internal/expense"
	expensePostgres "github.com/fieldops/advance-settlement/internal/expense/postgres"
	"github.com/fieldops/advance-settlement/internal/transport/rest"
	"github.com/fieldops/advance-settlement/internal/transportpay"
	transportpayPostgres "github.com/fieldops/advance-settlement/internal/transportpay/postgres"
	"github.com/fieldops/advance-settlement/internal/user"
	userPostgres "github.com/fieldops/advance-settlement/internal/user/postgres"
	"github.com/fieldops/advance-settlement/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config              *internal.Config
	DB                  *sqlx.DB
	Router              *chi.Mux
	Logger              *slog.Logger
	AuthHandler         *auth.Handler
	UserHandler         *user.Handler
	AdvanceHandler      *advance.Handler
	ExpenseHandler      *expense.Handler
	CollectionHandler   *collection.Handler
	TransportPayHandler *transportpay.Handler
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(
		deps.Router,
		deps.DB.DB,
		deps.Config.Server.AllowedOrigins,
		deps.AuthHandler,
		deps.UserHandler,
		deps.AdvanceHandler,
		deps.ExpenseHandler,
		deps.CollectionHandler,
		deps.TransportPayHandler,
		deps.Logger,
	)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"), config.Observability.Logging.Level)
	log := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	eventBus := events.NewEventBus(log)
	registerAuditSubscribers(eventBus, log)

	// Auth
	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authRepo := authPostgres.NewRepository(gormDB)
	authService := auth.NewService(authRepo, tokenGen, config.Security.BCryptCost)
	authHandler := auth.NewHandler(authService)

	// Users
	userRepo := userPostgres.NewUserRepository(gormDB)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService)

	// Advances and settlement
	advanceRepo := advancePostgres.NewAdvanceRepository(gormDB)
	expenseReader := advancePostgres.NewExpenseReader(gormDB)
	advanceService := advance.NewService(advanceRepo, expenseReader, eventBus, log)
	advanceHandler := advance.NewHandler(advanceService)

	// Expenses
	expenseRepo := expensePostgres.NewExpenseRepository(gormDB)
	expenseService := expense.NewService(expenseRepo, advanceService, log)
	expenseHandler := expense.NewHandler(expenseService)

	// Collections
	collectionRepo := collectionPostgres.NewCollectionRepository(gormDB)
	collectionService := collection.NewService(collectionRepo, eventBus, log)
	collectionHandler := collection.NewHandler(collectionService)

	// Transport payments
	transportPayRepo := transportpayPostgres.NewTransportPaymentRepository(gormDB)
	transportPayService := transportpay.NewService(transportPayRepo, log)
	transportPayHandler := transportpay.NewHandler(transportPayService)

	return &Dependencies{
		Config:              config,
		Logger:              log,
		DB:                  db,
		Router:              chi.NewRouter(),
		AuthHandler:         authHandler,
		UserHandler:         userHandler,
		AdvanceHandler:      advanceHandler,
		ExpenseHandler:      expenseHandler,
		CollectionHandler:   collectionHandler,
		TransportPayHandler: transportPayHandler,
	}, nil
}

// registerAuditSubscribers writes settlement and approval events to the log
// so there is a durable audit trail of admin actions.
func registerAuditSubscribers(bus *events.EventBus, log *slog.Logger) {
	bus.Subscribe(events.EventTypeAdvanceSettled, func(ctx context.Context, event events.Event) error {
		log.Info("audit: advance settled",
			"event_id", event.EventID(),
			"payload", event.Payload())
		return nil
	})
	bus.Subscribe(events.EventTypeCollectionApproved, func(ctx context.Context, event events.Event) error {
		log.Info("audit: collection approved",
			"event_id", event.EventID(),
			"payload", event.Payload())
		return nil
	})
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm layers the ORM over the already-open pgx connection pool so both
// share connection limits.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormPostgres.New(gormPostgres.Config{
		Conn: db.DB,
	}), &gorm.Config{})
}
