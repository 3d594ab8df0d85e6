package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/financewallet/wallet/internal/config"
	"github.com/financewallet/wallet/internal/events"
	"github.com/financewallet/wallet/internal/handler"
	"github.com/financewallet/wallet/internal/integrations/rates"
	"github.com/financewallet/wallet/internal/middleware"
	"github.com/financewallet/wallet/internal/repository"
	"github.com/financewallet/wallet/internal/service"
	"github.com/financewallet/wallet/internal/utils/email"
)

func main() {
	_ = godotenv.Load()

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	if err := repository.RunMigrations(db); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	// Optional event publishing
	var publisher *events.Publisher
	if cfg.AMQPURL != "" {
		publisher, err = events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Fatalf("Failed to connect to AMQP broker: %v", err)
		}
		defer publisher.Close()
	} else {
		logger.Info("AMQP_URL is empty, event publishing disabled")
	}

	// Optional budget alert delivery
	var alerts service.AlertSender
	if cfg.SMTPHost != "" {
		alerts = email.NewSender(cfg, logger)
	} else {
		logger.Info("SMTP_HOST is empty, budget alerts disabled")
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	ratesClient := rates.NewClient(cfg.RatesURL, cfg.RatesBaseCurrency, logger)

	currencySvc := service.NewCurrencyService(repo, logger, ratesClient)
	preferenceSvc := service.NewPreferenceService(repo, logger, cfg.DefaultCurrency)
	authSvc := service.NewAuthService(repo, logger, cfg)
	accountSvc := service.NewAccountService(repo, logger, currencySvc, preferenceSvc)
	transactionSvc := service.NewTransactionService(repo, logger, publisher)
	categorySvc := service.NewCategoryService(repo, logger)
	budgetSvc := service.NewBudgetService(repo, logger, currencySvc, alerts)
	goalSvc := service.NewGoalService(repo, logger)
	recurringSvc := service.NewRecurringService(repo, logger)
	dashboardSvc := service.NewDashboardService(repo, logger, currencySvc, preferenceSvc)

	h := handler.NewHandler(authSvc, accountSvc, transactionSvc, categorySvc,
		budgetSvc, goalSvc, recurringSvc, currencySvc, preferenceSvc, dashboardSvc, logger)

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/me", h.Me).Methods("GET")

	authRouter.HandleFunc("/accounts", h.CreateAccount).Methods("POST")
	authRouter.HandleFunc("/accounts", h.ListAccounts).Methods("GET")
	authRouter.HandleFunc("/accounts/summary", h.AccountSummary).Methods("GET")
	authRouter.HandleFunc("/accounts/{id}", h.GetAccount).Methods("GET")
	authRouter.HandleFunc("/accounts/{id}", h.UpdateAccount).Methods("PUT")
	authRouter.HandleFunc("/accounts/{id}", h.DeleteAccount).Methods("DELETE")

	authRouter.HandleFunc("/transactions", h.CreateTransaction).Methods("POST")
	authRouter.HandleFunc("/transactions", h.ListTransactions).Methods("GET")
	authRouter.HandleFunc("/transactions/transfer", h.CreateTransfer).Methods("POST")
	authRouter.HandleFunc("/transactions/{id}", h.GetTransaction).Methods("GET")
	authRouter.HandleFunc("/transactions/{id}", h.UpdateTransaction).Methods("PUT")
	authRouter.HandleFunc("/transactions/{id}", h.DeleteTransaction).Methods("DELETE")

	authRouter.HandleFunc("/categories", h.CreateCategory).Methods("POST")
	authRouter.HandleFunc("/categories", h.ListCategories).Methods("GET")
	authRouter.HandleFunc("/categories/{id}", h.GetCategory).Methods("GET")
	authRouter.HandleFunc("/categories/{id}", h.UpdateCategory).Methods("PUT")
	authRouter.HandleFunc("/categories/{id}", h.DeleteCategory).Methods("DELETE")

	authRouter.HandleFunc("/budgets", h.CreateBudget).Methods("POST")
	authRouter.HandleFunc("/budgets", h.ListBudgets).Methods("GET")
	authRouter.HandleFunc("/budgets/progress", h.ActiveBudgetProgress).Methods("GET")
	authRouter.HandleFunc("/budgets/{id}", h.GetBudget).Methods("GET")
	authRouter.HandleFunc("/budgets/{id}/progress", h.BudgetProgress).Methods("GET")
	authRouter.HandleFunc("/budgets/{id}", h.UpdateBudget).Methods("PUT")
	authRouter.HandleFunc("/budgets/{id}", h.DeleteBudget).Methods("DELETE")

	authRouter.HandleFunc("/goals", h.CreateGoal).Methods("POST")
	authRouter.HandleFunc("/goals", h.ListGoals).Methods("GET")
	authRouter.HandleFunc("/goals/{id}", h.GetGoal).Methods("GET")
	authRouter.HandleFunc("/goals/{id}", h.UpdateGoal).Methods("PUT")
	authRouter.HandleFunc("/goals/{id}/progress", h.UpdateGoalProgress).Methods("POST")
	authRouter.HandleFunc("/goals/{id}", h.DeleteGoal).Methods("DELETE")

	authRouter.HandleFunc("/recurring", h.CreateRecurring).Methods("POST")
	authRouter.HandleFunc("/recurring", h.ListRecurring).Methods("GET")
	authRouter.HandleFunc("/recurring/{id}", h.GetRecurring).Methods("GET")
	authRouter.HandleFunc("/recurring/{id}", h.UpdateRecurring).Methods("PUT")
	authRouter.HandleFunc("/recurring/{id}", h.DeleteRecurring).Methods("DELETE")

	authRouter.HandleFunc("/currencies", h.ListCurrencies).Methods("GET")
	authRouter.HandleFunc("/exchange-rates", h.CreateExchangeRate).Methods("POST")

	authRouter.HandleFunc("/preferences", h.GetPreferences).Methods("GET")
	authRouter.HandleFunc("/preferences", h.UpdatePreferences).Methods("PUT")

	authRouter.HandleFunc("/dashboard", h.Dashboard).Methods("GET")
	authRouter.HandleFunc("/statistics", h.Statistics).Methods("GET")

	// Scheduled jobs
	c := cron.New()
	if _, err := c.AddFunc(cfg.RecurringCron, func() {
		if err := recurringSvc.ProcessDue(context.Background()); err != nil {
			logger.Errorf("Recurring transaction run failed: %v", err)
		}
	}); err != nil {
		logger.Fatalf("Failed to schedule recurring transactions: %v", err)
	}
	if _, err := c.AddFunc(cfg.RatesSyncCron, func() {
		if err := currencySvc.SyncRates(context.Background()); err != nil {
			logger.Errorf("Exchange rate sync failed: %v", err)
		}
	}); err != nil {
		logger.Fatalf("Failed to schedule exchange rate sync: %v", err)
	}
	if _, err := c.AddFunc(cfg.BudgetAlertCron, func() {
		if err := budgetSvc.CheckAlerts(context.Background()); err != nil {
			logger.Errorf("Budget alert scan failed: %v", err)
		}
	}); err != nil {
		logger.Fatalf("Failed to schedule budget alerts: %v", err)
	}
	c.Start()
	defer c.Stop()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatalf("Server failed: %v", err)
	}
	logger.Info("Server stopped")
}
