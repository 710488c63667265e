package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"casaleon/server/internal/api"
	"casaleon/server/internal/contact"
	"casaleon/server/internal/database"
	"casaleon/server/internal/detail"
	"casaleon/server/internal/filter"
	"casaleon/server/internal/leads"
	"casaleon/server/internal/models"
	"casaleon/server/internal/notify"
	"casaleon/server/internal/processor"
	"casaleon/server/internal/queue"
	"casaleon/server/internal/scheduler"
	"casaleon/server/internal/telegram"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if logger.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	rules, err := loadRules()
	if err != nil {
		return err
	}

	source := newSource()
	linker := contact.NewLinker(cfg.Contact.WhatsAppNumber)
	details := detail.NewService(source, newRenderer(linker), logger)

	// The journal is optional; interfaces stay nil without it
	var (
		journal processor.Journal
		purger  scheduler.Purger
	)
	if cfg.Leads.DatabasePath != "" {
		logger.Infof("Using lead journal at: %s", cfg.Leads.DatabasePath)
		db, err := database.NewDatabase(cfg.Leads.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()

		logger.Info("Running database migrations...")
		if err := db.RunMigrations(); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
		journal, purger = db, db
	}

	telegramService := telegram.NewService(logger)
	telegramService.UpdateConfig(models.NewTelegramConfig(cfg.Telegram.BotToken, cfg.Telegram.ChatID))
	notifiers := []processor.Notifier{
		notify.NewWebhook(cfg.Webhook.URL, cfg.Webhook.Secret, cfg.Webhook.Timeout, logger),
		telegramService,
	}

	notificationQueue := queue.NewNotificationQueue(cfg.Leads.QueueSize, logger)
	leadProcessor := processor.NewLeadProcessor(journal, notificationQueue, notifiers, cfg.Leads.NotifyTimeout, logger)
	leadProcessor.Start()
	notificationQueue.Start()

	maintenance := scheduler.NewScheduler(purger, source, cfg.Leads.RetentionDays, logger)
	maintenance.Start()

	handler := api.NewHandler(source, filter.New(rules), details, linker, leads.NewService(notificationQueue, logger), logger)
	router := api.NewRouter(handler, api.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		LeadsPerMinute: cfg.Server.LeadsPerMinute,
		AssetsDir:      cfg.Server.AssetsDir,
	}, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var runErr error
	select {
	case err := <-serverErr:
		if err != nil {
			runErr = fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Failed to shut down HTTP server")
	}

	maintenance.Stop()
	// Deliver what is already queued before cancelling the notifiers
	if err := notificationQueue.Close(); err != nil {
		logger.WithError(err).Error("Failed to close notification queue")
	}
	leadProcessor.Stop()

	return runErr
}
