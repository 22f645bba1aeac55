package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/terraincognita07/periodical/internal/api"
	"github.com/terraincognita07/periodical/internal/config"
	"github.com/terraincognita07/periodical/internal/db"
	"github.com/terraincognita07/periodical/internal/metrics"
	"github.com/terraincognita07/periodical/internal/services"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts.cfg)
		},
	}
}

func runServe(cfg *config.Config) error {
	location, err := cfg.Server.Location()
	if err != nil {
		return err
	}
	time.Local = location

	secretKey, err := cfg.Auth.ResolveSecretKey()
	if err != nil {
		return err
	}

	database, err := db.OpenSQLite(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	defer func() {
		if err := db.Close(database); err != nil {
			log.Printf("database close failed: %v", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder, err := metrics.New(registry)
	if err != nil {
		return fmt.Errorf("metrics init failed: %w", err)
	}

	repositories := db.NewRepositories(database)
	settings := services.NewSettingsService(repositories.Options, cfg.Calendar.Preferences(), nil)
	calculation := services.NewCalculationService(
		repositories.Periods,
		repositories.Details,
		settings,
		services.MergeOptions{PruneEmpty: cfg.Calendar.PruneEmptyEntries},
		cfg.Calendar.CacheTTL,
		recorder,
	)
	settings.SetInvalidator(calculation)
	periods := services.NewPeriodService(repositories.Periods, settings, calculation)
	details := services.NewDetailService(repositories.Details, calculation, calculation)

	handler, err := api.NewHandler(api.Dependencies{
		Calculation: calculation,
		Periods:     periods,
		Details:     details,
		Settings:    settings,
		Metrics:     recorder,
		SecretKey:   secretKey,
		Location:    location,
	})
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}

	app := newApp()
	api.RegisterRoutes(app, handler)

	reminders := services.NewReminderService(calculation, reminderSender(cfg.Reminders), services.ReminderOptions{
		PeriodDaysAhead: cfg.Reminders.PeriodDaysAhead,
		Fertility:       cfg.Reminders.Fertility,
	}, location)
	lifecycleCtx, cancelLifecycle := context.WithCancel(context.Background())
	defer cancelLifecycle()
	reminders.Start(lifecycleCtx)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		cancelLifecycle()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("server shutdown failed: %v", err)
		}
	}()

	log.Printf("Periodical listening on http://0.0.0.0:%d (db: %s, tz: %s, reminders: %t)",
		cfg.Server.Port, cfg.Database.Path, location.String(), cfg.Reminders.Enabled())
	if err := app.Listen(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Periodical",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())
	return app
}

// reminderSender keeps a missing Telegram sender a nil interface, which disables reminders.
func reminderSender(cfg config.RemindersConfig) services.MessageSender {
	sender := services.NewTelegramSender(cfg.TelegramBotToken, cfg.TelegramChatID)
	if sender == nil {
		return nil
	}
	return sender
}
