package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/senseprojects/timesheet-backend/internal/mailer"
	"github.com/senseprojects/timesheet-backend/internal/timesheet/events"
	"github.com/senseprojects/timesheet-backend/internal/timesheet/handler"
	"github.com/senseprojects/timesheet-backend/internal/timesheet/repository"
	"github.com/senseprojects/timesheet-backend/internal/timesheet/service"
	"github.com/senseprojects/timesheet-backend/pkg/config"
	"github.com/senseprojects/timesheet-backend/pkg/database"
	"github.com/senseprojects/timesheet-backend/pkg/httputil"
	"github.com/senseprojects/timesheet-backend/pkg/logger"
	"github.com/senseprojects/timesheet-backend/pkg/messaging"
)

const serviceName = "timesheet-service"

func main() {
	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation(serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(serviceName, cfg.Server.Environment)
	log.SetLevel(cfg.Server.LogLevel)
	log.Info().Str("mail_delivery", cfg.Mail.Delivery).Msg("starting Timesheet Service")

	if cfg.Database.AutoMigrate {
		if err := database.MigrateUp(cfg.Database.MigrationURL(), log); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// RabbitMQ is required for queued mail and optional otherwise
	var (
		rmq       *messaging.RabbitMQ
		publisher *events.TimesheetEventPublisher
		delivery  mailer.Delivery
	)
	rmq, err = messaging.New(&cfg.RabbitMQ, log)
	switch {
	case err != nil && cfg.Mail.Delivery == config.DeliveryQueue:
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	case err != nil:
		log.Warn().Err(err).Msg("RabbitMQ unavailable, domain events disabled")
	default:
		defer rmq.Close()
	}

	var eventPub *messaging.Publisher
	if rmq != nil {
		eventPub, err = messaging.NewPublisher(rmq, messaging.ExchangeTimesheetEvents, serviceName, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create event publisher")
		}
		publisher = events.NewTimesheetEventPublisher(eventPub, log)
	}

	if cfg.Mail.Delivery == config.DeliveryQueue {
		delivery = mailer.NewQueueDelivery(eventPub)
	} else {
		smtp, err := mailer.NewSMTPSender(cfg.Mail, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to configure SMTP")
		}
		delivery = smtp
	}

	renderer, err := mailer.NewRenderer(cfg.Mail.CompanyName, cfg.Mail.FromName)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load email templates")
	}

	// Initialize repositories
	employeeRepo := repository.NewEmployeeRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// Initialize services
	employeeService := service.NewEmployeeService(employeeRepo, publisher, log)
	projectService := service.NewProjectService(projectRepo, publisher, log)
	reportService := service.NewReportService(employeeRepo, projectRepo, reportRepo,
		renderer, delivery, publisher, cfg.Mail.HRRecipients, log)

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(httputil.CORS(cfg.CORS))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]interface{}{
			"status":        "healthy",
			"service":       serviceName,
			"database":      db.Health(r.Context()),
			"mail_delivery": cfg.Mail.Delivery,
		}
		if rmq != nil {
			status["rabbitmq"] = rmq.Health()
		}
		httputil.JSON(w, http.StatusOK, status)
	})

	handler.Mount(r,
		handler.NewEmployeeHandler(employeeService, log),
		handler.NewProjectHandler(projectService, log),
		handler.NewReportHandler(reportService, log),
	)

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
