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

	"github.com/go-chi/chi/v5"
	"github.com/senseprojects/timesheet-backend/internal/mailer"
	"github.com/senseprojects/timesheet-backend/internal/mailworker/consumers"
	"github.com/senseprojects/timesheet-backend/pkg/config"
	"github.com/senseprojects/timesheet-backend/pkg/httputil"
	"github.com/senseprojects/timesheet-backend/pkg/logger"
	"github.com/senseprojects/timesheet-backend/pkg/messaging"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.LoadWithValidation(consumers.ServiceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(consumers.ServiceName, cfg.Server.Environment)
	log.SetLevel(cfg.Server.LogLevel)
	log.Info().Msg("starting Mail Worker")

	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	smtp, err := mailer.NewSMTPSender(cfg.Mail, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure SMTP")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Health endpoint only
	r := chi.NewRouter()
	r.Use(httputil.Recoverer(log))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  consumers.ServiceName,
			"rabbitmq": rmq.Health(),
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("health server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return consume(gctx, rmq, cfg.RabbitMQ.MaxRetries, smtp, log)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("mail worker stopped with error")
		os.Exit(1)
	}

	log.Info().Msg("mail worker stopped")
}

// consume runs the email consumer until ctx is cancelled, reconnecting when
// the broker drops the connection.
func consume(ctx context.Context, rmq *messaging.RabbitMQ, maxRetries int, delivery mailer.Delivery, log *logger.Logger) error {
	for {
		closed := rmq.NotifyClose()

		consumer, err := consumers.NewEmailConsumer(rmq, maxRetries, delivery, log)
		if err != nil {
			return fmt.Errorf("failed to create email consumer: %w", err)
		}

		done, err := consumer.Start(ctx)
		if err != nil {
			return fmt.Errorf("failed to start email consumer: %w", err)
		}

		select {
		case <-ctx.Done():
			<-done
			return nil
		case amqpErr := <-closed:
			<-done
			log.Warn().Interface("reason", amqpErr).Msg("RabbitMQ connection lost")
			if err := rmq.Reconnect(ctx); err != nil {
				return err
			}
		}
	}
}
