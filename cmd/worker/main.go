package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/caretide/hospital-api/config"
	"github.com/caretide/hospital-api/internal/email"
	"github.com/caretide/hospital-api/internal/fhir"
	"github.com/caretide/hospital-api/internal/repository/postgres"
	"github.com/caretide/hospital-api/internal/service/notification"
	"github.com/caretide/hospital-api/internal/sms"
	internalworker "github.com/caretide/hospital-api/internal/worker"
	"github.com/caretide/hospital-api/pkg/logger"
	"github.com/caretide/hospital-api/pkg/messaging/redis"
	"github.com/caretide/hospital-api/pkg/metrics"
	"github.com/caretide/hospital-api/pkg/worker"
)

// The worker drains the outbox, delivers notifications and prunes old
// audit and outbox rows. It can run alongside the API or on its own.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)
	m := metrics.NewMetrics("caretide", "worker")

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	patientRepo := postgres.NewPatientRepository(db)
	recordRepo := postgres.NewMedicalRecordRepository(db)
	fhirLinkRepo := postgres.NewFHIRLinkRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)
	auditRepo := postgres.NewAuditRepository(db)

	broker, err := redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	emailSvc := email.NewSMTPService(email.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		BaseURL:  cfg.SMTP.BaseURL,
	}, m)
	smsSvc := sms.NewGatewayService(sms.Config{
		BaseURL:  cfg.SMS.BaseURL,
		APIKey:   cfg.SMS.APIKey,
		SenderID: cfg.SMS.SenderID,
		Timeout:  cfg.SMS.Timeout,
	}, m)

	var syncer *fhir.Syncer
	if cfg.FHIR.Enabled {
		client := fhir.NewClient(fhir.Config{
			BaseURL: cfg.FHIR.BaseURL,
			Token:   cfg.FHIR.Token,
			Timeout: cfg.FHIR.Timeout,
		}, m)
		syncer = fhir.NewSyncer(client, fhirLinkRepo, patientRepo, recordRepo, appLogger)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher := notification.NewDispatcher(broker, emailSvc, smsSvc, syncer, appLogger)
	go func() {
		if err := dispatcher.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("notification dispatcher failed")
		}
	}()

	processor := worker.NewOutboxProcessor(outboxRepo, broker, cfg.Outbox.ToProcessorConfig(), appLogger, m)
	go processor.Start(ctx)

	cleanup := internalworker.NewCleanupWorker(auditRepo, outboxRepo,
		cfg.Retention.AuditDays, cfg.Retention.CleanupInterval, appLogger)
	go cleanup.Start(ctx)

	log.Info().Msg("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down worker...")
	cancel()
}
