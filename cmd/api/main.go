package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/caretide/hospital-api/config"
	"github.com/caretide/hospital-api/internal/email"
	appointmentHandler "github.com/caretide/hospital-api/internal/handler/appointment"
	authHandler "github.com/caretide/hospital-api/internal/handler/auth"
	billingHandler "github.com/caretide/hospital-api/internal/handler/billing"
	chatHandler "github.com/caretide/hospital-api/internal/handler/chat"
	healthHandler "github.com/caretide/hospital-api/internal/handler/health"
	hospitalHandler "github.com/caretide/hospital-api/internal/handler/hospital"
	maternityHandler "github.com/caretide/hospital-api/internal/handler/maternity"
	medicalHandler "github.com/caretide/hospital-api/internal/handler/medical"
	patientHandler "github.com/caretide/hospital-api/internal/handler/patient"
	pluginHandler "github.com/caretide/hospital-api/internal/handler/plugin"
	referralHandler "github.com/caretide/hospital-api/internal/handler/referral"
	userHandler "github.com/caretide/hospital-api/internal/handler/user"
	"github.com/caretide/hospital-api/internal/middleware"
	"github.com/caretide/hospital-api/internal/mrn"
	"github.com/caretide/hospital-api/internal/plugin"
	"github.com/caretide/hospital-api/internal/repository/postgres"
	"github.com/caretide/hospital-api/internal/router"
	appointmentService "github.com/caretide/hospital-api/internal/service/appointment"
	auditService "github.com/caretide/hospital-api/internal/service/audit"
	authService "github.com/caretide/hospital-api/internal/service/auth"
	billingService "github.com/caretide/hospital-api/internal/service/billing"
	chatService "github.com/caretide/hospital-api/internal/service/chat"
	hospitalService "github.com/caretide/hospital-api/internal/service/hospital"
	maternityService "github.com/caretide/hospital-api/internal/service/maternity"
	medicalService "github.com/caretide/hospital-api/internal/service/medical"
	patientService "github.com/caretide/hospital-api/internal/service/patient"
	pluginService "github.com/caretide/hospital-api/internal/service/plugin"
	referralService "github.com/caretide/hospital-api/internal/service/referral"
	userService "github.com/caretide/hospital-api/internal/service/user"
	"github.com/caretide/hospital-api/internal/sms"
	"github.com/caretide/hospital-api/pkg/auth"
	"github.com/caretide/hospital-api/pkg/logger"
	"github.com/caretide/hospital-api/pkg/messaging/redis"
	"github.com/caretide/hospital-api/pkg/metrics"
	"github.com/caretide/hospital-api/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)
	m := metrics.NewMetrics("caretide", "api")

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	hospitalRepo := postgres.NewHospitalRepository(db)
	userRepo := postgres.NewUserRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	recordRepo := postgres.NewMedicalRecordRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	billRepo := postgres.NewBillRepository(db)
	maternityRepo := postgres.NewMaternityRepository(db)
	referralRepo := postgres.NewReferralRepository(db)
	pluginRepo := postgres.NewPluginRepository(db)
	chatRepo := postgres.NewChatRepository(db)
	tokenRepo := postgres.NewTokenRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)
	auditRepo := postgres.NewAuditRepository(db)

	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:        cfg.JWT.Secret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		Expiry:        cfg.JWT.Expiry,
		RefreshExpiry: cfg.JWT.RefreshExpiry,
	})
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

	auditor := auditService.NewService(auditRepo)
	mrnGen := mrn.NewGenerator(patientRepo, 0, m)

	hospitalSvc := hospitalService.NewService(hospitalRepo, userRepo, auditor)
	authSvc := authService.NewService(userRepo, patientRepo, jwtSvc, tokenRepo, emailSvc, smsSvc, auditor)
	patientSvc := patientService.NewService(patientRepo, outboxRepo, mrnGen, auditor)
	medicalSvc := medicalService.NewService(recordRepo, patientRepo, outboxRepo, auditor)
	appointmentSvc := appointmentService.NewService(appointmentRepo, patientRepo, userRepo, outboxRepo, auditor)
	billingSvc := billingService.NewService(billRepo, patientRepo, outboxRepo, auditor)
	maternitySvc := maternityService.NewService(maternityRepo, patientRepo, auditor)
	referralSvc := referralService.NewService(referralRepo, patientRepo, hospitalRepo, auditor)
	chatSvc := chatService.NewService(chatRepo, patientRepo)
	userSvc := userService.NewService(userRepo, patientRepo, tokenRepo, emailSvc, auditor)

	registry := plugin.NewRegistry()
	registry.Register(plugin.Module{
		Name:        "appointments",
		Description: "Appointment booking and doctor schedules",
		Version:     "1.0.0",
		Mount:       appointmentHandler.NewHandler(appointmentSvc).RegisterRoutes,
	})
	registry.Register(plugin.Module{
		Name:        "billing",
		Description: "Patient billing, invoicing and payments",
		Version:     "1.0.0",
		Mount:       billingHandler.NewHandler(billingSvc).RegisterRoutes,
	})
	registry.Register(plugin.Module{
		Name:        "maternity",
		Description: "Antenatal and neonatal care records",
		Version:     "1.0.0",
		Mount:       maternityHandler.NewHandler(maternitySvc).RegisterRoutes,
	})
	registry.Register(plugin.Module{
		Name:        "referrals",
		Description: "Inter-hospital patient referrals",
		Version:     "1.0.0",
		Mount:       referralHandler.NewHandler(referralSvc).RegisterRoutes,
	})
	registry.Register(plugin.Module{
		Name:        "chat",
		Description: "Care team and patient messaging",
		Version:     "1.0.0",
		Mount:       chatHandler.NewHandler(chatSvc).RegisterRoutes,
	})
	registry.Register(plugin.Module{
		Name:        "medical-records",
		Description: "Clinical records and patient history",
		Version:     "1.0.0",
		Mount:       medicalHandler.NewHandler(medicalSvc).RegisterRoutes,
	})
	unknown, err := registry.LoadManifest(cfg.Plugins.ManifestPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load plugin manifest")
	}
	for _, name := range unknown {
		log.Warn().Str("plugin", name).Msg("manifest names a plugin that is not compiled in")
	}

	pluginSvc := pluginService.NewService(registry, pluginRepo, auditor)

	authMW := middleware.NewAuthMiddleware(jwtSvc, tokenRepo)
	tenantMW := middleware.NewTenantMiddleware(hospitalRepo, cfg.Tenancy.BaseDomain)
	gate := middleware.NewPluginGate(registry, pluginSvc)

	r := router.NewRouter(
		authMW,
		tenantMW,
		gate,
		registry,
		healthHandler.NewHandler(db),
		authHandler.NewHandler(authSvc),
		hospitalHandler.NewHandler(hospitalSvc, emailSvc),
		patientHandler.NewHandler(patientSvc, userSvc),
		userHandler.NewHandler(userSvc),
		pluginHandler.NewHandler(pluginSvc),
		m,
		router.Config{
			RateLimit: rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst: cfg.RateLimit.Burst,
			Timeout:   cfg.Server.RequestTimeout,
			CORSConfig: middleware.CORSConfig{
				AllowOrigins:     cfg.CORS.AllowedOrigins,
				AllowMethods:     cfg.CORS.AllowedMethods,
				AllowHeaders:     cfg.CORS.AllowedHeaders,
				AllowCredentials: true,
				MaxAge:           86400,
			},
		},
	)
	r.Setup()

	broker, err := redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	processorCtx, stopProcessor := context.WithCancel(context.Background())
	defer stopProcessor()
	outboxProcessor := worker.NewOutboxProcessor(outboxRepo, broker, cfg.Outbox.ToProcessorConfig(), appLogger, m)
	go outboxProcessor.Start(processorCtx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	stopProcessor()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
