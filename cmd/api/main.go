package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pulseai-health/clinic-api/internal/config"
	"github.com/pulseai-health/clinic-api/internal/gateway/twilio"
	v1 "github.com/pulseai-health/clinic-api/internal/handler/v1"
	"github.com/pulseai-health/clinic-api/internal/repository"
	"github.com/pulseai-health/clinic-api/internal/service"
	"github.com/pulseai-health/clinic-api/pkg/auth"
	"github.com/pulseai-health/clinic-api/pkg/database"
	"github.com/pulseai-health/clinic-api/pkg/logger"
	"github.com/pulseai-health/clinic-api/pkg/metrics"
	"github.com/pulseai-health/clinic-api/pkg/tracer"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Error("failed to load configuration", zap.Error(err))
		return err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info("starting clinic-api",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	loc, err := time.LoadLocation(cfg.Clinic.Timezone)
	if err != nil {
		log.Error("invalid clinic timezone", zap.Error(err))
		return err
	}

	if cfg.Tracing.Enabled {
		tp, err := tracer.Init(cfg.Tracing)
		if err != nil {
			log.Error("failed to initialize tracer", zap.Error(err))
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				log.Warn("tracer shutdown", zap.Error(err))
			}
		}()
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Error("failed to connect to database", zap.Error(err))
		return err
	}
	if err := database.Migrate(db, log); err != nil {
		log.Error("failed to run migrations", zap.Error(err))
		return err
	}

	m := metrics.NewCollector(cfg.App.Name)
	jwtManager := auth.NewJWTManager(cfg.JWT)
	messenger := twilio.NewClient(cfg.Messaging, log)

	apptRepo := repository.NewAppointmentRepository(db)
	doctorRepo := repository.NewDoctorRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	rxRepo := repository.NewPrescriptionRepository(db)
	medRepo := repository.NewMedicationRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	auditSvc := service.NewAuditService(auditRepo, m, log)
	defer auditSvc.Shutdown()

	authSvc := service.NewAuthService(userRepo, jwtManager, cfg.Messaging.DemoAccountAliases, log)
	bookingSvc := service.NewBookingService(apptRepo, doctorRepo, userRepo, notifRepo, messenger, auditSvc, m, log, loc, cfg.Clinic.Name)
	apptSvc := service.NewAppointmentService(apptRepo, auditSvc, log)
	reminderSvc := service.NewReminderService(apptRepo, doctorRepo, userRepo, notifRepo, messenger, m, log, loc, cfg.Clinic.Name)
	rxSvc := service.NewPrescriptionService(rxRepo, apptRepo, medRepo, auditSvc, m, log)
	statsSvc := service.NewStatsService(statsRepo, userRepo)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	v1.RegisterRoutes(engine, &v1.Handlers{
		Auth:         v1.NewAuthHandler(authSvc),
		Doctor:       v1.NewDoctorHandler(doctorRepo),
		Appointment:  v1.NewAppointmentHandler(bookingSvc, apptSvc),
		Prescription: v1.NewPrescriptionHandler(rxSvc, medRepo),
		Admin:        v1.NewAdminHandler(statsSvc, reminderSvc, cfg.Reminder.SweepToken),
	}, jwtManager, m)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go runReminderSweeps(ctx, reminderSvc, cfg.Reminder.SweepInterval, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		log.Error("http server failed", zap.Error(err))
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	return nil
}

// runReminderSweeps drives the reminder dispatcher on a fixed cadence. The
// sweep endpoint still exists for external schedulers and replays; this
// ticker just makes a standalone deployment self-sufficient.
func runReminderSweeps(ctx context.Context, svc *service.ReminderService, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			summary, err := svc.Run(ctx, time.Now())
			if err != nil {
				log.Error("reminder sweep failed", zap.Error(err))
				continue
			}
			log.Info("reminder sweep complete",
				zap.Int("sent", summary.RemindersSent),
				zap.Int("failed", summary.RemindersFailed),
				zap.Int("skipped_duplicate", summary.SkippedDuplicate),
			)
		}
	}
}
