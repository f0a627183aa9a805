package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmehra2102/prod-golang-projects/careslot/internal/config"
	v1 "github.com/dmehra2102/prod-golang-projects/careslot/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/repository"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/service"
	"github.com/dmehra2102/prod-golang-projects/careslot/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/careslot/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/careslot/pkg/logger"
	"github.com/dmehra2102/prod-golang-projects/careslot/pkg/metrics"
	"github.com/dmehra2102/prod-golang-projects/careslot/pkg/tracer"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "careslot: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracer: %w", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := database.Migrate(db, log); err != nil {
		return err
	}

	collector := metrics.NewCollector("careslot")

	userRepo := repository.NewUserRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	apptRepo := repository.NewAppointmentRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	jwtManager := auth.NewJWTManager(cfg.JWT)

	auditSvc := service.NewAuditService(auditRepo, log)
	defer auditSvc.Close()

	authSvc := service.NewAuthService(userRepo, jwtManager, log)
	scheduleSvc := service.NewScheduleService(scheduleRepo, userRepo, auditSvc, log)
	availabilitySvc := service.NewAvailabilityService(userRepo, scheduleRepo, apptRepo, log)
	apptSvc := service.NewAppointmentService(apptRepo, auditSvc, service.BookingPolicy{
		CancelMinNotice: cfg.Booking.CancelMinNotice,
	}, log)

	router := v1.NewRouter(v1.RouterDeps{
		Auth:         v1.NewAuthHandler(authSvc),
		Schedules:    v1.NewScheduleHandler(scheduleSvc, availabilitySvc, collector),
		Appointments: v1.NewAppointmentHandler(apptSvc, collector),
		JWTManager:   jwtManager,
		Collector:    collector,
		Log:          log,
		CORS:         cfg.CORS,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("address", cfg.Server.Address()),
			zap.String("environment", cfg.App.Environment),
			zap.String("version", cfg.App.Version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}
