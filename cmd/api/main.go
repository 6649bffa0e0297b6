package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"carelink-api/internal/config"
	"carelink-api/internal/domain/doctor"
	"carelink-api/internal/domain/mapping"
	"carelink-api/internal/domain/patient"
	v1 "carelink-api/internal/handler/v1"
	"carelink-api/internal/repository/memory"
	"carelink-api/internal/repository/postgres"
	"carelink-api/internal/service"
	"carelink-api/pkg/auth"
	"carelink-api/pkg/database"
	"carelink-api/pkg/logger"
	"carelink-api/pkg/metrics"
	"carelink-api/pkg/tracer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
	}()

	var (
		userRepo    service.UserRepository
		patientRepo patient.Repository
		doctorRepo  doctor.Repository
		mappingRepo mapping.Repository
	)

	switch cfg.Database.Driver {
	case "memory":
		log.Warn("using in-memory store; data will not survive a restart")
		store := memory.NewStore()
		userRepo = store.Users()
		patientRepo = store.Patients()
		doctorRepo = store.Doctors()
		mappingRepo = store.Mappings()
	default:
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return err
		}
		if err := database.Migrate(db, log); err != nil {
			return err
		}
		userRepo = postgres.NewUserRepo(db)
		patientRepo = postgres.NewPatientRepo(db)
		doctorRepo = postgres.NewDoctorRepo(db)
		mappingRepo = postgres.NewMappingRepo(db)
	}

	jwtManager := auth.NewJWTManager(cfg.JWT)
	collector := metrics.NewCollector("carelink")

	router := v1.NewRouter(v1.RouterDeps{
		Config:         cfg,
		Log:            log,
		JWTManager:     jwtManager,
		Collector:      collector,
		AuthService:    service.NewAuthService(userRepo, jwtManager, log),
		PatientService: service.NewPatientService(patientRepo, log),
		DoctorService:  service.NewDoctorService(doctorRepo, log),
		MappingService: service.NewMappingService(mappingRepo, patientRepo, doctorRepo, log),
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
			zap.String("addr", srv.Addr),
			zap.String("environment", cfg.App.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
