package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
	"gorm.io/gorm"

	schedulingv1 "github.com/Leganyst/class-scheduler/internal/api/scheduling/v1"
	"github.com/Leganyst/class-scheduler/internal/config"
	"github.com/Leganyst/class-scheduler/internal/db"
	"github.com/Leganyst/class-scheduler/internal/logging"
	"github.com/Leganyst/class-scheduler/internal/model"
	"github.com/Leganyst/class-scheduler/internal/notify"
	"github.com/Leganyst/class-scheduler/internal/scheduling"
	"github.com/Leganyst/class-scheduler/internal/service"
)

func newServeCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the gRPC scheduling server with metrics and health endpoints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "run migrations before serving")
	return cmd
}

func serve(ctx context.Context, migrate bool) error {
	// 1. Конфиг и логгер.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.New(cfg.Log)

	// 2. Подключаемся к БД через GORM.
	gormDB, err := db.NewGormDB(&cfg.DB)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	// 3. Миграции моделей.
	if migrate {
		if err := model.AutoMigrate(gormDB); err != nil {
			return err
		}
		if err := model.EnsureScheduleConstraints(gormDB, cfg.DB.ExclusionConstraints); err != nil {
			return err
		}
	}

	// 4. Уведомления (опционально).
	opts := []scheduling.Option{scheduling.WithLockTimeout(cfg.Scheduling.LockTimeout)}
	rdb, err := notify.Connect(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		opts = append(opts, scheduling.WithNotifier(notify.NewRedisNotifier(rdb, cfg.Redis.Channel)))
	}

	// 5. Координатор и gRPC-сервис.
	coord := scheduling.NewCoordinator(gormDB, opts...)
	retrier := scheduling.NewRetrier(cfg.Scheduling.RetryAttempts, cfg.Scheduling.RetryBaseDelay)
	svc := service.NewSchedulingService(coord, retrier)

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(service.LoggingInterceptor(log)))
	schedulingv1.RegisterSchedulingServiceServer(grpcServer, svc)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return err
	}

	// 6. HTTP: метрики и healthcheck.
	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           opsRouter(gormDB),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		log.WithField("addr", cfg.Server.GRPCAddr).Info("gRPC server listening")
		errCh <- grpcServer.Serve(lis)
	}()
	go func() {
		log.WithField("addr", cfg.Server.HTTPAddr).Info("ops HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 7. Грейсфул-шатдаун по сигналу или ошибке сервера.
	select {
	case <-ctx.Done():
	case err = <-errCh:
		log.WithError(err).Error("server stopped")
	}
	shutdown(log, grpcServer, httpServer)
	return err
}

func opsRouter(gormDB *gorm.DB) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		sqlDB, err := gormDB.DB()
		if err == nil {
			err = sqlDB.PingContext(r.Context())
		}
		if err != nil {
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	return r
}

func shutdown(log *logrus.Logger, grpcServer *grpc.Server, httpServer *http.Server) {
	log.Info("shutting down servers...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	grpcServer.GracefulStop()
}
