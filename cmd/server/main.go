package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/bingshan1999/TaskManager/internal/cfg"
	"github.com/bingshan1999/TaskManager/internal/database"
	"github.com/bingshan1999/TaskManager/internal/logger"
	"github.com/bingshan1999/TaskManager/internal/middleware"
	"github.com/bingshan1999/TaskManager/internal/task"
)

func main() {
	conf, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New("task", conf.Env, conf.LogLevel)

	if err := run(conf, log); err != nil {
		log.Fatal().Err(err).Msg("task service failed")
	}
	log.Info().Msg("task service stopped")
}

func run(conf cfg.Config, log zerolog.Logger) error {
	db, err := database.Open(conf.DB, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := task.Migrate(db); err != nil {
		return err
	}

	repo := task.NewRepository(db)

	if conf.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), conf.ShutdownTimeout)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("addr", conf.Redis.Addr).Msg("redis unavailable, cache will fall through to database")
		}
		repo = task.NewCachedRepository(repo, rdb, conf.Redis.CacheTTL, log)
	}

	var producer task.KafkaProducer
	if conf.Kafka.Enabled() {
		producer = task.NewKafkaProducer(conf.Kafka.Brokers, conf.Kafka.Topic)
		defer producer.Close()
		log.Info().Strs("brokers", conf.Kafka.Brokers).Str("topic", conf.Kafka.Topic).Msg("publishing task events")
	}

	service := task.NewTaskService(repo, producer, log)

	httpServer := &http.Server{
		Addr:         ":" + conf.HTTPPort,
		Handler:      newRouter(conf, log, task.NewHandler(service, log)),
		ReadTimeout:  conf.ReadTimeout,
		WriteTimeout: conf.WriteTimeout,
		IdleTimeout:  conf.IdleTimeout,
	}

	grpcListener, err := net.Listen("tcp", ":"+conf.GRPCPort)
	if err != nil {
		return fmt.Errorf("listen on gRPC port: %w", err)
	}
	grpcServer := task.NewGrpcServer(task.NewGrpcHandler(service), log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)

	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	go func() {
		log.Info().Str("addr", grpcListener.Addr().String()).Msg("gRPC server listening")
		if err := grpcServer.Serve(grpcListener); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown error")
	}
	grpcServer.GracefulStop()

	return serveErr
}

func newRouter(conf cfg.Config, log zerolog.Logger, handler *task.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.AccessLog(log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(conf.CORSAllowedOrigins))
	r.Use(middleware.NewRateLimiter(conf.RateLimitRequests, conf.RateLimitWindow).Middleware)
	r.Use(middleware.RequestSizeLimit(conf.MaxBodyBytes))

	handler.RegisterRoutes(r)
	return r
}
