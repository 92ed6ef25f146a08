package locationrelay

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"seryvo/internal/general/config"
	"seryvo/internal/general/kafka"
	"seryvo/internal/general/logger"
	"seryvo/internal/general/rabbitmq"
	"seryvo/internal/general/redisgeo"
	"seryvo/internal/software/relay/service"
)

// Run wires the location relay and blocks until ctx is cancelled.
func Run(ctx context.Context, prefetch int) error {
	logger := logger.New("location-relay")
	ctx = logger.WithRequestID(ctx, "startup-001")

	// load a config from file
	cfg, err := config.LoadFromFile("config/config.yaml")
	if err != nil {
		logger.Error(ctx, "config_load_failed", "Failed to load configuration", err, nil)
		return err
	}

	// connect to RabbitMQ
	rmq, err := rabbitmq.ConnectRabbitMQ(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "rabbitmq_connection_failed", "Failed to connect to RabbitMQ", err, nil)
		return err
	}

	// Kafka writer for the analytics pipeline
	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer func() {
		if err := producer.Close(); err != nil {
			logger.Error(ctx, "kafka_close_failed", "Failed to close Kafka producer", err, nil)
		}
	}()

	// Redis GEO presence index
	presence := redisgeo.NewPresence(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.GeoKey)
	defer presence.Close()
	if err := presence.Ping(ctx); err != nil {
		logger.Error(ctx, "redis_connection_failed", "Failed to reach Redis", err,
			map[string]any{"addr": cfg.Redis.Addr})
		return err
	}

	// set up the relay service and its consumers
	svc := service.NewRelayService(logger, rmq, producer, presence)
	svc.RunBackgroundConsumers(ctx, prefetch)

	// health and metrics only; the relay serves no driver-facing API
	mux := http.NewServeMux()
	mux.HandleFunc("GET /relay/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "service": "location-relay"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Services.RelayPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	logger.Info(ctx, "service_started",
		fmt.Sprintf("Location Relay started on port %d", cfg.Services.RelayPort),
		map[string]any{"port": cfg.Services.RelayPort, "prefetch": prefetch},
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info(ctx, "shutdown_started", "Location Relay shutting down", nil)
		if err := srv.Shutdown(shCtx); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "http_shutdown_failed", "Failed to gracefully shut down HTTP server", err, nil)
		}
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "http_server_error", "HTTP server terminated with error", err,
				map[string]any{"port": cfg.Services.RelayPort})
			return err
		}
		return nil
	}

	return nil
}
