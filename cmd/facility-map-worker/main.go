// cmd/facility-map-worker/main.go
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"facility-map/internal/common/camunda"
	"facility-map/internal/common/config"
	"facility-map/internal/common/database"
	"facility-map/internal/common/layout"
	"facility-map/internal/common/logger"
	"facility-map/internal/common/observability"
	fm "facility-map/internal/workers/reporting/facility-map"
	"facility-map/internal/workers/reporting/facility-map/queries"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(logger.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Service:     cfg.App.Name,
		Version:     cfg.App.Version,
		Environment: cfg.App.Environment,
	})
	defer zapLog.Sync()
	log := logger.Wrap(zapLog)

	zapLog.Info("Starting facility map worker...")

	obs := observability.New(cfg.Observability.ServiceName, cfg.Observability.JaegerEndpoint)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClient(cfg.Camunda)
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init data sources with retry ---
	clients, err := database.OpenAll(cfg.DataSources)
	if err != nil {
		zapLog.Fatal("data source setup failed", zap.Error(err))
	}
	defer database.CloseAll(clients)

	dbs := make(map[string]*sql.DB, len(clients))
	for id, client := range clients {
		client := client
		err = retryWithBackoff(func() error {
			return client.Ping(ctx)
		}, 15, 2*time.Second, zapLog, fmt.Sprintf("PostgreSQL connection (%s)", id))
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.String("databaseId", id), zap.Error(err))
		}
		dbs[id] = client.DB
	}
	zapLog.Info("PostgreSQL connected successfully", zap.Int("dataSources", len(dbs)))

	// --- Register workers ---
	handler := fm.NewHandler(
		fm.LoadConfig(cfg),
		queries.NewSQLDataSource(dbs),
		layout.NewHTMLRenderer(),
		obs,
		log,
	)
	facilityWorker := camunda.StartWorker(zeebe.Zeebe(), fm.TaskType, config.GetWorkerConfig(cfg, fm.TaskType), handler, log)

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := zeebe.HealthCheck(checkCtx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "zeebe unavailable")
			return
		}
		for id, client := range clients {
			if err := client.Ping(checkCtx); err != nil {
				writeStatus(w, http.StatusServiceUnavailable, "data source "+id+" unavailable")
				return
			}
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: cfg.App.HTTPAddress, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.App.HTTPAddress))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	facilityWorker.Stop(20 * time.Second)

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping Health/Metrics server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Facility map worker stopped gracefully")
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}
