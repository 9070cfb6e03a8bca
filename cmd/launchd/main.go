package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"curvelaunch/config"
	"curvelaunch/core"
	"curvelaunch/core/events"
	"curvelaunch/native/launch"
	"curvelaunch/observability/logging"
	"curvelaunch/observability/metrics"
	"curvelaunch/observability/otel"
	"curvelaunch/rpc"
	"curvelaunch/state"
	"curvelaunch/storage"
)

const shutdownGrace = 10 * time.Second

func main() {
	configPath := flag.String("config", "./config.toml", "path to the node configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "launchd: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.Setup(logging.Config{
		Service:     "launchd",
		Environment: cfg.Environment,
		FilePath:    cfg.LogFilePath,
		MaxSizeMB:   cfg.LogMaxSizeMB,
		MaxBackups:  cfg.LogMaxBackups,
		MaxAgeDays:  cfg.LogMaxAgeDays,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OtelTraces || cfg.OtelMetrics {
		shutdownTelemetry, err := otel.Init(ctx, otel.Config{
			ServiceName: "launchd",
			Environment: cfg.Environment,
			Endpoint:    cfg.OtelEndpoint,
			Insecure:    cfg.OtelInsecure,
			Headers:     otel.ParseHeaders(cfg.OtelHeaders),
			Metrics:     cfg.OtelMetrics,
			Traces:      cfg.OtelTraces,
		})
		if err != nil {
			return fmt.Errorf("init telemetry: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			if err := shutdownTelemetry(shutdownCtx); err != nil {
				logger.Warn("telemetry shutdown failed", "error", err)
			}
		}()
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("database close failed", "error", err)
		}
	}()

	manager := state.NewManager(db)

	params, err := config.LoadParams(cfg.ParamsFile)
	if err != nil {
		return err
	}
	store, err := launch.NewParamStore(params)
	if err != nil {
		return fmt.Errorf("install params: %w", err)
	}

	engine := launch.NewEngine(store)
	engine.SetState(manager)
	engine.SetUnitIssuer(manager)
	engine.SetVault(launch.ModuleAddress("launch/vault"))
	if err := engine.LoadPersistedParams(); err != nil {
		return fmt.Errorf("restore params: %w", err)
	}

	hub := events.NewHub(256)
	launchMetrics := metrics.NewLaunch(prometheus.DefaultRegisterer)
	node := core.NewNode(engine, hub, launchMetrics)
	server := rpc.NewServer(node)

	rpcSrv := &http.Server{
		Addr:              cfg.RPCAddress,
		Handler:           otelhttp.NewHandler(server.Router(), "rpc"),
		ReadHeaderTimeout: 5 * time.Second,
	}
	metricsSrv := &http.Server{
		Addr:              cfg.MetricsAddress,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("rpc listening", "address", cfg.RPCAddress, "network", cfg.NetworkName)
		if err := rpcSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("rpc server: %w", err)
		}
	}()
	go func() {
		logger.Info("metrics listening", "address", cfg.MetricsAddress)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		stop()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := rpcSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("rpc shutdown failed", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("metrics shutdown failed", "error", err)
	}
	hub.Close()
	logger.Info("launchd stopped")
	return nil
}

func openDatabase(cfg *config.Config) (storage.Database, error) {
	switch cfg.Backend {
	case "memory":
		slog.Warn("memory backend selected, state will not survive restarts")
		return storage.NewMemDB(), nil
	case "bolt":
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, err
		}
		return storage.NewBoltDB(filepath.Join(cfg.DataDir, "launch.bolt"))
	default:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, err
		}
		return storage.NewLevelDB(filepath.Join(cfg.DataDir, "leveldb"))
	}
}
