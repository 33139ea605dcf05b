package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/config"
	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/rpc"
	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/store"
)

// #region main
func main() {
	configPath := flag.String("config", "", "path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(2)
	}
	logger := cfg.Logger(os.Stdout)
	slog.SetDefault(logger)

	// Persistence is optional; GetRun answers FailedPrecondition without it.
	var runs rpc.RunStore
	if cfg.Store.Path != "" {
		s, err := store.Open(cfg.Store.Path)
		if err != nil {
			slog.Error("failed to open store", "path", cfg.Store.Path, "err", err)
			os.Exit(1)
		}
		defer s.Close()
		runs = s
		slog.Info("store opened", "path", cfg.Store.Path)
	}

	srv := rpc.NewServer(cfg.EffectiveAudit(), runs, logger)
	gs, hs := rpc.NewGRPCServer(srv)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		slog.Error("listen", "addr", cfg.Server.GRPCAddr, "err", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:              cfg.Server.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("metrics listening", "addr", cfg.Server.MetricsAddr)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server", "err", err)
		}
	}()
	go func() {
		slog.Info("audit service listening", "addr", lis.Addr().String(), "service", rpc.ServiceName)
		if err := gs.Serve(lis); err != nil {
			slog.Error("grpc serve", "err", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("shutting down")
	hs.SetServingStatus(rpc.ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	gs.GracefulStop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("metrics shutdown", "err", err)
	}
}
// #endregion main
