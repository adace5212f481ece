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
	"syscall"
	"time"

	"github.com/riskdash/riskdash/internal/alerts"
	"github.com/riskdash/riskdash/internal/api"
	"github.com/riskdash/riskdash/internal/auth"
	"github.com/riskdash/riskdash/internal/config"
	"github.com/riskdash/riskdash/internal/metrics"
	"github.com/riskdash/riskdash/internal/registry"
	"github.com/riskdash/riskdash/internal/report"
	"github.com/riskdash/riskdash/internal/ws"
	"github.com/riskdash/riskdash/pkg/types"
)

func main() {
	configPath := flag.String("config", "", "path to config file; empty uses built-in defaults")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	slog.Info("riskdash-server starting", "config", *configPath)

	cfg := config.Defaults()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			slog.Error("failed to load config", "err", err)
			os.Exit(1)
		}
	}

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"auth_mode", cfg.Server.Auth.Mode,
		"registry_path", cfg.Registry.Path,
		"registry_url", cfg.Registry.URL,
		"trials", cfg.Simulation.Trials,
		"alert_rules", len(cfg.Alerts.Rules),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	records, err := registry.Resolve(ctx, cfg.Registry)
	if err != nil {
		slog.Error("failed to load component registry", "err", err)
		os.Exit(1)
	}
	st := registry.NewStore(records)
	slog.Info("component registry loaded", "components", st.Count())

	if cfg.Registry.Watch {
		go func() {
			err := registry.Watch(ctx, cfg.Registry.Path, func(recs []types.ComponentRecord) {
				st.Replace(recs)
				slog.Info("component registry reloaded", "components", len(recs), "version", st.Version())
			})
			if err != nil {
				slog.Error("registry watcher stopped", "err", err)
			}
		}()
	}

	builder := &report.Builder{
		Records: st.List,
		Trials:  cfg.Simulation.Trials,
		Seed:    cfg.Simulation.Seed,
	}

	alertEngine := alerts.New(cfg.Alerts)

	// Every broadcast tick assembles one report; alert rules run against it.
	hub := ws.New(builder.Build, cfg.Server.BroadcastInterval)
	hub.OnReport(alertEngine.Evaluate)
	go hub.Run(ctx)

	handler := api.New(builder, alertEngine, auth.Middleware(cfg.Server.Auth))
	handler.Handle("/metrics", metrics.Handler(builder.Build))
	handler.Handle("/ws/stream", hub)

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("riskdash-server shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	httpSrv.Shutdown(shutdownCtx) //nolint:errcheck
	alertEngine.Wait()
}
