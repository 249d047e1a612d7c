package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/mkravets/mr-insight-service/internal/config"
	"github.com/mkravets/mr-insight-service/internal/gitlab"
	"github.com/mkravets/mr-insight-service/internal/jira"
	"github.com/mkravets/mr-insight-service/internal/scoring"
	"github.com/mkravets/mr-insight-service/internal/service"
	myhttp "github.com/mkravets/mr-insight-service/internal/transport/http"

	"github.com/mkravets/mr-insight-service/pkg/logger/slogpretty"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := slogpretty.SetupLogger(cfg.Env)

	log.Info("starting mr-insight-service", slog.String("env", cfg.Env))

	// One upstream HTTP client with a bounded per-call timeout, shared by
	// both API clients. Host and tracker clients themselves are built fresh
	// per run so the issue cache stays scoped to one scan.
	upstream := &http.Client{Timeout: cfg.Scan.HTTPTimeout}

	newHost := func(settings service.Settings) service.HostClient {
		return gitlab.NewClient(
			settings.GitLabBaseURL,
			settings.GitLabProject,
			settings.GitLabToken,
			cfg.Scan.PageSize,
			upstream,
			log,
		)
	}

	newTracker := func(settings service.Settings) service.IssueFetcher {
		return jira.NewFetcher(
			settings.JiraBaseURL,
			settings.JiraUser,
			settings.JiraToken,
			upstream,
			log,
		)
	}

	scorer := scoring.NewEngine(scoring.NewVaderAnalyzer())
	scanService := service.NewScanService(log, newHost, newTracker, scorer)

	srv := myhttp.NewServer(log, cfg, scanService)
	httpServer := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler: srv.Routes(),
	}

	errChan := make(chan error, 1)

	go startServer(log, httpServer, errChan)

	select {
	case err := <-errChan:
		return fmt.Errorf("http server error: %v", err)

	case <-ctx.Done():
		log.Info("stopping server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shuting down http server: %v", err)
	}

	return nil
}

func startServer(log *slog.Logger, httpServer *http.Server, errChan chan error) {
	defer close(errChan)

	log.Info("service started", slog.String("addr", httpServer.Addr))

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		errChan <- fmt.Errorf("error listening and serving: %v", err)
	}
}
