package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/scalarorg/crosschain-relayer/config"
	"github.com/scalarorg/crosschain-relayer/pkg/db"
	"github.com/scalarorg/crosschain-relayer/pkg/events"
	"github.com/scalarorg/crosschain-relayer/pkg/metrics"
	"github.com/scalarorg/crosschain-relayer/pkg/server"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the transfer API and stream stage events",
	RunE:  serve,
}

func serve(cmd *cobra.Command, args []string) error {
	cfg := config.GlobalConfig
	ctx := cmd.Context()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector, err := metrics.NewCollector(registry)
	if err != nil {
		return err
	}
	eventBus := events.NewEventBus(cfg.EventBus.SubscriberBuffer, events.LogSink{}, collector)

	var history server.History
	if cfg.Database.PostgresDSN != "" || cfg.Database.MongoURI != "" {
		dbAdapter, err := db.NewDatabaseAdapter(ctx, cfg.Database.PostgresDSN, cfg.Database.MongoURI, cfg.Database.MongoDatabase)
		if err != nil {
			log.Error().Err(err).Msg("[Relayer] [serve] failed to create database adapter")
			return err
		}
		defer dbAdapter.Close(context.Background())
		eventBus.AddSink(dbAdapter)
		history = dbAdapter
	}

	service, err := newService(eventBus)
	if err != nil {
		return err
	}
	apiServer, err := server.NewServer(service, eventBus, history, registry)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.Start(cfg.Server.Address)
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	log.Info().Msg("[Relayer] [serve] shutting down relayer...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return apiServer.Shutdown(shutdownCtx)
}
