// SPDX-License-Identifier: MIT

// Command vdeskd runs the virtual desktop session controller: the HTTP API,
// the event dispatch workers and the periodic schedule tick.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/driftlab/vdeskd/internal/api"
	"github.com/driftlab/vdeskd/internal/config"
	"github.com/driftlab/vdeskd/internal/dispatch"
	"github.com/driftlab/vdeskd/internal/events"
	"github.com/driftlab/vdeskd/internal/handlers"
	vlog "github.com/driftlab/vdeskd/internal/log"
	"github.com/driftlab/vdeskd/internal/orchestrator"
	"github.com/driftlab/vdeskd/internal/provision"
	"github.com/driftlab/vdeskd/internal/queue"
	"github.com/driftlab/vdeskd/internal/schedule"
	"github.com/driftlab/vdeskd/internal/store"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("vdeskd %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vdeskd: %v\n", err)
		os.Exit(1)
	}

	vlog.Configure(vlog.Config{Level: cfg.LogLevel, Service: "vdeskd"})
	logger := vlog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Fatal().Err(err).Msg("daemon exited with error")
	}
	logger.Info().Msg("daemon stopped")
}

func run(ctx context.Context, cfg config.Config) error {
	logger := vlog.WithComponent("daemon")

	sqlStore, err := store.NewSqliteStore(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if cerr := sqlStore.Close(); cerr != nil {
			logger.Error().Err(cerr).Msg("store close failed")
		}
	}()
	stores := sqlStore.Bundle()

	visibility, err := cfg.QueueVisibilityTimeout()
	if err != nil {
		return err
	}
	waitTime, err := cfg.QueueWaitTime()
	if err != nil {
		return err
	}
	tickEvery, err := cfg.SessionsTickInterval()
	if err != nil {
		return err
	}

	q, err := queue.NewRedisQueue(queue.RedisConfig{
		Addr:       cfg.Queue.Addr,
		Password:   cfg.Queue.Password,
		DB:         cfg.Queue.DB,
		Name:       cfg.Queue.Name,
		Visibility: visibility,
		Sender:     "vdeskd-controller",
	})
	if err != nil {
		return err
	}

	pub := &events.Publisher{Queue: q}

	eng, err := schedule.NewEngine(stores.Schedules, cfg.Sessions)
	if err != nil {
		return err
	}

	backend := provision.NewLocal(pub)
	orc := orchestrator.New(stores, backend, backend, pub, eng)

	set := handlers.New(orc, stores, backend, backend, pub, eng)
	engine := &dispatch.Engine{
		Queue:          q,
		Registry:       set.Registry(),
		Workers:        cfg.Queue.Workers,
		BatchSize:      cfg.Queue.BatchSize,
		WaitTime:       waitTime,
		TrustedSenders: cfg.Queue.TrustedSenders,
	}

	server := api.NewServer(cfg.API, orc, stores)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return engine.Run(ctx) })
	g.Go(func() error { return server.ListenAndServe(ctx) })
	g.Go(func() error { return tickLoop(ctx, pub, tickEvery) })

	logger.Info().
		Int("workers", cfg.Queue.Workers).
		Str("queue", cfg.Queue.Name).
		Str("addr", cfg.API.ListenAddr).
		Msg("vdeskd running")

	return g.Wait()
}

// tickLoop publishes the periodic schedule tick carrying the wall-clock
// HH:MM of the instant it fired.
func tickLoop(ctx context.Context, pub *events.Publisher, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-ticker.C:
			if err := pub.ScheduledTick(ctx, t.Format("15:04")); err != nil {
				l := vlog.WithComponent("daemon")
				l.Error().Err(err).Msg("failed to publish schedule tick")
			}
		}
	}
}
