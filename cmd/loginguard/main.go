package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"loginguard/internal/approval"
	"loginguard/internal/approval/dedupe"
	"loginguard/internal/approval/lock"
	"loginguard/internal/bot"
	"loginguard/internal/discord"
	"loginguard/internal/notify"
	"loginguard/internal/platform/config"
	"loginguard/internal/platform/httpserver"
	"loginguard/internal/platform/logger"
	"loginguard/internal/platform/metrics"
	"loginguard/internal/platform/postgres"
	redisclient "loginguard/internal/platform/redis"
	"loginguard/internal/platform/tracing"
	playerstore "loginguard/internal/players/store"
	httptransport "loginguard/internal/transport/http"
	"loginguard/pkg/platform/audit/publisher"
	auditpostgres "loginguard/pkg/platform/audit/store/postgres"
)

const (
	shutdownTimeout = 10 * time.Second
	auditBuffer     = 256
)

// version is published as the bot's activity; set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("loginguard stopped", "error", err)
		os.Exit(1)
	}
}

// run wires the dependencies and blocks until a signal arrives or a component
// fails. Business logic lives in internal packages.
func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Trace.Stdout {
		shutdown, err := tracing.InitStdout("loginguard", version, os.Stdout)
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = shutdown(sctx)
		}()
	}

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer db.Close()

	players := playerstore.NewPostgres(db)
	if err := players.Migrate(ctx); err != nil {
		return err
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	auditor := publisher.NewPublisher(auditpostgres.New(db),
		publisher.WithAsyncBuffer(auditBuffer),
		publisher.WithLogger(log),
	)
	defer auditor.Close()

	checks := map[string]httptransport.HealthCheck{"postgres": db.PingContext}
	approvalOpts := []approval.Option{
		approval.WithAuditPublisher(auditor),
		approval.WithLogger(log),
		approval.WithMetrics(m),
		approval.WithWindows(cfg.Approval.Window, cfg.Approval.Linger, cfg.Approval.PollInterval),
		approval.WithReactionThreshold(cfg.Approval.ReactionThreshold),
		approval.WithMarkers(cfg.Approval.ApproveMarker, cfg.Approval.DenyMarker),
	}

	rdb, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		checks["redis"] = rdb.Health
		approvalOpts = append(approvalOpts,
			approval.WithDeduper(dedupe.NewRedisDeduper(rdb.Client, cfg.Approval.DedupeTTL)),
			approval.WithLocker(lock.NewRedisLocker(rdb.Client, lock.WithTTL(cfg.Approval.LockTTL), lock.WithLogger(log))),
		)
		log.Info("redis configured, claims and identity locks are shared across replicas")
	}

	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsDirectMessages | discordgo.IntentsDirectMessageReactions

	gateway, err := discord.NewGateway(session,
		discord.WithRateLimit(cfg.Discord.RequestsPerSecond, cfg.Discord.RequestBurst),
	)
	if err != nil {
		return err
	}
	commands, err := bot.New(players, cfg.Discord.ServerAddress,
		bot.WithGuildID(cfg.Discord.GuildID),
		bot.WithVersion(version),
		bot.WithLogger(log),
		bot.WithMetrics(m),
	)
	if err != nil {
		return err
	}
	commands.Attach(ctx, session)
	if err := session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	defer session.Close()

	queue := notify.NewQueue(cfg.Bridge.QueueCapacity)
	supervisor, err := notify.NewSupervisor(notify.PgxDialer{DSN: cfg.Postgres.URL}, cfg.Bridge.Channel,
		notify.WithReconnectBackoff(cfg.Bridge.ReconnectBackoff),
		notify.WithSupervisorLogger(log),
		notify.WithSupervisorMetrics(m),
	)
	if err != nil {
		return err
	}
	bridge, err := notify.NewBridge(supervisor, queue,
		notify.WithIdleDelay(cfg.Bridge.IdleDelay),
		notify.WithEnqueueRetry(cfg.Bridge.EnqueueRetry),
		notify.WithBridgeLogger(log),
		notify.WithBridgeMetrics(m),
	)
	if err != nil {
		return err
	}

	service, err := approval.New(players, gateway, approvalOpts...)
	if err != nil {
		return err
	}
	worker := approval.NewWorker(service, queue,
		approval.WithWorkers(cfg.Approval.Workers),
		approval.WithWorkerLogger(log),
		approval.WithWorkerMetrics(m),
	)

	router := httptransport.NewRouter(httptransport.NewHandler(checks, prometheus.DefaultGatherer, log))
	srv := httpserver.New(cfg.Ops.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return bridge.Run(gctx) })
	g.Go(func() error { return worker.Run(gctx) })
	g.Go(func() error {
		log.Info("ops server listening", "addr", cfg.Ops.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ops server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	log.Info("loginguard started", "version", version, "topic", cfg.Bridge.Channel)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("loginguard stopped")
	return nil
}
