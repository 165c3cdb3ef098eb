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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"tickethub/internal/platform/config"
	"tickethub/internal/platform/database"
	"tickethub/internal/platform/health"
	"tickethub/internal/platform/kafka/producer"
	"tickethub/internal/platform/logger"
	"tickethub/internal/platform/metrics"
	"tickethub/internal/platform/middleware"
	redisClient "tickethub/internal/platform/redis"
	"tickethub/internal/platform/tracer"
	"tickethub/internal/remote"
	"tickethub/internal/session"
	sessionStore "tickethub/internal/session/store"
	"tickethub/internal/ticketing/admin"
	"tickethub/internal/ticketing/issuance"
	"tickethub/internal/ticketing/payment"
	"tickethub/internal/ticketing/verification"
	httptransport "tickethub/internal/transport/http"
	"tickethub/migrations"
	"tickethub/pkg/platform/audit"
	auditmetrics "tickethub/pkg/platform/audit/metrics"
	"tickethub/pkg/platform/audit/publisher"
	"tickethub/pkg/platform/audit/store/kafkasink"
	"tickethub/pkg/platform/audit/store/logsink"
	"tickethub/pkg/platform/audit/store/memory"
	"tickethub/pkg/platform/circuit"
)

const (
	serviceName       = "tickethub"
	auditBufferSize   = 256
	poolStatsInterval = 15 * time.Second
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal/ticketing packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracer.Setup(ctx, serviceName, cfg.TracingEndpoint)
	if err != nil {
		log.WarnContext(ctx, "tracing disabled", "error", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn("failed to flush spans", "error", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	mtr := metrics.New(reg)
	healthHandler := health.New(cfg.Environment)

	client := remote.NewHTTPClient(cfg.Remote.BaseURL,
		remote.WithAPIKey(cfg.Remote.APIKey),
		remote.WithTimeout(cfg.Remote.Timeout),
		remote.WithLogger(log),
		remote.WithTracer(tracer.NewOTel()),
		remote.WithMetrics(mtr),
	)
	healthHandler.RegisterCheck("ticket_service", client.Ping)

	store, backend, err := buildSessionStore(ctx, cfg, reg, log)
	if err != nil {
		return err
	}
	defer backend.close()
	if backend.redis != nil {
		healthHandler.RegisterCheck("redis", backend.redis.Health)
	}
	if backend.postgres != nil {
		healthHandler.RegisterCheck("postgres", backend.postgres.Health)
	}

	auditStore, kafkaProducer, err := buildAuditStore(cfg.Kafka, log)
	if err != nil {
		return err
	}
	if kafkaProducer != nil {
		defer kafkaProducer.Close(cfg.Kafka.DeliveryTimeout)
		healthHandler.RegisterCheck("kafka", kafkaProducer.Ping)
	}
	auditPublisher := publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithPublisherLogger(log),
		publisher.WithMetrics(auditmetrics.New(reg)),
	)
	defer auditPublisher.Close()
	auditLogger := audit.NewLogger(log, auditPublisher)

	verifier := verification.New(client,
		verification.WithLogger(log),
		verification.WithAuditLogger(auditLogger),
		verification.WithMetrics(mtr),
	)
	issuer := issuance.New(client, verifier,
		issuance.WithLogger(log),
		issuance.WithAuditLogger(auditLogger),
		issuance.WithMetrics(mtr),
		issuance.WithBreaker(circuit.New("catalog",
			circuit.WithFailureThreshold(cfg.Catalog.BreakerThreshold),
			circuit.WithCooldown(cfg.Catalog.BreakerCooldown),
		)),
	)
	payments := payment.New(client,
		payment.WithLogger(log),
		payment.WithAuditLogger(auditLogger),
		payment.WithMetrics(mtr),
	)
	adminService := admin.NewService(client,
		admin.WithLogger(log),
		admin.WithEventSource(auditPublisher),
	)

	sessions := session.NewManager(store, cfg.Session.Secret,
		session.WithLogger(log),
		session.WithMetrics(mtr),
		session.WithCookie(cfg.Session.CookieName, cfg.Session.CookieMaxAge, cfg.Session.CookieSecure),
	)
	clientIP, err := middleware.NewClientIP(cfg.TrustedProxies)
	if err != nil {
		return fmt.Errorf("trusted proxies: %w", err)
	}
	limiter := middleware.NewRateLimiter(cfg.RateLimit.VerifyPerMinute, cfg.RateLimit.VerifyBurst,
		middleware.WithOnLimited(func(*http.Request) { mtr.IncrementRateLimited() }),
	)

	handler, err := httptransport.NewHandler(sessions, verifier, issuer, payments, adminService, log)
	if err != nil {
		return err
	}
	router := httptransport.NewRouter(handler, httptransport.RouterConfig{
		Logger:         log,
		Metrics:        mtr,
		Gatherer:       reg,
		Health:         healthHandler,
		ClientIP:       clientIP,
		VerifyLimiter:  limiter,
		AdminToken:     cfg.AdminToken,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server",
			"addr", cfg.Addr,
			"environment", cfg.Environment,
			"remote", cfg.Remote.BaseURL,
			"session_store", storeKind(backend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return limiter.Run(gctx)
	})
	if backend.redis != nil {
		g.Go(func() error {
			return backend.redis.RunPoolStats(gctx, poolStatsInterval)
		})
	}
	if backend.store != nil && cfg.Session.TTL > 0 {
		g.Go(func() error {
			return purgeExpiredSessions(gctx, backend.store, cfg.Postgres.CleanupInterval, log)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}

// sessionBackend records which shared store, if any, backs sessions.
type sessionBackend struct {
	redis    *redisClient.Client
	postgres *database.Pool
	store    *sessionStore.PostgresStore
}

func (b sessionBackend) close() {
	if b.redis != nil {
		_ = b.redis.Close()
	}
	if b.postgres != nil {
		b.postgres.Close()
	}
}

// buildSessionStore uses Redis when REDIS_URL is set, Postgres when
// DATABASE_URL is set, and memory otherwise.
func buildSessionStore(ctx context.Context, cfg config.Server, reg prometheus.Registerer, log *slog.Logger) (session.Store, sessionBackend, error) {
	switch {
	case cfg.Redis.Enabled():
		rdb, err := redisClient.New(ctx, cfg.Redis, reg)
		if err != nil {
			return nil, sessionBackend{}, fmt.Errorf("connect redis: %w", err)
		}
		return sessionStore.NewRedis(rdb.Client, cfg.Session.TTL), sessionBackend{redis: rdb}, nil
	case cfg.Postgres.Enabled():
		pool, err := database.New(ctx, cfg.Postgres, log)
		if err != nil {
			return nil, sessionBackend{}, fmt.Errorf("connect database: %w", err)
		}
		if err := database.Migrate(ctx, pool, migrations.FS); err != nil {
			pool.Close()
			return nil, sessionBackend{}, err
		}
		st := sessionStore.NewPostgres(pool, cfg.Session.TTL)
		return st, sessionBackend{postgres: pool, store: st}, nil
	default:
		if cfg.IsProduction() {
			log.Warn("neither REDIS_URL nor DATABASE_URL set; sessions are kept in memory and lost on restart")
		}
		return sessionStore.NewMemory(), sessionBackend{}, nil
	}
}

// purgeExpiredSessions deletes expired session rows every interval.
func purgeExpiredSessions(ctx context.Context, st *sessionStore.PostgresStore, interval time.Duration, log *slog.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := st.DeleteExpired(ctx)
			if err != nil {
				log.WarnContext(ctx, "failed to purge expired sessions", "error", err)
				continue
			}
			if n > 0 {
				log.DebugContext(ctx, "purged expired sessions", "count", n)
			}
		}
	}
}

func storeKind(b sessionBackend) string {
	switch {
	case b.redis != nil:
		return "redis"
	case b.postgres != nil:
		return "postgres"
	default:
		return "memory"
	}
}

// buildAuditStore logs every event and keeps recent ones in memory for the
// admin page. With Kafka configured, events are streamed to the audit topic
// first.
func buildAuditStore(cfg config.Kafka, log *slog.Logger) (audit.Store, *producer.Producer, error) {
	local := logsink.New(log, logsink.WithMirror(memory.NewInMemoryStore()))
	if !cfg.Enabled() {
		return local, nil, nil
	}
	p, err := producer.New(producer.Config{
		Brokers:         cfg.Brokers,
		Acks:            cfg.Acks,
		Retries:         cfg.Retries,
		DeliveryTimeout: cfg.DeliveryTimeout,
	}, log)
	if err != nil {
		return nil, nil, fmt.Errorf("audit kafka producer: %w", err)
	}
	log.Info("streaming audit events to kafka", "topic", cfg.AuditTopic)
	return kafkasink.New(p, cfg.AuditTopic, local), p, nil
}
