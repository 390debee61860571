package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"issuer-gateway/internal/audit"
	issuancehandler "issuer-gateway/internal/issuance/handler"
	issuancemetrics "issuer-gateway/internal/issuance/metrics"
	"issuer-gateway/internal/issuance/ports"
	"issuer-gateway/internal/issuance/service"
	issuerstore "issuer-gateway/internal/issuance/store/issuer"
	userstore "issuer-gateway/internal/issuance/store/user"
	"issuer-gateway/internal/platform/config"
	"issuer-gateway/internal/platform/httpserver"
	"issuer-gateway/internal/platform/logger"
	"issuer-gateway/internal/platform/middleware"
	"issuer-gateway/internal/platform/postgres"
	platformredis "issuer-gateway/internal/platform/redis"
	"issuer-gateway/internal/provider/saas"
	httptransport "issuer-gateway/internal/transport/http"
	"issuer-gateway/pkg/platform/lock"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if cfg.IssuerDid == "" {
		log.Error("ISSUER_DID is required")
		os.Exit(1)
	}

	// Stores: postgres when configured, in-memory otherwise.
	var (
		users   ports.UserStore
		issuers ports.IssuerStore
	)
	db, err := postgres.Open(cfg.PostgresDSN)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
		users = userstore.NewPostgres(db)
		issuers = issuerstore.NewPostgres(db)
		log.Info("using postgres stores")
	} else {
		users = userstore.NewMemoryStore()
		issuers = issuerstore.NewMemoryStore()
		log.Warn("no POSTGRES_DSN configured, using in-memory stores")
	}

	// Locks: distributed when redis is configured, in-process otherwise.
	var locker lock.Locker = lock.NewKeyedMutex()
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		locker = lock.NewRedisLocker(redisClient.Client, 30*time.Second)
		log.Info("using redis-backed locks")
	}

	// Audit: kafka when brokers are configured, in-memory otherwise.
	var sink audit.Sink = audit.NewMemorySink()
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Error("failed to create kafka audit sink", "error", err)
			os.Exit(1)
		}
		defer kafkaSink.Close()
		sink = kafkaSink
		log.Info("publishing audit events to kafka", "topic", cfg.KafkaTopic)
	}
	publisher := audit.NewPublisher(1024, log)
	worker := audit.NewWorker(sink, publisher.Inbox(), log)

	metrics := issuancemetrics.New()
	provider := saas.New(cfg.ProviderURL, cfg.ProviderTimeout, log)

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(metrics),
		service.WithAuditPublisher(publisher),
	}
	ledger := service.NewLedger(issuers, opts...)
	validator := service.NewValidator(provider, ledger, opts...)
	associations := service.NewAssociationManager(users, provider, validator, ledger, opts...)
	pipeline := service.NewPipeline(provider, ledger, opts...)
	credentials := service.NewService(issuers, validator, associations, pipeline, locker, opts...)
	enrollment := service.NewEnrollment(users, opts...)

	jwtValidator := middleware.NewHS256Validator(cfg.JWTSigningKey)
	handler := issuancehandler.New(credentials, enrollment, cfg.IssuerDid, log, jwtValidator)
	router := httptransport.NewRouter(handler, log)

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("starting issuer-gateway", "addr", cfg.Addr, "issuer_did", cfg.IssuerDid)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		if err := worker.Run(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("shutdown with error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
