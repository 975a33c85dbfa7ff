package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"beacon/internal/alerts"
	alertshandler "beacon/internal/alerts/handler"
	"beacon/internal/audit"
	"beacon/internal/auth"
	authhandler "beacon/internal/auth/handler"
	jwttoken "beacon/internal/jwt_token"
	"beacon/internal/location"
	locationhandler "beacon/internal/location/handler"
	"beacon/internal/platform/config"
	"beacon/internal/platform/httpserver"
	"beacon/internal/platform/kafka"
	"beacon/internal/platform/logger"
	"beacon/internal/platform/metrics"
	"beacon/internal/platform/postgres"
	"beacon/internal/platform/redis"
	"beacon/internal/status"
	statushandler "beacon/internal/status/handler"
	"beacon/internal/users"
	usershandler "beacon/internal/users/handler"
	"beacon/internal/zones"
	zoneshandler "beacon/internal/zones/handler"
)

const auditTopic = "beacon.audit.events"

// main wires stores, services, and handlers, then runs the HTTP server until
// a shutdown signal. Business logic lives in the internal feature packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx := context.Background()

	// Stores: postgres when DATABASE_URL is set, in-memory otherwise.
	var (
		userStore     users.Store
		zoneStore     zones.Store
		locationStore location.Store
		alertStore    alerts.Store
		statusStore   status.Store
		auditStore    audit.Store
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		userStore = users.NewPostgres(db)
		zoneStore = zones.NewPostgres(db)
		locationStore = location.NewPostgres(db)
		alertStore = alerts.NewPostgres(db)
		statusStore = status.NewPostgres(db)
		auditStore = audit.NewPostgres(db)
		log.Info("using postgres stores")
	} else {
		userStore = users.NewInMemoryStore()
		zoneStore = zones.NewInMemoryStore()
		locationStore = location.NewInMemoryStore()
		alertStore = alerts.NewInMemoryStore()
		statusStore = status.NewInMemoryStore()
		auditStore = audit.NewInMemoryStore()
		log.Info("using in-memory stores")
	}

	// Optional Kafka sink for the audit trail.
	var auditOpts []audit.Option
	auditOpts = append(auditOpts, audit.WithLogger(log), audit.WithAsyncBuffer(256))
	if len(cfg.KafkaBrokers) > 0 {
		sink, err := kafka.NewProducer(cfg.KafkaBrokers, auditTopic)
		if err != nil {
			log.Error("kafka producer failed", "error", err)
			os.Exit(1)
		}
		auditOpts = append(auditOpts, audit.WithKafkaSink(sink))
		log.Info("audit events mirrored to kafka", "topic", auditTopic)
	}
	publisher := audit.NewPublisher(auditStore, auditOpts...)
	defer publisher.Close()

	// Optional Redis latest-location cache.
	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer)
	jwtValidator := jwttoken.NewJWTServiceAdapter(jwtService)

	userSvc := users.New(userStore,
		users.WithLogger(log),
		users.WithAuditPublisher(publisher),
	)
	authSvc := auth.New(userSvc, jwtService, cfg.AccessTokenTTL, auth.WithLogger(log))
	zoneSvc := zones.New(zoneStore,
		zones.WithLogger(log),
		zones.WithAuditPublisher(publisher),
	)
	alertSvc := alerts.New(alertStore, userSvc,
		alerts.WithLogger(log),
		alerts.WithAuditPublisher(publisher),
		alerts.WithMetrics(m),
	)
	statusSvc := status.New(statusStore, userSvc,
		status.WithLogger(log),
		status.WithAuditPublisher(publisher),
		status.WithMetrics(m),
	)

	locationOpts := []location.Option{
		location.WithLogger(log),
		location.WithMetrics(m),
	}
	if redisClient != nil {
		locationOpts = append(locationOpts, location.WithCache(location.NewCache(redisClient)))
	}
	locationSvc := location.New(locationStore, userSvc, zoneSvc, alertSvc, locationOpts...)

	router := chi.NewRouter()
	authhandler.New(authSvc, log, m).Register(router)
	usershandler.New(userSvc, log, m, jwtValidator).Register(router)
	zoneshandler.New(zoneSvc, log, m, jwtValidator).Register(router)
	locationhandler.New(locationSvc, log, m, jwtValidator).Register(router)
	alertshandler.New(alertSvc, log, m, jwtValidator).Register(router)
	statushandler.New(statusSvc, log, m, jwtValidator).Register(router)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting beacon", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
