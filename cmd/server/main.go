// main wires the process: config, database, stores, services, handlers and
// the HTTP lifecycle. Business logic lives in the internal service packages.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pantry/internal/activity"
	groceryhandler "pantry/internal/grocery/handler"
	grocerymetrics "pantry/internal/grocery/metrics"
	groceryservice "pantry/internal/grocery/service"
	grocerystore "pantry/internal/grocery/store"
	itemstore "pantry/internal/grocery/store/item"
	liststore "pantry/internal/grocery/store/list"
	sharestore "pantry/internal/grocery/store/share"
	"pantry/internal/identity/federation"
	identityhandler "pantry/internal/identity/handler"
	identitymetrics "pantry/internal/identity/metrics"
	identityservice "pantry/internal/identity/service"
	userstore "pantry/internal/identity/store/user"
	"pantry/internal/jwttoken"
	"pantry/internal/jwttoken/revocation"
	"pantry/internal/platform/config"
	"pantry/internal/platform/httpserver"
	"pantry/internal/platform/logger"
	"pantry/internal/platform/metrics"
	"pantry/internal/platform/middleware"
	"pantry/internal/platform/postgres"
	"pantry/internal/platform/redis"
)

func main() {
	// .env is a dev convenience; absence is not an error.
	_ = godotenv.Load()

	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	db, err := postgres.New(cfg.DatabaseURL, log)
	if err != nil {
		log.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(cfg.MigrationsPath); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}

	var revoked jwttoken.RevocationList
	if redisClient != nil {
		defer redisClient.Close()
		revoked = revocation.NewRedisList(redisClient.Client)
		log.Info("token revocation backed by redis")
	} else {
		revoked = revocation.NewMemoryList()
		log.Info("token revocation backed by process memory")
	}

	tokens := jwttoken.NewService(cfg.JWTSigningKey, cfg.TokenTTL, revoked)
	verifier := federation.NewJWTVerifier(cfg.FederationKey, cfg.FederationIssuer)

	users := userstore.NewPostgres(db.DB)
	lists := liststore.NewPostgres(db.DB)
	items := itemstore.NewPostgres(db.DB)
	shares := sharestore.NewPostgres(db.DB)
	trail := activity.NewPostgresStore(db.DB)

	publisher := activity.NewPublisher(256, log)
	worker := activity.NewWorker(trail, publisher.Events(), log)

	identitySvc := identityservice.New(users,
		identityservice.WithLogger(log),
		identityservice.WithMetrics(identitymetrics.New()),
	)
	grocerySvc := groceryservice.New(lists, items, shares, users, grocerystore.NewSQLTx(db.DB),
		groceryservice.WithLogger(log),
		groceryservice.WithMetrics(grocerymetrics.New()),
		groceryservice.WithActivity(publisher, trail),
	)

	authHandler := identityhandler.New(identitySvc, tokens, verifier, log)
	listHandler := groceryhandler.New(grocerySvc, log)

	router := newRouter(log, db, redisClient, tokens, authHandler, listHandler)
	srv := httpserver.New(cfg.Addr, router)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go func() {
		if err := worker.Run(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("activity worker stopped", "error", err)
		}
	}()

	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	stopWorker()
}

// newRouter assembles the middleware chain and mounts every endpoint.
func newRouter(
	log *slog.Logger,
	db *postgres.Database,
	redisClient *redis.Client,
	tokens *jwttoken.Service,
	authHandler *identityhandler.Handler,
	listHandler *groceryhandler.Handler,
) chi.Router {
	m := metrics.New()

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Latency(m))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", healthHandler(db, redisClient))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		authHandler.Register(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(tokens, log))
		r.Use(middleware.ContentTypeJSON)
		authHandler.RegisterProtected(r)
		listHandler.Register(r)
	})

	return r
}

func healthHandler(db *postgres.Database, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				http.Error(w, "redis unreachable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
