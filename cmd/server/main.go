// Package main initializes and starts the planner HTTP server, setting up
// configuration, logging, document storage, sessions, services and
// handlers.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/planner/internal/certgen"
	"github.com/atinyakov/planner/internal/config"
	"github.com/atinyakov/planner/internal/db"
	"github.com/atinyakov/planner/internal/logger"
	"github.com/atinyakov/planner/internal/repository"
	"github.com/atinyakov/planner/internal/server/handler/http"
	"github.com/atinyakov/planner/internal/service"
	"github.com/atinyakov/planner/internal/session"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// documentStore is a DocumentStore that can create its empty documents.
type documentStore interface {
	repository.DocumentStore
	Init(ctx context.Context) error
}

func main() {
	// Parse command-line, config file and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore := openDocumentStore(options, zapLogger)
	defer closeStore()
	if err := store.Init(ctx); err != nil {
		zapLogger.Fatal("cannot initialize documents", zap.Error(err))
	}

	sessionStore, closeSessions := openSessionStore(ctx, options, zapLogger)
	defer closeSessions()

	if options.SecretKey == config.DefaultSecretKey {
		zapLogger.Warn("using the development session secret; set SECRET_KEY")
	}
	sessions, err := session.NewManager(sessionStore, session.Options{
		Secret: options.SecretKey,
		TTL:    options.SessionTTL.Duration,
		Secure: options.SecureCookies,
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("cannot init sessions", zap.Error(err))
	}

	hasher, err := service.NewPasswordHasher(options.PasswordScheme)
	if err != nil {
		zapLogger.Fatal("cannot init password hasher", zap.Error(err))
	}

	// Initialize repositories over the shared document store.
	userRepo := repository.NewUserRepository(store)
	plannerRepo := repository.NewPlannerRepository(store)

	// Initialize business-logic services.
	authService := service.NewAuthService(userRepo, plannerRepo, hasher, options.EmailDomain, zapLogger)
	plannerService := service.NewPlannerService(plannerRepo, zapLogger)

	// Build the router with middleware and routes.
	router := http.NewRouter(http.RouterConfig{
		Auth:        &http.AuthHandler{AuthService: authService, Sessions: sessions, Log: zapLogger},
		Planner:     &http.PlannerHandler{PlannerService: plannerService, Log: zapLogger},
		Sessions:    sessions,
		Logger:      zapLogger,
		CORSOrigins: options.CORSOrigins,
	})

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	if options.TLSCert != "" && options.TLSKey != "" {
		leaf, certErr := certgen.CheckKeyPair(options.TLSCert, options.TLSKey, time.Now())
		if certErr != nil {
			zapLogger.Fatal("invalid TLS key pair", zap.Error(certErr))
		}
		zapLogger.Info("starting HTTPS server",
			zap.String("addr", options.Port),
			zap.Time("cert_not_after", leaf.NotAfter))
		err = server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
	} else {
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("server failed", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}

// openDocumentStore selects PostgreSQL when a DSN is configured and JSON
// files otherwise.
func openDocumentStore(options *config.Options, log *zap.Logger) (documentStore, func()) {
	if options.DatabaseDSN != "" {
		postgresDB, err := db.InitPostgres(options.DatabaseDSN)
		if err != nil {
			log.Fatal("cannot init database", zap.Error(err))
		}
		log.Info("using postgres document store")
		store := repository.NewPostgresDocumentStore(postgresDB, log, repository.DocUsers, repository.DocPlanner)
		return store, func() { _ = postgresDB.Close() }
	}

	store, err := repository.NewFileDocumentStore(options.DataDir, map[string]string{
		repository.DocUsers:   options.UsersFile,
		repository.DocPlanner: options.PlannerFile,
	}, log)
	if err != nil {
		log.Fatal("cannot init data directory", zap.Error(err))
	}
	log.Info("using json file document store", zap.String("dir", options.DataDir))
	return store, func() {}
}

// openSessionStore selects Redis when a URL is configured and the
// in-memory store with a background cleaner otherwise.
func openSessionStore(ctx context.Context, options *config.Options, log *zap.Logger) (session.Store, func()) {
	if options.RedisURL != "" {
		client, err := session.NewRedisClient(ctx, options.RedisURL)
		if err != nil {
			log.Fatal("cannot connect to redis", zap.Error(err))
		}
		log.Info("using redis session store")
		return session.NewRedisStore(client), func() { _ = client.Close() }
	}

	store := session.NewMemoryStore()
	session.StartCleaner(ctx, store, time.Minute, log)
	return store, func() {}
}
