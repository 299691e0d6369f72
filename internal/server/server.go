// FilePath: internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/handlers"
	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"

	"github.com/verdantlabs/chainsense/api"
	"github.com/verdantlabs/chainsense/internal/chainservice"
	"github.com/verdantlabs/chainsense/internal/config"
	"github.com/verdantlabs/chainsense/internal/database"
	"github.com/verdantlabs/chainsense/internal/monitoring"
	"github.com/verdantlabs/chainsense/internal/repository"
	"github.com/verdantlabs/chainsense/internal/repository/postgres"
	"github.com/verdantlabs/chainsense/internal/sui"
	"github.com/verdantlabs/chainsense/internal/throttle"
)

// Server represents our HTTP server
type Server struct {
	config     *config.Config
	srv        *http.Server
	service    *chainservice.ChainService
	monitoring *monitoring.Service
	db         database.DB
}

// New wires the full pipeline: ledger client, signer, throttle store,
// optional archive, metrics, router. Missing signer or archive degrades the
// matching feature instead of failing startup.
func New(cfg *config.Config) (*Server, error) {
	ledger := sui.NewClient(cfg.Sui.RPCURL, cfg.Sui.RequestTimeout)

	var signer *sui.Signer
	if cfg.Sui.SignerKey != "" {
		var err error
		signer, err = sui.DecodeSignerKey(cfg.Sui.SignerKey)
		if err != nil {
			return nil, fmt.Errorf("decode signer key: %w", err)
		}
		nuts.L.Infof("[Server] Direct signing enabled for address %s", signer.Address())
	} else {
		nuts.L.Warnf("[Server] No signer key configured, direct write path disabled")
	}

	mon := monitoring.NewService()

	var store throttle.Store
	if cfg.Redis.Enabled() {
		client := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store = throttle.NewRedisStore(client)
		nuts.L.Infof("[Server] Throttle state shared via redis at %s:%d", cfg.Redis.Host, cfg.Redis.Port)
	} else {
		store = throttle.NewMemoryStore()
	}
	limiter := throttle.NewLimiter(store, cfg.Throttle.MaxRequests, cfg.Throttle.Window, nil)

	var db database.DB
	var archive repository.SubmissionRepository
	if cfg.Database.Enabled() {
		var err error
		db, err = database.NewPostgresDB(cfg.Database.Postgres)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		archive, err = postgres.NewSubmissionRepository(db)
		if err != nil {
			return nil, fmt.Errorf("init submission archive: %w", err)
		}
		nuts.L.Infof("[Server] Submission archive enabled")
	}

	svc := chainservice.New(ledger, signer, cfg.Sui, cfg.Device, archive, mon)

	router := api.NewRouter(svc, limiter, mon)
	router.Resources().SetHealthCheck(healthCheck(db))
	router.Resources().SetMetrics(mon.Handler().ServeHTTP)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      cors(router),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Server{
		config:     cfg,
		srv:        srv,
		service:    svc,
		monitoring: mon,
		db:         db,
	}, nil
}

// Start begins listening for requests
func (s *Server) Start() error {
	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown()
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (s *Server) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			nuts.L.Warnf("[Server] Error closing database: %v", err)
		}
	}

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

// healthCheck reports process liveness plus archive connectivity when a
// database is wired in
func healthCheck(db database.DB) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		code := http.StatusOK
		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				status = "degraded"
				code = http.StatusServiceUnavailable
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		w.Write([]byte(`{"status":"` + status + `","version":"` + nuts.GetVersion() + `"}`))
	}
}
