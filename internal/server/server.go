package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/usermgmt/apiserver/config"
	"github.com/usermgmt/apiserver/internal/db"
	"github.com/usermgmt/apiserver/internal/handlers"
	"github.com/usermgmt/apiserver/internal/logger"
	"github.com/usermgmt/apiserver/internal/metrics"
	"github.com/usermgmt/apiserver/internal/mq"
	"github.com/usermgmt/apiserver/internal/services"
	"github.com/usermgmt/apiserver/internal/store"
)

const (
	readTimeout  = 15 * time.Second
	writeTimeout = 15 * time.Second
	idleTimeout  = 60 * time.Second

	// requestTimeout must stay below writeTimeout so the 503 from
	// middleware.Timeout can still reach the client.
	requestTimeout = 10 * time.Second
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer      *http.Server
	router          *chi.Mux
	db              *sql.DB
	broker          *mq.MQ
	log             *logger.Logger
	shutdownTimeout time.Duration
}

// New opens the database, connects the optional event broker and builds the
// router. Migrations run first when DB_AUTO_MIGRATE is set.
func New(ctx context.Context, cfg config.Config, log *logger.Logger) (*Server, error) {
	if cfg.Database.AutoMigrate {
		if err := db.MigrateUp(cfg.Database); err != nil {
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		log.Info().Str("driver", cfg.Database.Driver).Msg("database migrated")
	}

	dbConn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	broker, err := mq.NewFromConfig(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn, cfg.Database.Driver)

	var opts []services.UserServiceOption
	if broker != nil {
		opts = append(opts, services.WithEventPublisher(broker, cfg.MQ.Channel))
		log.Info().Str("backend", cfg.MQ.Backend).Str("channel", cfg.MQ.Channel).Msg("publishing user events")
	}
	userService := services.NewUserService(userRepo, opts...)

	router := NewRouter(userService, log, metrics.New())

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return &Server{
		httpServer:      httpServer,
		router:          router,
		db:              dbConn,
		broker:          broker,
		log:             log,
		shutdownTimeout: cfg.ShutdownTimeout,
	}, nil
}

// NewRouter builds the HTTP routes and middleware stack.
func NewRouter(userService *services.UserService, log *logger.Logger, m *metrics.Metrics) *chi.Mux {
	router := chi.NewRouter()
	router.Use(
		middleware.RealIP,
		handlers.TraceID(log),
		handlers.RequestLogger,
		m.Middleware,
		middleware.Recoverer,
		middleware.Timeout(requestTimeout),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Method(http.MethodGet, "/metrics", m.Handler())
	router.Route("/users", func(r chi.Router) {
		handlers.UserRouter(r, userService)
	})
	return router
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("starting http server")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Run starts the server and shuts it down gracefully once ctx is done.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	select {
	case err := <-errCh:
		s.closeResources()
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	err := s.Shutdown(shutdownCtx)
	if startErr := <-errCh; startErr != nil && err == nil {
		err = startErr
	}
	return err
}

// Shutdown drains in-flight requests and then releases the database and
// broker connections.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.closeResources()
	return err
}

func (s *Server) closeResources() {
	if s.broker != nil {
		if err := s.broker.Close(); err != nil {
			s.log.Warn().Err(err).Msg("failed to close mq")
		}
		s.broker = nil
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.log.Warn().Err(err).Msg("failed to close database")
		}
		s.db = nil
	}
}
