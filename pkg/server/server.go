package server

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/jobtracker/pkg/audit"
	"github.com/doodlesbykumbi/jobtracker/pkg/authenticator"
	"github.com/doodlesbykumbi/jobtracker/pkg/authenticator/google"
	"github.com/doodlesbykumbi/jobtracker/pkg/authenticator/password"
	"github.com/doodlesbykumbi/jobtracker/pkg/config"
	"github.com/doodlesbykumbi/jobtracker/pkg/followup"
	"github.com/doodlesbykumbi/jobtracker/pkg/logging"
	"github.com/doodlesbykumbi/jobtracker/pkg/server/middleware"
	"github.com/doodlesbykumbi/jobtracker/pkg/server/store"
	gormstore "github.com/doodlesbykumbi/jobtracker/pkg/server/store/gorm"
	"github.com/doodlesbykumbi/jobtracker/pkg/tokens"
)

// Stores bundles the storage the server depends on
type Stores struct {
	Applications  store.ApplicationsStore
	Users         store.UsersStore
	RefreshTokens store.RefreshTokensStore
	Health        store.HealthStore
}

// GormStores returns the gorm-backed implementation of every store.
func GormStores(db *gorm.DB, loc *time.Location) Stores {
	return Stores{
		Applications:  gormstore.NewApplicationsStore(db, loc),
		Users:         gormstore.NewUsersStore(db),
		RefreshTokens: gormstore.NewRefreshTokensStore(db),
		Health:        gormstore.NewHealthStore(db),
	}
}

type Server struct {
	Config *config.Config
	Logger *zap.Logger
	Audit  *audit.Logger
	Router *mux.Router
	DB     *gorm.DB

	ApplicationsStore  store.ApplicationsStore
	UsersStore         store.UsersStore
	RefreshTokensStore store.RefreshTokensStore
	HealthStore        store.HealthStore

	Tokens         *tokens.Issuer
	Authenticators *authenticator.Registry
	JWTMiddleware  *middleware.JWTAuthenticator
	AuthLimiter    *middleware.RateLimiter
	Followup       followup.Calculator

	srv *http.Server
}

// Option customizes a Server built by New
type Option func(*Server)

// WithGoogleOptions passes options to the Google authenticator.
func WithGoogleOptions(opts ...google.Option) Option {
	return func(s *Server) {
		if !s.Config.GoogleEnabled() {
			return
		}
		s.Authenticators.Register(google.New(s.UsersStore, googleConfig(s.Config), opts...))
	}
}

func googleConfig(cfg *config.Config) google.Config {
	return google.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
	}
}

// New wires a server around the given stores. Routes are registered
// separately with endpoints.RegisterAll.
func New(cfg *config.Config, stores Stores, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	registry := authenticator.NewRegistry()
	registry.Register(password.New(stores.Users))
	_ = registry.Enable(password.Name)
	if cfg.GoogleEnabled() {
		registry.Register(google.New(stores.Users, googleConfig(cfg)))
		_ = registry.Enable(google.Name)
	}

	issuer := tokens.NewIssuer(tokens.Config{
		SecretKey:  []byte(cfg.SecretKey),
		AccessTTL:  cfg.AccessTTL(),
		RefreshTTL: cfg.RefreshTTL(),
	}, stores.Users, stores.RefreshTokens)

	jwtMiddleware := middleware.NewJWTAuthenticator(issuer, stores.Users, logger.Named("authn"))
	if cfg.DevAuthFallback {
		logger.Warn("development auth fallback is enabled", zap.String("username", cfg.DevUsername))
		jwtMiddleware.WithDevFallback(cfg.DevUsername)
	}

	s := &Server{
		Config:             cfg,
		Logger:             logger,
		Audit:              audit.NewLogger(logger, cfg.IsAuditEnabled()),
		Router:             mux.NewRouter(),
		ApplicationsStore:  stores.Applications,
		UsersStore:         stores.Users,
		RefreshTokensStore: stores.RefreshTokens,
		HealthStore:        stores.Health,
		Tokens:             issuer,
		Authenticators:     registry,
		JWTMiddleware:      jwtMiddleware,
		AuthLimiter:        middleware.NewRateLimiter(cfg.AuthRateLimit, int(math.Ceil(cfg.AuthRateLimit))),
		Followup:           followup.NewCalculator(cfg.FollowupDays, cfg.Location()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewServer creates a server backed by db listening on host:port.
func NewServer(cfg *config.Config, db *gorm.DB, logger *zap.Logger, host string, port string, opts ...Option) *Server {
	s := New(cfg, GormStores(db, cfg.Location()), logger, opts...)
	s.DB = db
	s.srv = &http.Server{
		Handler:           s.Handler(),
		Addr:              host + ":" + port,
		WriteTimeout:      15 * time.Second,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the router wrapped in the request id, proxy header,
// CORS and access log middleware.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.Router
	h = handlers.CORS(
		handlers.AllowedOrigins(s.Config.CORSAllowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		handlers.ExposedHeaders([]string{middleware.RequestIDHeader}),
	)(h)
	h = handlers.LoggingHandler(logging.Writer(s.Logger.Named("http")), h)
	if s.Config.TrustProxyHeaders {
		h = handlers.ProxyHeaders(h)
	}
	return middleware.RequestID(h)
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	if s.srv == nil {
		return ""
	}
	return s.srv.Addr
}

// Start serves until Shutdown is called. It returns http.ErrServerClosed
// after a graceful shutdown.
func (s *Server) Start() error {
	s.Logger.Info("listening", zap.String("addr", s.srv.Addr))
	return s.srv.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
