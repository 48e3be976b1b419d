package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cosmossdk.io/log"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/paw-chain/pawswap/pkg/sandbox"
)

// Config holds API server configuration
type Config struct {
	Listen          string
	CORSOrigins     []string
	RateLimitRPS    int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	MaxPageSize     int
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() *Config {
	return &Config{
		Listen:          "127.0.0.1:5050",
		CORSOrigins:     []string{"*"},
		RateLimitRPS:    100,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		RequestTimeout:  10 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		MaxPageSize:     200,
	}
}

// Server serves read-only views of a sandbox chain over HTTP.
type Server struct {
	config  *Config
	chain   *sandbox.Chain
	router  *gin.Engine
	handler http.Handler
	logger  log.Logger
}

// NewServer creates a new API server over chain.
func NewServer(chain *sandbox.Chain, config *Config, logger log.Logger) (*Server, error) {
	if chain == nil {
		return nil, errors.New("chain is required")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxPageSize <= 0 {
		config.MaxPageSize = DefaultConfig().MaxPageSize
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}

	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		config: config,
		chain:  chain,
		router: gin.New(),
		logger: logger.With("module", "api"),
	}
	s.setupRouter()
	return s, nil
}

// setupRouter configures middleware and routes
func (s *Server) setupRouter() {
	s.router.Use(RecoveryMiddleware(s.logger))
	s.router.Use(SecurityHeadersMiddleware())
	s.router.Use(RequestIDMiddleware())
	s.router.Use(LoggerMiddleware(s.logger))
	s.router.Use(MetricsMiddleware())
	if s.config.RateLimitRPS > 0 {
		s.router.Use(RateLimitMiddleware(NewRateLimiter(s.config.RateLimitRPS)))
	}
	s.router.Use(TimeoutMiddleware(s.config.RequestTimeout))

	s.router.GET("/health", s.healthCheck)
	s.registerRoutes()

	s.handler = s.router
	if len(s.config.CORSOrigins) > 0 {
		s.handler = cors.New(cors.Options{
			AllowedOrigins: s.config.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         86400,
		}).Handler(s.router)
	}
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// healthCheck reports the chain position and whether the invariants hold.
func (s *Server) healthCheck(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Height:    s.chain.Height(),
		BlockTime: s.chain.BlockTime().Unix(),
		Timestamp: time.Now().Unix(),
	}
	status := http.StatusOK
	if err := s.chain.CheckInvariants(); err != nil {
		resp.Status = "unhealthy"
		resp.Error = err.Error()
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:           s.config.Listen,
		Handler:        s.handler,
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", "listen", s.config.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
