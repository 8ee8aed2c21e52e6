package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ngenohkevin/hivedeck-monitor/config"
	"github.com/ngenohkevin/hivedeck-monitor/internal/process"
)

// Server is the process directory agent
type Server struct {
	cfg        *config.Config
	router     *gin.Engine
	handlers   *Handlers
	settings   *SettingsHandler
	auth       *AuthService
	limiter    *RateLimiter
	httpServer *http.Server
}

// New creates an agent that controls processes of the local host
func New(cfg *config.Config) *Server {
	manager := process.NewManager(cfg.ForceKill, cfg.ProtectedPIDs...)
	return NewWithController(cfg, manager)
}

// NewWithController creates an agent over any process controller
func NewWithController(cfg *config.Config, processes ProcessController) *Server {
	// Set Gin mode based on log level
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	auth := NewAuthService(cfg.APIKey, cfg.JWTSecret)

	s := &Server{
		cfg:      cfg,
		router:   gin.New(),
		handlers: NewHandlers(processes, nil, auth, cfg.TokenTTL),
		settings: NewSettingsHandler(cfg),
		auth:     auth,
		limiter:  NewRateLimiter(cfg.RateLimitRPS),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(RecoveryMiddleware())
	s.router.Use(RequestIDMiddleware())
	s.router.Use(LoggerMiddleware())
	s.router.Use(CORSMiddleware(s.cfg.AllowedOrigins))
	s.router.Use(RateLimitMiddleware(s.limiter))
}

func (s *Server) setupRoutes() {
	// Health check (no auth)
	s.router.GET("/health", s.handlers.HealthCheck)

	api := s.router.Group("/")
	api.Use(AuthMiddleware(s.auth))
	{
		api.GET("/info", s.handlers.GetInfo)
		api.POST("/auth/token", s.handlers.IssueToken)
		api.GET("/settings", s.settings.GetSettings)

		// Processes
		api.GET("/processes", s.handlers.ListProcesses)
		api.GET("/processes/:pid", s.handlers.GetProcess)
		api.POST("/processes/:pid/kill", s.handlers.KillProcess)
		api.POST("/processes/:pid/suspend", s.handlers.SuspendProcess)
		api.POST("/processes/:pid/resume", s.handlers.ResumeProcess)
	}
}

// Run serves until SIGINT or SIGTERM
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Serve(ctx)
}

// Serve listens on the configured address until ctx is done
func (s *Server) Serve(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down agent...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Agent forced to shutdown: %v", err)
		}
	}()

	log.Printf("Starting Hivedeck process directory on %s", s.cfg.Addr())

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	// Clean up
	if err := s.handlers.Close(); err != nil {
		log.Printf("Error closing handlers: %v", err)
	}

	log.Println("Agent stopped")
	return nil
}

// Router returns the Gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
