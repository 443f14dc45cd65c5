// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"learnease_backend/internal/auth"
	"learnease_backend/internal/chat"
	"learnease_backend/internal/config"
	"learnease_backend/internal/help"
	"learnease_backend/internal/jobs"
	"learnease_backend/internal/middleware"
	"learnease_backend/internal/platform/elasticsearch"
	"learnease_backend/internal/quiz"
	"learnease_backend/internal/shared"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config

	// Exported so main can run index setup before serving traffic.
	AppLogger *zap.Logger
	ESClient  *elasticsearch.ESClientWrapper

	authHandler *auth.Handler
	quizHandler *quiz.Handler
	chatHandler *chat.Handler
	helpHandler *help.Handler

	cleanupJob *jobs.SessionCleanupJob
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	tokenService shared.TokenService,
	authHandler *auth.Handler,
	quizHandler *quiz.Handler,
	chatHandler *chat.Handler,
	helpHandler *help.Handler,
	cleanupJob *jobs.SessionCleanupJob,
	esClient *elasticsearch.ESClientWrapper,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	authMW := middleware.AuthMiddleware(tokenService, logger.Named("AuthMiddleware"))

	// --- Routes ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "LearnEase API is healthy!"})
	})

	api := router.Group("/api")
	authHandler.RegisterRoutes(api, authMW)
	quizHandler.RegisterRoutes(api, authMW)
	chatHandler.RegisterRoutes(api, authMW)
	helpHandler.RegisterRoutes(api, authMW)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		// Generous write timeout: chat completions stream for a while.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:  httpServer,
		router:      router,
		cfg:         cfg,
		AppLogger:   logger,
		ESClient:    esClient,
		authHandler: authHandler,
		quizHandler: quizHandler,
		chatHandler: chatHandler,
		helpHandler: helpHandler,
		cleanupJob:  cleanupJob,
	}, nil
}

func (s *Server) Start() error {
	if s.cleanupJob != nil {
		if err := s.cleanupJob.SetupAndStart(); err != nil {
			s.AppLogger.Error("Failed to setup and start session cleanup job", zap.Error(err))
		}
	} else {
		s.AppLogger.Info("Session cleanup job is not configured, skipping start.")
	}

	s.AppLogger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.AppLogger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.AppLogger.Info("HTTP Server stopped gracefully or an error occurred")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.AppLogger.Info("Attempting graceful server shutdown...")
	if s.cleanupJob != nil {
		s.cleanupJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
