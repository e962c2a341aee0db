package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"teamhub/config"
	"teamhub/internal/handler"
	"teamhub/internal/middleware"
	"teamhub/internal/redis"
	"teamhub/internal/services"
	"teamhub/internal/transport/httpdto"
	"teamhub/pkg/database"
	"teamhub/pkg/logger"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Auth      *handler.AuthHandler
	Chat      *handler.ChatHandler
	Task      *handler.TaskHandler
	Admin     *handler.AdminHandler
	WebSocket *WebSocketHandler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.AppPort),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

func (s *Server) SetupRoutes(handlers *Handlers, authService *services.AuthService, limiter *redis.RateLimiter) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	s.engine.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(); err != nil {
			c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), "UNHEALTHY"))
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	s.engine.GET("/ws", handlers.WebSocket.Handle)

	auth := s.engine.Group("/v1/auth", middleware.AuthRateLimitMiddleware(limiter))
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
		auth.GET("/me", middleware.AuthMiddleware(authService), handlers.Auth.Me)
	}

	authed := middleware.AuthMiddleware(authService)

	chat := s.engine.Group("/v1/chat", authed)
	{
		chat.GET("/messages", handlers.Chat.Messages)
		chat.GET("/rooms", handlers.Chat.ListRooms)
		chat.POST("/rooms", handlers.Chat.CreateRoom)
		chat.DELETE("/rooms/:id", handlers.Chat.DeleteRoom)
		chat.GET("/rooms/:id/messages", handlers.Chat.RoomMessages)
		chat.GET("/dm/:userID", handlers.Chat.DirectThread)
		chat.PATCH("/messages/:id", handlers.Chat.EditMessage)
		chat.DELETE("/messages/:id", handlers.Chat.DeleteMessage)
		chat.GET("/attachments/:id/download", handlers.Chat.DownloadAttachment)
		chat.GET("/online", handlers.Chat.Online)
	}

	tasks := s.engine.Group("/v1/tasks", authed)
	{
		tasks.POST("", handlers.Task.Create)
		tasks.GET("", handlers.Task.List)
		tasks.GET("/:id", handlers.Task.Get)
		tasks.PATCH("/:id/status", handlers.Task.MoveStatus)
		tasks.PATCH("/:id/assignee", handlers.Task.Assign)
		tasks.DELETE("/:id", handlers.Task.Delete)
		tasks.POST("/:id/comments", handlers.Task.AddComment)
		tasks.GET("/:id/comments", handlers.Task.Comments)
		tasks.GET("/:id/activity", handlers.Task.Activity)
	}

	projects := s.engine.Group("/v1/projects", authed)
	{
		projects.POST("", handlers.Task.CreateProject)
		projects.GET("", handlers.Task.ListProjects)
		projects.DELETE("/:id", handlers.Task.DeleteProject)
	}

	admin := s.engine.Group("/v1/admin", authed)
	{
		admin.POST("/chat/clear", handlers.Admin.ClearChatData)
		admin.GET("/users", handlers.Admin.ListUsers)
		admin.POST("/users", handlers.Admin.CreateUser)
		admin.DELETE("/users/:id", handlers.Admin.DeleteUser)
	}
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	if s.logger != nil {
		s.logger.Infof("Server is running on :%s", s.config.AppPort)
	}

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}

	return nil
}
