// Copyright 2025 ERP Chatbot Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package main provides the ERP chatbot HTTP service. It accepts natural
// language requests, normalizes them into structured intent records, and
// dispatches them to the leave and clock backends.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/your-org/erp-chatbot/internal/backend"
	"github.com/your-org/erp-chatbot/internal/config"
	"github.com/your-org/erp-chatbot/internal/health"
	"github.com/your-org/erp-chatbot/internal/intent"
	"github.com/your-org/erp-chatbot/internal/llm"
	"github.com/your-org/erp-chatbot/internal/router"
	"github.com/your-org/erp-chatbot/internal/session"
	"github.com/your-org/erp-chatbot/internal/summary"
	"go.uber.org/zap"
)

const (
	// ServiceName identifies this service in health reports and logs
	ServiceName = "erp-chatbot"
	// ServiceVersion is the reported service version
	ServiceVersion = "1.0.0"
	// ShutdownTimeout bounds graceful shutdown of in-flight requests
	ShutdownTimeout = 10 * time.Second
	// DefaultUserID keys session history when the caller sends no user ID
	DefaultUserID = "default"
)

// ChatRequest is the incoming chat payload.
type ChatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

// ChatServer wires the normalization pipeline behind the HTTP surface.
type ChatServer struct {
	extractor     *intent.Extractor
	actionRouter  *router.Router
	sessions      *session.Manager
	healthManager *health.Manager
	logger        *zap.Logger
}

func main() {
	var configPath string
	var hotReload bool

	rootCmd := &cobra.Command{
		Use:   "chatbot",
		Short: "ERP chatbot service for leave and clock requests",
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(configPath, hotReload)
		},
	}
	rootCmd.Flags().StringVar(&configPath, "config", "./configs/config.yaml", "Path to configuration file")
	rootCmd.Flags().BoolVar(&hotReload, "hot-reload", false, "Reload configuration on file changes")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string, hotReload bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := buildLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting ERP chatbot service",
		zap.String("version", ServiceVersion),
		zap.String("port", cfg.Server.Port),
		zap.String("model", cfg.OpenAI.Model))

	if hotReload {
		err := config.WatchConfig(configPath, func(updated *config.Config) {
			logger.Info("Configuration reloaded",
				zap.Any("config", updated.MaskSensitiveValues()))
		})
		if err != nil {
			logger.Warn("Failed to enable configuration hot reload", zap.Error(err))
		}
	}

	llmClient, err := llm.NewClient(llm.Config{
		APIKey:   cfg.OpenAI.APIKey,
		Endpoint: cfg.OpenAI.Endpoint,
		Model:    cfg.OpenAI.Model,
		Timeout:  time.Duration(cfg.OpenAI.TimeoutSeconds) * time.Second,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize LLM client: %w", err)
	}

	backendConfig := backend.HTTPConfig{
		LeaveBaseURL: cfg.Backends.LeaveBaseURL,
		ClockBaseURL: cfg.Backends.ClockBaseURL,
		Token:        cfg.Backends.Token,
		Timeout:      time.Duration(cfg.Backends.TimeoutSeconds) * time.Second,
	}
	leaveBackend := backend.NewHTTPLeaveBackend(backendConfig, logger)
	clockBackend := backend.NewHTTPClockBackend(backendConfig, logger)

	sessionManager, err := session.NewManager(session.Config{
		StorageType:     session.StorageType(cfg.Session.StorageType),
		DBPath:          cfg.Session.DBPath,
		DefaultTTL:      time.Duration(cfg.Session.TTLMinutes) * time.Minute,
		MaxSessions:     cfg.Session.MaxSessions,
		CleanupInterval: time.Duration(cfg.Session.CleanupInterval) * time.Minute,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize session manager: %w", err)
	}
	defer func() {
		if err := sessionManager.Close(); err != nil {
			logger.Error("Failed to close session manager", zap.Error(err))
		}
	}()

	healthManager := health.NewManager(ServiceName, ServiceVersion, logger)
	healthManager.AddChecker("leave_backend", health.BackendChecker(cfg.Backends.LeaveBaseURL, nil))
	healthManager.AddChecker("clock_backend", health.BackendChecker(cfg.Backends.ClockBaseURL, nil))

	server := newChatServer(
		intent.NewExtractor(llmClient, logger),
		router.New(leaveBackend, clockBackend, summary.NewSummarizer(llmClient, logger), logger),
		sessionManager,
		healthManager,
		logger,
	)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: server.routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stopCh:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// newChatServer assembles the HTTP surface over the normalization pipeline.
func newChatServer(extractor *intent.Extractor, actionRouter *router.Router, sessions *session.Manager, healthManager *health.Manager, logger *zap.Logger) *ChatServer {
	return &ChatServer{
		extractor:     extractor,
		actionRouter:  actionRouter,
		sessions:      sessions,
		healthManager: healthManager,
		logger:        logger,
	}
}

// routes builds the Gin engine with all service endpoints.
func (s *ChatServer) routes() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.POST("/chat", s.handleChat)
	engine.GET("/health", s.handleHealth)
	engine.GET("/history", s.handleHistory)

	return engine
}

// handleChat runs one message through extraction, routing, and dispatch.
func (s *ChatServer) handleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = DefaultUserID
	}

	record := s.extractor.Extract(c.Request.Context(), message)
	result := s.actionRouter.Route(c.Request.Context(), record)

	if err := s.sessions.RecordExchange(c.Request.Context(), userID, message, result.Message); err != nil {
		s.logger.Error("Failed to record conversation exchange",
			zap.String("user_id", userID),
			zap.Error(err))
	}

	c.JSON(http.StatusOK, result.Body())
}

// handleHealth reports service status and dependency reachability. Degraded
// dependencies still return 200; the chatbot itself is up.
func (s *ChatServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, s.healthManager.Check(c.Request.Context()))
}

// handleHistory returns the caller's recent conversation messages.
func (s *ChatServer) handleHistory(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		userID = DefaultUserID
	}

	messages, err := s.sessions.History(c.Request.Context(), userID, 50)
	if err != nil {
		s.logger.Error("Failed to fetch history",
			zap.String("user_id", userID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": userID, "messages": messages})
}

// buildLogger constructs the service logger from the logging configuration.
func buildLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.Format == "text" {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		zapConfig.Level = level
	}

	return zapConfig.Build()
}
