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

// Package session keeps per-user conversation history for the chatbot. The
// normalization pipeline itself is stateless; this store exists for the
// surrounding service and serializes access per user key so concurrent
// requests for the same user never interleave their history updates. It
// supports in-memory and SQLite storage backends with configurable
// expiration.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// StorageType represents the type of storage backend for sessions
type StorageType string

const (
	// MemoryStorageType uses in-memory storage for sessions
	MemoryStorageType StorageType = "memory"
	// SQLiteStorageType uses a SQLite database for session storage
	SQLiteStorageType StorageType = "sqlite"
)

// Config holds configuration for session management
type Config struct {
	StorageType     StorageType   `json:"storage_type"`
	DBPath          string        `json:"db_path,omitempty"`
	DefaultTTL      time.Duration `json:"default_ttl"`
	MaxSessions     int           `json:"max_sessions"`
	CleanupInterval time.Duration `json:"cleanup_interval"`
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		StorageType:     MemoryStorageType,
		DefaultTTL:      30 * time.Minute,
		MaxSessions:     1000,
		CleanupInterval: 5 * time.Minute,
	}
}

// MessageRole represents the role of a message sender
type MessageRole string

const (
	// UserRole indicates a message from the user
	UserRole MessageRole = "user"
	// AssistantRole indicates a message from the chatbot
	AssistantRole MessageRole = "assistant"
)

// Message represents a single message in a conversation
type Message struct {
	ID        string      `json:"id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// Session represents one user's conversation with its history
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Messages  []Message `json:"messages"`
}

// Storage defines the interface for session storage backends
type Storage interface {
	// Get retrieves a session by ID
	Get(ctx context.Context, sessionID string) (*Session, error)
	// GetByUser retrieves the session for a user, or nil when absent
	GetByUser(ctx context.Context, userID string) (*Session, error)
	// Set stores a session with optional TTL
	Set(ctx context.Context, session *Session, ttl time.Duration) error
	// Delete removes a session
	Delete(ctx context.Context, sessionID string) error
	// Cleanup removes expired sessions
	Cleanup(ctx context.Context) error
	// Close closes the storage backend
	Close() error
}

// Manager handles session lifecycle and serializes history updates per user
type Manager struct {
	storage Storage
	config  Config
	logger  *zap.Logger
	locks   keyedMutex
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewManager creates a new session manager with the specified storage backend
func NewManager(config Config, logger *zap.Logger) (*Manager, error) {
	var storage Storage
	var err error

	switch config.StorageType {
	case MemoryStorageType:
		storage = NewMemoryStorage(config.MaxSessions)
	case SQLiteStorageType:
		storage, err = NewSQLiteStorage(config.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite storage: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", config.StorageType)
	}

	manager := &Manager{
		storage: storage,
		config:  config,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}

	if config.CleanupInterval > 0 {
		manager.wg.Add(1)
		go manager.cleanupLoop()
	}

	return manager, nil
}

// GetOrCreate returns the user's current session, creating a fresh one when
// none exists or the stored one has expired.
func (m *Manager) GetOrCreate(ctx context.Context, userID string) (*Session, error) {
	unlock := m.locks.Lock(userID)
	defer unlock()

	return m.getOrCreateLocked(ctx, userID)
}

// RecordExchange appends a user message and the chatbot's reply to the
// user's session in one serialized step.
func (m *Manager) RecordExchange(ctx context.Context, userID, userMessage, botMessage string) error {
	unlock := m.locks.Lock(userID)
	defer unlock()

	session, err := m.getOrCreateLocked(ctx, userID)
	if err != nil {
		return err
	}

	now := time.Now()
	session.Messages = append(session.Messages,
		Message{ID: GenerateMessageID(), Role: UserRole, Content: userMessage, Timestamp: now},
		Message{ID: GenerateMessageID(), Role: AssistantRole, Content: botMessage, Timestamp: now},
	)
	session.UpdatedAt = now
	session.ExpiresAt = now.Add(m.config.DefaultTTL)

	if err := m.storage.Set(ctx, session, m.config.DefaultTTL); err != nil {
		return fmt.Errorf("failed to store exchange: %w", err)
	}

	m.logger.Debug("Recorded conversation exchange",
		zap.String("session_id", session.ID),
		zap.String("user_id", userID),
		zap.Int("message_count", len(session.Messages)))

	return nil
}

// History returns the most recent messages of the user's session, newest
// last. An absent session yields an empty history.
func (m *Manager) History(ctx context.Context, userID string, maxMessages int) ([]Message, error) {
	session, err := m.storage.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil || session.ExpiresAt.Before(time.Now()) {
		return []Message{}, nil
	}

	messages := session.Messages
	if maxMessages > 0 && len(messages) > maxMessages {
		messages = messages[len(messages)-maxMessages:]
	}
	return messages, nil
}

// DeleteSession removes a session
func (m *Manager) DeleteSession(ctx context.Context, sessionID string) error {
	if err := m.storage.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	m.logger.Info("Deleted session", zap.String("session_id", sessionID))
	return nil
}

// getOrCreateLocked assumes the caller holds the user's lock.
func (m *Manager) getOrCreateLocked(ctx context.Context, userID string) (*Session, error) {
	session, err := m.storage.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	if session != nil && session.ExpiresAt.After(time.Now()) {
		return session, nil
	}

	now := time.Now()
	session = &Session{
		ID:        GenerateSessionID(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(m.config.DefaultTTL),
		Messages:  []Message{},
	}

	if err := m.storage.Set(ctx, session, m.config.DefaultTTL); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	m.logger.Info("Created new session",
		zap.String("session_id", session.ID),
		zap.String("user_id", userID))

	return session, nil
}

// cleanupLoop runs periodic cleanup of expired sessions
func (m *Manager) cleanupLoop() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := m.storage.Cleanup(ctx); err != nil {
				m.logger.Error("Failed to cleanup expired sessions", zap.Error(err))
			}
			cancel()
		case <-m.stopCh:
			return
		}
	}
}

// Close gracefully closes the session manager
func (m *Manager) Close() error {
	close(m.stopCh)
	m.wg.Wait()

	if err := m.storage.Close(); err != nil {
		return fmt.Errorf("failed to close storage: %w", err)
	}
	return nil
}
