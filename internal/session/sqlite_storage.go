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

package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStorage persists sessions in a SQLite database so conversation
// history survives restarts. Message history is stored as a JSON column;
// sessions are small and read whole.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens (and if needed initializes) the session database.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("db path is required for sqlite session storage")
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	storage := &SQLiteStorage{db: db}
	if err := storage.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// initSchema creates the sessions table if it doesn't exist
func (s *SQLiteStorage) initSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			expires_at DATETIME NOT NULL,
			messages TEXT NOT NULL DEFAULT '[]'
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id);
	`

	_, err := s.db.Exec(query)
	return err
}

// Get retrieves a session by ID
func (s *SQLiteStorage) Get(ctx context.Context, sessionID string) (*Session, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, created_at, updated_at, expires_at, messages FROM sessions WHERE id = ?",
		sessionID)

	session, err := scanSession(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("session not found: %s", sessionID)
		}
		return nil, err
	}
	return session, nil
}

// GetByUser retrieves the most recent session for a user, or nil when absent
func (s *SQLiteStorage) GetByUser(ctx context.Context, userID string) (*Session, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, created_at, updated_at, expires_at, messages FROM sessions WHERE user_id = ? ORDER BY updated_at DESC LIMIT 1",
		userID)

	session, err := scanSession(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return session, nil
}

// Set stores a session with optional TTL
func (s *SQLiteStorage) Set(ctx context.Context, session *Session, ttl time.Duration) error {
	expiresAt := session.ExpiresAt
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	messages, err := json.Marshal(session.Messages)
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO sessions (id, user_id, created_at, updated_at, expires_at, messages)
		VALUES (?, ?, ?, ?, ?, ?)`,
		session.ID, session.UserID, session.CreatedAt, session.UpdatedAt, expiresAt, string(messages))
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	return nil
}

// Delete removes a session
func (s *SQLiteStorage) Delete(ctx context.Context, sessionID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("session not found: %s", sessionID)
	}

	return nil
}

// Cleanup removes expired sessions
func (s *SQLiteStorage) Cleanup(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < ?", time.Now())
	if err != nil {
		return fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// scanSession maps a sessions row onto a Session.
func scanSession(row *sql.Row) (*Session, error) {
	var session Session
	var messages string

	err := row.Scan(&session.ID, &session.UserID, &session.CreatedAt, &session.UpdatedAt, &session.ExpiresAt, &messages)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(messages), &session.Messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal messages: %w", err)
	}

	return &session, nil
}
