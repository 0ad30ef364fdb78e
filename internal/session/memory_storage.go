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
	"fmt"
	"sync"
	"time"
)

// MemoryStorage provides in-memory session storage with LRU eviction
type MemoryStorage struct {
	sessions    map[string]*Session
	userIndex   map[string]string // Maps user ID to session ID
	maxSessions int
	mutex       sync.RWMutex
	accessTime  map[string]time.Time // Track access time for LRU
}

// NewMemoryStorage creates a new in-memory session storage
func NewMemoryStorage(maxSessions int) *MemoryStorage {
	return &MemoryStorage{
		sessions:    make(map[string]*Session),
		userIndex:   make(map[string]string),
		maxSessions: maxSessions,
		accessTime:  make(map[string]time.Time),
	}
}

// Get retrieves a session by ID
func (m *MemoryStorage) Get(_ context.Context, sessionID string) (*Session, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return nil, fmt.Errorf("session not found: %s", sessionID)
	}

	m.accessTime[sessionID] = time.Now()
	return copySession(session), nil
}

// GetByUser retrieves the session for a user, or nil when absent
func (m *MemoryStorage) GetByUser(_ context.Context, userID string) (*Session, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	sessionID, exists := m.userIndex[userID]
	if !exists {
		return nil, nil
	}

	session, exists := m.sessions[sessionID]
	if !exists {
		return nil, nil
	}

	m.accessTime[sessionID] = time.Now()
	return copySession(session), nil
}

// Set stores a session with optional TTL
func (m *MemoryStorage) Set(_ context.Context, session *Session, ttl time.Duration) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.sessions[session.ID]; !exists && len(m.sessions) >= m.maxSessions {
		m.evictOldestSession()
	}

	stored := copySession(session)
	if ttl > 0 {
		stored.ExpiresAt = time.Now().Add(ttl)
	}

	m.sessions[session.ID] = stored
	m.accessTime[session.ID] = time.Now()
	m.userIndex[session.UserID] = session.ID

	return nil
}

// Delete removes a session
func (m *MemoryStorage) Delete(_ context.Context, sessionID string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return fmt.Errorf("session not found: %s", sessionID)
	}

	m.removeLocked(session)
	return nil
}

// Cleanup removes expired sessions
func (m *MemoryStorage) Cleanup(_ context.Context) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	now := time.Now()
	for _, session := range m.sessions {
		if session.ExpiresAt.Before(now) {
			m.removeLocked(session)
		}
	}
	return nil
}

// Close closes the storage backend
func (m *MemoryStorage) Close() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.sessions = make(map[string]*Session)
	m.userIndex = make(map[string]string)
	m.accessTime = make(map[string]time.Time)
	return nil
}

// removeLocked assumes the caller holds the write lock.
func (m *MemoryStorage) removeLocked(session *Session) {
	if m.userIndex[session.UserID] == session.ID {
		delete(m.userIndex, session.UserID)
	}
	delete(m.sessions, session.ID)
	delete(m.accessTime, session.ID)
}

// evictOldestSession removes the least recently used session
func (m *MemoryStorage) evictOldestSession() {
	var oldestSessionID string
	var oldestTime time.Time

	for sessionID, accessTime := range m.accessTime {
		if oldestSessionID == "" || accessTime.Before(oldestTime) {
			oldestSessionID = sessionID
			oldestTime = accessTime
		}
	}

	if oldestSessionID != "" {
		if session, exists := m.sessions[oldestSessionID]; exists {
			m.removeLocked(session)
		}
	}
}

// copySession returns a deep copy so callers cannot mutate stored state.
func copySession(session *Session) *Session {
	sessionCopy := *session
	sessionCopy.Messages = make([]Message, len(session.Messages))
	copy(sessionCopy.Messages, session.Messages)
	return &sessionCopy
}
