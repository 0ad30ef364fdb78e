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
	"testing"
	"time"
)

func newStoredSession(id, userID string) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(time.Hour),
		Messages:  []Message{},
	}
}

func TestMemoryStorage_SetAndGet(t *testing.T) {
	storage := NewMemoryStorage(10)
	ctx := context.Background()

	session := newStoredSession("s1", "user-1")
	session.Messages = append(session.Messages, Message{ID: "m1", Role: UserRole, Content: "hello"})

	if err := storage.Set(ctx, session, 0); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	got, err := storage.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.UserID != "user-1" || len(got.Messages) != 1 {
		t.Errorf("got session %+v", got)
	}
}

func TestMemoryStorage_GetNotFound(t *testing.T) {
	storage := NewMemoryStorage(10)

	if _, err := storage.Get(context.Background(), "missing"); err == nil {
		t.Error("expected error for missing session")
	}
}

func TestMemoryStorage_GetByUser(t *testing.T) {
	storage := NewMemoryStorage(10)
	ctx := context.Background()

	if err := storage.Set(ctx, newStoredSession("s1", "user-1"), 0); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	got, err := storage.GetByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetByUser returned error: %v", err)
	}
	if got == nil || got.ID != "s1" {
		t.Errorf("got %+v", got)
	}

	none, err := storage.GetByUser(ctx, "user-2")
	if err != nil {
		t.Fatalf("GetByUser returned error: %v", err)
	}
	if none != nil {
		t.Errorf("expected nil for unknown user, got %+v", none)
	}
}

func TestMemoryStorage_CopyOnRead(t *testing.T) {
	storage := NewMemoryStorage(10)
	ctx := context.Background()

	session := newStoredSession("s1", "user-1")
	session.Messages = append(session.Messages, Message{ID: "m1", Content: "original"})
	if err := storage.Set(ctx, session, 0); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	got, _ := storage.Get(ctx, "s1")
	got.Messages[0].Content = "mutated"

	again, _ := storage.Get(ctx, "s1")
	if again.Messages[0].Content != "original" {
		t.Error("stored session was mutated through a read copy")
	}
}

func TestMemoryStorage_LRUEviction(t *testing.T) {
	storage := NewMemoryStorage(2)
	ctx := context.Background()

	if err := storage.Set(ctx, newStoredSession("s1", "user-1"), 0); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := storage.Set(ctx, newStoredSession("s2", "user-2"), 0); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	// Touch s1 so s2 becomes the eviction candidate.
	if _, err := storage.Get(ctx, "s1"); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	if err := storage.Set(ctx, newStoredSession("s3", "user-3"), 0); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	if _, err := storage.Get(ctx, "s2"); err == nil {
		t.Error("expected s2 to be evicted")
	}
	if _, err := storage.Get(ctx, "s1"); err != nil {
		t.Errorf("s1 evicted unexpectedly: %v", err)
	}
}

func TestMemoryStorage_Cleanup(t *testing.T) {
	storage := NewMemoryStorage(10)
	ctx := context.Background()

	expired := newStoredSession("s1", "user-1")
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	if err := storage.Set(ctx, expired, 0); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := storage.Set(ctx, newStoredSession("s2", "user-2"), 0); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	if err := storage.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup returned error: %v", err)
	}

	if _, err := storage.Get(ctx, "s1"); err == nil {
		t.Error("expired session survived cleanup")
	}
	if _, err := storage.Get(ctx, "s2"); err != nil {
		t.Errorf("live session removed by cleanup: %v", err)
	}
	if got, _ := storage.GetByUser(ctx, "user-1"); got != nil {
		t.Error("user index still references cleaned-up session")
	}
}

func TestMemoryStorage_DeleteClearsUserIndex(t *testing.T) {
	storage := NewMemoryStorage(10)
	ctx := context.Background()

	if err := storage.Set(ctx, newStoredSession("s1", "user-1"), 0); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := storage.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if got, _ := storage.GetByUser(ctx, "user-1"); got != nil {
		t.Error("user index still references deleted session")
	}
}

func TestMemoryStorage_TTLOverridesExpiry(t *testing.T) {
	storage := NewMemoryStorage(10)
	ctx := context.Background()

	session := newStoredSession("s1", "user-1")
	if err := storage.Set(ctx, session, time.Minute); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	got, err := storage.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.ExpiresAt.After(time.Now().Add(2 * time.Minute)) {
		t.Errorf("ExpiresAt = %v, TTL was not applied", got.ExpiresAt)
	}
}

func TestKeyedMutex_SerializesPerKey(t *testing.T) {
	var km keyedMutex
	var counter int

	done := make(chan struct{})
	for i := 0; i < 50; i++ {
		go func() {
			unlock := km.Lock("key")
			counter++
			unlock()
			done <- struct{}{}
		}()
	}
	for i := 0; i < 50; i++ {
		<-done
	}

	if counter != 50 {
		t.Errorf("counter = %d, want 50", counter)
	}
}

func TestKeyedMutex_DiscardsReleasedLocks(t *testing.T) {
	var km keyedMutex

	// Many distinct keys, locked and released in parallel.
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			unlock := km.Lock(fmt.Sprintf("user-%d", i))
			unlock()
		}(i)
	}
	wg.Wait()

	km.mu.Lock()
	remaining := len(km.locks)
	km.mu.Unlock()
	if remaining != 0 {
		t.Errorf("locks map holds %d entries after release, want 0", remaining)
	}
}

func TestKeyedMutex_KeptWhileContended(t *testing.T) {
	var km keyedMutex

	unlockFirst := km.Lock("user-1")

	acquired := make(chan func(), 1)
	go func() {
		acquired <- km.Lock("user-1")
	}()

	// The waiter holds a reference, so the first unlock must not discard
	// the entry out from under it.
	unlockFirst()
	unlockSecond := <-acquired
	unlockSecond()

	km.mu.Lock()
	remaining := len(km.locks)
	km.mu.Unlock()
	if remaining != 0 {
		t.Errorf("locks map holds %d entries after both released, want 0", remaining)
	}
}

func TestKeyedMutex_IndependentKeys(t *testing.T) {
	var km keyedMutex

	unlockA := km.Lock("a")
	defer unlockA()

	// A held lock on one key must not block another key.
	released := make(chan struct{})
	go func() {
		unlockB := km.Lock("b")
		unlockB()
		close(released)
	}()

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("lock on independent key blocked")
	}
}
