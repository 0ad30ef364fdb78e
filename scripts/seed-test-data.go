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

// Seeds a local session database with demo conversations so the /history
// endpoint has data to show during development.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/your-org/erp-chatbot/internal/session"
)

const seedTTL = 24 * time.Hour

type demoExchange struct {
	userMessage string
	botMessage  string
}

type demoConversation struct {
	userID    string
	exchanges []demoExchange
}

func main() {
	dbPath := flag.String("db-path", "./sessions.db", "Path to the session database")
	flag.Parse()

	log.Printf("🌱 Seeding demo sessions into %s...", *dbPath)

	storage, err := session.NewSQLiteStorage(*dbPath)
	if err != nil {
		log.Fatalf("❌ Failed to open session storage: %v", err)
	}
	defer func() { _ = storage.Close() }()

	ctx := context.Background()
	conversations := demoConversations()

	for _, conv := range conversations {
		if err := seedConversation(ctx, storage, conv); err != nil {
			log.Fatalf("❌ Failed to seed session for %s: %v", conv.userID, err)
		}
		log.Printf("✅ Seeded session for user %s (%d messages)", conv.userID, len(conv.exchanges)*2)
	}

	log.Printf("📊 Seeding complete: %d sessions", len(conversations))
}

func seedConversation(ctx context.Context, storage session.Storage, conv demoConversation) error {
	now := time.Now()
	sess := &session.Session{
		ID:        session.GenerateSessionID(),
		UserID:    conv.userID,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(seedTTL),
		Messages:  []session.Message{},
	}

	for _, exchange := range conv.exchanges {
		sess.Messages = append(sess.Messages,
			session.Message{ID: session.GenerateMessageID(), Role: session.UserRole, Content: exchange.userMessage, Timestamp: now},
			session.Message{ID: session.GenerateMessageID(), Role: session.AssistantRole, Content: exchange.botMessage, Timestamp: now},
		)
	}

	return storage.Set(ctx, sess, seedTTL)
}

func demoConversations() []demoConversation {
	return []demoConversation{
		{
			userID: "alice",
			exchanges: []demoExchange{
				{
					userMessage: "I have a fever, need sick leave from tomorrow to friday",
					botMessage:  "Sick leave applied from tomorrow through Friday.",
				},
				{
					userMessage: "show my leave status",
					botMessage:  "You have 3 leave requests on record.",
				},
			},
		},
		{
			userID: "bob",
			exchanges: []demoExchange{
				{
					userMessage: "clock me in for today at 9am, forgot my badge",
					botMessage:  "Clock-In recorded for today at 9am.",
				},
			},
		},
		{
			userID: "carol",
			exchanges: []demoExchange{
				{
					userMessage: "book me a meeting room",
					botMessage:  "Sorry, we don't have this feature yet.",
				},
				{
					userMessage: "ok then apply casual leave",
					botMessage:  "Please provide start_date, end_date, reason to apply for leave.",
				},
			},
		},
	}
}
