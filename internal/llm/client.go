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

// Package llm models the external language-model collaborators as capability
// interfaces so any provider can be substituted. The shipped implementation
// wraps the OpenAI chat completions API. Each call is attempted exactly once
// with a bounded timeout; failures are returned to the caller, which is
// expected to degrade to a deterministic fallback rather than retry.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/your-org/erp-chatbot/internal/resilience"
)

const (
	// DefaultModel is the chat model used for both extraction and summarization
	DefaultModel = "gpt-4o-mini"
	// DefaultTimeout bounds a single completion call
	DefaultTimeout = 15 * time.Second
)

// Understander extracts structured meaning from a prompt. Implementations
// return the model's raw text reply, which is expected (but not guaranteed)
// to contain a JSON object.
type Understander interface {
	Understand(ctx context.Context, prompt string) (string, error)
}

// Generator produces free-form text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// CompletionParams tunes a single completion call.
type CompletionParams struct {
	Temperature float32
	MaxTokens   int
}

// Config holds settings for the OpenAI-backed client.
type Config struct {
	APIKey        string
	Endpoint      string
	Model         string
	Timeout       time.Duration
	UnderstandReq CompletionParams
	GenerateReq   CompletionParams
}

// DefaultConfig returns client defaults matching the extraction and
// summarization call profiles: deterministic extraction, slightly warmer
// short summaries.
func DefaultConfig() Config {
	return Config{
		Model:         DefaultModel,
		Timeout:       DefaultTimeout,
		UnderstandReq: CompletionParams{Temperature: 0, MaxTokens: 200},
		GenerateReq:   CompletionParams{Temperature: 0.2, MaxTokens: 40},
	}
}

// Client implements Understander and Generator over the OpenAI API.
type Client struct {
	client *openai.Client
	config Config
	logger *zap.Logger
}

// NewClient creates an OpenAI-backed client. The API key is required; all
// other settings fall back to defaults.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	defaults := DefaultConfig()
	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.UnderstandReq.MaxTokens == 0 {
		cfg.UnderstandReq = defaults.UnderstandReq
	}
	if cfg.GenerateReq.MaxTokens == 0 {
		cfg.GenerateReq = defaults.GenerateReq
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = cfg.Endpoint
	}

	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
		logger: logger,
	}, nil
}

// Understand sends the prompt with the extraction call profile.
func (c *Client) Understand(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, prompt, c.config.UnderstandReq, "understand")
}

// Generate sends the prompt with the summarization call profile.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, prompt, c.config.GenerateReq, "generate")
}

// complete performs a single chat completion attempt with a bounded timeout.
// There is deliberately no retry loop here: the pipeline attempts each
// external call once per request and degrades on failure.
func (c *Client) complete(ctx context.Context, prompt string, params CompletionParams, operation string) (string, error) {
	c.logger.Debug("Sending completion request",
		zap.String("operation", operation),
		zap.String("model", c.config.Model),
		zap.Int("max_tokens", params.MaxTokens),
		zap.Float64("temperature", float64(params.Temperature)))

	var resp openai.ChatCompletionResponse
	err := resilience.WithTimeout(ctx, c.config.Timeout, c.logger, func(ctx context.Context) error {
		var callErr error
		resp, callErr = c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       c.config.Model,
			Messages:    []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: prompt}},
			Temperature: params.Temperature,
			MaxTokens:   params.MaxTokens,
		})
		return callErr
	})
	if err != nil {
		c.logger.Warn("Completion request failed",
			zap.String("operation", operation),
			zap.String("error_code", string(resilience.CodeOf(err))),
			zap.Error(err))
		return "", fmt.Errorf("completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from model")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	c.logger.Debug("Completion request succeeded",
		zap.String("operation", operation),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		zap.Int("total_tokens", resp.Usage.TotalTokens))

	return content, nil
}
