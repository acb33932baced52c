// Package llm provides a client for OpenAI-compatible chat completion APIs,
// with tool binding, streaming and schema-validated structured output.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sreevatsan/storysmith/internal/tools"
	"github.com/sreevatsan/storysmith/internal/types"
)

// Client handles communication with a chat completions endpoint.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float32
	maxTokens   int
	httpClient  *http.Client

	// Tool binding. Set through BindTools; nil means no tools offered.
	boundTools    []tools.Definition
	parallelCalls bool
}

// Config holds client configuration.
type Config struct {
	BaseURL     string        // e.g. "https://api.openai.com/v1"
	APIKey      string        // bearer token, empty for unauthenticated endpoints
	Model       string        // e.g. "gpt-4o"
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration // covers the whole request, including body
}

// DefaultConfig returns sensible defaults for a local endpoint.
func DefaultConfig() Config {
	return Config{
		BaseURL:   "http://localhost:11434/v1",
		Model:     "qwen2.5:7b",
		MaxTokens: 1024,
		Timeout:   120 * time.Second,
	}
}

// NewClient creates a new chat client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &Client{
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
	}
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// BindTools returns a copy of the client that offers the given tools on every
// request. When parallel is false the model is asked to issue at most one
// tool call per turn, which suits sequential arithmetic.
func (c *Client) BindTools(defs []tools.Definition, parallel bool) *Client {
	bound := *c
	bound.boundTools = defs
	bound.parallelCalls = parallel
	return &bound
}

// Wire types for the chat completions schema.

type wireMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	Name       string         `json:"name,omitempty"`
}

type wireToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

type wireFunction struct {
	Name string `json:"name"`
	// Arguments is a JSON-encoded object, per the provider schema.
	Arguments string `json:"arguments"`
}

type wireTool struct {
	Type     string           `json:"type"`
	Function tools.Definition `json:"function"`
}

type chatRequest struct {
	Model             string          `json:"model"`
	Messages          []wireMessage   `json:"messages"`
	Temperature       float32         `json:"temperature,omitempty"`
	MaxTokens         int             `json:"max_tokens,omitempty"`
	Stream            bool            `json:"stream,omitempty"`
	Tools             []wireTool      `json:"tools,omitempty"`
	ParallelToolCalls *bool           `json:"parallel_tool_calls,omitempty"`
	ResponseFormat    *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message      wireMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

// Chat invokes the model exactly once with the given history and returns the
// assistant's response message. There is no retry; transport and credential
// failures propagate to the caller.
func (c *Client) Chat(ctx context.Context, history []types.Message) (types.Message, error) {
	req := c.newRequest(history)

	var chatResp chatResponse
	if err := c.post(ctx, req, &chatResp); err != nil {
		return types.Message{}, err
	}
	if len(chatResp.Choices) == 0 {
		return types.Message{}, fmt.Errorf("no response from model")
	}
	return decodeMessage(chatResp.Choices[0].Message)
}

func (c *Client) newRequest(history []types.Message) chatRequest {
	req := chatRequest{
		Model:       c.model,
		Messages:    encodeMessages(history),
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	if len(c.boundTools) > 0 {
		for _, def := range c.boundTools {
			req.Tools = append(req.Tools, wireTool{Type: "function", Function: def})
		}
		parallel := c.parallelCalls
		req.ParallelToolCalls = &parallel
	}
	return req
}

func (c *Client) post(ctx context.Context, req chatRequest, out any) error {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/chat/completions",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("model returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	return nil
}

func encodeMessages(history []types.Message) []wireMessage {
	msgs := make([]wireMessage, 0, len(history))
	for _, m := range history {
		wm := wireMessage{
			Role:       string(m.Role),
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
			Name:       m.Name,
		}
		for _, call := range m.ToolCalls {
			args, err := json.Marshal(call.Arguments)
			if err != nil {
				args = []byte("{}")
			}
			wm.ToolCalls = append(wm.ToolCalls, wireToolCall{
				ID:   call.ID,
				Type: "function",
				Function: wireFunction{
					Name:      call.Name,
					Arguments: string(args),
				},
			})
		}
		msgs = append(msgs, wm)
	}
	return msgs
}

func decodeMessage(wm wireMessage) (types.Message, error) {
	msg := types.Message{
		Role:       types.Role(wm.Role),
		Content:    wm.Content,
		ToolCallID: wm.ToolCallID,
		Name:       wm.Name,
	}
	for _, call := range wm.ToolCalls {
		args := map[string]any{}
		if call.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
				return types.Message{}, fmt.Errorf("decode arguments for tool %q: %w", call.Function.Name, err)
			}
		}
		msg.ToolCalls = append(msg.ToolCalls, types.ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: args,
		})
	}
	return msg, nil
}

// truncate truncates a string to maxLen characters.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
