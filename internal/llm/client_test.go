package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sreevatsan/storysmith/internal/tools"
	"github.com/sreevatsan/storysmith/internal/types"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(Config{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Model:   "gpt-4o",
	})
	return client, server
}

func TestChat(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "gpt-4o" {
			t.Errorf("model = %q", req.Model)
		}
		if len(req.Messages) != 1 || req.Messages[0].Content != "hello" {
			t.Errorf("messages = %+v", req.Messages)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "hi there"}},
			},
		})
	})

	response, err := client.Chat(context.Background(), []types.Message{types.HumanMessage("hello")})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if response.Role != types.RoleAssistant || response.Content != "hi there" {
		t.Errorf("response = %+v", response)
	}
}

func TestChatDecodesToolCalls(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{
					"role": "assistant",
					"tool_calls": []map[string]any{
						{
							"id":   "call_1",
							"type": "function",
							"function": map[string]any{
								"name":      "add",
								"arguments": `{"a": 3, "b": 4}`,
							},
						},
					},
				}},
			},
		})
	})

	response, err := client.Chat(context.Background(), []types.Message{types.HumanMessage("Add 3 and 4")})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if len(response.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(response.ToolCalls))
	}

	call := response.ToolCalls[0]
	if call.ID != "call_1" || call.Name != "add" {
		t.Errorf("call = %+v", call)
	}
	if call.Arguments["a"] != float64(3) || call.Arguments["b"] != float64(4) {
		t.Errorf("arguments = %v", call.Arguments)
	}
	if !response.PendingToolCalls() {
		t.Error("response should report pending tool calls")
	}
}

func TestChatBindsTools(t *testing.T) {
	var captured chatRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		captured = chatRequest{}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "ok"}},
			},
		})
	})

	registry, err := tools.NewRegistry(tools.Arithmetic()...)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	bound := client.BindTools(registry.Definitions(), false)

	if _, err := bound.Chat(context.Background(), []types.Message{types.HumanMessage("hi")}); err != nil {
		t.Fatalf("Chat: %v", err)
	}

	if len(captured.Tools) != 3 {
		t.Fatalf("expected 3 bound tools, got %d", len(captured.Tools))
	}
	if captured.Tools[0].Type != "function" || captured.Tools[0].Function.Name != "add" {
		t.Errorf("first tool = %+v", captured.Tools[0])
	}
	if captured.ParallelToolCalls == nil || *captured.ParallelToolCalls {
		t.Error("parallel_tool_calls should be present and false")
	}

	// The original client stays unbound.
	if _, err := client.Chat(context.Background(), []types.Message{types.HumanMessage("hi")}); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if len(captured.Tools) != 0 {
		t.Errorf("unbound client sent %d tools", len(captured.Tools))
	}
}

func TestChatEncodesToolHistory(t *testing.T) {
	var captured chatRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "7"}},
			},
		})
	})

	history := []types.Message{
		types.HumanMessage("Add 3 and 4"),
		{
			Role: types.RoleAssistant,
			ToolCalls: []types.ToolCall{
				{ID: "call_1", Name: "add", Arguments: map[string]any{"a": 3, "b": 4}},
			},
		},
		types.ToolMessage("add", types.ToolResult{CallID: "call_1", Content: "7"}),
	}
	if _, err := client.Chat(context.Background(), history); err != nil {
		t.Fatalf("Chat: %v", err)
	}

	if len(captured.Messages) != 3 {
		t.Fatalf("expected 3 wire messages, got %d", len(captured.Messages))
	}
	assistant := captured.Messages[1]
	if len(assistant.ToolCalls) != 1 || assistant.ToolCalls[0].Function.Name != "add" {
		t.Errorf("assistant wire message = %+v", assistant)
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(assistant.ToolCalls[0].Function.Arguments), &args); err != nil {
		t.Fatalf("arguments are not valid JSON: %v", err)
	}

	tool := captured.Messages[2]
	if tool.Role != "tool" || tool.ToolCallID != "call_1" || tool.Content != "7" {
		t.Errorf("tool wire message = %+v", tool)
	}
}

func TestChatErrorStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "invalid api key"}`, http.StatusUnauthorized)
	})

	_, err := client.Chat(context.Background(), []types.Message{types.HumanMessage("hi")})
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
}

func TestChatEmptyChoices(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})

	_, err := client.Chat(context.Background(), []types.Message{types.HumanMessage("hi")})
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
}
