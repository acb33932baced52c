package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sreevatsan/storysmith/internal/types"
)

// StreamStats captures timing for a streamed completion. TimeToFirstToken is
// the delay between the request being issued and the first content delta,
// which plain invocation cannot measure.
type StreamStats struct {
	TimeToFirstToken time.Duration
	TotalDuration    time.Duration
	Chunks           int
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

var dataPrefix = []byte("data: ")

// Stream invokes the model once with server-sent events enabled, calling fn
// for every content delta as it arrives. It returns the fully assembled
// assistant message and streaming stats. A non-nil error from fn aborts the
// stream.
func (c *Client) Stream(ctx context.Context, history []types.Message, fn func(delta string) error) (types.Message, *StreamStats, error) {
	req := c.newRequest(history)
	req.Stream = true

	jsonData, err := json.Marshal(req)
	if err != nil {
		return types.Message{}, nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/chat/completions",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return types.Message{}, nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return types.Message{}, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return types.Message{}, nil, fmt.Errorf("model returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var content strings.Builder
	stats := &StreamStats{}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return types.Message{}, nil, err
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if !bytes.HasPrefix(line, dataPrefix) {
			continue
		}
		line = bytes.TrimPrefix(line, dataPrefix)
		if string(line) == "[DONE]" {
			break
		}

		var chunk streamChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			return types.Message{}, nil, fmt.Errorf("decode stream chunk: %w", err)
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		delta := chunk.Choices[0].Delta.Content
		if delta != "" {
			if stats.Chunks == 0 {
				stats.TimeToFirstToken = time.Since(start)
			}
			stats.Chunks++
			content.WriteString(delta)
			if fn != nil {
				if err := fn(delta); err != nil {
					return types.Message{}, nil, err
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return types.Message{}, nil, fmt.Errorf("read stream: %w", err)
	}

	stats.TotalDuration = time.Since(start)
	return types.AssistantMessage(content.String()), stats, nil
}
